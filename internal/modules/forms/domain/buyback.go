package domain

import (
	"strings"

	"backofficeWs/internal/shared/validation"
)

const (
	RequestTradeIn     = "TradeIn"
	RequestRecycle     = "Recycle"
	RequestRepairReuse = "RepairReuse"
)

// BuybackDecision closes a buyback inspection. Trade-ins and recycling are paid in loyalty
// points, repair-reuse requests in money.
type BuybackDecision struct {
	BuybackID     string  `json:"buybackId" validate:"required"`
	RequestType   string  `json:"requestType" validate:"required"`
	Notes         string  `json:"notes"`
	Currency      string  `json:"currency"`
	PaymentMethod string  `json:"paymentMethod"`
	LoyaltyPoints float64 `json:"loyaltyPoints"`
	Amount        float64 `json:"amount"`
}

func (b *BuybackDecision) Validate() error {
	b.RequestType = strings.TrimSpace(b.RequestType)
	if strings.TrimSpace(b.Currency) == "" {
		b.Currency = "INR"
	}
	fields := validation.FieldErrors{}
	if err := validation.Struct(b); err != nil {
		fields = validation.FromError(err)
	}
	if b.paysPoints() && b.LoyaltyPoints <= 0 {
		fields.Add("loyaltyPoints", "Must be greater than 0.")
	}
	if b.paysAmount() && b.Amount <= 0 {
		fields.Add("amount", "Must be greater than 0.")
	}
	if len(fields) > 0 {
		return fields
	}
	return nil
}

func (b *BuybackDecision) Target() Target {
	return Target{Collection: "buybacks", Action: "update_status", RecordID: strings.TrimSpace(b.BuybackID)}
}

func (b *BuybackDecision) Payload() map[string]any {
	payload := map[string]any{
		"notes":         strings.TrimSpace(b.Notes),
		"currency":      strings.TrimSpace(b.Currency),
		"paymentMethod": strings.TrimSpace(b.PaymentMethod),
	}
	if b.paysPoints() {
		payload["loyaltyPoints"] = b.LoyaltyPoints
	}
	if b.paysAmount() {
		payload["amount"] = b.Amount
	}
	return payload
}

func (b *BuybackDecision) paysPoints() bool {
	return b.RequestType == RequestTradeIn || b.RequestType == RequestRecycle
}

func (b *BuybackDecision) paysAmount() bool {
	return b.RequestType == RequestRepairReuse
}
