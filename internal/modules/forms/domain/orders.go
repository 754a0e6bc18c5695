package domain

import (
	"strings"

	"backofficeWs/internal/shared/normalization"
	"backofficeWs/internal/shared/validation"
)

// OrderStatusChange moves an order through its lifecycle.
type OrderStatusChange struct {
	OrderID       string `json:"orderId" validate:"required"`
	Status        string `json:"status" validate:"required,oneof=Pending Confirmed Processing Shipped Delivered Cancelled"`
	PaymentStatus string `json:"paymentStatus"`
}

func (o *OrderStatusChange) Validate() error {
	o.Status = strings.TrimSpace(o.Status)
	return validation.Struct(o)
}

func (o *OrderStatusChange) Target() Target {
	return Target{Collection: "orders", Action: "change_status", RecordID: strings.TrimSpace(o.OrderID)}
}

func (o *OrderStatusChange) Payload() map[string]any {
	payload := map[string]any{"status": o.Status}
	setIfNotBlank(payload, "paymentStatus", o.PaymentStatus)
	return payload
}

const (
	ShipmentDomestic      = "Domestic"
	ShipmentInternational = "International"
)

// Pickup details of the warehouse used for domestic shipments.
const (
	pickupName    = "JLPL Galaxy Heights"
	pickupPhone   = "9504051829"
	pickupCity    = "Mohali"
	pickupState   = "Punjab"
	pickupAddress = "Building No./Flat No.: B 1503, Tower B\nName Of Premises/Building: JLPL Galaxy Heights\nRoad/Street: Sector 66 A\nLocality/Sub Locality: Sector 66A\n"
	pickupPincode = "140308"
)

// ShipmentDraft creates a courier shipment for an order. Order is the order record as
// listed; its shippingAddress feeds the drop details.
type ShipmentDraft struct {
	Order         map[string]any `json:"order" validate:"required"`
	Type          string         `json:"type" validate:"required,oneof=Domestic International"`
	ReferenceType string         `json:"referenceType"`
	Weight        float64        `json:"weight"`
}

func (s *ShipmentDraft) Validate() error {
	s.Type = strings.TrimSpace(s.Type)
	if s.Type == "" {
		s.Type = ShipmentDomestic
	}
	fields := validation.FieldErrors{}
	if err := validation.Struct(s); err != nil {
		fields = validation.FromError(err)
	}
	if s.Weight <= 0 {
		fields.Add("weight", "Please enter valid weight")
	}
	if s.Order != nil && s.orderID() == "" {
		fields.Add("order", "Order identifier is missing.")
	}
	if len(fields) > 0 {
		return fields
	}
	return nil
}

func (s *ShipmentDraft) Target() Target {
	return Target{Collection: "orders", Action: "create_shipment", RecordID: s.orderID()}
}

func (s *ShipmentDraft) Payload() map[string]any {
	international := s.Type == ShipmentInternational
	cod := !international && normalization.AsString(s.Order["paymentMethod"]) == "COD"
	total := s.Order["total"]

	payload := map[string]any{
		"referenceType":   s.ReferenceType,
		"isInternational": international,
		"weight":          s.Weight,
		"isCod":           cod,
		"amount":          total,
	}

	address, _ := normalization.AsMap(s.Order["shippingAddress"])
	line1 := normalization.AsString(address["line1"])
	city := normalization.AsString(address["city"])
	dropAddress := line1 + ", " + city

	if !international {
		payload["pickupName"] = pickupName
		payload["pickupPhone"] = pickupPhone
		payload["pickupCity"] = pickupCity
		payload["pickupState"] = pickupState
		payload["pickupAddress"] = pickupAddress
		payload["pickupPincode"] = pickupPincode
		payload["dropName"] = address["fullName"]
		payload["dropPhone"] = address["mobileNumner"]
		payload["dropAddress"] = dropAddress
		payload["dropCity"] = address["city"]
		payload["dropState"] = address["state"]
		payload["dropPincode"] = address["zip"]
		codAmount := 0.0
		if cod {
			codAmount = normalization.AsFloat64(total)
		}
		payload["codAmount"] = codAmount
		return payload
	}

	payload["currency"] = s.Order["currency"]
	payload["CountryCode"] = "IN"
	payload["dropName"] = address["fullName"]
	payload["dropAddress"] = dropAddress
	payload["countryCode"] = address["countryCode"]
	payload["dropCity"] = orNA(city)
	payload["dropState"] = orNA(normalization.AsString(address["state"]))
	payload["declaredValue"] = total
	return payload
}

func (s *ShipmentDraft) orderID() string {
	return strings.TrimSpace(normalization.Stringify(firstPresent(s.Order, "id", "_id", "orderId")))
}

func firstPresent(record map[string]any, keys ...string) any {
	for _, key := range keys {
		if value, ok := record[key]; ok && value != nil {
			if _, nested := value.(map[string]any); nested {
				continue
			}
			return value
		}
	}
	return nil
}

func orNA(value string) string {
	if value == "" {
		return "N/A"
	}
	return value
}
