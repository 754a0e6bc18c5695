package domain

import (
	"strings"

	"backofficeWs/internal/shared/validation"
)

// ReturnReview is the edit draft of a return: a plain update, an approval or a rejection.
type ReturnReview struct {
	ReturnID         string `json:"returnId" validate:"required"`
	Decision         string `json:"decision" validate:"required,oneof=update approve reject"`
	Status           string `json:"status" validate:"omitempty,oneof=Pending Processing Approved Rejected Refunded"`
	AdminRemarks     string `json:"adminRemarks"`
	UseInstantRefund bool   `json:"useInstantRefund"`
}

func (r *ReturnReview) Validate() error {
	r.Decision = strings.ToLower(strings.TrimSpace(r.Decision))
	r.Status = strings.TrimSpace(r.Status)
	return validation.Struct(r)
}

func (r *ReturnReview) Target() Target {
	return Target{Collection: "returns", Action: r.Decision, RecordID: strings.TrimSpace(r.ReturnID)}
}

// Payload omits blank remarks and status; the instant refund flag only goes with approvals.
func (r *ReturnReview) Payload() map[string]any {
	payload := map[string]any{}
	setIfNotBlank(payload, "adminRemarks", r.AdminRemarks)
	switch r.Decision {
	case "update":
		setIfNotBlank(payload, "status", r.Status)
	case "approve":
		payload["useInstantRefund"] = r.UseInstantRefund
	}
	return payload
}
