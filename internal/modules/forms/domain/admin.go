package domain

import (
	"strings"

	"backofficeWs/internal/shared/validation"
)

// AdminRegistration creates another backoffice administrator.
type AdminRegistration struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	FullName    string `json:"fullName" validate:"required"`
	PhoneNumber string `json:"phoneNumber" validate:"required,phone10"`
}

func (a *AdminRegistration) Validate() error {
	a.Email = strings.TrimSpace(a.Email)
	a.FullName = strings.TrimSpace(a.FullName)
	a.PhoneNumber = strings.TrimSpace(a.PhoneNumber)
	return validation.Struct(a)
}

func (a *AdminRegistration) Target() Target {
	return directPost(adminRegisterPath)
}

func (a *AdminRegistration) Payload() map[string]any {
	return map[string]any{
		"email":       a.Email,
		"password":    a.Password,
		"fullName":    a.FullName,
		"phoneNumber": a.PhoneNumber,
	}
}
