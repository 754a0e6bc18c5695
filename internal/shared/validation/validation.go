package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// FieldErrors maps a JSON field name to the message shown next to it.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	parts := make([]string, 0, len(f))
	for field, msg := range f {
		parts = append(parts, field+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records msg for field unless one is already present.
func (f FieldErrors) Add(field, msg string) {
	if _, exists := f[field]; !exists {
		f[field] = msg
	}
}

var (
	once     sync.Once
	instance *validator.Validate
	digits10 = regexp.MustCompile(`^[0-9]{10}$`)
	nonDigit = regexp.MustCompile(`[^0-9]`)
)

// Validator returns the shared validator, keyed by json tag names and extended with
// the "phone10" tag (exactly ten digits once separators are stripped).
func Validator() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return field.Name
			}
			return name
		})
		_ = v.RegisterValidation("phone10", func(fl validator.FieldLevel) bool {
			return digits10.MatchString(nonDigit.ReplaceAllString(fl.Field().String(), ""))
		})
		instance = v
	})
	return instance
}

// Struct validates dst and returns nil or FieldErrors.
func Struct(dst any) error {
	if err := Validator().Struct(dst); err != nil {
		return FromError(err)
	}
	return nil
}

// FromError converts validator errors into FieldErrors.
func FromError(err error) FieldErrors {
	var existing FieldErrors
	if errors.As(err, &existing) {
		return existing
	}
	out := FieldErrors{}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			out.Add(fe.Field(), messageForTag(fe.Tag(), fe.Param()))
		}
		return out
	}
	out["_"] = "Invalid form data."
	return out
}

func messageForTag(tag, param string) string {
	switch tag {
	case "required":
		return "This field is required."
	case "email":
		return "Please enter a valid email address."
	case "min":
		return "Must be at least " + param + " characters."
	case "gt":
		return "Must be greater than " + param + "."
	case "gte":
		return "Must be at least " + param + "."
	case "oneof":
		return "Must be one of: " + param + "."
	case "phone10":
		return "Phone number must be 10 digits."
	default:
		return "Invalid value."
	}
}
