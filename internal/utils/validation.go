package utils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	validate.RegisterValidation("phone", validatePhone)
}

// ValidateStruct runs the registered validators and translates the first
// failure to a field-specific user-facing error.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		first := errs[0]
		switch first.Tag() {
		case "required":
			return fmt.Errorf("%s is required", fieldLabel(first.Field()))
		case "email":
			return fmt.Errorf("%s must be a valid email address", fieldLabel(first.Field()))
		case "min":
			return fmt.Errorf("%s must be at least %s characters", fieldLabel(first.Field()), first.Param())
		case "phone":
			return fmt.Errorf("%s must be a valid phone number", fieldLabel(first.Field()))
		default:
			return fmt.Errorf("%s is invalid", fieldLabel(first.Field()))
		}
	}

	return err
}

func validatePhone(fl validator.FieldLevel) bool {
	return IsValidPhone(fl.Field().String())
}

func IsValidPhone(phone string) bool {
	phoneRegex := regexp.MustCompile(`^\+?[0-9\-\s()]{7,20}$`)
	return phoneRegex.MatchString(phone)
}

func IsValidEmail(email string) bool {
	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	return emailRegex.MatchString(email)
}

// fieldLabel turns a Go field name into a readable label, e.g.
// VehicleMake -> "vehicle make".
func fieldLabel(field string) string {
	var words []string
	start := 0
	for i := 1; i < len(field); i++ {
		if field[i] >= 'A' && field[i] <= 'Z' {
			words = append(words, field[start:i])
			start = i
		}
	}
	words = append(words, field[start:])
	return strings.ToLower(strings.Join(words, " "))
}
