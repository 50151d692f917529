package validator

import (
	"log"
	"regexp"

	"github.com/go-playground/validator/v10"

	"admissions_backend/internal/models"
)

var (
	digitsRe       = regexp.MustCompile(`^[0-9]+$`)
	phoneRe        = regexp.MustCompile(`^\+?[0-9][0-9 \-]{6,18}[0-9]$`)
	documentTypeRe = regexp.MustCompile(`^[A-Za-z0-9_]{1,64}$`)
)

func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	mustRegister("is-application-status", validateApplicationStatus)
	mustRegister("is-otp-channel", validateOTPChannel)
	mustRegister("is-document-type", validateDocumentType)
	mustRegister("numeric-code", validateNumericCode)
	mustRegister("phone", validatePhone)
}

// empty values pass; 'required' handles presence

func validateApplicationStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || models.ApplicationStatus(value).Valid()
}

func validateOTPChannel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "", "email", "phone":
		return true
	}
	return false
}

func validateDocumentType(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || documentTypeRe.MatchString(value)
}

func validateNumericCode(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || digitsRe.MatchString(value)
}

func validatePhone(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || phoneRe.MatchString(value)
}

// IsDocumentType is the same rule for values taken from query strings.
func IsDocumentType(value string) bool {
	return documentTypeRe.MatchString(value)
}
