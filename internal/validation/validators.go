package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Validate is the shared validator instance.
var Validate *validator.Validate

func init() {
	Validate = validator.New()

	if err := Validate.RegisterValidation("industry_code", validateIndustryCode); err != nil {
		panic(fmt.Sprintf("failed to register industry_code validator: %v", err))
	}
}

// validateIndustryCode accepts the backend's industry code format: an
// uppercase letter followed by digits (e.g. "I56201"), or digits only for
// legacy codes.
func validateIndustryCode(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return false
	}
	for i, r := range value {
		if i == 0 && unicode.IsUpper(r) {
			continue
		}
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// SanitizeText trims whitespace and strips control characters from
// free-form input such as analysis memos.
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}
	return sanitized.String()
}
