package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/habitcards/assistant/internal/models"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Register custom validators for enums
	// These should never fail in normal operation, but panic loudly if they do
	if err := Validate.RegisterValidation("mode", validateMode); err != nil {
		panic(fmt.Sprintf("failed to register mode validator: %v", err))
	}
	if err := Validate.RegisterValidation("priority", validatePriority); err != nil {
		panic(fmt.Sprintf("failed to register priority validator: %v", err))
	}
}

// validateMode validates that a string is a valid Mode enum value
func validateMode(fl validator.FieldLevel) bool {
	return models.Mode(fl.Field().String()).Valid()
}

// validatePriority validates that a string is a valid Priority enum value.
// Empty values are allowed; the item factory substitutes the default.
func validatePriority(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return models.Priority(value).Valid()
}

// SanitizeTranscript sanitizes transcript text by trimming whitespace and
// removing control characters before it is sent to a parsing tier.
func SanitizeTranscript(text string) string {
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

// ValidatePriority validates a Priority string value
func ValidatePriority(value string) error {
	if models.Priority(value).Valid() {
		return nil
	}
	return fmt.Errorf("invalid priority: %s (must be 'High', 'Medium', or 'Low')", value)
}
