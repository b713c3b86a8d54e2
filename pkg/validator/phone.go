package validator

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrInvalidLength indicates phone number length is not 10 digits
	ErrInvalidLength = errors.New("phone number must be exactly 10 digits")

	// ErrInvalidPrefix indicates phone number doesn't start with a valid Indian mobile prefix
	ErrInvalidPrefix = errors.New("phone number must start with 6, 7, 8, or 9")

	// ErrInvalidFormat indicates phone number contains invalid characters
	ErrInvalidFormat = errors.New("phone number can only contain digits")

	// ErrEmptyPhone indicates phone number is empty
	ErrEmptyPhone = errors.New("phone number cannot be empty")
)

// phoneRegex matches digits only
var phoneRegex = regexp.MustCompile(`^\d+$`)

// PhoneValidator validates Indian mobile numbers for hotel contact details
type PhoneValidator struct{}

// NewPhoneValidator creates a new phone validator instance
func NewPhoneValidator() *PhoneValidator {
	return &PhoneValidator{}
}

// Validate validates an Indian mobile number.
// Accepts formats: 9812345678, +91 98123 45678, 098123-45678.
// Returns the sanitized 10-digit number and an error if invalid.
func (v *PhoneValidator) Validate(phone string) (string, error) {
	if phone == "" {
		return "", ErrEmptyPhone
	}

	sanitized := v.Sanitize(phone)

	if !phoneRegex.MatchString(sanitized) {
		return "", ErrInvalidFormat
	}

	// Strip country code and trunk prefix variants
	if len(sanitized) == 12 && strings.HasPrefix(sanitized, "91") {
		sanitized = sanitized[2:]
	} else if len(sanitized) == 11 && strings.HasPrefix(sanitized, "0") {
		sanitized = sanitized[1:]
	}

	if len(sanitized) != 10 {
		return "", ErrInvalidLength
	}

	// Indian mobile numbers start with 6-9
	if sanitized[0] < '6' || sanitized[0] > '9' {
		return "", ErrInvalidPrefix
	}

	return sanitized, nil
}

// Sanitize removes spaces, dashes, parentheses and a leading plus sign
func (v *PhoneValidator) Sanitize(phone string) string {
	replacer := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", "+", "")
	return replacer.Replace(phone)
}
