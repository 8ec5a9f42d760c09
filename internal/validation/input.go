package validation

import (
	"fmt"
	"net/mail"
	"unicode"
	"unicode/utf8"
)

// Input length limits to prevent resource exhaustion
const (
	MaxIdentifierLength = 255
	MaxEmailLength      = 320     // RFC 5321: 64 chars (local) + 1 (@) + 255 (domain) = 320
	MaxPhoneLength      = 20      // International E.164 format
	MaxJSONPayload      = 1048576 // 1MB for JSON payloads
	MaxURLLength        = 2048    // Standard browser URL limit
)

// ValidateIdentifier checks a resource ID given on the command line. Any
// printable characters are allowed; they are percent-encoded later.
func ValidateIdentifier(field, id string) error {
	if id == "" {
		return fmt.Errorf("%s cannot be empty", field)
	}
	if length := utf8.RuneCountInString(id); length > MaxIdentifierLength {
		return fmt.Errorf("%s exceeds maximum length of %d characters (got %d)", field, MaxIdentifierLength, length)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return fmt.Errorf("%s contains a control character", field)
		}
	}
	return nil
}

// ValidateJSONPayload validates JSON payload size
func ValidateJSONPayload(payload []byte) error {
	if len(payload) == 0 {
		return fmt.Errorf("JSON payload cannot be empty")
	}
	if len(payload) > MaxJSONPayload {
		return fmt.Errorf("JSON payload exceeds maximum size of %d bytes (got %d)", MaxJSONPayload, len(payload))
	}
	return nil
}

// ValidateEmail validates length and format of an email address.
func ValidateEmail(email string) error {
	if length := utf8.RuneCountInString(email); length > MaxEmailLength {
		return fmt.Errorf("email exceeds maximum length of %d characters (got %d)", MaxEmailLength, length)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("invalid email format: %w", err)
	}
	return nil
}

// ValidatePhone validates length and format of a phone number.
// Allows digits, spaces, dashes, parentheses, and leading +.
func ValidatePhone(phone string) error {
	if phone == "" {
		return fmt.Errorf("phone number cannot be empty")
	}
	if length := utf8.RuneCountInString(phone); length > MaxPhoneLength {
		return fmt.Errorf("phone number exceeds maximum length of %d characters (got %d)", MaxPhoneLength, length)
	}
	digits := 0
	for i, r := range phone {
		switch {
		case r == '+' && i == 0:
		case r >= '0' && r <= '9':
			digits++
		case r == ' ' || r == '-' || r == '(' || r == ')':
		default:
			return fmt.Errorf("invalid phone format: contains invalid character '%c'", r)
		}
	}
	if digits == 0 {
		return fmt.Errorf("invalid phone format: no digits")
	}
	return nil
}
