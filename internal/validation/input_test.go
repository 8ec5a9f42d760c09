package validation

import (
	"strings"
	"testing"
)

func TestValidateIdentifier(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"simple", "ord_123", false},
		{"padding and symbols", "AB==/x y#", false},
		{"unicode", "café", false},
		{"empty", "", true},
		{"control character", "ord\n123", true},
		{"too long", strings.Repeat("a", MaxIdentifierLength+1), true},
		{"at limit", strings.Repeat("é", MaxIdentifierLength), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIdentifier("order ID", tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateIdentifier(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
		})
	}
}

func TestValidateJSONPayload(t *testing.T) {
	if err := ValidateJSONPayload([]byte(`{"a":1}`)); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateJSONPayload(nil); err == nil {
		t.Error("expected error for empty payload")
	}
	big := make([]byte, MaxJSONPayload+1)
	if err := ValidateJSONPayload(big); err == nil || !strings.Contains(err.Error(), "maximum size") {
		t.Errorf("expected size error, got %v", err)
	}
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email   string
		wantErr bool
	}{
		{"ops@example.com", false},
		{"Ops Team <ops@example.com>", false},
		{"not-an-email", true},
		{"", true},
		{strings.Repeat("a", MaxEmailLength) + "@example.com", true},
	}
	for _, tt := range tests {
		err := ValidateEmail(tt.email)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateEmail(%q) error = %v, wantErr %v", tt.email, err, tt.wantErr)
		}
	}
}

func TestValidatePhone(t *testing.T) {
	tests := []struct {
		phone   string
		wantErr bool
	}{
		{"+1 (555) 123-4567", false},
		{"5551234567", false},
		{"", true},
		{"+", true},
		{"555-CALL", true},
		{"1+555", true},
		{"+123456789012345678901", true},
	}
	for _, tt := range tests {
		err := ValidatePhone(tt.phone)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidatePhone(%q) error = %v, wantErr %v", tt.phone, err, tt.wantErr)
		}
	}
}
