package validate

import (
	"testing"
)

func TestEmail(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "sam@example.com", false},
		{"valid with spaces around", "  sam@example.com ", false},
		{"subdomain", "a.b@mail.example.org", false},
		{"empty string", "", true},
		{"only spaces", "   ", true},
		{"missing at", "sam.example.com", true},
		{"display name", "Sam <sam@example.com>", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Email(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("Email(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestFoodName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid name", "pizza", false},
		{"valid with spaces", "caesar salad", false},
		{"empty string", "", true},
		{"only spaces", "   ", true},
		{"only tabs", "\t\t", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FoodName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("FoodName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
