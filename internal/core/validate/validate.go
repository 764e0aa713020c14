// Package validate provides shared validation functions.
package validate

import (
	"fmt"
	"net/mail"
	"strings"
)

// Email validates a bare email address such as "sam@example.com".
func Email(addr string) error {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return fmt.Errorf("email is required")
	}

	parsed, err := mail.ParseAddress(addr)
	if err != nil || parsed.Address != addr || parsed.Name != "" {
		return fmt.Errorf("%q is not a valid email address", addr)
	}
	return nil
}

// FoodName validates a food name is non-empty after trimming whitespace.
func FoodName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("food name is required")
	}
	return nil
}
