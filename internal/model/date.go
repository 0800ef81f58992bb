package model

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// ValidateDate accepts a date-only string (YYYY-MM-DD) or an RFC 3339 date-time.
func ValidateDate(value string) error {
	if _, err := time.Parse(DateLayout, value); err == nil {
		return nil
	}
	if _, err := time.Parse(time.RFC3339, value); err == nil {
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidDate, value)
}

func validateOptionalDate(value *string) error {
	if value == nil {
		return nil
	}
	return ValidateDate(*value)
}
