package expense

import (
	"errors"
	"math"
	"strings"
	"time"
)

// MaxTitleLength bounds expense titles.
const MaxTitleLength = 200

// Categories is the closed set shared by server validation and client
// filters.
var Categories = []string{
	"Food",
	"Transport",
	"Shopping",
	"Bills",
	"Entertainment",
	"Healthcare",
	"Education",
	"Travel",
	"Other",
}

var (
	ErrTitleRequired   = errors.New("Title is required and must be a non-empty string")
	ErrTitleTooLong    = errors.New("Title cannot exceed 200 characters")
	ErrCategoryInvalid = errors.New("Category must be one of: Food, Transport, Shopping, Bills, Entertainment, Healthcare, Education, Travel, Other")
	ErrAmountInvalid   = errors.New("Amount must be a positive number")
	ErrDateInvalid     = errors.New("Valid date is required")
)

// ValidCategory reports whether c belongs to the closed category set.
func ValidCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ValidateTitle returns the trimmed title or a field error.
func ValidateTitle(title string) (string, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return "", ErrTitleRequired
	}
	if len(trimmed) > MaxTitleLength {
		return "", ErrTitleTooLong
	}
	return trimmed, nil
}

// ValidateCategory checks membership in the closed set.
func ValidateCategory(category string) error {
	if !ValidCategory(category) {
		return ErrCategoryInvalid
	}
	return nil
}

// ValidateAmount rejects NaN and negative amounts.
func ValidateAmount(amount float64) error {
	if math.IsNaN(amount) || amount < 0 {
		return ErrAmountInvalid
	}
	return nil
}

// ParseDate accepts RFC3339 timestamps or bare calendar dates.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, ErrDateInvalid
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Time{}, ErrDateInvalid
}
