// Package input normalizes user-entered text before it reaches a workspace.
package input

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

var (
	// ErrEmpty is returned when a value is empty after trimming.
	ErrEmpty = errors.New("value must not be empty")

	// ErrTooLong is returned when a value exceeds its length limit.
	ErrTooLong = errors.New("value is too long")
)

const (
	MaxTagLen          = 120
	MaxCategoryNameLen = 60
	MaxSubjectLen      = 2000
)

// Tag trims a custom tag and rejects empty or oversized values.
func Tag(s string) (string, error) {
	return clean(s, MaxTagLen)
}

// CategoryName trims a new category name and rejects empty or oversized values.
func CategoryName(s string) (string, error) {
	return clean(s, MaxCategoryNameLen)
}

// Subject checks the subject length. The subject is otherwise stored
// verbatim; the compiler trims it.
func Subject(s string) (string, error) {
	if n := utf8.RuneCountInString(s); n > MaxSubjectLen {
		return "", fmt.Errorf("%w: subject has %d characters, limit is %d", ErrTooLong, n, MaxSubjectLen)
	}
	return s, nil
}

func clean(s string, limit int) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrEmpty
	}
	if n := utf8.RuneCountInString(s); n > limit {
		return "", fmt.Errorf("%w: %d characters, limit is %d", ErrTooLong, n, limit)
	}
	return s, nil
}
