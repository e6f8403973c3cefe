package input

import (
	"errors"
	"strings"
	"testing"
)

func TestTag(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr error
	}{
		{"neon", "neon", nil},
		{"  neon glow  ", "neon glow", nil},
		{"\tNeon\n", "Neon", nil},
		{"", "", ErrEmpty},
		{"   ", "", ErrEmpty},
		{strings.Repeat("x", MaxTagLen), strings.Repeat("x", MaxTagLen), nil},
		{strings.Repeat("x", MaxTagLen+1), "", ErrTooLong},
		{strings.Repeat("é", MaxTagLen), strings.Repeat("é", MaxTagLen), nil},
	}
	for _, tt := range tests {
		got, err := Tag(tt.in)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("Tag(%q) error = %v, want %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("Tag(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCategoryName(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr error
	}{
		{"Mood", "Mood", nil},
		{"  My Camera ", "My Camera", nil},
		{"", "", ErrEmpty},
		{strings.Repeat("m", MaxCategoryNameLen+1), "", ErrTooLong},
	}
	for _, tt := range tests {
		got, err := CategoryName(tt.in)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("CategoryName(%q) error = %v, want %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("CategoryName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSubject_Verbatim(t *testing.T) {
	got, err := Subject("  a fox  ")
	if err != nil {
		t.Fatalf("Subject: %v", err)
	}
	if got != "  a fox  " {
		t.Errorf("Subject = %q, want untrimmed", got)
	}
	if _, err := Subject(strings.Repeat("s", MaxSubjectLen+1)); !errors.Is(err, ErrTooLong) {
		t.Errorf("oversized subject error = %v, want ErrTooLong", err)
	}
	if got, err := Subject(""); err != nil || got != "" {
		t.Errorf("empty subject = %q, %v; want accepted", got, err)
	}
}
