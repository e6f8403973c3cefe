// Package clipboard copies compiled prompts to the local system clipboard
// for the CLI.
package clipboard

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
)

// ErrUnsupported is returned when the host has no usable clipboard utility.
var ErrUnsupported = errors.New("clipboard unavailable on this system")

// writeAll is a package-level variable to allow mocking in tests.
var writeAll = clipboard.WriteAll

// unsupported reports whether the host lacks a clipboard backend.
var unsupported = func() bool { return clipboard.Unsupported }

// Copy writes text to the system clipboard.
func Copy(text string) error {
	if unsupported() {
		return ErrUnsupported
	}
	if err := writeAll(text); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	return nil
}
