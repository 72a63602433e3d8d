// Package clipboard adapts the system clipboard to the Clipboard port.
package clipboard

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"

	"github.com/ericfisherdev/detectpanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.Clipboard = System{}

// ErrUnsupported is returned when no clipboard utility is available, e.g. on
// a headless Linux host without xclip, xsel or wl-clipboard.
var ErrUnsupported = errors.New("system clipboard unavailable")

// System writes to the OS clipboard.
type System struct{}

// WriteText replaces the clipboard contents with text.
func (System) WriteText(text string) error {
	if clipboard.Unsupported {
		return ErrUnsupported
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}
	return nil
}
