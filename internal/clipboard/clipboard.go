// Package clipboard abstracts the system clipboard and watches it for
// changes.
package clipboard

import (
	"fmt"

	"github.com/atotto/clipboard"
)

// Clipboard reads and writes the system clipboard's text content.
type Clipboard interface {
	ReadText() (string, error)
	WriteText(text string) error
}

// AtottoClipboard is the portable clipboard implementation. It supports
// text content only.
type AtottoClipboard struct{}

// NewClipboard returns the system clipboard.
func NewClipboard() Clipboard {
	return &AtottoClipboard{}
}

func (c *AtottoClipboard) ReadText() (string, error) {
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("failed to read clipboard: %w", err)
	}
	return text, nil
}

func (c *AtottoClipboard) WriteText(text string) error {
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("failed to write clipboard: %w", err)
	}
	return nil
}
