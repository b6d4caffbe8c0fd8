// Package format renders history items for protocol replies and logs.
package format

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Expand substitutes a list format: %1 becomes the item text and %2 the
// row number. Substituted text is not rescanned, so placeholders inside
// an item's text come out literally.
func Expand(format, text string, row int) string {
	return strings.NewReplacer("%1", text, "%2", strconv.Itoa(row)).Replace(format)
}

// Preview flattens item text to a single truncated line for log output.
func Preview(text string, maxLen int) string {
	flat := strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(text)
	return TruncateText(flat, maxLen)
}

// TruncateText truncates text to maxLen runes with an ellipsis.
func TruncateText(text string, maxLen int) string {
	if maxLen <= 0 {
		return text
	}

	if utf8.RuneCountInString(text) <= maxLen {
		return text
	}

	runes := []rune(text)
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}

	return string(runes[:maxLen-3]) + "..."
}
