package types

import (
	"time"
)

// HistoryItem is a single text entry in the clipboard history.
type HistoryItem struct {
	ID          string      `json:"id"`
	Text        string      `json:"text"`
	Hash        string      `json:"hash,omitempty"`
	Created     time.Time   `json:"created"`
	Occurrences []time.Time `json:"occurrences,omitempty"`
}

// Equal compares two items by content.
func (it *HistoryItem) Equal(other *HistoryItem) bool {
	if it == nil || other == nil {
		return it == other
	}
	return it.Text == other.Text
}

// Touch records that the same text was copied again at time t.
func (it *HistoryItem) Touch(t time.Time) {
	it.Occurrences = append(it.Occurrences, t)
}
