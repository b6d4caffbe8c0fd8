package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type staticItems struct {
	texts []string
}

func (s *staticItems) ItemText(row int) string {
	if row < 0 || row >= len(s.texts) {
		return ""
	}
	return s.texts[row]
}

func (s *staticItems) VisibleRows() []int {
	rows := make([]int, len(s.texts))
	for i := range rows {
		rows[i] = i
	}
	return rows
}

func TestToggleVisible(t *testing.T) {
	p := NewHeadlessPresenter(nil, nil)

	assert.False(t, p.Visible())
	p.ToggleVisible()
	assert.True(t, p.Visible())
	p.ToggleVisible()
	assert.False(t, p.Visible())
}

func TestShowMenuLogsVisibleRows(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	p := NewHeadlessPresenter(&staticItems{texts: []string{"a", "b"}}, zap.New(core))

	p.ShowMenu()

	entries := logs.FilterMessage("Menu requested").All()
	assert.Len(t, entries, 1)
	assert.Equal(t, int64(2), entries[0].ContextMap()["rows"])
}

func TestOpenActionDialogLogsPreview(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	p := NewHeadlessPresenter(&staticItems{texts: []string{"line one\nline two"}}, zap.New(core))

	p.OpenActionDialog(0)

	entries := logs.FilterMessage("Action dialog requested").All()
	assert.Len(t, entries, 1)
	assert.Equal(t, "line one line two", entries[0].ContextMap()["preview"])
}
