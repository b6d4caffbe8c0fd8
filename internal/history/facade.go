// Package history implements the ordered clipboard history that the
// command dispatcher and the clipboard monitor operate on. Row 0 is
// always the newest item.
package history

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/poa00/copyqd/internal/clipboard"
	"github.com/poa00/copyqd/internal/filter"
	"github.com/poa00/copyqd/internal/types"
	"github.com/poa00/copyqd/pkg/format"
	"github.com/poa00/copyqd/pkg/utils"
)

const previewLength = 40

// Store persists the ordered history between runs.
type Store interface {
	Save(items []*types.HistoryItem) error
	Load() ([]*types.HistoryItem, error)
}

// TextEditor runs an external editor over item text and returns the
// edited result once the editor exits.
type TextEditor interface {
	Edit(ctx context.Context, text string) (string, error)
}

// Facade owns the in-memory history and funnels every mutation through
// a single mutex. Commands, the clipboard monitor and editor callbacks
// all go through here.
type Facade struct {
	mu      sync.Mutex
	items   []*types.HistoryItem
	current int
	pattern string
	visible []int

	clipboard clipboard.Clipboard
	store     Store
	engine    *filter.Engine
	patterns  *filter.History
	editor    TextEditor
	logger    *zap.Logger
	maxItems  int
}

// FacadeConfig configures a Facade. Store, Patterns and Editor may be
// nil, which disables persistence, filter pattern history and editing
// respectively.
type FacadeConfig struct {
	Clipboard clipboard.Clipboard
	Store     Store
	Engine    *filter.Engine
	Patterns  *filter.History
	Editor    TextEditor
	Logger    *zap.Logger
	MaxItems  int
}

// NewFacade creates an empty history facade.
func NewFacade(cfg FacadeConfig) *Facade {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Facade{
		clipboard: cfg.Clipboard,
		store:     cfg.Store,
		engine:    cfg.Engine,
		patterns:  cfg.Patterns,
		editor:    cfg.Editor,
		logger:    logger,
		maxItems:  cfg.MaxItems,
	}
}

// Restore loads the persisted history from the store.
func (f *Facade) Restore() error {
	if f.store == nil {
		return nil
	}

	items, err := f.store.Load()
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.items = items
	f.current = 0
	f.trim()

	f.logger.Info("History restored", zap.Int("items", len(f.items)))
	return nil
}

// CheckClipboard reads the system clipboard and records its content as
// the newest item when it differs from row 0. Commands call this before
// executing so a copy made just before the command is never missed.
func (f *Facade) CheckClipboard() {
	if f.clipboard == nil {
		return
	}

	text, err := f.clipboard.ReadText()
	if err != nil {
		f.logger.Debug("Failed to read clipboard", zap.Error(err))
		return
	}

	f.AddClipboardText(text)
}

// AddClipboardText records clipboard content reported by the monitor.
// Empty text and text already at row 0 are ignored.
func (f *Facade) AddClipboardText(text string) {
	if text == "" {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.items) > 0 && f.items[0].Text == text {
		return
	}

	f.add(text, true)
	f.persist()
}

// Len returns the number of history items.
func (f *Facade) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.items)
}

// ItemText returns the text at row, or "" when the row does not exist.
func (f *Facade) ItemText(row int) string {
	f.mu.Lock()
	defer f.mu.Unlock()

	if row < 0 || row >= len(f.items) {
		return ""
	}
	return f.items[row].Text
}

// SelectedText returns the text of the current item.
func (f *Facade) SelectedText() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.items) == 0 {
		return ""
	}
	return f.items[f.current].Text
}

// SetCurrent moves the current row. Out of range rows are clamped.
func (f *Facade) SetCurrent(row int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.current = clampRow(row, len(f.items))
}

// Current returns the current row, 0 when the history is empty.
func (f *Facade) Current() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.current
}

// Add inserts text as the newest item. An item with identical content
// is moved to the top instead of being stored twice. When selectAfter
// is true the new item becomes current, otherwise the current selection
// keeps following the item it pointed at.
func (f *Facade) Add(text string, selectAfter bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.add(text, selectAfter)
	f.persist()
}

// Remove deletes the current item. The selection stays at the same row,
// clamped to the shrunk history.
func (f *Facade) Remove() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.items) == 0 {
		return
	}

	removed := f.items[f.current]
	f.items = append(f.items[:f.current], f.items[f.current+1:]...)
	f.current = clampRow(f.current, len(f.items))
	f.invalidateFilter()
	f.persist()

	f.logger.Debug("Removed history item",
		zap.String("id", removed.ID),
		zap.Int("items", len(f.items)))
}

// MoveToClipboard puts the row's text on the system clipboard and moves
// the item to the top. Invalid rows are ignored.
func (f *Facade) MoveToClipboard(row int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if row < 0 || row >= len(f.items) {
		return
	}

	item := f.items[row]
	f.items = append(f.items[:row], f.items[row+1:]...)
	f.items = append([]*types.HistoryItem{item}, f.items...)
	f.current = 0
	item.Touch(time.Now())
	f.invalidateFilter()
	f.persist()

	if f.clipboard != nil {
		if err := f.clipboard.WriteText(item.Text); err != nil {
			f.logger.Warn("Failed to write clipboard", zap.Error(err))
		}
	}

	f.logger.Debug("Moved item to clipboard",
		zap.String("id", item.ID),
		zap.String("preview", format.Preview(item.Text, previewLength)))
}

// OpenEditor launches the external editor on the current item. The
// editor runs in the background; when it exits with changed content the
// item is updated and moved to the top.
func (f *Facade) OpenEditor() {
	if f.editor == nil {
		f.logger.Warn("No editor configured")
		return
	}

	f.mu.Lock()
	var id, text string
	if len(f.items) > 0 {
		id = f.items[f.current].ID
		text = f.items[f.current].Text
	}
	f.mu.Unlock()

	go func() {
		edited, err := f.editor.Edit(context.Background(), text)
		if err != nil {
			f.logger.Warn("Editor failed", zap.Error(err))
			return
		}
		if edited == text {
			return
		}
		f.applyEdit(id, edited)
	}()
}

// applyEdit replaces the edited item's content. If the item was removed
// while the editor was open, the edited text is added as a new item.
func (f *Facade) applyEdit(id, edited string) {
	if edited == "" {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for i, item := range f.items {
		if item.ID != id {
			continue
		}
		item.Text = edited
		item.Hash = utils.HashText(edited)
		item.Touch(time.Now())
		f.items = append(f.items[:i], f.items[i+1:]...)
		f.items = append([]*types.HistoryItem{item}, f.items...)
		f.current = 0
		f.invalidateFilter()
		f.persist()

		f.logger.Debug("Item edited", zap.String("id", item.ID))
		return
	}

	f.add(edited, true)
	f.persist()
}

// FilterItems computes the visible row set for pattern and records the
// pattern in the filter history.
func (f *Facade) FilterItems(pattern string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.pattern = pattern
	f.refilter()

	if f.patterns != nil && pattern != "" {
		f.patterns.Add(pattern)
		if err := f.patterns.Save(); err != nil {
			f.logger.Warn("Failed to save filter history", zap.Error(err))
		}
	}
}

// ClearFilter makes every row visible again.
func (f *Facade) ClearFilter() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.pattern = ""
	f.visible = nil
}

// VisibleRows returns the rows matching the active filter, every row
// when no filter is set.
func (f *Facade) VisibleRows() []int {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.pattern == "" {
		rows := make([]int, len(f.items))
		for i := range rows {
			rows[i] = i
		}
		return rows
	}

	rows := make([]int, len(f.visible))
	copy(rows, f.visible)
	return rows
}

// Save persists the current history snapshot.
func (f *Facade) Save() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.store == nil {
		return nil
	}
	return f.store.Save(f.items)
}

// add inserts or promotes an item. Caller holds the mutex.
func (f *Facade) add(text string, selectAfter bool) {
	var tracked *types.HistoryItem
	if !selectAfter && len(f.items) > 0 {
		tracked = f.items[f.current]
	}

	now := time.Now()
	hash := utils.HashText(text)
	item := f.takeExisting(hash)
	if item != nil {
		item.Touch(now)
	} else {
		item = &types.HistoryItem{
			ID:          uuid.NewString(),
			Text:        text,
			Hash:        hash,
			Created:     now,
			Occurrences: []time.Time{now},
		}
	}

	f.items = append([]*types.HistoryItem{item}, f.items...)
	f.trim()

	f.current = 0
	if tracked != nil {
		if i := f.indexOf(tracked); i >= 0 {
			f.current = i
		}
	}

	f.invalidateFilter()
	f.logger.Debug("Added history item",
		zap.String("id", item.ID),
		zap.String("preview", format.Preview(text, previewLength)),
		zap.Int("items", len(f.items)))
}

// takeExisting removes and returns the item with the given content
// hash, or nil.
func (f *Facade) takeExisting(hash string) *types.HistoryItem {
	for i, item := range f.items {
		if item.Hash == hash {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return item
		}
	}
	return nil
}

func (f *Facade) indexOf(item *types.HistoryItem) int {
	for i, candidate := range f.items {
		if candidate == item {
			return i
		}
	}
	return -1
}

// trim drops the oldest items past the configured capacity. Caller
// holds the mutex.
func (f *Facade) trim() {
	if f.maxItems <= 0 || len(f.items) <= f.maxItems {
		return
	}

	dropped := len(f.items) - f.maxItems
	f.items = f.items[:f.maxItems]
	f.current = clampRow(f.current, len(f.items))

	f.logger.Debug("Trimmed history", zap.Int("dropped", dropped))
}

// refilter recomputes the visible rows for the active pattern. Caller
// holds the mutex.
func (f *Facade) refilter() {
	if f.pattern == "" || f.engine == nil {
		f.visible = nil
		return
	}

	texts := make([]string, len(f.items))
	for i, item := range f.items {
		texts[i] = item.Text
	}
	f.visible = f.engine.VisibleRows(f.pattern, texts)
}

// invalidateFilter keeps the visible set in sync after a mutation.
// Caller holds the mutex.
func (f *Facade) invalidateFilter() {
	if f.pattern != "" {
		f.refilter()
	}
}

// persist writes the history through the store, logging failures
// instead of propagating them. Caller holds the mutex.
func (f *Facade) persist() {
	if f.store == nil {
		return
	}
	if err := f.store.Save(f.items); err != nil {
		f.logger.Warn("Failed to persist history", zap.Error(err))
	}
}

func clampRow(row, length int) int {
	if length == 0 {
		return 0
	}
	if row < 0 {
		return 0
	}
	if row >= length {
		return length - 1
	}
	return row
}
