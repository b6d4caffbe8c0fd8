package history

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poa00/copyqd/internal/filter"
	"github.com/poa00/copyqd/internal/types"
)

type fakeStore struct {
	mu      sync.Mutex
	items   []*types.HistoryItem
	saves   int
	loadErr error
}

func (s *fakeStore) Save(items []*types.HistoryItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = append([]*types.HistoryItem(nil), items...)
	s.saves++
	return nil
}

func (s *fakeStore) Load() ([]*types.HistoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.items, s.loadErr
}

func (s *fakeStore) saveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.saves
}

type fakeClipboard struct {
	mu     sync.Mutex
	text   string
	err    error
	writes []string
}

func (c *fakeClipboard) ReadText() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.text, c.err
}

func (c *fakeClipboard) WriteText(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.text = text
	c.writes = append(c.writes, text)
	return nil
}

func (c *fakeClipboard) set(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.text = text
}

type fakeEditor struct {
	result string
	err    error
}

func (e *fakeEditor) Edit(ctx context.Context, text string) (string, error) {
	if e.err != nil {
		return "", e.err
	}
	return e.result, nil
}

func newTestFacade(t *testing.T, cfg FacadeConfig) *Facade {
	t.Helper()

	if cfg.Engine == nil {
		engine, err := filter.NewEngine(filter.EngineConfig{
			Mode:            filter.ModeWords,
			CaseInsensitive: true,
		})
		require.NoError(t, err)
		cfg.Engine = engine
	}
	return NewFacade(cfg)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestAddNewestFirst(t *testing.T) {
	f := newTestFacade(t, FacadeConfig{})

	f.Add("first", true)
	f.Add("second", true)

	assert.Equal(t, 2, f.Len())
	assert.Equal(t, "second", f.ItemText(0))
	assert.Equal(t, "first", f.ItemText(1))
	assert.Equal(t, "second", f.SelectedText())
}

func TestAddDeduplicatesByContent(t *testing.T) {
	f := newTestFacade(t, FacadeConfig{})

	f.Add("alpha", true)
	f.Add("beta", true)
	firstID := f.items[1].ID

	f.Add("alpha", true)

	assert.Equal(t, 2, f.Len())
	assert.Equal(t, "alpha", f.ItemText(0))
	assert.Equal(t, "beta", f.ItemText(1))
	assert.Equal(t, firstID, f.items[0].ID, "promoted item keeps its identity")
	assert.Len(t, f.items[0].Occurrences, 2)
}

func TestAddWithoutSelectKeepsSelection(t *testing.T) {
	f := newTestFacade(t, FacadeConfig{})

	f.Add("kept", true)
	f.Add("newer", false)

	assert.Equal(t, "kept", f.SelectedText())
	assert.Equal(t, 1, f.Current())
}

func TestItemTextOutOfRange(t *testing.T) {
	f := newTestFacade(t, FacadeConfig{})
	f.Add("only", true)

	assert.Equal(t, "", f.ItemText(-1))
	assert.Equal(t, "", f.ItemText(1))
	assert.Equal(t, "", f.ItemText(100))
}

func TestSetCurrentClamps(t *testing.T) {
	f := newTestFacade(t, FacadeConfig{})
	f.Add("a", true)
	f.Add("b", true)

	f.SetCurrent(100)
	assert.Equal(t, 1, f.Current())

	f.SetCurrent(-5)
	assert.Equal(t, 0, f.Current())
}

func TestRemoveCurrent(t *testing.T) {
	f := newTestFacade(t, FacadeConfig{})
	f.Add("a", true)
	f.Add("b", true)

	f.SetCurrent(0)
	f.Remove()

	assert.Equal(t, 1, f.Len())
	assert.Equal(t, "a", f.ItemText(0))

	f.Remove()
	assert.Equal(t, 0, f.Len())

	f.Remove()
	assert.Equal(t, 0, f.Len(), "removing from empty history is a no-op")
}

func TestMoveToClipboard(t *testing.T) {
	clip := &fakeClipboard{}
	f := newTestFacade(t, FacadeConfig{Clipboard: clip})

	f.Add("old", true)
	f.Add("new", true)

	f.MoveToClipboard(1)

	assert.Equal(t, "old", f.ItemText(0), "selected row moves to the top")
	assert.Equal(t, []string{"old"}, clip.writes)
	assert.Equal(t, 0, f.Current())
}

func TestMoveToClipboardInvalidRow(t *testing.T) {
	clip := &fakeClipboard{}
	f := newTestFacade(t, FacadeConfig{Clipboard: clip})
	f.Add("only", true)

	f.MoveToClipboard(5)
	f.MoveToClipboard(-1)

	assert.Empty(t, clip.writes)
	assert.Equal(t, "only", f.ItemText(0))
}

func TestCheckClipboard(t *testing.T) {
	clip := &fakeClipboard{}
	f := newTestFacade(t, FacadeConfig{Clipboard: clip})

	clip.set("copied")
	f.CheckClipboard()
	require.Equal(t, 1, f.Len())

	f.CheckClipboard()
	assert.Equal(t, 1, f.Len(), "unchanged clipboard adds nothing")

	clip.set("")
	f.CheckClipboard()
	assert.Equal(t, 1, f.Len(), "empty clipboard adds nothing")

	clip.set("changed")
	f.CheckClipboard()
	assert.Equal(t, 2, f.Len())
	assert.Equal(t, "changed", f.ItemText(0))
}

func TestCheckClipboardReadError(t *testing.T) {
	clip := &fakeClipboard{err: errors.New("no display")}
	f := newTestFacade(t, FacadeConfig{Clipboard: clip})

	f.CheckClipboard()
	assert.Equal(t, 0, f.Len())
}

func TestMaxItemsTrimsTail(t *testing.T) {
	f := newTestFacade(t, FacadeConfig{MaxItems: 3})

	f.Add("one", true)
	f.Add("two", true)
	f.Add("three", true)
	f.Add("four", true)

	assert.Equal(t, 3, f.Len())
	assert.Equal(t, "four", f.ItemText(0))
	assert.Equal(t, "two", f.ItemText(2), "oldest item dropped")
}

func TestFilterItems(t *testing.T) {
	f := newTestFacade(t, FacadeConfig{})

	f.Add("git status", true)
	f.Add("shopping list", true)
	f.Add("git push", true)

	f.FilterItems("git")
	assert.Equal(t, []int{0, 2}, f.VisibleRows())

	f.Add("git rebase", true)
	assert.Equal(t, []int{0, 1, 3}, f.VisibleRows(), "mutations refresh the filter")

	f.ClearFilter()
	assert.Equal(t, []int{0, 1, 2, 3}, f.VisibleRows())
}

func TestFilterRecordsPattern(t *testing.T) {
	patterns := filter.NewHistory(t.TempDir() + "/filter_history.yaml")
	f := newTestFacade(t, FacadeConfig{Patterns: patterns})

	f.Add("anything", true)
	f.FilterItems("secret token")
	f.FilterItems("")

	assert.Equal(t, []string{"secret token"}, patterns.Patterns())
}

func TestPersistsOnMutation(t *testing.T) {
	store := &fakeStore{}
	f := newTestFacade(t, FacadeConfig{Store: store})

	f.Add("persisted", true)
	require.Greater(t, store.saveCount(), 0)

	f.Remove()
	assert.Equal(t, 0, len(store.items))
}

func TestRestore(t *testing.T) {
	store := &fakeStore{}
	seed := newTestFacade(t, FacadeConfig{Store: store})
	seed.Add("old", true)
	seed.Add("new", true)

	f := newTestFacade(t, FacadeConfig{Store: store})
	require.NoError(t, f.Restore())

	assert.Equal(t, 2, f.Len())
	assert.Equal(t, "new", f.ItemText(0))
}

func TestRestoreError(t *testing.T) {
	store := &fakeStore{loadErr: errors.New("corrupt")}
	f := newTestFacade(t, FacadeConfig{Store: store})

	assert.Error(t, f.Restore())
}

func TestOpenEditorReplacesItem(t *testing.T) {
	f := newTestFacade(t, FacadeConfig{Editor: &fakeEditor{result: "edited text"}})
	f.Add("original", true)
	id := f.items[0].ID

	f.OpenEditor()

	waitFor(t, func() bool { return f.ItemText(0) == "edited text" })
	assert.Equal(t, 1, f.Len())

	f.mu.Lock()
	editedID := f.items[0].ID
	f.mu.Unlock()
	assert.Equal(t, id, editedID)
}

func TestOpenEditorWithoutEditor(t *testing.T) {
	f := newTestFacade(t, FacadeConfig{})
	f.Add("original", true)

	f.OpenEditor()

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, "original", f.ItemText(0))
}

func TestApplyEditToRemovedItem(t *testing.T) {
	f := newTestFacade(t, FacadeConfig{})
	f.Add("original", true)

	f.applyEdit("no-such-id", "rescued")

	assert.Equal(t, 2, f.Len())
	assert.Equal(t, "rescued", f.ItemText(0))
}
