// Package ui defines the presentation collaborators driven by the
// command dispatcher. Window rendering itself lives outside this
// daemon; the headless presenter records and logs the requests so the
// protocol surface stays fully scriptable.
package ui

import (
	"sync"

	"go.uber.org/zap"

	"github.com/poa00/copyqd/pkg/format"
)

const menuPreviewLength = 40

// Presenter receives the window and dialog side effects of commands.
type Presenter interface {
	// ToggleVisible shows or hides the history window.
	ToggleVisible()
	// ShowMenu presents the history context menu.
	ShowMenu()
	// OpenActionDialog opens the interactive action dialog seeded
	// with the given row's text.
	OpenActionDialog(row int)
}

// ItemSource provides the rows a menu presents.
type ItemSource interface {
	ItemText(row int) string
	VisibleRows() []int
}

// HeadlessPresenter implements Presenter without a window system.
type HeadlessPresenter struct {
	items  ItemSource
	logger *zap.Logger

	mu      sync.Mutex
	visible bool
}

// NewHeadlessPresenter creates a presenter that logs presentation
// requests. items may be nil.
func NewHeadlessPresenter(items ItemSource, logger *zap.Logger) *HeadlessPresenter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HeadlessPresenter{
		items:  items,
		logger: logger,
	}
}

// ToggleVisible flips the tracked window visibility.
func (p *HeadlessPresenter) ToggleVisible() {
	p.mu.Lock()
	p.visible = !p.visible
	visible := p.visible
	p.mu.Unlock()

	p.logger.Info("Window visibility toggled", zap.Bool("visible", visible))
}

// Visible reports the tracked window visibility.
func (p *HeadlessPresenter) Visible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.visible
}

// ShowMenu logs the menu request with the currently visible row count.
func (p *HeadlessPresenter) ShowMenu() {
	if p.items == nil {
		p.logger.Info("Menu requested")
		return
	}
	p.logger.Info("Menu requested", zap.Int("rows", len(p.items.VisibleRows())))
}

// OpenActionDialog logs the dialog request with a preview of the row
// it was seeded from.
func (p *HeadlessPresenter) OpenActionDialog(row int) {
	if p.items == nil {
		p.logger.Info("Action dialog requested", zap.Int("row", row))
		return
	}
	p.logger.Info("Action dialog requested",
		zap.Int("row", row),
		zap.String("preview", format.Preview(p.items.ItemText(row), menuPreviewLength)))
}
