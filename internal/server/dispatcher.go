// Package server hosts the single running instance: the command
// dispatcher, the Unix socket endpoint secondary invocations connect
// to, and the client those invocations use.
package server

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/poa00/copyqd/internal/protocol"
	"github.com/poa00/copyqd/internal/ui"
	"github.com/poa00/copyqd/pkg/format"
)

// History is the facade contract the dispatcher drives. Every command
// effect on the clipboard history goes through it.
type History interface {
	CheckClipboard()
	Len() int
	ItemText(row int) string
	SelectedText() string
	SetCurrent(row int)
	Add(text string, selectAfter bool)
	Remove()
	MoveToClipboard(row int)
	OpenEditor()
	FilterItems(pattern string)
	ClearFilter()
}

// Actions runs action commands against item text.
type Actions interface {
	Run(ctx context.Context, command, input, separator string) ([]string, error)
}

// Dispatcher executes one decoded command message at a time against
// the history facade and the presenter. Dispatches are serialized, so
// the facade sees a single logical writer.
type Dispatcher struct {
	mu        sync.Mutex
	history   History
	presenter ui.Presenter
	actions   Actions
	quit      func()
	quitOnce  sync.Once
	logger    *zap.Logger
}

// DispatcherConfig configures a Dispatcher.
type DispatcherConfig struct {
	History   History
	Presenter ui.Presenter
	Actions   Actions
	// Quit is invoked once when the exit command is dispatched. The
	// reply is still delivered to the client that sent it.
	Quit   func()
	Logger *zap.Logger
}

// NewDispatcher creates a command dispatcher.
func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Dispatcher{
		history:   cfg.History,
		presenter: cfg.Presenter,
		actions:   cfg.Actions,
		quit:      cfg.Quit,
		logger:    logger,
	}
}

// Dispatch decodes an encoded argument message, executes the command
// and returns the encoded reply. Malformed input degrades to the
// unknown command reply; the server never dies on bad messages.
func (d *Dispatcher) Dispatch(raw string) string {
	d.mu.Lock()
	defer d.mu.Unlock()

	args := protocol.Decode(raw)

	// Pick up a copy made just before this command so every branch
	// observes the latest clipboard content.
	d.history.CheckClipboard()

	cmd, err := protocol.Parse(args)
	if err != nil {
		var syntaxErr *protocol.SyntaxError
		if errors.As(err, &syntaxErr) {
			d.logger.Debug("Command syntax error", zap.String("command", syntaxErr.Cmd))
			return protocol.EncodeReply(syntaxErr.Reply())
		}
		return protocol.EncodeReply(unknownReply())
	}

	reply := d.execute(cmd)

	d.logger.Debug("Command dispatched",
		zap.String("command", cmd.Name()),
		zap.Int("exitCode", reply.ExitCode))
	return protocol.EncodeReply(reply)
}

func (d *Dispatcher) execute(cmd protocol.Command) protocol.Reply {
	switch c := cmd.(type) {
	case protocol.ToggleCmd:
		d.presenter.ToggleVisible()
		return protocol.Reply{}

	case protocol.ExitCmd:
		d.requestQuit()
		return protocol.Reply{Text: "Exiting server."}

	case protocol.MenuCmd:
		d.presenter.ShowMenu()
		return protocol.Reply{}

	case protocol.ActionCmd:
		if c.Interactive {
			d.presenter.OpenActionDialog(0)
			return protocol.Reply{}
		}
		d.runAction(c)
		return protocol.Reply{}

	case protocol.AddCmd:
		d.history.Add(c.Text, true)
		return protocol.Reply{}

	case protocol.EditCmd:
		d.history.SetCurrent(c.Row)
		d.history.OpenEditor()
		return protocol.Reply{}

	case protocol.NewCmd:
		d.history.Add(c.Text, false)
		d.history.SetCurrent(0)
		d.history.OpenEditor()
		return protocol.Reply{}

	case protocol.SelectCmd:
		d.history.MoveToClipboard(c.Row)
		return protocol.Reply{}

	case protocol.RemoveCmd:
		for _, row := range c.Rows {
			d.history.SetCurrent(row)
			d.history.Remove()
		}
		return protocol.Reply{}

	case protocol.CountCmd:
		return protocol.Reply{Text: fmt.Sprintf("%d\n", d.history.Len())}

	case protocol.ListCmd:
		return protocol.Reply{Text: d.renderList(c)}

	default:
		return unknownReply()
	}
}

// runAction starts the command in the background; its outputs are
// appended to the history when it finishes. The reply does not wait
// for it.
func (d *Dispatcher) runAction(cmd protocol.ActionCmd) {
	if d.actions == nil {
		d.logger.Warn("No action runner configured")
		return
	}

	input := d.history.ItemText(cmd.Row)
	go func() {
		outputs, err := d.actions.Run(context.Background(), cmd.Command, input, cmd.Separator)
		if err != nil {
			d.logger.Warn("Action command failed", zap.Error(err))
			return
		}
		for _, output := range outputs {
			d.history.Add(output, true)
		}
	}()
}

// renderList expands the list tokens left to right. Row tokens emit the
// row under the format in effect; format tokens replace it.
func (d *Dispatcher) renderList(cmd protocol.ListCmd) string {
	current := protocol.DefaultListFormat

	if len(cmd.Tokens) == 0 {
		return format.Expand(current, d.history.ItemText(0), 0)
	}

	var b strings.Builder
	for _, token := range cmd.Tokens {
		if token.IsRow {
			b.WriteString(format.Expand(current, d.history.ItemText(token.Row), token.Row))
			continue
		}
		current = token.Format
	}
	return b.String()
}

func (d *Dispatcher) requestQuit() {
	d.quitOnce.Do(func() {
		d.logger.Info("Exit requested")
		if d.quit != nil {
			go d.quit()
		}
	})
}

func unknownReply() protocol.Reply {
	return protocol.Reply{
		Text:     protocol.UnknownCommandText,
		ExitCode: protocol.ExitUsage,
	}
}
