package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultListFormat is applied to list output until a format argument
// overrides it. %1 expands to the item text and %2 to the row number.
const DefaultListFormat = "%1\n"

// DefaultActionSeparator splits action command output into new items.
const DefaultActionSeparator = "\n"

// UnknownCommandText is the reply sent for command names outside the
// table, including the empty message.
const UnknownCommandText = "Unknown command.\n"

// Command is one parsed protocol command, ready to be executed by the
// dispatcher.
type Command interface {
	// Name returns the protocol spelling of the command.
	Name() string
}

// ToggleCmd shows or hides the main window.
type ToggleCmd struct{}

// ExitCmd terminates the server once the reply is delivered.
type ExitCmd struct{}

// MenuCmd opens the tray context menu.
type MenuCmd struct{}

// ActionCmd runs a shell command on an item's text, or opens the action
// dialog seeded from Row when Interactive is set.
type ActionCmd struct {
	Row         int
	Command     string
	Separator   string
	Interactive bool
}

// AddCmd appends a new item holding Text and selects it.
type AddCmd struct {
	Text string
}

// EditCmd opens the editor on the item at Row.
type EditCmd struct {
	Row int
}

// NewCmd creates an item holding Text without selecting it, then opens
// the editor on it.
type NewCmd struct {
	Text string
}

// SelectCmd moves the item at Row back into the system clipboard.
type SelectCmd struct {
	Row int
}

// RemoveCmd deletes the listed rows one at a time, each row resolved
// against the history as it shrinks.
type RemoveCmd struct {
	Rows []int
}

// CountCmd reports the number of items.
type CountCmd struct{}

// ListCmd prints rows using interleaved format and row arguments.
type ListCmd struct {
	Tokens []ListToken
}

// ListToken is one argument of the list command: either a row to print or
// a format taking effect for the rows after it.
type ListToken struct {
	Row    int
	Format string
	IsRow  bool
}

// UnknownCmd is any command name outside the table, including the empty
// message.
type UnknownCmd struct {
	Cmd string
}

func (ToggleCmd) Name() string    { return "toggle" }
func (ExitCmd) Name() string      { return "exit" }
func (MenuCmd) Name() string      { return "menu" }
func (ActionCmd) Name() string    { return "action" }
func (AddCmd) Name() string       { return "add" }
func (EditCmd) Name() string      { return "edit" }
func (NewCmd) Name() string       { return "new" }
func (SelectCmd) Name() string    { return "select" }
func (RemoveCmd) Name() string    { return "remove" }
func (CountCmd) Name() string     { return "count" }
func (ListCmd) Name() string      { return "list" }
func (c UnknownCmd) Name() string { return c.Cmd }

// SyntaxError reports malformed arguments for a known command. Its reply
// carries the usage line clients print.
type SyntaxError struct {
	Cmd   string
	Usage string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("bad %q command syntax", e.Cmd)
}

// Reply renders the error the way the server reports it to clients.
func (e *SyntaxError) Reply() Reply {
	return Reply{
		Text:     fmt.Sprintf("Bad \"%s\" command syntax!\n%s", e.Cmd, e.Usage),
		ExitCode: ExitUsage,
	}
}

var (
	errActionSyntax = &SyntaxError{Cmd: "action", Usage: "action [row=0] cmd [sep=\"\\n\"]\n"}
	errEditSyntax   = &SyntaxError{Cmd: "edit", Usage: "edit [row=0]\n"}
)

// cursor walks an argument list left to right while parsers consume
// command parameters.
type cursor struct {
	args []string
	pos  int
}

func (c *cursor) empty() bool {
	return c.pos >= len(c.args)
}

// next pops the head argument.
func (c *cursor) next() (string, bool) {
	if c.empty() {
		return "", false
	}
	arg := c.args[c.pos]
	c.pos++
	return arg, true
}

// nextInt pops the head argument only when it parses as an integer.
func (c *cursor) nextInt() (int, bool) {
	if c.empty() {
		return 0, false
	}
	row, err := strconv.Atoi(c.args[c.pos])
	if err != nil {
		return 0, false
	}
	c.pos++
	return row, true
}

// row consumes an optional leading row argument. No remaining arguments
// yield def; otherwise the head argument is consumed and a non-integer
// falls back to def.
func (c *cursor) row(def int) int {
	arg, ok := c.next()
	if !ok {
		return def
	}
	if row, err := strconv.Atoi(arg); err == nil {
		return row
	}
	return def
}

// rest returns every argument not yet consumed.
func (c *cursor) rest() []string {
	return c.args[c.pos:]
}

// parseFunc turns the arguments after a command name into its typed
// command.
type parseFunc func(c *cursor) (Command, error)

// commandTable maps protocol spellings to their argument parsers. Lookup
// is exact and case sensitive; length, count and size are aliases.
var commandTable = map[string]parseFunc{
	"toggle": parseToggle,
	"exit":   parseExit,
	"menu":   parseMenu,
	"action": parseAction,
	"add":    parseAdd,
	"edit":   parseEdit,
	"new":    parseNew,
	"select": parseSelect,
	"remove": parseRemove,
	"length": parseCount,
	"count":  parseCount,
	"size":   parseCount,
	"list":   parseList,
}

// Parse turns a decoded argument sequence into its typed command. The
// first argument names the command; an empty sequence or a name outside
// the table parses to UnknownCmd. A non-nil error is always a
// *SyntaxError.
func Parse(args []string) (Command, error) {
	if len(args) == 0 {
		return UnknownCmd{}, nil
	}
	name, rest := args[0], args[1:]
	parse, ok := commandTable[name]
	if !ok {
		return UnknownCmd{Cmd: name}, nil
	}
	return parse(&cursor{args: rest})
}

func parseToggle(*cursor) (Command, error) { return ToggleCmd{}, nil }
func parseExit(*cursor) (Command, error)   { return ExitCmd{}, nil }
func parseMenu(*cursor) (Command, error)   { return MenuCmd{}, nil }
func parseCount(*cursor) (Command, error)  { return CountCmd{}, nil }

func parseAction(c *cursor) (Command, error) {
	if c.empty() {
		return ActionCmd{Interactive: true, Separator: DefaultActionSeparator}, nil
	}
	row := c.row(0)
	cmd, ok := c.next()
	if !ok {
		return nil, errActionSyntax
	}
	sep, ok := c.next()
	if !ok {
		sep = DefaultActionSeparator
	}
	if !c.empty() {
		return nil, errActionSyntax
	}
	return ActionCmd{Row: row, Command: cmd, Separator: sep}, nil
}

func parseAdd(c *cursor) (Command, error) {
	return AddCmd{Text: strings.Join(c.rest(), " ")}, nil
}

func parseEdit(c *cursor) (Command, error) {
	row := c.row(0)
	if !c.empty() {
		return nil, errEditSyntax
	}
	return EditCmd{Row: row}, nil
}

func parseNew(c *cursor) (Command, error) {
	return NewCmd{Text: strings.Join(c.rest(), " ")}, nil
}

func parseSelect(c *cursor) (Command, error) {
	return SelectCmd{Row: c.row(0)}, nil
}

func parseRemove(c *cursor) (Command, error) {
	if c.empty() {
		return RemoveCmd{Rows: []int{0}}, nil
	}
	var rows []int
	for {
		row, ok := c.nextInt()
		if !ok {
			break
		}
		rows = append(rows, row)
	}
	return RemoveCmd{Rows: rows}, nil
}

func parseList(c *cursor) (Command, error) {
	var tokens []ListToken
	for !c.empty() {
		if row, ok := c.nextInt(); ok {
			tokens = append(tokens, ListToken{Row: row, IsRow: true})
			continue
		}
		arg, _ := c.next()
		tokens = append(tokens, ListToken{Format: unescapeFormat(arg)})
	}
	return ListCmd{Tokens: tokens}, nil
}

// unescapeFormat turns literal "\n" sequences in a format argument into
// real newlines, since shells make those hard to pass directly.
func unescapeFormat(format string) string {
	return strings.ReplaceAll(format, `\n`, "\n")
}
