package cli

import (
	"github.com/spf13/cobra"
)

func newToggleCmd() *cobra.Command {
	return newForwardCmd("toggle", "toggle", "Show or hide the history window")
}

func newExitCmd() *cobra.Command {
	return newForwardCmd("exit", "exit", "Stop the running server")
}

func newMenuCmd() *cobra.Command {
	return newForwardCmd("menu", "menu", "Open the history context menu")
}

func newActionCmd() *cobra.Command {
	return newForwardCmd("action", `action [row=0] cmd [sep="\n"]`,
		"Run a command with an item's text on its input")
}

func newAddCmd() *cobra.Command {
	return newForwardCmd("add", "add text...", "Add a new history item")
}

func newEditCmd() *cobra.Command {
	return newForwardCmd("edit", "edit [row=0]", "Open an item in the external editor")
}

func newNewCmd() *cobra.Command {
	return newForwardCmd("new", "new [text...]", "Add an item and edit it")
}

func newSelectCmd() *cobra.Command {
	return newForwardCmd("select", "select [row=0]", "Move an item's content to the clipboard")
}

func newRemoveCmd() *cobra.Command {
	return newForwardCmd("remove", "remove [rows...]", "Remove items from the history")
}

// newCountCmd keeps the historical length and size spellings working;
// whichever name was typed is the one sent to the server.
func newCountCmd() *cobra.Command {
	cmd := newForwardCmd("count", "count", "Print the number of history items")
	cmd.Aliases = []string{"length", "size"}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return forward(append([]string{cmd.CalledAs()}, args...))
	}
	return cmd
}

func newListCmd() *cobra.Command {
	return newForwardCmd("list", "list [format|rows...]", "Print history items")
}
