package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := []struct {
		name string
		args []string
		want Command
	}{
		{"toggle", []string{"toggle"}, ToggleCmd{}},
		{"exit", []string{"exit"}, ExitCmd{}},
		{"menu", []string{"menu"}, MenuCmd{}},
		{"exit ignores extra args", []string{"exit", "now"}, ExitCmd{}},

		{"empty message", nil, UnknownCmd{}},
		{"unknown name", []string{"bogus"}, UnknownCmd{Cmd: "bogus"}},
		{"case sensitive", []string{"Toggle"}, UnknownCmd{Cmd: "Toggle"}},
		{"no prefix match", []string{"tog"}, UnknownCmd{Cmd: "tog"}},

		{"add joins args", []string{"add", "hello", "world"}, AddCmd{Text: "hello world"}},
		{"add without args", []string{"add"}, AddCmd{}},
		{"new joins args", []string{"new", "draft", "text"}, NewCmd{Text: "draft text"}},
		{"new without args", []string{"new"}, NewCmd{}},

		{"edit default row", []string{"edit"}, EditCmd{}},
		{"edit with row", []string{"edit", "3"}, EditCmd{Row: 3}},
		{"edit consumes non-integer row", []string{"edit", "x"}, EditCmd{Row: 0}},

		{"select default row", []string{"select"}, SelectCmd{}},
		{"select with row", []string{"select", "2"}, SelectCmd{Row: 2}},
		{"select negative row", []string{"select", "-1"}, SelectCmd{Row: -1}},

		{"remove default row", []string{"remove"}, RemoveCmd{Rows: []int{0}}},
		{"remove repeated rows", []string{"remove", "0", "0"}, RemoveCmd{Rows: []int{0, 0}}},
		{"remove stops at non-integer", []string{"remove", "1", "x", "2"}, RemoveCmd{Rows: []int{1}}},
		{"remove non-integer first", []string{"remove", "x"}, RemoveCmd{}},

		{"count", []string{"count"}, CountCmd{}},
		{"length alias", []string{"length"}, CountCmd{}},
		{"size alias", []string{"size"}, CountCmd{}},

		{"action interactive", []string{"action"},
			ActionCmd{Interactive: true, Separator: "\n"}},
		{"action row and command", []string{"action", "0", "cat"},
			ActionCmd{Row: 0, Command: "cat", Separator: "\n"}},
		{"action with separator", []string{"action", "1", "sort", ","},
			ActionCmd{Row: 1, Command: "sort", Separator: ","}},

		{"list without args", []string{"list"}, ListCmd{}},
		{"list single row", []string{"list", "0"},
			ListCmd{Tokens: []ListToken{{Row: 0, IsRow: true}}}},
		{"list format then rows", []string{"list", `%2:%1\n`, "0", "1"},
			ListCmd{Tokens: []ListToken{
				{Format: "%2:%1\n"},
				{Row: 0, IsRow: true},
				{Row: 1, IsRow: true},
			}}},
		{"list interleaved formats", []string{"list", "0", "[%2] %1", "1", "2"},
			ListCmd{Tokens: []ListToken{
				{Row: 0, IsRow: true},
				{Format: "[%2] %1"},
				{Row: 1, IsRow: true},
				{Row: 2, IsRow: true},
			}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.args)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseSyntaxErrors(t *testing.T) {
	cases := []struct {
		name     string
		args     []string
		wantText string
	}{
		{"action single argument", []string{"action", "notanint"},
			"Bad \"action\" command syntax!\naction [row=0] cmd [sep=\"\\n\"]\n"},
		{"action trailing arguments", []string{"action", "0", "cmd", ",", "extra"},
			"Bad \"action\" command syntax!\naction [row=0] cmd [sep=\"\\n\"]\n"},
		{"edit trailing arguments", []string{"edit", "0", "extra"},
			"Bad \"edit\" command syntax!\nedit [row=0]\n"},
		{"edit non-integer row with trailing", []string{"edit", "x", "y"},
			"Bad \"edit\" command syntax!\nedit [row=0]\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cmd, err := Parse(tc.args)
			assert.Nil(t, cmd)

			var serr *SyntaxError
			require.ErrorAs(t, err, &serr)
			reply := serr.Reply()
			assert.Equal(t, tc.wantText, reply.Text)
			assert.Equal(t, ExitUsage, reply.ExitCode)
		})
	}
}

func TestCommandNames(t *testing.T) {
	assert.Equal(t, "toggle", ToggleCmd{}.Name())
	assert.Equal(t, "list", ListCmd{}.Name())
	assert.Equal(t, "bogus", UnknownCmd{Cmd: "bogus"}.Name())
}
