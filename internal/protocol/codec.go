// Package protocol defines the wire encoding and the command grammar shared
// by the copyq client and the single running server instance.
//
// A message is a JSON array of strings. The client encodes its command-line
// arguments into one message; the server answers with a two element array
// holding the text to print and the process exit code for the client.
package protocol

import (
	"encoding/json"
	"strconv"
)

// Exit codes carried in replies.
const (
	// ExitOk is the default exit code when a command succeeds.
	ExitOk = 0
	// ExitUsage is returned for unknown commands and syntax errors.
	ExitUsage = 2
)

// Encode serializes an argument sequence into a single wire string. Every
// argument round-trips through Decode unchanged, including empty strings
// and strings containing newlines or JSON metacharacters.
func Encode(args []string) string {
	if args == nil {
		args = []string{}
	}
	data, err := json.Marshal(args)
	if err != nil {
		// Marshal of a []string never fails.
		return "[]"
	}
	return string(data)
}

// Decode parses a wire string back into its argument sequence. Malformed
// input yields nil instead of an error so the server can treat garbage the
// same way as an unknown command.
func Decode(s string) []string {
	var args []string
	if err := json.Unmarshal([]byte(s), &args); err != nil {
		return nil
	}
	return args
}

// Reply is the outcome of one dispatched command: text for the client to
// print and the exit code for its process.
type Reply struct {
	Text     string
	ExitCode int
}

// EncodeReply packs a reply as a [text, code] argument sequence.
func EncodeReply(r Reply) string {
	return Encode([]string{r.Text, strconv.Itoa(r.ExitCode)})
}

// DecodeReply unpacks a reply produced by EncodeReply. Missing fields take
// defaults: no text decodes to the empty string and a missing or garbled
// code decodes to ExitOk.
func DecodeReply(s string) Reply {
	fields := Decode(s)
	r := Reply{ExitCode: ExitOk}
	if len(fields) > 0 {
		r.Text = fields[0]
	}
	if len(fields) > 1 {
		if code, err := strconv.Atoi(fields[1]); err == nil {
			r.ExitCode = code
		}
	}
	return r
}
