package protocol

import (
	"strconv"
	"strings"

	commonerrors "github.com/AlibekovAA/no-tion/internal/common/errors"
)

type Command string

const (
	CmdConnect       Command = "CONNECT"
	CmdDisconnect    Command = "DISCONNECT"
	CmdCreateNote    Command = "CREATE_NOTE"
	CmdDeleteNote    Command = "DELETE_NOTE"
	CmdListNotes     Command = "LIST_NOTES"
	CmdGetNote       Command = "GET_NOTE"
	CmdUpdateContent Command = "UPDATE_CONTENT"
	CmdUpdateTitle   Command = "UPDATE_TITLE"
)

func (c Command) String() string {
	return string(c)
}

func (c Command) IsValid() bool {
	switch c {
	case CmdConnect, CmdDisconnect, CmdCreateNote, CmdDeleteNote,
		CmdListNotes, CmdGetNote, CmdUpdateContent, CmdUpdateTitle:
		return true
	default:
		return false
	}
}

// Request is one tokenized command line. Tokens includes the command word.
type Request struct {
	Command Command
	Tokens  []string
}

// ParseRequest trims and tokenizes a line. It reports false for lines that
// carry no tokens, which the server ignores without answering.
func ParseRequest(line string) (Request, bool) {
	tokens := Tokenize(strings.TrimSpace(line))
	if len(tokens) == 0 {
		return Request{}, false
	}
	return Request{Command: Command(tokens[0]), Tokens: tokens}, true
}

func (r Request) Arg(i int) string {
	if i+1 >= len(r.Tokens) {
		return ""
	}
	return r.Tokens[i+1]
}

func (r Request) ArgCount() int {
	return len(r.Tokens) - 1
}

// ParseIndex converts a wire index. Any integer is accepted here, range
// checks belong to the store.
func ParseIndex(s string) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, commonerrors.ErrInvalidIndex.WithCause(err)
	}
	return i, nil
}

// Format builds a command line, quoting arguments that contain spaces.
func Format(cmd Command, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, string(cmd))
	for _, a := range args {
		parts = append(parts, Quote(a))
	}
	return strings.Join(parts, " ")
}
