package protocol

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/AlibekovAA/no-tion/internal/note/domain"
)

const (
	okLine       = "OK"
	errorPrefix  = "ERROR "
	notePrefix   = "NOTE "
	lineTerminal = '\n'
)

// Writer encodes server responses. Output is buffered until Flush.
type Writer struct {
	w *bufio.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

func (w *Writer) OK() error {
	return w.line(okLine)
}

func (w *Writer) Error(status int) error {
	return w.line(errorPrefix + strconv.Itoa(status))
}

func (w *Writer) Note(content string) error {
	return w.line(notePrefix + content)
}

// List writes one "<index> <title>" line per entry followed by a blank line.
func (w *Writer) List(entries []domain.Entry) error {
	for _, e := range entries {
		if err := w.line(strconv.Itoa(e.Index) + " " + e.Title); err != nil {
			return err
		}
	}
	return w.line("")
}

func (w *Writer) Flush() error {
	return w.w.Flush()
}

func (w *Writer) line(s string) error {
	if _, err := w.w.WriteString(s); err != nil {
		return err
	}
	return w.w.WriteByte(lineTerminal)
}

type ResponseKind int

const (
	KindRaw ResponseKind = iota
	KindOK
	KindError
	KindNote
	KindEntry
	KindBlank
)

func (k ResponseKind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindError:
		return "error"
	case KindNote:
		return "note"
	case KindEntry:
		return "entry"
	case KindBlank:
		return "blank"
	default:
		return "raw"
	}
}

// Response is one decoded server line. Lines that match no known shape are
// kept verbatim as KindRaw.
type Response struct {
	Kind    ResponseKind
	Status  int
	Content string
	Entry   domain.Entry
	Raw     string
}

func ParseResponse(line string) Response {
	line = strings.TrimRight(line, "\r\n")
	resp := Response{Kind: KindRaw, Raw: line}

	switch {
	case line == "":
		resp.Kind = KindBlank
	case line == okLine:
		resp.Kind = KindOK
	case strings.HasPrefix(line, errorPrefix):
		status, err := strconv.Atoi(strings.TrimPrefix(line, errorPrefix))
		if err == nil {
			resp.Kind = KindError
			resp.Status = status
		}
	case line == strings.TrimSpace(notePrefix):
		resp.Kind = KindNote
	case strings.HasPrefix(line, notePrefix):
		resp.Kind = KindNote
		resp.Content = strings.TrimPrefix(line, notePrefix)
	default:
		if entry, ok := parseEntry(line); ok {
			resp.Kind = KindEntry
			resp.Entry = entry
		}
	}

	return resp
}

func parseEntry(line string) (domain.Entry, bool) {
	idx, title, found := strings.Cut(line, " ")
	if !found || title == "" {
		return domain.Entry{}, false
	}
	i, err := strconv.Atoi(idx)
	if err != nil || i < 1 {
		return domain.Entry{}, false
	}
	return domain.Entry{Index: i, Title: title}, true
}
