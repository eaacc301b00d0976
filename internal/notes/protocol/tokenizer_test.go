package protocol

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", nil},
		{"only spaces", "    ", nil},
		{"single word", "LIST_NOTES", []string{"LIST_NOTES"}},
		{"two words", "CONNECT bob", []string{"CONNECT", "bob"}},
		{"collapsed spaces", "  CONNECT    bob  ", []string{"CONNECT", "bob"}},
		{"quoted span", `CREATE_NOTE "my shopping list"`, []string{"CREATE_NOTE", "my shopping list"}},
		{"quotes inside word", `a"b c"d`, []string{"ab cd"}},
		{"empty quotes dropped", `UPDATE_TITLE 1 ""`, []string{"UPDATE_TITLE", "1"}},
		{"unterminated quote", `GET "a b`, []string{"GET", "a b"}},
		{"tabs are not delimiters", "a\tb", []string{"a\tb"}},
		{"utf8", `CREATE_NOTE "café crème"`, []string{"CREATE_NOTE", "café crème"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Tokenize(tc.input)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Tokenize(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestFormat_RoundTripsThroughTokenize(t *testing.T) {
	line := Format(CmdUpdateContent, "1", "cat dog elephant")
	if line != `UPDATE_CONTENT 1 "cat dog elephant"` {
		t.Fatalf("unexpected line %q", line)
	}

	req, ok := ParseRequest(line)
	if !ok {
		t.Fatal("expected request")
	}
	if req.Command != CmdUpdateContent || req.Arg(0) != "1" || req.Arg(1) != "cat dog elephant" {
		t.Errorf("unexpected request %+v", req)
	}
}

func TestParseRequest(t *testing.T) {
	if _, ok := ParseRequest("   \r"); ok {
		t.Error("expected blank line to be ignored")
	}

	req, ok := ParseRequest("UPDATE_CONTENT 2 hello   world\r")
	if !ok {
		t.Fatal("expected request")
	}
	if req.ArgCount() != 3 {
		t.Errorf("expected 3 args, got %d", req.ArgCount())
	}
	if req.Arg(1) != "hello" || req.Arg(2) != "world" {
		t.Errorf("expected hello world tokens, got %q %q", req.Arg(1), req.Arg(2))
	}
	if req.Arg(5) != "" {
		t.Error("expected out of range arguments to be empty")
	}
}

func TestParseIndex(t *testing.T) {
	if i, err := ParseIndex("3"); err != nil || i != 3 {
		t.Errorf("expected 3, got %d (%v)", i, err)
	}
	if i, err := ParseIndex("-1"); err != nil || i != -1 {
		t.Errorf("expected -1, got %d (%v)", i, err)
	}
	for _, bad := range []string{"", "one", "1.5", "2x"} {
		if _, err := ParseIndex(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}
