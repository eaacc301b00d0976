package protocol

import "strings"

// Tokenize splits a command line on unquoted spaces. A double quote toggles
// quoting and is dropped from the output. Runs of spaces never produce empty
// tokens, so an empty quoted span yields nothing. There is no escaping.
func Tokenize(line string) []string {
	var (
		tokens   []string
		sb       strings.Builder
		inQuotes bool
	)

	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ' ' && !inQuotes:
			if sb.Len() > 0 {
				tokens = append(tokens, sb.String())
				sb.Reset()
			}
		default:
			sb.WriteRune(r)
		}
	}

	if sb.Len() > 0 {
		tokens = append(tokens, sb.String())
	}

	return tokens
}

// Quote wraps s in double quotes when it would otherwise be split. The wire
// format has no escape for '"', so a string containing one cannot be framed;
// callers must reject it before quoting.
func Quote(s string) string {
	if s == "" || strings.ContainsRune(s, ' ') {
		return `"` + s + `"`
	}
	return s
}
