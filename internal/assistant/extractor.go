package assistant

import (
	"strings"
)

// extractFencedBlock returns the contents of the first ```json fenced block
// in text. A fence that is never closed still yields everything after the
// opening tag; models cut off mid-answer often enough for that to matter.
func extractFencedBlock(text string) (string, bool) {
	idx := strings.Index(text, "```json")
	if idx == -1 {
		return "", false
	}
	rest := text[idx+len("```json"):]
	if end := strings.Index(rest, "```"); end != -1 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest), true
}

// cleanJSON strips the invalid-JSON artifacts models like to emit: // line
// comments, /* */ block comments, and trailing commas before } or ].
// String contents are left untouched.
func cleanJSON(s string) string {
	var out strings.Builder
	out.Grow(len(s))

	inString := false
	escaped := false
	inLineComment := false
	inBlockComment := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if inLineComment {
			if c == '\n' {
				inLineComment = false
				out.WriteByte(c)
			}
			continue
		}
		if inBlockComment {
			if c == '*' && i+1 < len(s) && s[i+1] == '/' {
				inBlockComment = false
				i++
			}
			continue
		}

		if inString {
			out.WriteByte(c)
			if escaped {
				escaped = false
			} else if c == '\\' {
				escaped = true
			} else if c == '"' {
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
			out.WriteByte(c)
		case '/':
			if i+1 < len(s) && s[i+1] == '/' {
				inLineComment = true
				i++
			} else if i+1 < len(s) && s[i+1] == '*' {
				inBlockComment = true
				i++
			} else {
				out.WriteByte(c)
			}
		case ',':
			// Drop the comma when the next non-whitespace closes a
			// container.
			j := i + 1
			for j < len(s) && isJSONSpace(s[j]) {
				j++
			}
			if j < len(s) && (s[j] == '}' || s[j] == ']') {
				continue
			}
			out.WriteByte(c)
		default:
			out.WriteByte(c)
		}
	}

	return out.String()
}

func isJSONSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
