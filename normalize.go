package cfgedit

import "strings"

// Normalize turns JSON with comments and trailing commas into strict JSON.
// Line comments become a newline so line numbers survive; block comments
// become one space. String contents are never touched.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	inString, escapeNext := false, false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			b.WriteByte(c)
			switch {
			case escapeNext:
				escapeNext = false
			case c == '\\':
				escapeNext = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch {
		case c == '"':
			inString = true
			b.WriteByte(c)
		case c == '/' && i+1 < len(text) && text[i+1] == '/':
			nl := strings.IndexByte(text[i:], '\n')
			if nl < 0 {
				return b.String()
			}
			b.WriteByte('\n')
			i += nl
		case c == '/' && i+1 < len(text) && text[i+1] == '*':
			b.WriteByte(' ')
			end := strings.Index(text[i+2:], "*/")
			if end < 0 {
				return b.String()
			}
			i += 2 + end + 1
		case c == ',' && closesAfter(text, i+1):
			// trailing comma
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// closesAfter reports whether only whitespace and comments separate pos from
// a closing brace or bracket.
func closesAfter(text string, pos int) bool {
	j := skipInsignificant(text, pos)
	return j < len(text) && (text[j] == '}' || text[j] == ']')
}

// skipInsignificant returns the offset of the next byte that is neither
// whitespace nor part of a comment.
func skipInsignificant(text string, pos int) int {
	for pos < len(text) {
		switch c := text[pos]; {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			pos++
		case c == '/' && pos+1 < len(text) && text[pos+1] == '/':
			nl := strings.IndexByte(text[pos:], '\n')
			if nl < 0 {
				return len(text)
			}
			pos += nl + 1
		case c == '/' && pos+1 < len(text) && text[pos+1] == '*':
			end := strings.Index(text[pos+2:], "*/")
			if end < 0 {
				return len(text)
			}
			pos += 2 + end + 2
		default:
			return pos
		}
	}
	return pos
}

// ValidateJSONC normalizes text and parses the result as strict JSON. The
// normalized text is only used for the check.
func ValidateJSONC(text string) (Value, error) {
	return ParseJSON([]byte(Normalize(text)))
}
