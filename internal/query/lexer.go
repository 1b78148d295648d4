package query

import (
	"strings"

	"github.com/trustify-project/catalogd/internal/query/token"
)

// escapable is the fixed set of characters that may follow a backslash
// in the DSL (spec.md §4.C): "\x yields literal x for x in this set;
// this is the ONLY escape, any other \x is an error."
const escapable = `&|=!~><\`

// validateEscapes walks s once, confirming every backslash is followed
// by one of the escapable characters. It is the single point where an
// "invalid escape" parse error can be raised.
func validateEscapes(s string) error {
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			continue
		}
		if i+1 >= len(s) {
			return &token.Error{Pos: token.Pos(i), Message: "escape at end of input"}
		}
		if strings.IndexByte(escapable, s[i+1]) < 0 {
			return &token.Error{Pos: token.Pos(i), Message: "invalid escape \\" + string(s[i+1])}
		}
		i++ // skip the escaped character; don't treat it as structural
	}
	return nil
}

// splitUnescaped splits s on occurrences of delim that are not escaped,
// preceded by a validateEscapes pass so every backslash here is known
// to begin a valid two-byte escape pair.
func splitUnescaped(s string, delim byte) []string {
	var parts []string
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++ // skip the escaped byte, it can't be a delimiter
		case delim:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	parts = append(parts, s[start:])
	return parts
}

// unescape strips the backslash from every escape pair in s. Callers
// must have already run validateEscapes over the enclosing string.
func unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func isIdentByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9' || b == '_'
}
