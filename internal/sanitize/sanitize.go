// Package sanitize cleans key expressions received from MCP clients before
// they are parsed, logged, and stored in run history.
package sanitize

import (
	"fmt"
	"regexp"
	"strings"
)

// MaxExpressionLength is the maximum allowed length of one key expression.
const MaxExpressionLength = 256

// MaxExpressions is the maximum number of expressions accepted in one call.
const MaxExpressions = 32

var reWhitespace = regexp.MustCompile(`\s+`)

// Expression strips control characters from a key expression, collapses
// runs of whitespace to a single space, and trims the result. It fails when
// the cleaned expression is longer than MaxExpressionLength bytes.
func Expression(input string) (string, error) {
	if input == "" {
		return "", nil
	}

	s := stripControlChars(input)
	s = reWhitespace.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)

	if len(s) > MaxExpressionLength {
		return "", fmt.Errorf("expression too long: %d bytes (max %d)", len(s), MaxExpressionLength)
	}
	return s, nil
}

// Expressions sanitizes each input and drops the ones left empty. It fails
// when more than MaxExpressions are supplied or any one is too long.
func Expressions(inputs []string) ([]string, error) {
	if len(inputs) > MaxExpressions {
		return nil, fmt.Errorf("too many expressions: %d (max %d)", len(inputs), MaxExpressions)
	}
	out := make([]string, 0, len(inputs))
	for _, in := range inputs {
		s, err := Expression(in)
		if err != nil {
			return nil, err
		}
		if s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

// stripControlChars replaces ASCII control characters (0x00-0x1F, 0x7F)
// with spaces, except null bytes which are dropped.
func stripControlChars(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == 0:
			continue
		case r < 0x20 || r == 0x7f:
			b.WriteByte(' ')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
