// Package expr expands compact port expressions of the connectivity list
// grammar. An expression may contain bracketed, pipe-separated alternation
// groups, e.g. A[x|y]B, which expand to the literal port names AxB and AyB.
package expr

import (
	"fmt"
	"strings"

	"github.com/openfpga-tools/fabricgen/internal/fabric"
)

// Expand returns the ordered sequence of literal port names denoted by the
// expression. The first alternation group is substituted and expansion is
// re-applied to each produced string, so multiple groups (including groups
// introduced by a substitution) expand left to right into the full cross
// product. An expression without brackets expands to itself.
func Expand(expression string) ([]string, error) {
	open := strings.IndexByte(expression, '[')
	if open < 0 {
		return []string{expression}, nil
	}

	end, err := matchingBracket(expression, open)
	if err != nil {
		return nil, err
	}

	prefix := expression[:open]
	suffix := expression[end+1:]

	var out []string
	for _, alt := range splitAlternatives(expression[open+1 : end]) {
		expanded, err := Expand(prefix + alt + suffix)
		if err != nil {
			return nil, err
		}
		out = append(out, expanded...)
	}
	return out, nil
}

// matchingBracket returns the index of the ']' closing the '[' at open.
func matchingBracket(s string, open int) (int, error) {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: no closing ] in %q", fabric.ErrMalformedExpression, s)
}

// splitAlternatives splits a group body on pipes at bracket depth zero, so
// nested groups stay intact within their alternative.
func splitAlternatives(body string) []string {
	var (
		alts  []string
		start int
		depth int
	)
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '[':
			depth++
		case ']':
			depth--
		case '|':
			if depth == 0 {
				alts = append(alts, body[start:i])
				start = i + 1
			}
		}
	}
	return append(alts, body[start:])
}
