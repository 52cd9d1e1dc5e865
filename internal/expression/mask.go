// Package expression rewrites field references inside QGIS style
// expressions so that a web map backend can evaluate them. It works on the
// raw expression text with token-boundary matching rather than a full
// expression grammar; quoted string literals are masked out before any
// substitution runs and restored afterwards.
package expression

import (
	"fmt"
	"regexp"
	"strings"
)

// literalPattern matches a single-quoted string literal. QGIS expression
// literals cannot contain an embedded single quote, so a non-greedy run
// between two quotes is sufficient.
var literalPattern = regexp.MustCompile(`'[^']*'`)

// MaskLiterals replaces every single-quoted literal in expr with a
// positional placeholder of the form $$<index>$$ and returns the masked
// expression together with the removed literals in discovery order.
func MaskLiterals(expr string) (string, []string) {
	var parts []string
	masked := literalPattern.ReplaceAllStringFunc(expr, func(match string) string {
		parts = append(parts, match)
		return fmt.Sprintf("$$%d$$", len(parts)-1)
	})
	return masked, parts
}

// RestoreLiterals reverses MaskLiterals. Each placeholder is replaced at
// most once, in ascending index order, so a literal whose content happens
// to look like a placeholder cannot be expanded twice.
func RestoreLiterals(expr string, parts []string) string {
	for i, part := range parts {
		expr = strings.Replace(expr, fmt.Sprintf("$$%d$$", i), part, 1)
	}
	return expr
}
