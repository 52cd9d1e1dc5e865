package expression

import (
	"fmt"
	"regexp"
	"strings"
)

// IDToken is the backend's synthetic row identifier reference. An
// expression consisting solely of this token is already in final form and
// is never processed.
const IDToken = "@id"

// fieldPattern matches a reference to the named field: either the exact
// double-quoted form or a bare occurrence delimited by word boundaries, so
// the field name embedded in a longer identifier is not matched.
func fieldPattern(name string) *regexp.Regexp {
	quoted := regexp.QuoteMeta(name)
	return regexp.MustCompile(`"` + quoted + `"|\b` + quoted + `\b`)
}

// span is a half-open [start, end) byte range within an expression.
type span struct {
	start, end int
}

func (s span) contains(start, end int) bool {
	return start >= s.start && end <= s.end
}

// replaceMatches rewrites every match of pattern in expr with replacement,
// skipping matches for which skip returns true. It reports whether any
// replacement occurred. Matching runs over the original text in one pass,
// so replacement text never re-triggers the pattern.
func replaceMatches(expr string, pattern *regexp.Regexp, replacement string, skip func(start, end int) bool) (string, bool) {
	matches := pattern.FindAllStringIndex(expr, -1)
	if len(matches) == 0 {
		return expr, false
	}

	var out strings.Builder
	last := 0
	replaced := false
	for _, m := range matches {
		if skip != nil && skip(m[0], m[1]) {
			continue
		}
		out.WriteString(expr[last:m[0]])
		out.WriteString(replacement)
		last = m[1]
		replaced = true
	}
	if !replaced {
		return expr, false
	}
	out.WriteString(expr[last:])
	return out.String(), true
}

// SubstitutePrimaryKey replaces every reference to the source primary-key
// field with the backend identifier token. References already part of an
// identifier token are left alone, which keeps the rewrite idempotent even
// when the primary key is literally named "id".
func SubstitutePrimaryKey(expr, pkField string) (string, bool) {
	return replaceMatches(expr, fieldPattern(pkField), IDToken, func(start, end int) bool {
		return start > 0 && expr[start-1] == '@'
	})
}

// BoolConditional returns the backend-side rendering of a boolean field
// reference. The backend has no boolean field type, so the reference is
// coerced through a conditional.
func BoolConditional(field string) string {
	return fmt.Sprintf(`if("%s", true, false)`, field)
}

// SubstituteBool replaces every reference to the named boolean field with
// its conditional form. References already wrapped in the conditional form
// are left alone, so re-running the substitution on its own output is a
// no-op.
func SubstituteBool(expr, field string) (string, bool) {
	conditional := BoolConditional(field)

	var done []span
	for from := 0; ; {
		i := strings.Index(expr[from:], conditional)
		if i < 0 {
			break
		}
		start := from + i
		done = append(done, span{start, start + len(conditional)})
		from = start + len(conditional)
	}

	return replaceMatches(expr, fieldPattern(field), conditional, func(start, end int) bool {
		for _, s := range done {
			if s.contains(start, end) {
				return true
			}
		}
		return false
	})
}
