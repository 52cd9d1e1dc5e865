package qml

import (
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/qmlfix/qmlfix/internal/expression"
	"github.com/qmlfix/qmlfix/internal/layer"
)

// Rewriter rewrites the field-reference expressions of one style document
// so a web map backend can evaluate them. Two substitutions apply: boolean
// field references become if("field", true, false) conditionals, and
// references to a file/database source's integer primary key become the
// backend's synthetic @id token.
//
// A Rewriter owns its parsed tree and is single use; construct a new one
// per document.
type Rewriter struct {
	source     string
	doc        *Document
	boolFields []string
	pkField    string
	changed    bool
}

// NewRewriter builds a rewriter for the given style document text and
// layer metadata. Malformed XML is not an error: the document simply
// passes through Process unchanged.
func NewRewriter(styleText string, meta *layer.Metadata) (*Rewriter, error) {
	if meta == nil {
		return nil, errors.New("qml: layer metadata must not be nil")
	}

	doc, err := Parse(styleText)
	if err != nil {
		log.Debug().Err(err).Msg("style document did not parse, passing through unchanged")
		doc = &Document{}
	}

	r := &Rewriter{
		source:     styleText,
		doc:        doc,
		boolFields: meta.BoolFields(),
	}
	if pk, ok := meta.PrimaryKeyField(); ok {
		r.pkField = pk
	}
	return r, nil
}

// Process applies every rewrite rule and returns the resulting document
// text. When no rule fired the original text is returned byte for byte, so
// an already-correct document never suffers formatting churn. The boolean
// result reports whether anything changed.
func (r *Rewriter) Process() (string, bool) {
	for _, renderer := range r.doc.ElementsByTag("renderer-v2") {
		switch renderer.Attr("type") {
		case "categorizedSymbol":
			r.rewriteCategories(renderer)
		case "RuleRenderer":
			r.rewriteRuleFilters(renderer)
		}

		r.rewriteLabels()
		r.rewriteDataDefined()
	}

	if !r.changed {
		return r.source, false
	}
	return r.doc.String(), true
}

// rewriteCategories converts boolean categories of a categorized renderer
// to integer categories, mapping true/false values to 1/0.
func (r *Rewriter) rewriteCategories(renderer *Element) {
	for _, category := range renderer.ElementsByTag("category") {
		if category.Attr("type") != "bool" {
			continue
		}

		category.SetAttr("type", "integer")
		switch strings.ToLower(category.Attr("value")) {
		case "true":
			category.SetAttr("value", "1")
		case "false":
			category.SetAttr("value", "0")
		}
		r.changed = true
	}
}

// rewriteRuleFilters applies the primary-key substitution to every
// non-empty rule filter of a rule-based renderer.
func (r *Rewriter) rewriteRuleFilters(renderer *Element) {
	if r.pkField == "" {
		return
	}

	rulesElements := renderer.ElementsByTag("rules")
	if len(rulesElements) == 0 {
		return
	}

	for _, rule := range rulesElements[0].ElementsByTag("rule") {
		filter := rule.Attr("filter")
		if filter == "" {
			continue
		}

		masked, parts := expression.MaskLiterals(filter)
		substituted, ok := expression.SubstitutePrimaryKey(masked, r.pkField)
		if !ok {
			continue
		}
		rule.SetAttr("filter", expression.RestoreLiterals(substituted, parts))
		r.changed = true
	}
}

// rewriteLabels rewrites label field expressions. A change to the
// fieldName attribute also forces isExpression on, since the substituted
// form is always an expression even when the original was a plain field
// name.
func (r *Rewriter) rewriteLabels() {
	for _, textStyle := range r.doc.ElementsByTag("text-style") {
		if !textStyle.HasAttr("fieldName") {
			continue
		}

		raw := textStyle.Attr("fieldName")
		if raw == expression.IDToken {
			continue
		}

		masked, parts := expression.MaskLiterals(raw)
		changed := false

		if r.pkField != "" {
			if substituted, ok := expression.SubstitutePrimaryKey(masked, r.pkField); ok {
				masked = substituted
				changed = true
			}
		}

		for _, field := range r.boolFields {
			if substituted, ok := expression.SubstituteBool(masked, field); ok {
				masked = substituted
				changed = true
			}
		}

		if changed {
			textStyle.SetAttr("fieldName", expression.RestoreLiterals(masked, parts))
			textStyle.SetAttr("isExpression", "1")
			r.changed = true
		}
	}
}

// rewriteDataDefined applies the primary-key substitution to
// data-defined-property expressions.
func (r *Rewriter) rewriteDataDefined() {
	if r.pkField == "" {
		return
	}

	for _, props := range r.doc.ElementsByTag("data_defined_properties") {
		for _, option := range props.ElementsByTag("Option") {
			if option.Attr("name") != "expression" {
				continue
			}

			masked, parts := expression.MaskLiterals(option.Attr("value"))
			substituted, ok := expression.SubstitutePrimaryKey(masked, r.pkField)
			if !ok {
				continue
			}
			option.SetAttr("value", expression.RestoreLiterals(substituted, parts))
			r.changed = true
		}
	}
}
