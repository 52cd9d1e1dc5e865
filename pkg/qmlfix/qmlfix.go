// Package qmlfix is the public entry point for rewriting QGIS QML style
// documents for web map backends.
package qmlfix

import (
	"github.com/qmlfix/qmlfix/internal/layer"
	"github.com/qmlfix/qmlfix/internal/qml"
)

// Result is the outcome of rewriting one style document.
type Result struct {
	// Style is the resulting document text. When Changed is false it is
	// byte-identical to the input.
	Style string `json:"style" yaml:"style"`
	// Changed reports whether any rewrite rule fired.
	Changed bool `json:"changed" yaml:"changed"`
}

// Rewrite rewrites one style document against the given layer metadata.
// Malformed style documents pass through unchanged; only missing metadata
// is an error.
func Rewrite(styleText string, meta *layer.Metadata) (Result, error) {
	rewriter, err := qml.NewRewriter(styleText, meta)
	if err != nil {
		return Result{}, err
	}

	style, changed := rewriter.Process()
	return Result{Style: style, Changed: changed}, nil
}
