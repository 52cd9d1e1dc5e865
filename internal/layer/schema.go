package layer

import (
	"embed"
	"encoding/json"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"reflect"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/stoewer/go-strcase"
)

//go:embed layer.go
var layerGoFile embed.FS

// NewSchema generates the JSON schema for metadata files, with field
// descriptions lifted from the Go doc comments in this package.
func NewSchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		KeyNamer: strcase.SnakeCase,
		Namer: func(t reflect.Type) string {
			return strcase.SnakeCase(t.Name())
		},
		ExpandedStruct: true,
	}

	commentMap, err := extractGoComments(reflect.TypeOf(Metadata{}).PkgPath())
	if err != nil {
		return nil, err
	}
	r.CommentMap = commentMap

	return json.MarshalIndent(r.Reflect(&Metadata{}), "", "  ")
}

// extractGoComments maps <pkg>.<Type> and <pkg>.<Type>.<Field> to the doc
// comment text found in the embedded source file.
func extractGoComments(pkg string) (map[string]string, error) {
	commentMap := make(map[string]string)
	fset := token.NewFileSet()
	src, err := layerGoFile.ReadFile("layer.go")
	if err != nil {
		return nil, err
	}

	f, err := parser.ParseFile(fset, "layer.go", src, parser.ParseComments)
	if err != nil {
		return nil, err
	}

	gtxt := ""
	typ := ""
	ast.Inspect(f, func(n ast.Node) bool {
		switch x := n.(type) {
		case *ast.TypeSpec:
			typ = x.Name.String()
			if !ast.IsExported(typ) {
				typ = ""
			} else {
				txt := x.Doc.Text()
				if txt == "" && gtxt != "" {
					txt = gtxt
					gtxt = ""
				}
				commentMap[fmt.Sprintf("%s.%s", pkg, typ)] = strings.TrimSpace(txt)
			}
		case *ast.Field:
			txt := x.Doc.Text()
			if txt == "" {
				txt = x.Comment.Text()
			}
			if typ != "" && txt != "" {
				for _, name := range x.Names {
					if ast.IsExported(name.String()) {
						commentMap[fmt.Sprintf("%s.%s.%s", pkg, typ, name)] = strings.TrimSpace(txt)
					}
				}
			}
		case *ast.GenDecl:
			// remember for the next type
			gtxt = x.Doc.Text()
		}
		return true
	})

	return commentMap, nil
}
