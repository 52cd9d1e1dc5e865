// Package qml parses QGIS QML style documents into a mutable element tree
// and rewrites the expressions they carry for a web map backend. Only the
// attributes the rewriter targets are interpreted; everything else round
// trips untouched.
package qml

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Node is one node of a parsed style document: an element, character data,
// a comment, a processing instruction or a directive such as DOCTYPE.
type Node interface {
	write(sb *strings.Builder)
}

// Attr is a single element attribute. Order is preserved.
type Attr struct {
	Name  string
	Value string
}

// Element is an XML element with ordered attributes and children.
type Element struct {
	Tag      string
	Attrs    []Attr
	Children []Node
}

// Text is character data between elements.
type Text string

// Comment is an XML comment, without the <!-- --> markers.
type Comment string

// ProcInst is a processing instruction such as the <?xml?> declaration.
type ProcInst struct {
	Target string
	Inst   string
}

// Directive is a bare directive such as DOCTYPE, without the <! > markers.
type Directive string

// Document is a parsed style document. A zero Document is valid and
// matches nothing, which is the silent no-op path for malformed input.
type Document struct {
	Nodes []Node
}

// Parse parses a complete XML document. The returned tree preserves node
// order, attribute order and whitespace so that serialization stays close
// to the input.
func Parse(text string) (*Document, error) {
	decoder := xml.NewDecoder(strings.NewReader(text))

	doc := &Document{}
	var stack []*Element

	appendNode := func(n Node) {
		if len(stack) == 0 {
			doc.Nodes = append(doc.Nodes, n)
			return
		}
		top := stack[len(stack)-1]
		top.Children = append(top.Children, n)
	}

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse style document: %w", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			el := &Element{Tag: name(t.Name)}
			for _, a := range t.Attr {
				el.Attrs = append(el.Attrs, Attr{Name: name(a.Name), Value: a.Value})
			}
			appendNode(el)
			stack = append(stack, el)
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("unexpected closing tag </%s>", name(t.Name))
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			appendNode(Text(t))
		case xml.Comment:
			appendNode(Comment(t))
		case xml.ProcInst:
			appendNode(ProcInst{Target: t.Target, Inst: string(t.Inst)})
		case xml.Directive:
			appendNode(Directive(t))
		}
	}

	if len(stack) != 0 {
		return nil, fmt.Errorf("unclosed element <%s>", stack[len(stack)-1].Tag)
	}

	return doc, nil
}

func name(n xml.Name) string {
	if n.Space != "" {
		return n.Space + ":" + n.Local
	}
	return n.Local
}

// String serializes the document back to XML text.
func (d *Document) String() string {
	var sb strings.Builder
	for _, n := range d.Nodes {
		n.write(&sb)
	}
	return sb.String()
}

// ElementsByTag returns every element with the given tag, in document
// order.
func (d *Document) ElementsByTag(tag string) []*Element {
	var found []*Element
	for _, n := range d.Nodes {
		if el, ok := n.(*Element); ok {
			el.collectByTag(tag, &found, true)
		}
	}
	return found
}

// ElementsByTag returns every descendant element with the given tag, in
// document order. The receiver itself is not included.
func (e *Element) ElementsByTag(tag string) []*Element {
	var found []*Element
	e.collectByTag(tag, &found, false)
	return found
}

func (e *Element) collectByTag(tag string, found *[]*Element, includeSelf bool) {
	if includeSelf && e.Tag == tag {
		*found = append(*found, e)
	}
	for _, n := range e.Children {
		if child, ok := n.(*Element); ok {
			child.collectByTag(tag, found, true)
		}
	}
}

// Attr returns the value of the named attribute, or the empty string.
func (e *Element) Attr(attrName string) string {
	for _, a := range e.Attrs {
		if a.Name == attrName {
			return a.Value
		}
	}
	return ""
}

// HasAttr reports whether the named attribute is present.
func (e *Element) HasAttr(attrName string) bool {
	for _, a := range e.Attrs {
		if a.Name == attrName {
			return true
		}
	}
	return false
}

// SetAttr sets the named attribute, appending it if absent.
func (e *Element) SetAttr(attrName, value string) {
	for i, a := range e.Attrs {
		if a.Name == attrName {
			e.Attrs[i].Value = value
			return
		}
	}
	e.Attrs = append(e.Attrs, Attr{Name: attrName, Value: value})
}

func (e *Element) write(sb *strings.Builder) {
	sb.WriteByte('<')
	sb.WriteString(e.Tag)
	for _, a := range e.Attrs {
		sb.WriteByte(' ')
		sb.WriteString(a.Name)
		sb.WriteString(`="`)
		sb.WriteString(escapeAttr(a.Value))
		sb.WriteByte('"')
	}
	if len(e.Children) == 0 {
		sb.WriteString("/>")
		return
	}
	sb.WriteByte('>')
	for _, n := range e.Children {
		n.write(sb)
	}
	sb.WriteString("</")
	sb.WriteString(e.Tag)
	sb.WriteByte('>')
}

func (t Text) write(sb *strings.Builder) {
	sb.WriteString(escapeText(string(t)))
}

func (c Comment) write(sb *strings.Builder) {
	sb.WriteString("<!--")
	sb.WriteString(string(c))
	sb.WriteString("-->")
}

func (p ProcInst) write(sb *strings.Builder) {
	sb.WriteString("<?")
	sb.WriteString(p.Target)
	if p.Inst != "" {
		sb.WriteByte(' ')
		sb.WriteString(p.Inst)
	}
	sb.WriteString("?>")
}

func (d Directive) write(sb *strings.Builder) {
	sb.WriteString("<!")
	sb.WriteString(string(d))
	sb.WriteByte('>')
}

var (
	attrEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"\n", "&#xA;",
		"\t", "&#x9;",
	)
	textEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
	)
)

func escapeAttr(s string) string {
	return attrEscaper.Replace(s)
}

func escapeText(s string) string {
	return textEscaper.Replace(s)
}
