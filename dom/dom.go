// Package dom provides a minimal mutable XML document tree for SVG rewriting.
// It parses with the tdewolff/parse XML lexer and serializes back out while
// leaving entity references and unrelated markup untouched.
package dom

import (
	"errors"
	"io"
	"strings"
)

// Node is a node in the document tree.
type Node interface {
	render(w io.Writer) error
}

// Attr is a single element attribute. The value is stored raw, without
// surrounding quotes and with entity references as written.
type Attr struct {
	Key string
	Val string
}

// Document holds the ordered top-level nodes of an XML document: in
// well-formed input an optional XML declaration, doctype and comments,
// and exactly one root element.
type Document struct {
	Children []Node
}

// Element is an XML element with its name as written (prefix preserved),
// attributes in document order and child nodes.
type Element struct {
	Name     string
	Attrs    []Attr
	Children []Node
}

// Text is character data between tags, stored raw.
type Text struct {
	Data string
}

// CDATA is a CDATA section, stored without the delimiters.
type CDATA struct {
	Data string
}

// Comment is a comment, stored without the delimiters.
type Comment struct {
	Data string
}

// ProcInst is a processing instruction such as the XML declaration.
type ProcInst struct {
	Target string
	Attrs  []Attr
}

// Doctype is a DOCTYPE declaration, stored raw without the <!DOCTYPE prefix
// and closing bracket.
type Doctype struct {
	Data string
}

// Root returns the document's root element, or nil for an empty document.
func (doc *Document) Root() *Element {
	for _, n := range doc.Children {
		if e, ok := n.(*Element); ok {
			return e
		}
	}
	return nil
}

// ElementByID returns the first element in document order whose id attribute
// equals id, or nil if there is none.
func (doc *Document) ElementByID(id string) *Element {
	var found *Element
	_ = doc.Walk(func(e *Element) error {
		if found == nil {
			if v, ok := e.Attr("id"); ok && v == id {
				found = e
				return errStopWalk
			}
		}
		return nil
	})
	return found
}

var errStopWalk = errors.New("stop walk") // sentinel, never returned to the caller

// Walk calls fn for every element in preorder document order.
func (doc *Document) Walk(fn func(*Element) error) error {
	for _, n := range doc.Children {
		if e, ok := n.(*Element); ok {
			if err := e.walk(fn); err != nil {
				if err == errStopWalk {
					return nil
				}
				return err
			}
		}
	}
	return nil
}

func (e *Element) walk(fn func(*Element) error) error {
	if err := fn(e); err != nil {
		return err
	}
	for _, n := range e.Children {
		if child, ok := n.(*Element); ok {
			if err := child.walk(fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// Attr returns the value of the attribute key and whether it exists.
func (e *Element) Attr(key string) (string, bool) {
	for _, attr := range e.Attrs {
		if attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}

// SetAttr sets the attribute key to val, updating it in place when it exists
// and appending it otherwise.
func (e *Element) SetAttr(key, val string) {
	for i, attr := range e.Attrs {
		if attr.Key == key {
			e.Attrs[i].Val = val
			return
		}
	}
	e.Attrs = append(e.Attrs, Attr{key, val})
}

// DelAttr removes the attribute key if it exists.
func (e *Element) DelAttr(key string) {
	for i, attr := range e.Attrs {
		if attr.Key == key {
			e.Attrs = append(e.Attrs[:i], e.Attrs[i+1:]...)
			return
		}
	}
}

// PrependChild inserts n as the element's first child.
func (e *Element) PrependChild(n Node) {
	e.Children = append([]Node{n}, e.Children...)
}

// AppendChild adds n as the element's last child.
func (e *Element) AppendChild(n Node) {
	e.Children = append(e.Children, n)
}

// Text returns the concatenated character data of the element's direct Text
// and CDATA children.
func (e *Element) Text() string {
	var sb strings.Builder
	for _, n := range e.Children {
		switch t := n.(type) {
		case *Text:
			sb.WriteString(t.Data)
		case *CDATA:
			sb.WriteString(t.Data)
		}
	}
	return sb.String()
}

// SetText replaces the element's children with a single text node.
func (e *Element) SetText(s string) {
	e.Children = []Node{&Text{s}}
}

// LocalName returns the element name without its namespace prefix.
func (e *Element) LocalName() string {
	if i := strings.IndexByte(e.Name, ':'); 0 <= i {
		return e.Name[i+1:]
	}
	return e.Name
}

// Prefix returns the element name's namespace prefix, or an empty string.
func (e *Element) Prefix() string {
	if i := strings.IndexByte(e.Name, ':'); 0 <= i {
		return e.Name[:i]
	}
	return ""
}
