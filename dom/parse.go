package dom

import (
	"io"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/xml"
)

// Parse reads an XML document from r and builds its document tree. Stray or
// mismatched end tags and lexer errors are fatal and carry position info.
func Parse(r io.Reader) (*Document, error) {
	z := parse.NewInput(r)
	defer z.Restore()

	l := xml.NewLexer(z)
	doc := &Document{}
	var stack []*Element
	var open *Element  // start tag whose attributes are being lexed
	var pi *ProcInst

	appendNode := func(n Node) {
		if 0 < len(stack) {
			top := stack[len(stack)-1]
			top.Children = append(top.Children, n)
		} else {
			doc.Children = append(doc.Children, n)
		}
	}

	for {
		tt, _ := l.Next()
		switch tt {
		case xml.ErrorToken:
			if l.Err() != io.EOF {
				return nil, l.Err()
			}
			if open != nil || pi != nil {
				return nil, parse.NewErrorLexer(z, "unexpected EOF in tag")
			}
			if 0 < len(stack) {
				return nil, parse.NewErrorLexer(z, "unexpected EOF: unclosed element <%s>", stack[len(stack)-1].Name)
			}
			return doc, nil
		case xml.StartTagToken:
			open = &Element{Name: string(l.Text())}
		case xml.StartTagPIToken:
			pi = &ProcInst{Target: string(l.Text())}
		case xml.AttributeToken:
			attr := Attr{Key: string(l.Text()), Val: unquote(l.AttrVal())}
			if pi != nil {
				pi.Attrs = append(pi.Attrs, attr)
			} else if open != nil {
				open.Attrs = append(open.Attrs, attr)
			}
		case xml.StartTagCloseToken:
			appendNode(open)
			stack = append(stack, open)
			open = nil
		case xml.StartTagCloseVoidToken:
			appendNode(open)
			open = nil
		case xml.StartTagClosePIToken:
			appendNode(pi)
			pi = nil
		case xml.EndTagToken:
			name := string(l.Text())
			if len(stack) == 0 || stack[len(stack)-1].Name != name {
				return nil, parse.NewErrorLexer(z, "unexpected end tag </%s>", name)
			}
			stack = stack[:len(stack)-1]
		case xml.TextToken:
			appendNode(&Text{string(l.Text())})
		case xml.CDATAToken:
			appendNode(&CDATA{string(l.Text())})
		case xml.CommentToken:
			appendNode(&Comment{string(l.Text())})
		case xml.DOCTYPEToken:
			appendNode(&Doctype{string(l.Text())})
		}
	}
}

// unquote strips the surrounding quotes the lexer leaves on attribute values.
func unquote(b []byte) string {
	if 2 <= len(b) && (b[0] == '"' || b[0] == '\'') && b[len(b)-1] == b[0] {
		return string(b[1 : len(b)-1])
	}
	return string(b)
}
