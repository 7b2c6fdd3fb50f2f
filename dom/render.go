package dom

import (
	"io"
	"strings"
)

// Render serializes the document tree to w. Attribute values are
// double-quoted and escaped, childless elements collapse to self-closing
// tags, and character references already present in the tree pass through
// unescaped.
func (doc *Document) Render(w io.Writer) error {
	for _, n := range doc.Children {
		if err := n.render(w); err != nil {
			return err
		}
	}
	return nil
}

func (e *Element) render(w io.Writer) error {
	if _, err := io.WriteString(w, "<"+e.Name); err != nil {
		return err
	}
	for _, attr := range e.Attrs {
		if _, err := io.WriteString(w, " "+attr.Key+"=\""+escapeAttr(attr.Val)+"\""); err != nil {
			return err
		}
	}
	if len(e.Children) == 0 {
		_, err := io.WriteString(w, "/>")
		return err
	}
	if _, err := io.WriteString(w, ">"); err != nil {
		return err
	}
	for _, n := range e.Children {
		if err := n.render(w); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "</"+e.Name+">")
	return err
}

func (t *Text) render(w io.Writer) error {
	_, err := io.WriteString(w, escapeText(t.Data))
	return err
}

func (c *CDATA) render(w io.Writer) error {
	if _, err := io.WriteString(w, "<![CDATA["); err != nil {
		return err
	}
	if _, err := io.WriteString(w, c.Data); err != nil {
		return err
	}
	_, err := io.WriteString(w, "]]>")
	return err
}

func (c *Comment) render(w io.Writer) error {
	if _, err := io.WriteString(w, "<!--"); err != nil {
		return err
	}
	if _, err := io.WriteString(w, c.Data); err != nil {
		return err
	}
	_, err := io.WriteString(w, "-->")
	return err
}

func (pi *ProcInst) render(w io.Writer) error {
	if _, err := io.WriteString(w, "<?"+pi.Target); err != nil {
		return err
	}
	for _, attr := range pi.Attrs {
		if _, err := io.WriteString(w, " "+attr.Key+"=\""+escapeAttr(attr.Val)+"\""); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "?>")
	return err
}

func (d *Doctype) render(w io.Writer) error {
	if _, err := io.WriteString(w, "<!DOCTYPE"); err != nil {
		return err
	}
	if _, err := io.WriteString(w, d.Data); err != nil {
		return err
	}
	_, err := io.WriteString(w, ">")
	return err
}

// escapeText escapes character data. An ampersand that begins a well-formed
// character reference is left alone so parsed entities round-trip.
func escapeText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			sb.WriteString("&lt;")
		case '&':
			if isCharRef(s[i:]) {
				sb.WriteByte('&')
			} else {
				sb.WriteString("&amp;")
			}
		default:
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}

// escapeAttr escapes an attribute value for double-quoted serialization.
func escapeAttr(s string) string {
	if !strings.ContainsAny(s, "\"<&") {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			sb.WriteString("&quot;")
		case '<':
			sb.WriteString("&lt;")
		case '&':
			if isCharRef(s[i:]) {
				sb.WriteByte('&')
			} else {
				sb.WriteString("&amp;")
			}
		default:
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}

// isCharRef reports whether s starts with a well-formed character reference:
// &name;, &#digits; or &#xhexdigits;.
func isCharRef(s string) bool {
	if len(s) < 2 || s[0] != '&' {
		return false
	}
	i := 1
	digits := func(c byte) bool { return '0' <= c && c <= '9' }
	if s[i] == '#' {
		i++
		if i < len(s) && (s[i] == 'x' || s[i] == 'X') {
			i++
			digits = func(c byte) bool {
				return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
			}
		}
	} else {
		digits = func(c byte) bool {
			return '0' <= c && c <= '9' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
		}
	}
	start := i
	for i < len(s) && digits(s[i]) {
		i++
	}
	return start < i && i < len(s) && s[i] == ';'
}
