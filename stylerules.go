package svgtheme

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"github.com/tdewolff/svgtheme/dom"
	"github.com/tdewolff/svgtheme/theme"
)

// UpdateStyleBlock ensures the document's style element exists and contains
// an up-to-date pair of fill/stroke class rules for every color of the
// palette. An existing rule of the form .fill-<name>{fill:#hex;} or
// .stroke-<name>{stroke:#hex;} whose name is in the palette is rewritten in
// place to the palette's hex value; missing rules are appended. All other CSS
// passes through verbatim.
func UpdateStyleBlock(doc *dom.Document, colors theme.Palette) error {
	root := doc.Root()
	if root == nil {
		return errors.New("document has no root element")
	}
	style := styleElement(root)
	if style == nil {
		name := "style"
		if prefix := root.Prefix(); prefix != "" {
			name = prefix + ":style"
		}
		style = &dom.Element{Name: name, Attrs: []dom.Attr{{Key: "type", Val: "text/css"}}}
		style.SetText("")
		root.PrependChild(style)
	}
	style.SetText(upsertRules(style.Text(), colors))
	return nil
}

// styleElement returns the first direct child of root whose local name is
// style, or nil.
func styleElement(root *dom.Element) *dom.Element {
	for _, n := range root.Children {
		if e, ok := n.(*dom.Element); ok && e.LocalName() == "style" {
			return e
		}
	}
	return nil
}

// upsertRules rewrites matching class rules in cssText to the palette's
// colors and appends a fill and stroke rule for every palette color that has
// none yet. Rule presence is tracked per (property, name) pair so repeated
// runs converge instead of accumulating duplicates.
func upsertRules(cssText string, colors theme.Palette) string {
	z := parse.NewInputString(cssText)
	p := css.NewParser(z, false)

	var sb strings.Builder
	seen := map[string]bool{}
	last := 0 // end of the last span written to sb

	atDepth := 0
	multiSel := false // current ruleset has multiple selectors
	candidate := false
	selStart := 0
	var selProp, selName string
	declCount := 0
	var declProp, declHex string

	for {
		start := z.Offset()
		gt, _, data := p.Next()
		if gt == css.ErrorGrammar {
			if p.Err() == io.EOF {
				break
			}
			// the parser recovers after bad grammar, the garbage stays in
			// the verbatim gap and later rules are still matched
			candidate = false
			multiSel = false
			continue
		}
		switch gt {
		case css.BeginAtRuleGrammar:
			atDepth++
		case css.EndAtRuleGrammar:
			atDepth--
		case css.QualifiedRuleGrammar:
			if atDepth == 0 {
				multiSel = true
			}
		case css.BeginRulesetGrammar:
			candidate = false
			if atDepth == 0 && !multiSel {
				selProp, selName = matchClassSelector(p.Values())
				if selProp != "" {
					candidate = true
					selStart = start
					declCount = 0
					declProp, declHex = "", ""
				}
			}
		case css.DeclarationGrammar:
			if candidate {
				declCount++
				declProp = string(data)
				declHex = hashValue(p.Values())
			}
		case css.EndRulesetGrammar:
			if atDepth == 0 {
				if candidate && declCount == 1 && declProp == selProp && declHex != "" {
					if hex, ok := colors[selName]; ok {
						sb.WriteString(cssText[last:selStart])
						// keep the whitespace the parser consumed before the selector
						ws := selStart
						for ws < len(cssText) && isSpace(cssText[ws]) {
							sb.WriteByte(cssText[ws])
							ws++
						}
						fmt.Fprintf(&sb, ".%s-%s{%s:%s;}", selProp, selName, selProp, hex)
						last = z.Offset()
						seen[selProp+"-"+selName] = true
					}
				}
				candidate = false
				multiSel = false
			}
		}
	}
	sb.WriteString(cssText[last:])

	names := make([]string, 0, len(colors))
	for name := range colors {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		hex := colors[name]
		if !seen["fill-"+name] {
			fmt.Fprintf(&sb, "\n.fill-%s{fill:%s;}", name, hex)
		}
		if !seen["stroke-"+name] {
			fmt.Fprintf(&sb, "\n.stroke-%s{stroke:%s;}", name, hex)
		}
	}
	return sb.String()
}

// matchClassSelector matches a selector of the closed rule grammar,
// .fill-<name> or .stroke-<name>, and returns the property and name. It
// returns empty strings for any other selector.
func matchClassSelector(values []css.Token) (string, string) {
	toks := make([]css.Token, 0, 2)
	for _, val := range values {
		if val.TokenType != css.WhitespaceToken {
			toks = append(toks, val)
		}
	}
	if len(toks) != 2 || toks[0].TokenType != css.DelimToken || string(toks[0].Data) != "." || toks[1].TokenType != css.IdentToken {
		return "", ""
	}
	class := string(toks[1].Data)
	for _, prop := range []string{"fill", "stroke"} {
		if strings.HasPrefix(class, prop+"-") && len(prop)+1 < len(class) {
			return prop, class[len(prop)+1:]
		}
	}
	return "", ""
}

// hashValue returns the single #hex value of a declaration, or an empty
// string when the declaration value is anything else.
func hashValue(values []css.Token) string {
	toks := make([]css.Token, 0, 1)
	for _, val := range values {
		if val.TokenType != css.WhitespaceToken {
			toks = append(toks, val)
		}
	}
	if len(toks) != 1 || toks[0].TokenType != css.HashToken {
		return ""
	}
	hex := string(toks[0].Data)
	if len(hex) != 4 && len(hex) != 7 {
		return ""
	}
	for i := 1; i < len(hex); i++ {
		c := hex[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F') {
			return ""
		}
	}
	return hex
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}
