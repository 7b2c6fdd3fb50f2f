package svgtheme

import (
	"fmt"
	"io"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"github.com/tdewolff/svgtheme/dom"
)

var markerProps = map[string]bool{
	"marker-start": true,
	"marker-mid":   true,
	"marker-end":   true,
}

// PropagateMarkers copies fill- and stroke-prefixed classes of elements that
// reference markers through marker-start/mid/end style declarations onto the
// referenced marker elements. Classes accumulate on the marker in document
// order across multiple references. With forceFill enabled a referencing
// element that contributes at least one class also forces fill-<name> onto
// the marker, where name is the text after the first dash of the first
// contributed class.
func PropagateMarkers(doc *dom.Document, forceFill bool) error {
	return doc.Walk(func(e *dom.Element) error {
		style, ok := e.Attr("style")
		if !ok {
			return nil
		}
		class, ok := e.Attr("class")
		if !ok {
			return nil
		}
		ids, err := markerRefs(style)
		if err != nil {
			return fmt.Errorf("element <%s>: malformed style attribute: %w", e.Name, err)
		}
		if len(ids) == 0 {
			return nil
		}

		var contributed []string
		for _, c := range strings.Fields(class) {
			if strings.HasPrefix(c, "fill-") || strings.HasPrefix(c, "stroke-") {
				contributed = append(contributed, c)
			}
		}
		for _, id := range ids {
			marker := doc.ElementByID(id)
			if marker == nil {
				return fmt.Errorf("%w: %q", ErrMarkerNotFound, id)
			}
			classes := strings.Fields(classAttr(marker))
			for _, c := range contributed {
				classes = addClass(classes, c)
			}
			if forceFill && 0 < len(contributed) {
				if i := strings.IndexByte(contributed[0], '-'); 0 <= i {
					classes = addClass(classes, "fill-"+contributed[0][i+1:])
				}
			}
			if 0 < len(classes) {
				marker.SetAttr("class", strings.Join(classes, " "))
			}
		}
		return nil
	})
}

// markerRefs returns the fragment ids of all marker-start/mid/end
// declarations with an unquoted url(#id) value, in declaration order.
func markerRefs(style string) ([]string, error) {
	z := parse.NewInputString(style)
	p := css.NewParser(z, true)
	var ids []string
	for {
		gt, _, data := p.Next()
		if gt == css.ErrorGrammar {
			if p.Err() == io.EOF {
				return ids, nil
			}
			return nil, p.Err()
		}
		if gt != css.DeclarationGrammar || !markerProps[string(data)] {
			continue
		}
		for _, val := range p.Values() {
			if val.TokenType == css.URLToken {
				if id, ok := fragmentID(string(val.Data)); ok {
					ids = append(ids, id)
				}
			}
		}
	}
}

// fragmentID extracts id from an unquoted url(#id) token value.
func fragmentID(url string) (string, bool) {
	if len(url) < 6 || !strings.EqualFold(url[:4], "url(") || url[len(url)-1] != ')' {
		return "", false
	}
	inner := strings.TrimSpace(url[4 : len(url)-1])
	if len(inner) < 2 || inner[0] != '#' {
		return "", false
	}
	return inner[1:], true
}
