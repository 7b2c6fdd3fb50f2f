package svgtheme

import (
	"fmt"
	"io"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"github.com/tdewolff/svgtheme/dom"
	"github.com/tdewolff/svgtheme/theme"
)

// colorState is the resolved fill or stroke of a single element. A set state
// with an empty value means the property was explicitly none: the plain
// attribute must no longer be consulted but no class is generated either.
type colorState struct {
	set bool
	val string
}

// RewriteColors resolves every element's effective fill and stroke and
// rewrites known colors into class references. Style attribute declarations
// take precedence over plain fill/stroke attributes; consumed declarations
// are stripped from the style attribute and matched plain attributes are
// deleted once their class is added.
func RewriteColors(doc *dom.Document, mapping theme.Mapping) error {
	return doc.Walk(func(e *dom.Element) error {
		return rewriteElement(e, mapping)
	})
}

func rewriteElement(e *dom.Element, mapping theme.Mapping) error {
	var fill, stroke colorState
	if style, ok := e.Attr("style"); ok {
		rebuilt, err := stripColorDecls(style, mapping, &fill, &stroke)
		if err != nil {
			return fmt.Errorf("element <%s>: malformed style attribute: %w", e.Name, err)
		}
		// the style attribute is kept even when it ends up empty
		e.SetAttr("style", rebuilt)
	}
	if v, ok := e.Attr("fill"); ok && !fill.set {
		fill.set = true
		if v != "none" {
			fill.val = v
		}
	}
	if v, ok := e.Attr("stroke"); ok && !stroke.set {
		stroke.set = true
		if v != "none" {
			stroke.val = v
		}
	}

	classes := strings.Fields(classAttr(e))
	if fill.set && fill.val != "" {
		if name, ok := mapping[fill.val]; ok {
			classes = addClass(classes, "fill-"+name)
			e.DelAttr("fill")
		}
	}
	if stroke.set && stroke.val != "" {
		if name, ok := mapping[stroke.val]; ok {
			classes = addClass(classes, "stroke-"+name)
			e.DelAttr("stroke")
		}
	}
	// an empty class set never writes a class attribute
	if 0 < len(classes) {
		e.SetAttr("class", strings.Join(classes, " "))
	}
	return nil
}

// stripColorDecls parses an inline style attribute and consumes fill/stroke
// declarations whose value is a known color or none into fill and stroke.
// Everything else passes through byte for byte, consumed declarations are
// cut out by their input offsets. Declarations that do not conform to
// property:value form are a hard error.
func stripColorDecls(style string, mapping theme.Mapping, fill, stroke *colorState) (string, error) {
	z := parse.NewInputString(style)
	p := css.NewParser(z, true)
	var sb strings.Builder
	last := 0
	for {
		start := z.Offset()
		gt, _, data := p.Next()
		if gt == css.ErrorGrammar {
			if p.Err() == io.EOF {
				break
			}
			return "", p.Err()
		}
		if gt != css.DeclarationGrammar {
			continue
		}
		prop := string(data)
		val := strings.TrimSpace(tokensData(p.Values()))
		if (prop == "fill" || prop == "stroke") && knownColor(val, mapping) {
			state := fill
			if prop == "stroke" {
				state = stroke
			}
			state.set = true
			if val != "none" {
				state.val = val
			}
			sb.WriteString(style[last:start])
			last = z.Offset()
		}
	}
	sb.WriteString(style[last:])
	return sb.String(), nil
}

// knownColor reports whether val generates or suppresses a class: either a
// key of the mapping or the literal none.
func knownColor(val string, mapping theme.Mapping) bool {
	if val == "none" {
		return true
	}
	_, ok := mapping[val]
	return ok
}

func tokensData(values []css.Token) string {
	var sb strings.Builder
	for _, val := range values {
		sb.Write(val.Data)
	}
	return sb.String()
}

func classAttr(e *dom.Element) string {
	class, _ := e.Attr("class")
	return class
}

// addClass appends c to classes unless it is already present.
func addClass(classes []string, c string) []string {
	for _, have := range classes {
		if have == c {
			return classes
		}
	}
	return append(classes, c)
}
