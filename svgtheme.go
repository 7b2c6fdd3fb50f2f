// Package svgtheme rewrites inline fill and stroke colors of SVG documents
// into CSS class references backed by a style block generated from a theme
// palette.
package svgtheme

import (
	"errors"
	"io"

	"github.com/tdewolff/svgtheme/dom"
	"github.com/tdewolff/svgtheme/theme"
)

// ErrMarkerNotFound is returned when a marker-start, marker-mid or marker-end
// declaration references an id that does not exist in the document.
var ErrMarkerNotFound = errors.New("marker not found")

// Rewriter transforms SVG documents in place. Colors is the selected theme's
// palette; when nil the style block is left untouched. Mapping translates raw
// color literals to class name suffixes. ForceFill adds a fill class to
// markers derived from the first propagated class.
type Rewriter struct {
	Colors    theme.Palette
	Mapping   theme.Mapping
	ForceFill bool
}

// Rewrite runs the transformation pipeline over doc: it upserts the theme's
// style rules, folds fill/stroke presentation attributes into class
// references, and propagates classes onto referenced markers.
func (rw *Rewriter) Rewrite(doc *dom.Document) error {
	if rw.Colors != nil {
		if err := UpdateStyleBlock(doc, rw.Colors); err != nil {
			return err
		}
	}
	if err := RewriteColors(doc, rw.Mapping); err != nil {
		return err
	}
	return PropagateMarkers(doc, rw.ForceFill)
}

// Process reads an SVG document from r, rewrites it and serializes the result
// to w.
func (rw *Rewriter) Process(w io.Writer, r io.Reader) error {
	doc, err := dom.Parse(r)
	if err != nil {
		return err
	}
	if err := rw.Rewrite(doc); err != nil {
		return err
	}
	return doc.Render(w)
}
