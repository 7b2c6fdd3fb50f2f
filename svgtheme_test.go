package svgtheme

import (
	"bytes"
	"strings"
	"testing"

	"github.com/tdewolff/svgtheme/theme"
	"github.com/tdewolff/test"
)

func TestProcess(t *testing.T) {
	rw := &Rewriter{
		Colors:  theme.Palette{"red": "#ff0000"},
		Mapping: theme.Mapping{"#ff0000": "red"},
	}
	input := `<svg xmlns="http://www.w3.org/2000/svg"><rect fill="#ff0000"/></svg>`
	expected := `<svg xmlns="http://www.w3.org/2000/svg"><style type="text/css">` +
		"\n.fill-red{fill:#ff0000;}\n.stroke-red{stroke:#ff0000;}" +
		`</style><rect class="fill-red"/></svg>`

	sb := &bytes.Buffer{}
	test.Error(t, rw.Process(sb, strings.NewReader(input)))
	test.String(t, sb.String(), expected)

	// a second pass over its own output is stable
	sb2 := &bytes.Buffer{}
	test.Error(t, rw.Process(sb2, strings.NewReader(sb.String())))
	test.String(t, sb2.String(), sb.String())
}

func TestProcessNoTheme(t *testing.T) {
	// without a selected theme the style block stage is skipped entirely
	rw := &Rewriter{Mapping: theme.Mapping{"#ff0000": "red"}}
	input := `<svg><rect fill="#ff0000"/></svg>`

	sb := &bytes.Buffer{}
	test.Error(t, rw.Process(sb, strings.NewReader(input)))
	test.String(t, sb.String(), `<svg><rect class="fill-red"/></svg>`)
}

func TestProcessMarkers(t *testing.T) {
	rw := &Rewriter{
		Mapping:   theme.Mapping{"#ff0000": "red"},
		ForceFill: true,
	}
	input := `<svg><defs><marker id="arrow"/></defs>` +
		`<path stroke="#ff0000" style="marker-end:url(#arrow)"/></svg>`
	expected := `<svg><defs><marker id="arrow" class="stroke-red fill-red"/></defs>` +
		`<path style="marker-end:url(#arrow)" class="stroke-red"/></svg>`

	sb := &bytes.Buffer{}
	test.Error(t, rw.Process(sb, strings.NewReader(input)))
	test.String(t, sb.String(), expected)
}

func TestProcessUntouchedRoundTrip(t *testing.T) {
	rw := &Rewriter{Mapping: theme.Mapping{}}
	input := "<?xml version=\"1.0\"?>\n<!-- generated -->\n" +
		`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10">` +
		`<defs><linearGradient id="g"/></defs>` +
		`<text>a &amp; b</text>` +
		`</svg>`

	sb := &bytes.Buffer{}
	test.Error(t, rw.Process(sb, strings.NewReader(input)))
	test.String(t, sb.String(), input)
}

func TestProcessParseError(t *testing.T) {
	rw := &Rewriter{}
	err := rw.Process(&bytes.Buffer{}, strings.NewReader(`<svg><g></svg>`))
	test.That(t, err != nil, "malformed XML must fail")
}
