package dom

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/tdewolff/test"
)

func TestRoundTrip(t *testing.T) {
	roundTripTests := []string{
		`<svg xmlns="http://www.w3.org/2000/svg"><rect fill="#ff0000"/></svg>`,
		"<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<svg xmlns=\"http://www.w3.org/2000/svg\"/>",
		`<svg><!-- a comment --><g id="layer1"><path d="M0 0L10 10"/></g></svg>`,
		`<svg:svg xmlns:svg="http://www.w3.org/2000/svg"><svg:style type="text/css">.fill-red{fill:#f00;}</svg:style></svg:svg>`,
		`<svg><style><![CDATA[.a{fill:#000;}]]></style></svg>`,
		`<svg><text>5 &lt; 6 &amp; 7 &#64; x</text></svg>`,
		`<svg><text label="a &amp; b"/></svg>`,
		"<!DOCTYPE svg PUBLIC \"-//W3C//DTD SVG 1.1//EN\" \"http://www.w3.org/Graphics/SVG/1.1/DTD/svg11.dtd\">\n<svg/>",
		"<svg>\n  <g>\n    <circle r=\"4\"/>\n  </g>\n</svg>",
	}
	for _, tt := range roundTripTests {
		t.Run(tt, func(t *testing.T) {
			doc, err := Parse(strings.NewReader(tt))
			test.Error(t, err)
			sb := &bytes.Buffer{}
			test.Error(t, doc.Render(sb))
			test.String(t, sb.String(), tt)
		})
	}
}

func TestRenderNormalizes(t *testing.T) {
	renderTests := []struct {
		xml      string
		expected string
	}{
		{`<a></a>`, `<a/>`},                            // childless elements collapse
		{`<a b='c'/>`, `<a b="c"/>`},                   // double-quoted attributes
		{`<a  b="c"  d="e" />`, `<a b="c" d="e"/>`},    // whitespace inside tags
		{`<a b="say &quot;hi&quot;"/>`, `<a b="say &quot;hi&quot;"/>`},
	}
	for _, tt := range renderTests {
		t.Run(tt.xml, func(t *testing.T) {
			doc, err := Parse(strings.NewReader(tt.xml))
			test.Error(t, err)
			sb := &bytes.Buffer{}
			test.Error(t, doc.Render(sb))
			test.String(t, sb.String(), tt.expected)
		})
	}
}

func TestParseErrors(t *testing.T) {
	errorTests := []string{
		`<a></b>`,
		`</a>`,
		`<a><b></a>`,
		`<svg><g>`,
	}
	for _, tt := range errorTests {
		t.Run(tt, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt))
			test.That(t, err != nil, "must return parse error")
		})
	}
}

func TestElementByID(t *testing.T) {
	doc, err := Parse(strings.NewReader(`<svg><defs><marker id="m1"/><marker id="m2"/></defs><path id="p"/></svg>`))
	test.Error(t, err)

	m1 := doc.ElementByID("m1")
	test.That(t, m1 != nil, "m1 must be found")
	test.String(t, m1.Name, "marker")

	test.That(t, doc.ElementByID("nope") == nil, "missing id must return nil")
}

func TestWalkOrder(t *testing.T) {
	doc, err := Parse(strings.NewReader(`<svg><g><a/><b/></g><c/></svg>`))
	test.Error(t, err)

	var names []string
	test.Error(t, doc.Walk(func(e *Element) error {
		names = append(names, e.Name)
		return nil
	}))
	test.String(t, strings.Join(names, " "), "svg g a b c")
}

func TestWalkError(t *testing.T) {
	doc, err := Parse(strings.NewReader(`<svg><g/></svg>`))
	test.Error(t, err)

	// any caller error propagates, io.EOF included
	err = doc.Walk(func(e *Element) error {
		return io.EOF
	})
	test.T(t, err, io.EOF)
}

func TestAttrOps(t *testing.T) {
	doc, err := Parse(strings.NewReader(`<rect fill="#f00" stroke="#00f"/>`))
	test.Error(t, err)
	e := doc.Root()

	v, ok := e.Attr("fill")
	test.That(t, ok)
	test.String(t, v, "#f00")

	e.SetAttr("fill", "#fff")
	e.SetAttr("class", "icon")
	e.DelAttr("stroke")

	sb := &bytes.Buffer{}
	test.Error(t, doc.Render(sb))
	test.String(t, sb.String(), `<rect fill="#fff" class="icon"/>`)
}

func TestTextOps(t *testing.T) {
	doc, err := Parse(strings.NewReader(`<svg><style>.a{}</style><style><![CDATA[.b{}]]></style></svg>`))
	test.Error(t, err)
	root := doc.Root()

	first := root.Children[0].(*Element)
	second := root.Children[1].(*Element)
	test.String(t, first.Text(), ".a{}")
	test.String(t, second.Text(), ".b{}")

	first.SetText(".c{}")
	test.String(t, first.Text(), ".c{}")
}

func TestPrependChild(t *testing.T) {
	doc, err := Parse(strings.NewReader(`<svg><rect/></svg>`))
	test.Error(t, err)

	style := &Element{Name: "style", Attrs: []Attr{{"type", "text/css"}}}
	style.SetText("")
	doc.Root().PrependChild(style)

	sb := &bytes.Buffer{}
	test.Error(t, doc.Render(sb))
	test.String(t, sb.String(), `<svg><style type="text/css"></style><rect/></svg>`)
}

func TestNames(t *testing.T) {
	e := &Element{Name: "svg:style"}
	test.String(t, e.LocalName(), "style")
	test.String(t, e.Prefix(), "svg")

	e = &Element{Name: "style"}
	test.String(t, e.LocalName(), "style")
	test.String(t, e.Prefix(), "")
}
