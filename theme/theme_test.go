package theme

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tdewolff/test"
)

func writeINI(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	test.Error(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadThemes(t *testing.T) {
	path := writeINI(t, "themes.ini", `
[dark]
red = ff0000
blue = 00F

[light]
red = aa0000
`)
	themes, err := LoadThemes(path)
	test.Error(t, err)
	test.T(t, len(themes), 2)
	test.String(t, themes["dark"]["red"], "#ff0000")
	test.String(t, themes["dark"]["blue"], "#00f", "hex must be lowercased")
	test.String(t, themes["light"]["red"], "#aa0000")
	test.String(t, strings.Join(themes.Names(), " "), "dark light")
}

func TestLoadThemesBadHex(t *testing.T) {
	badHexTests := []string{"ff00", "gggggg", "#ff0000", "ff 000"}
	for _, tt := range badHexTests {
		t.Run(tt, func(t *testing.T) {
			path := writeINI(t, "themes.ini", "[dark]\nred = "+tt+"\n")
			_, err := LoadThemes(path)
			test.That(t, err != nil, "malformed hex must fail to load")
		})
	}
}

func TestSelect(t *testing.T) {
	themes := Themes{"dark": {"red": "#ff0000"}}

	palette, err := themes.Select("dark")
	test.Error(t, err)
	test.String(t, palette["red"], "#ff0000")

	_, err = themes.Select("sepia")
	test.That(t, errors.Is(err, ErrThemeNotFound), "must wrap ErrThemeNotFound")
	test.That(t, strings.Contains(err.Error(), "sepia"), "must name the missing theme")
}

func TestLoadMapping(t *testing.T) {
	// hex keys are written bare, a leading # would start an INI comment
	path := writeINI(t, "color_mapping.ini", `
[color.mapping]
ffffff = white
FF0000 = base-red
black = ink
`)
	themes := Themes{
		"dark":  {"red": "#ff0000", "blue": "#0000ff"},
		"light": {"red": "#aa0000"},
	}
	mapping, err := LoadMapping(path, themes)
	test.Error(t, err)

	// static base entries survive where no theme color collides
	test.String(t, mapping["#ffffff"], "white")
	test.String(t, mapping["black"], "ink")
	// theme-derived entries override the static base
	test.String(t, mapping["#ff0000"], "red")
	test.String(t, mapping["#0000ff"], "blue")
	test.String(t, mapping["#aa0000"], "red")
}

func TestLoadMappingMissingSection(t *testing.T) {
	path := writeINI(t, "color_mapping.ini", "[other]\nx = y\n")
	_, err := LoadMapping(path, Themes{})
	test.That(t, err != nil, "missing [color.mapping] section must fail")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := LoadThemes(filepath.Join(t.TempDir(), "nope.ini"))
	test.That(t, err != nil, "missing themes file must fail")
}
