// Package theme loads theme palettes and the color-to-class mapping from INI
// files. A themes file holds one section per theme whose keys map semantic
// color names to bare hex values; a mapping file holds a single
// [color.mapping] section mapping raw color literals to class name suffixes.
package theme

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-ini/ini"
)

// Palette maps semantic color names to #-prefixed hex values.
type Palette map[string]string

// Themes holds every palette of a themes file, keyed by theme name.
type Themes map[string]Palette

// Mapping maps raw color literals, such as "#ffffff" or "white", to class
// name suffixes.
type Mapping map[string]string

// ErrThemeNotFound is returned when a requested theme is absent from the
// themes file.
var ErrThemeNotFound = errors.New("theme not found")

// mappingSection is the fixed section name of the color mapping file.
const mappingSection = "color.mapping"

// LoadThemes reads all theme palettes from the INI file at path. Hex values
// are validated and normalized to lowercase #-prefixed form.
func LoadThemes(path string) (Themes, error) {
	f, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load themes: %w", err)
	}
	themes := Themes{}
	for _, section := range f.Sections() {
		if section.Name() == ini.DefaultSection && len(section.Keys()) == 0 {
			continue
		}
		palette := Palette{}
		for _, key := range section.Keys() {
			hex, err := normalizeHex(key.Value())
			if err != nil {
				return nil, fmt.Errorf("theme %q color %q: %w", section.Name(), key.Name(), err)
			}
			palette[key.Name()] = hex
		}
		themes[section.Name()] = palette
	}
	return themes, nil
}

// Select returns the palette of the named theme.
func (t Themes) Select(name string) (Palette, error) {
	palette, ok := t[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrThemeNotFound, name)
	}
	return palette, nil
}

// Names returns all theme names in sorted order.
func (t Themes) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadMapping reads the static color mapping from the INI file at path and
// merges in an entry for every color of every theme, mapping the hex value
// back to its color name. Theme-derived entries override same-keyed static
// entries; themes are merged in sorted name order so the result is
// deterministic.
//
// A # starts an INI comment, so hex literals are written bare in the file;
// keys that are hex digit strings are normalized to their #-prefixed
// lowercase form, named colors are kept verbatim.
func LoadMapping(path string, themes Themes) (Mapping, error) {
	f, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load color mapping: %w", err)
	}
	section, err := f.GetSection(mappingSection)
	if err != nil {
		return nil, fmt.Errorf("color mapping misses section [%s]: %w", mappingSection, err)
	}
	mapping := Mapping{}
	for _, key := range section.Keys() {
		name := key.Name()
		if hex, err := normalizeHex(name); err == nil {
			name = hex
		}
		mapping[name] = key.Value()
	}
	for _, name := range themes.Names() {
		palette := themes[name]
		colors := make([]string, 0, len(palette))
		for color := range palette {
			colors = append(colors, color)
		}
		sort.Strings(colors)
		for _, color := range colors {
			mapping[palette[color]] = color
		}
	}
	return mapping, nil
}

// normalizeHex validates a bare RGB or RRGGBB hex digit string and returns it
// lowercased with a # prefix.
func normalizeHex(v string) (string, error) {
	if len(v) != 3 && len(v) != 6 {
		return "", fmt.Errorf("value %q must be 3 or 6 hex digits", v)
	}
	for i := 0; i < len(v); i++ {
		c := v[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F') {
			return "", fmt.Errorf("value %q must be 3 or 6 hex digits", v)
		}
	}
	return "#" + strings.ToLower(v), nil
}
