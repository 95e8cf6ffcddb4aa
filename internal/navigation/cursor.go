// Package navigation owns the reader's cursor: the selected chapter,
// verse and page plus display preferences, kept consistent with the
// corpus and persisted across sessions.
package navigation

import (
	"maps"
	"strconv"

	"quran-tui/internal/settings"
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Route names a screen with its own font preference.
type Route string

const (
	RouteReader      Route = "reader"
	RouteConcordance Route = "concordance"
	RouteChapter     Route = "chapter"
)

const DefaultFont = "Amiri Quran"

// Fonts lists the selectable script fonts.
var Fonts = []string{"Amiri Quran", "Qahiri", "Raqq"}

var routeFonts = map[Route]string{
	RouteReader:      "Qahiri",
	RouteConcordance: "Amiri Quran",
	RouteChapter:     "Raqq",
}

// DefaultFontFor returns the font a route starts with.
func DefaultFontFor(r Route) string {
	if f, ok := routeFonts[r]; ok {
		return f
	}
	return DefaultFont
}

func knownFont(f string) bool {
	for _, k := range Fonts {
		if k == f {
			return true
		}
	}
	return false
}

// Cursor is a value: reducers return modified copies.
type Cursor struct {
	Chapter            int
	Verse              int
	Page               int
	TranslationVisible bool
	Fonts              map[Route]string
	Root               string
	WordForm           string
	Theme              Theme
}

func Defaults() Cursor {
	return Cursor{
		Chapter: 1,
		Verse:   1,
		Page:    1,
		Fonts:   map[Route]string{},
		Theme:   ThemeLight,
	}
}

func (c Cursor) clone() Cursor {
	c.Fonts = maps.Clone(c.Fonts)
	if c.Fonts == nil {
		c.Fonts = map[Route]string{}
	}
	return c
}

// Persisted key names.
const (
	keyChapter    = "selectedSura"
	keyVerse      = "selectedVerse"
	keyPage       = "currentPage"
	keyTranslate  = "translate"
	keyTheme      = "theme"
	keyRoot       = "selectedRoot"
	keyWordForm   = "selectedWord"
	keyFontPrefix = "selectedFont_"

	translateOn  = "en"
	translateOff = "notrans"
)

func fontKey(r Route) string { return keyFontPrefix + string(r) }

// Encode renders the cursor as persisted values.
func Encode(c Cursor) settings.Values {
	v := settings.Values{
		keyChapter:   strconv.Itoa(c.Chapter),
		keyVerse:     strconv.Itoa(c.Verse),
		keyPage:      strconv.Itoa(c.Page),
		keyTranslate: translateOff,
		keyTheme:     string(c.Theme),
		keyRoot:      c.Root,
		keyWordForm:  c.WordForm,
	}
	if c.TranslationVisible {
		v[keyTranslate] = translateOn
	}
	for r, f := range c.Fonts {
		v[fontKey(r)] = f
	}
	return v
}

// decode reads values without validating them against the corpus.
func decode(v settings.Values) Cursor {
	c := Defaults()
	c.Chapter = v.Int(keyChapter, 1)
	c.Verse = v.Int(keyVerse, 1)
	c.Page = v.Int(keyPage, 0)
	c.TranslationVisible = v.String(keyTranslate, translateOff) == translateOn
	if Theme(v.String(keyTheme, string(ThemeLight))) == ThemeDark {
		c.Theme = ThemeDark
	}
	c.Root = v.String(keyRoot, "")
	c.WordForm = v.String(keyWordForm, "")
	for r := range routeFonts {
		if f := v.String(fontKey(r), ""); knownFont(f) {
			c.Fonts[r] = f
		}
	}
	return c
}
