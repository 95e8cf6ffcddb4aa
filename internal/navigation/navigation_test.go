package navigation

import (
	"errors"
	"maps"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quran-tui/internal/concordance"
	"quran-tui/internal/corpus/corpustest"
	"quran-tui/internal/resolver"
	"quran-tui/internal/settings"
)

type memStore struct {
	values  settings.Values
	loadErr error
	saveErr error
	saves   int
}

func (m *memStore) Load() (settings.Values, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return maps.Clone(m.values), nil
}

func (m *memStore) Save(v settings.Values) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	if m.values == nil {
		m.values = settings.Values{}
	}
	maps.Copy(m.values, v)
	return nil
}

func setup(t *testing.T) (*Reducer, *resolver.Resolver) {
	t.Helper()
	idx := corpustest.Load(t, corpustest.Options{})
	res := resolver.New(idx, nil)
	return NewReducer(idx, res, concordance.New(idx, res, nil), nil), res
}

func hydrate(t *testing.T, values settings.Values) Cursor {
	t.Helper()
	r, _ := setup(t)
	return NewNavigator(r, &memStore{values: values}, nil).Hydrate()
}

func TestHydrate_Empty(t *testing.T) {
	c := hydrate(t, nil)

	assert.Equal(t, 1, c.Chapter)
	assert.Equal(t, 1, c.Verse)
	assert.Equal(t, 1, c.Page)
	assert.False(t, c.TranslationVisible)
	assert.Equal(t, ThemeLight, c.Theme)
	assert.Equal(t, "أله", c.Root)
	assert.Equal(t, corpustest.Surfaces[1], c.WordForm)
}

func TestHydrate_ClampsOutOfRangeVerse(t *testing.T) {
	c := hydrate(t, settings.Values{"selectedSura": "2", "selectedVerse": "999"})

	assert.Equal(t, 2, c.Chapter)
	assert.Equal(t, 1, c.Verse)
	assert.Equal(t, 1, c.Page)
}

func TestHydrate_UnknownChapter(t *testing.T) {
	c := hydrate(t, settings.Values{"selectedSura": "9", "selectedVerse": "4", "currentPage": "12"})

	assert.Equal(t, 1, c.Chapter)
	assert.Equal(t, 1, c.Verse)
	assert.Equal(t, 1, c.Page)
}

func TestHydrate_Page(t *testing.T) {
	_, res := setup(t)
	want := res.PageContaining(2, 255)

	tests := []struct {
		name string
		page string
	}{
		{name: "missing", page: ""},
		{name: "garbage", page: "abc"},
		{name: "out of range", page: "400"},
		{name: "does not hold verse", page: "3"},
		{name: "matches", page: "26"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := hydrate(t, settings.Values{"selectedSura": "2", "selectedVerse": "255", "currentPage": tt.page})
			assert.Equal(t, want, c.Page)
		})
	}
	assert.Equal(t, 26, want)
}

func TestHydrate_Preferences(t *testing.T) {
	c := hydrate(t, settings.Values{
		"translate":                "en",
		"theme":                    "dark",
		"selectedFont_reader":      "Raqq",
		"selectedFont_concordance": "Comic Sans",
		"selectedRoot":             "رحم",
		"selectedWord":             corpustest.Surfaces[2],
	})

	assert.True(t, c.TranslationVisible)
	assert.Equal(t, ThemeDark, c.Theme)
	assert.Equal(t, map[Route]string{RouteReader: "Raqq"}, c.Fonts)
	assert.Equal(t, "رحم", c.Root)
	assert.Equal(t, corpustest.Surfaces[2], c.WordForm)
}

func TestHydrate_EmptyPreferencesUseDefaults(t *testing.T) {
	c := hydrate(t, settings.Values{
		"translate":           "",
		"theme":               "",
		"selectedFont_reader": "",
		"selectedRoot":        "",
	})

	assert.False(t, c.TranslationVisible)
	assert.Equal(t, ThemeLight, c.Theme)
	assert.Empty(t, c.Fonts)
	assert.Equal(t, "أله", c.Root)
	assert.Equal(t, corpustest.Surfaces[1], c.WordForm)
}

func TestHydrate_StoreFailure(t *testing.T) {
	r, _ := setup(t)
	n := NewNavigator(r, &memStore{loadErr: errors.New("disk gone")}, nil)

	c := n.Hydrate()
	assert.Equal(t, 1, c.Chapter)
	assert.Equal(t, 1, c.Page)
}

func TestApply_Verses(t *testing.T) {
	r, res := setup(t)
	c := Defaults()

	c = r.Apply(c, GoToVerse{Chapter: 2, Verse: 255})
	assert.Equal(t, 2, c.Chapter)
	assert.Equal(t, 255, c.Verse)
	assert.Equal(t, res.PageContaining(2, 255), c.Page)

	c = r.Apply(c, SelectVerse{Verse: 300})
	assert.Equal(t, 2, c.Chapter)
	assert.Equal(t, 1, c.Verse)
	assert.Equal(t, 1, c.Page)

	c = r.Apply(c, SelectChapter{Chapter: 3})
	assert.Equal(t, 3, c.Chapter)
	assert.Equal(t, 1, c.Verse)
	assert.Equal(t, corpustest.PageCount(), c.Page)

	c = r.Apply(c, SelectChapter{Chapter: 0})
	assert.Equal(t, Cursor{Chapter: 1, Verse: 1, Page: 1}, Cursor{Chapter: c.Chapter, Verse: c.Verse, Page: c.Page})
}

func TestApply_Pages(t *testing.T) {
	r, _ := setup(t)
	c := Defaults()

	c = r.Apply(c, NextPage{})
	assert.Equal(t, 2, c.Page)
	assert.Equal(t, 2, c.Chapter)
	assert.Equal(t, 6, c.Verse)

	c = r.Apply(c, PrevPage{})
	assert.Equal(t, 1, c.Page)
	assert.Equal(t, 1, c.Chapter)
	assert.Equal(t, 1, c.Verse)

	assert.Equal(t, c, r.Apply(c, PrevPage{}))

	c = r.Apply(c, GoToPage{Page: 999})
	assert.Equal(t, 1, c.Page)
	assert.Equal(t, 1, c.Chapter)
}

func TestApply_NextPageOnLastPageIsNoop(t *testing.T) {
	r, _ := setup(t)

	last := r.Apply(Defaults(), GoToPage{Page: corpustest.PageCount()})
	require.Equal(t, corpustest.PageCount(), last.Page)
	assert.Equal(t, 2, last.Chapter)
	assert.Equal(t, 286, last.Verse)

	assert.Equal(t, last, r.Apply(last, NextPage{}))
}

func TestApply_Preferences(t *testing.T) {
	r, _ := setup(t)
	c := Defaults()

	c = r.Apply(c, ToggleTranslation{})
	assert.True(t, c.TranslationVisible)
	c = r.Apply(c, ToggleTheme{})
	assert.Equal(t, ThemeDark, c.Theme)
	c = r.Apply(c, ToggleTheme{})
	assert.Equal(t, ThemeLight, c.Theme)

	before := r.Apply(c, SetFont{Route: RouteChapter, Font: "Qahiri"})
	after := r.Apply(before, SetFont{Route: RouteChapter, Font: "Papyrus"})
	assert.Equal(t, "Qahiri", after.Fonts[RouteChapter])

	changed := r.Apply(before, SetFont{Route: RouteChapter, Font: "Raqq"})
	assert.Equal(t, "Raqq", changed.Fonts[RouteChapter])
	assert.Equal(t, "Qahiri", before.Fonts[RouteChapter])
}

func TestApply_Concordance(t *testing.T) {
	r, _ := setup(t)
	c := Defaults()

	c = r.Apply(c, SelectRoot{Root: "رحم"})
	assert.Equal(t, "رحم", c.Root)
	assert.Equal(t, corpustest.Surfaces[3], c.WordForm)

	c = r.Apply(c, SelectWordForm{Form: corpustest.Surfaces[2]})
	assert.Equal(t, corpustest.Surfaces[2], c.WordForm)

	c = r.Apply(c, SelectRoot{Root: "nope"})
	assert.Equal(t, "أله", c.Root)
}

func TestNavigator_DispatchPersists(t *testing.T) {
	r, _ := setup(t)
	store := &memStore{}
	n := NewNavigator(r, store, nil)
	n.Hydrate()

	c := n.Dispatch(GoToVerse{Chapter: 2, Verse: 3})
	assert.Equal(t, 2, c.Chapter)
	assert.Equal(t, "2", store.values["selectedSura"])
	assert.Equal(t, "3", store.values["selectedVerse"])
	assert.Equal(t, "1", store.values["currentPage"])
	assert.Equal(t, "notrans", store.values["translate"])

	n.Dispatch(ToggleTranslation{})
	assert.Equal(t, "en", store.values["translate"])

	restored := NewNavigator(r, store, nil).Hydrate()
	assert.Equal(t, n.Cursor(), restored)
}

func TestNavigator_SaveFailureKeepsCursor(t *testing.T) {
	r, _ := setup(t)
	store := &memStore{saveErr: errors.New("read-only")}
	n := NewNavigator(r, store, nil)
	n.Hydrate()

	c := n.Dispatch(NextPage{})
	assert.Equal(t, 2, c.Page)
	assert.Equal(t, 2, n.Cursor().Page)
	assert.Equal(t, 1, store.saves)
}

func TestNavigator_FontDefaults(t *testing.T) {
	r, _ := setup(t)
	store := &memStore{}
	n := NewNavigator(r, store, nil)
	n.Hydrate()

	assert.Equal(t, "Qahiri", n.Font(RouteReader))
	assert.Equal(t, "Qahiri", store.values["selectedFont_reader"])
	assert.Equal(t, "Raqq", n.Font(RouteChapter))
	assert.Equal(t, "Amiri Quran", n.Font(RouteConcordance))
	assert.Equal(t, DefaultFont, DefaultFontFor("elsewhere"))

	n.Dispatch(SetFont{Route: RouteReader, Font: "Amiri Quran"})
	assert.Equal(t, "Amiri Quran", n.Font(RouteReader))
	assert.Equal(t, "Amiri Quran", store.values["selectedFont_reader"])
}
