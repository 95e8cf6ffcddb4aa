package navigation

import (
	"log/slog"

	"quran-tui/internal/concordance"
	"quran-tui/internal/corpus"
	"quran-tui/internal/resolver"
)

// Action is a navigation event.
type Action interface{ action() }

type SelectChapter struct{ Chapter int }

// SelectVerse moves within the current chapter.
type SelectVerse struct{ Verse int }

type GoToVerse struct{ Chapter, Verse int }

type GoToPage struct{ Page int }

type NextPage struct{}

type PrevPage struct{}

type ToggleTranslation struct{}

type SetFont struct {
	Route Route
	Font  string
}

type ToggleTheme struct{}

type SelectRoot struct{ Root string }

type SelectWordForm struct{ Form string }

func (SelectChapter) action()     {}
func (SelectVerse) action()       {}
func (GoToVerse) action()         {}
func (GoToPage) action()          {}
func (NextPage) action()          {}
func (PrevPage) action()          {}
func (ToggleTranslation) action() {}
func (SetFont) action()           {}
func (ToggleTheme) action()       {}
func (SelectRoot) action()        {}
func (SelectWordForm) action()    {}

// Reducer applies actions to cursors. It never returns a cursor that
// points outside the corpus.
type Reducer struct {
	idx  *corpus.Index
	res  *resolver.Resolver
	conc *concordance.Builder
	log  *slog.Logger
}

func NewReducer(idx *corpus.Index, res *resolver.Resolver, conc *concordance.Builder, logger *slog.Logger) *Reducer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reducer{idx: idx, res: res, conc: conc, log: logger}
}

func (r *Reducer) Apply(c Cursor, a Action) Cursor {
	c = c.clone()

	switch a := a.(type) {
	case SelectChapter:
		return r.goToVerse(c, a.Chapter, 1)
	case SelectVerse:
		return r.goToVerse(c, c.Chapter, a.Verse)
	case GoToVerse:
		return r.goToVerse(c, a.Chapter, a.Verse)
	case GoToPage:
		return r.goToPage(c, a.Page)
	case NextPage:
		if c.Page >= r.idx.PageCount() {
			return c
		}
		return r.goToPage(c, c.Page+1)
	case PrevPage:
		if c.Page <= 1 {
			return c
		}
		return r.goToPage(c, c.Page-1)
	case ToggleTranslation:
		c.TranslationVisible = !c.TranslationVisible
	case SetFont:
		if !knownFont(a.Font) {
			r.log.Warn("unknown font", "font", a.Font)
			return c
		}
		c.Fonts[a.Route] = a.Font
	case ToggleTheme:
		if c.Theme == ThemeDark {
			c.Theme = ThemeLight
		} else {
			c.Theme = ThemeDark
		}
	case SelectRoot:
		c.Root, c.WordForm = r.conc.Select(a.Root, "")
	case SelectWordForm:
		c.Root, c.WordForm = r.conc.Select(c.Root, a.Form)
	default:
		r.log.Warn("unhandled navigation action", "action", a)
	}
	return c
}

func (r *Reducer) goToVerse(c Cursor, chapter, verse int) Cursor {
	ref := r.res.ClampVerse(chapter, verse)
	c.Chapter, c.Verse = ref.Chapter, ref.Verse
	c.Page = r.res.PageContaining(ref.Chapter, ref.Verse)
	return c
}

// goToPage lands on the page's first verse; a missing page falls back
// to page 1.
func (r *Reducer) goToPage(c Cursor, n int) Cursor {
	p, ok := r.idx.Page(n)
	if !ok {
		r.log.Debug("page fallback", "page", n)
		if p, ok = r.idx.Page(1); !ok {
			return c
		}
	}
	c.Page = p.Number
	c.Chapter, c.Verse = p.From.Chapter, p.From.Verse
	return c
}

// validate brings a decoded cursor back inside the corpus.
func (r *Reducer) validate(c Cursor) Cursor {
	c = c.clone()
	ref := r.res.ClampVerse(c.Chapter, c.Verse)
	c.Chapter, c.Verse = ref.Chapter, ref.Verse
	if p, ok := r.idx.Page(c.Page); !ok || !p.Contains(ref) {
		c.Page = r.res.PageContaining(ref.Chapter, ref.Verse)
	}
	c.Root, c.WordForm = r.conc.Select(c.Root, c.WordForm)
	return c
}
