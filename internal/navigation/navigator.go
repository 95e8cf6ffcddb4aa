package navigation

import (
	"log/slog"

	"quran-tui/internal/settings"
)

// Navigator owns the live cursor and writes every change through to the
// settings store.
type Navigator struct {
	reducer *Reducer
	store   settings.Store
	log     *slog.Logger
	cursor  Cursor
}

func NewNavigator(r *Reducer, store settings.Store, logger *slog.Logger) *Navigator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Navigator{reducer: r, store: store, log: logger, cursor: Defaults()}
}

// Hydrate restores the persisted cursor. Unreadable or invalid state
// falls back to defaults field by field; it never fails.
func (n *Navigator) Hydrate() Cursor {
	values, err := n.store.Load()
	if err != nil {
		n.log.Warn("load navigation state", "error", err)
		values = settings.Values{}
	}
	n.cursor = n.reducer.validate(decode(values))
	n.log.Debug("navigation hydrated",
		"chapter", n.cursor.Chapter, "verse", n.cursor.Verse, "page", n.cursor.Page)
	return n.cursor
}

func (n *Navigator) Cursor() Cursor { return n.cursor.clone() }

// Dispatch applies the action and persists the result. A failed save is
// logged; the in-memory cursor still moves.
func (n *Navigator) Dispatch(a Action) Cursor {
	n.cursor = n.reducer.Apply(n.cursor, a)
	n.persist(Encode(n.cursor))
	return n.cursor.clone()
}

// Font returns the route's font, saving the route default on first use.
func (n *Navigator) Font(r Route) string {
	if f, ok := n.cursor.Fonts[r]; ok {
		return f
	}
	f := DefaultFontFor(r)
	n.cursor = n.cursor.clone()
	n.cursor.Fonts[r] = f
	n.persist(settings.Values{fontKey(r): f})
	return f
}

func (n *Navigator) persist(v settings.Values) {
	if err := n.store.Save(v); err != nil {
		n.log.Error("save navigation state", "error", err)
	}
}
