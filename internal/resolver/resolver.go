// Package resolver translates between the three coordinate systems of the
// corpus: (chapter, local verse), global verse index and page number.
package resolver

import (
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"quran-tui/internal/corpus"
)

type Resolver struct {
	idx *corpus.Index
	log *slog.Logger

	// copies taken once; the index never changes after load
	pages    []corpus.Page
	chapters []corpus.Chapter
}

func New(idx *corpus.Index, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{idx: idx, log: logger, pages: idx.Pages(), chapters: idx.Chapters()}
}

// GlobalVerseIndex returns chapter.Start + local - 1.
func (r *Resolver) GlobalVerseIndex(chapter, local int) (int, error) {
	c, ok := r.idx.Chapter(chapter)
	if !ok {
		return 0, corpus.NotFound("chapter", chapter)
	}
	if local < 1 || local > c.VerseCount {
		return 0, &corpus.OutOfRangeError{Chapter: chapter, Verse: local, Max: c.VerseCount}
	}
	return c.Start + local - 1, nil
}

// Normalize maps (chapter, local) to its ref and global verse index,
// whichever addressing scheme the chapter table was built from.
func (r *Resolver) Normalize(chapter, local int) (corpus.Ref, int, error) {
	g, err := r.GlobalVerseIndex(chapter, local)
	if err != nil {
		return corpus.Ref{}, 0, err
	}
	return corpus.Ref{Chapter: chapter, Verse: local}, g, nil
}

// Resolve returns the verse at ref.
func (r *Resolver) Resolve(ref corpus.Ref) (corpus.Verse, error) {
	_, g, err := r.Normalize(ref.Chapter, ref.Verse)
	if err != nil {
		return corpus.Verse{}, err
	}
	v, ok := r.idx.Verse(g)
	if !ok {
		return corpus.Verse{}, corpus.NotFound("verse", g)
	}
	return v, nil
}

// ClampVerse always lands on a valid ref: an unknown chapter becomes 1:1
// and an out-of-range verse becomes verse 1 of its chapter.
func (r *Resolver) ClampVerse(chapter, local int) corpus.Ref {
	_, err := r.GlobalVerseIndex(chapter, local)
	switch {
	case err == nil:
		return corpus.Ref{Chapter: chapter, Verse: local}
	case corpus.IsOutOfRange(err):
		r.log.Debug("verse clamped", "chapter", chapter, "verse", local, "error", err)
		return corpus.Ref{Chapter: chapter, Verse: 1}
	default:
		r.log.Debug("chapter reset", "chapter", chapter, "error", err)
		return corpus.Ref{Chapter: 1, Verse: 1}
	}
}

// PageContaining returns the page whose inclusive range holds
// (chapter, verse), or page 1 when none does.
func (r *Resolver) PageContaining(chapter, verse int) int {
	ref := corpus.Ref{Chapter: chapter, Verse: verse}
	pages := r.pages
	i := sort.Search(len(pages), func(i int) bool { return pages[i].To.Compare(ref) >= 0 })
	if i < len(pages) && pages[i].Contains(ref) {
		return pages[i].Number
	}
	r.log.Debug("no page contains verse", "ref", ref.String())
	return 1
}

// LocalVerse maps a global verse index back to (chapter, local verse)
// through the chapter boundaries.
func (r *Resolver) LocalVerse(global int) (corpus.Ref, error) {
	chapters := r.chapters
	i := sort.Search(len(chapters), func(i int) bool { return chapters[i].End() >= global })
	if i == len(chapters) || chapters[i].Start > global {
		return corpus.Ref{}, corpus.NotFound("verse", global)
	}
	return corpus.Ref{Chapter: chapters[i].Number, Verse: global - chapters[i].Start + 1}, nil
}

// Next returns the verse after ref, rolling over into the next chapter.
// ok is false after the last verse of the corpus.
func (r *Resolver) Next(ref corpus.Ref) (corpus.Ref, bool) {
	c, found := r.idx.Chapter(ref.Chapter)
	if !found {
		return corpus.Ref{}, false
	}
	if ref.Verse < c.VerseCount {
		return corpus.Ref{Chapter: ref.Chapter, Verse: ref.Verse + 1}, true
	}
	if _, found := r.idx.Chapter(ref.Chapter + 1); !found {
		return corpus.Ref{}, false
	}
	return corpus.Ref{Chapter: ref.Chapter + 1, Verse: 1}, true
}

// WordIndex converts a "chapter:verse:word" location to a global word index.
func (r *Resolver) WordIndex(ref corpus.WordRef) (int, error) {
	v, err := r.Resolve(ref.VerseRef())
	if err != nil {
		return 0, err
	}
	w := v.StartWord + ref.Word - 1
	if ref.Word < 1 || w > v.EndWord {
		return 0, corpus.NotFound("word", ref.String())
	}
	return w, nil
}

// WordRef converts a global word index to its "chapter:verse:word" location.
func (r *Resolver) WordRef(word int) (corpus.WordRef, error) {
	v, ok := r.idx.VerseOfWord(word)
	if !ok {
		return corpus.WordRef{}, corpus.NotFound("word", word)
	}
	return corpus.WordRef{Chapter: v.Chapter, Verse: v.Local, Word: word - v.StartWord + 1}, nil
}

// ParseTarget reads a navigation target typed by the reader: "c:v",
// "c v", "c" or "p N" for a page. Page targets return a zero ref.
func ParseTarget(s string) (ref corpus.Ref, page int, err error) {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(strings.ToLower(s), "p"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(rest))
		if err != nil {
			return corpus.Ref{}, 0, err
		}
		return corpus.Ref{}, n, nil
	}
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ':' || r == ' ' || r == '.' })
	if len(fields) == 0 || len(fields) > 2 {
		return corpus.Ref{}, 0, &corpus.NotFoundError{Kind: "reference", Key: s}
	}
	ref.Verse = 1
	if ref.Chapter, err = strconv.Atoi(fields[0]); err != nil {
		return corpus.Ref{}, 0, err
	}
	if len(fields) == 2 {
		if ref.Verse, err = strconv.Atoi(fields[1]); err != nil {
			return corpus.Ref{}, 0, err
		}
	}
	return ref, 0, nil
}
