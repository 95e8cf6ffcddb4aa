// Package assembler reconstructs renderable pages and chapters from the
// corpus index.
package assembler

import (
	"fmt"
	"log/slog"
	"strings"

	"quran-tui/internal/audio"
	"quran-tui/internal/corpus"
	"quran-tui/internal/resolver"
)

type Options struct {
	ShowTranslation bool
	StripDiacritics bool
	// ExternalVerseBase prefixes links to the manuscript verse navigator.
	ExternalVerseBase string
}

type Assembler struct {
	idx   *corpus.Index
	res   *resolver.Resolver
	audio *audio.Addresser
	opts  Options
	log   *slog.Logger
}

func New(idx *corpus.Index, res *resolver.Resolver, addr *audio.Addresser, opts Options, logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{idx: idx, res: res, audio: addr, opts: opts, log: logger}
}

func (a *Assembler) SetShowTranslation(show bool) { a.opts.ShowTranslation = show }

func (a *Assembler) SetStripDiacritics(strip bool) { a.opts.StripDiacritics = strip }

type ChapterMarker struct {
	Number int
	Name   string
}

type WordToken struct {
	Index int
	Text  string
	Gloss string
}

type VerseRecord struct {
	Ref         corpus.Ref
	GlobalIndex int
	// ID is the zero-padded "cccvvv" verse id.
	ID string
	// Marker is set on the first verse of a chapter within the unit.
	Marker      *ChapterMarker
	Words       []WordToken
	Translation string
	AudioURL    string
	ExternalURL string
	Highlighted bool
}

// Text joins the verse's words with single spaces.
func (v VerseRecord) Text() string {
	parts := make([]string, len(v.Words))
	for i, w := range v.Words {
		parts[i] = w.Text
	}
	return strings.Join(parts, " ")
}

type PageModel struct {
	Number    int
	From      corpus.Ref
	To        corpus.Ref
	WordCount int
	// Words is the number of words actually emitted.
	Words           int
	Verses          []VerseRecord
	HighlightIndex  int
	ShowTranslation bool
	HasPrev         bool
	HasNext         bool
}

type ChapterModel struct {
	Chapter         corpus.Chapter
	Verses          []VerseRecord
	TargetIndex     int
	ShowTranslation bool
}

// AssemblePage walks the page from its first to its last verse, crossing
// chapter boundaries. highlight, when on the page, marks one record.
func (a *Assembler) AssemblePage(number int, highlight *corpus.Ref) (*PageModel, error) {
	page, ok := a.idx.Page(number)
	if !ok {
		return nil, corpus.NotFound("page", number)
	}

	model := &PageModel{
		Number:          page.Number,
		From:            page.From,
		To:              page.To,
		WordCount:       page.WordCount,
		HighlightIndex:  -1,
		ShowTranslation: a.opts.ShowTranslation,
		HasPrev:         page.Number > 1,
		HasNext:         page.Number < a.idx.PageCount(),
	}

	cur := page.From
	lastChapter := 0
	for steps := 0; ; steps++ {
		if steps >= a.idx.VerseCount() {
			return nil, &corpus.DataLoadError{Reason: fmt.Sprintf("page %d: walk from %s never reached %s", number, page.From, page.To)}
		}
		if cur.Compare(page.To) > 0 {
			return nil, &corpus.DataLoadError{Reason: fmt.Sprintf("page %d: walk passed %s at %s", number, page.To, cur)}
		}

		chapter, ok := a.idx.Chapter(cur.Chapter)
		if !ok {
			return nil, &corpus.DataLoadError{Reason: fmt.Sprintf("page %d: chapter %d missing", number, cur.Chapter)}
		}
		verse, err := a.res.Resolve(cur)
		if err != nil {
			return nil, &corpus.DataLoadError{Reason: fmt.Sprintf("page %d: verse %s", number, cur), Err: err}
		}

		rec := a.record(verse)
		if cur.Chapter != lastChapter {
			rec.Marker = &ChapterMarker{Number: chapter.Number, Name: chapter.Name}
			lastChapter = cur.Chapter
		}
		if highlight != nil && *highlight == cur {
			rec.Highlighted = true
			model.HighlightIndex = len(model.Verses)
		}
		model.Verses = append(model.Verses, rec)
		model.Words += len(rec.Words)

		if cur == page.To {
			break
		}
		cur.Verse++
		if cur.Verse > chapter.VerseCount {
			cur = corpus.Ref{Chapter: cur.Chapter + 1, Verse: 1}
		}
	}
	return model, nil
}

// AssembleChapter lists every verse of one chapter. targetVerse, when in
// range, is reported back as TargetIndex for scroll-to.
func (a *Assembler) AssembleChapter(number, targetVerse int) (*ChapterModel, error) {
	chapter, ok := a.idx.Chapter(number)
	if !ok {
		return nil, corpus.NotFound("chapter", number)
	}

	model := &ChapterModel{
		Chapter:         chapter,
		Verses:          make([]VerseRecord, 0, chapter.VerseCount),
		TargetIndex:     -1,
		ShowTranslation: a.opts.ShowTranslation,
	}
	for local := 1; local <= chapter.VerseCount; local++ {
		verse, err := a.res.Resolve(corpus.Ref{Chapter: number, Verse: local})
		if err != nil {
			return nil, &corpus.DataLoadError{Reason: fmt.Sprintf("chapter %d verse %d", number, local), Err: err}
		}
		rec := a.record(verse)
		if local == 1 {
			rec.Marker = &ChapterMarker{Number: chapter.Number, Name: chapter.Name}
		}
		if local == targetVerse {
			rec.Highlighted = true
			model.TargetIndex = len(model.Verses)
		}
		model.Verses = append(model.Verses, rec)
	}
	return model, nil
}

func (a *Assembler) record(v corpus.Verse) VerseRecord {
	rec := VerseRecord{
		Ref:         v.Ref(),
		GlobalIndex: v.Index,
		ID:          audio.VerseKey(v.Chapter, v.Local),
		Words:       make([]WordToken, 0, v.WordCount()),
		Translation: stripHTMLTags(v.Translation),
	}
	for i := v.StartWord; i <= v.EndWord; i++ {
		w, ok := a.idx.Word(i)
		if !ok {
			a.log.Warn("word missing", "word", i, "verse", v.Index)
			continue
		}
		text := w.Text
		if a.opts.StripDiacritics {
			text = StripDiacritics(text)
		}
		rec.Words = append(rec.Words, WordToken{Index: w.Index, Text: text, Gloss: w.Gloss})
	}
	if a.audio != nil {
		rec.AudioURL = a.audio.VerseURL(v.Chapter, v.Local)
	}
	if a.opts.ExternalVerseBase != "" {
		rec.ExternalURL = fmt.Sprintf("%ssura/%d/verse/%d/manuscripts", a.opts.ExternalVerseBase, v.Chapter, v.Local)
	}
	return rec
}
