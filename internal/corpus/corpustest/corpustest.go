// Package corpustest builds a small, internally consistent corpus for tests.
//
// The default corpus has three chapters of 7, 286 and 5 verses. Page 1
// spans 1:1 through 2:5; every following page holds ten verses, so the
// last page crosses from chapter 2 into chapter 3.
package corpustest

import (
	"context"
	"io"
	"io/fs"
	"strconv"
	"testing"
	"testing/fstest"

	"github.com/goccy/go-json"

	"quran-tui/internal/corpus"
)

var (
	ChapterNames = []string{"الفاتحة", "البقرة", "آل عمران"}
	ChapterSizes = []int{7, 286, 5}

	// Surfaces cycles over the word table; Roots holds the stem root of
	// the surface at the same position.
	Surfaces = []string{"بِسْمِ", "ٱللَّهِ", "ٱلرَّحْمَٰنِ", "ٱلرَّحِيمِ", "ٱلْحَمْدُ", "رَبِّ"}
	Roots    = []string{"سمو", "أله", "رحم", "رحم", "حمد", "ربب"}
)

const versesPerPage = 10

// Options selects the historical table shapes to emit.
type Options struct {
	// CountsOnly drops start/end from chapter records.
	CountsOnly bool
	// ArrayTables emits the verse, word and gloss tables as arrays.
	ArrayTables bool
	// LegacyMorphology keys morphology by "c:v:w" with a numeric id.
	LegacyMorphology bool
	// NoGlosses leaves the gloss table out.
	NoGlosses bool
}

type verseInfo struct {
	chapter, local int
	start, end     int
}

// WordsInVerse is the fixture's word count for a global verse index.
func WordsInVerse(global int) int { return 2 + global%3 }

// Files renders the fixture tables.
func Files(opts Options) fstest.MapFS {
	var verses []verseInfo
	word := 1
	for c, size := range ChapterSizes {
		for v := 1; v <= size; v++ {
			n := WordsInVerse(len(verses) + 1)
			verses = append(verses, verseInfo{chapter: c + 1, local: v, start: word, end: word + n - 1})
			word += n
		}
	}
	totalWords := word - 1

	chapters := map[string]map[string]any{}
	start := 1
	for c, size := range ChapterSizes {
		rec := map[string]any{"name": ChapterNames[c], "nAyah": size}
		if !opts.CountsOnly {
			rec["start"] = start
			rec["end"] = start + size - 1
		}
		chapters[strconv.Itoa(c+1)] = rec
		start += size
	}

	verseTable := make(map[int]any, len(verses))
	for i, v := range verses {
		verseTable[i+1] = map[string]any{
			"start_word": v.start,
			"end_word":   v.end,
			"en":         "<b>Translation</b> of " + strconv.Itoa(v.chapter) + ":" + strconv.Itoa(v.local),
		}
	}

	words := make(map[int]any, totalWords)
	glosses := make(map[int]any, totalWords)
	morph := map[string]any{}
	roots := map[string]*rootRec{}
	for _, v := range verses {
		for w := v.start; w <= v.end; w++ {
			surface := Surfaces[(w-1)%len(Surfaces)]
			root := Roots[(w-1)%len(Roots)]
			words[w] = surface
			glosses[w] = "gloss " + strconv.Itoa(w)
			id := strconv.Itoa(v.chapter) + ":" + strconv.Itoa(v.local) + ":" + strconv.Itoa(w-v.start+1)

			var segs []map[string]any
			if w%5 == 0 {
				segs = append(segs, map[string]any{
					"word": "وَ", "pos": "CONJ", "root": nil, "lemma": "", "morphology": "PREFIX|w:CONJ+",
				})
			}
			segs = append(segs, map[string]any{
				"word": surface, "pos": "N", "root": root, "lemma": surface, "morphology": "STEM|POS:N|ROOT:" + root,
			})
			morph[morphKey(opts, w, id)] = morphRecord(opts, w, id, segs)

			r := roots[root]
			if r == nil {
				r = &rootRec{Word: map[string]*formRec{}}
				roots[root] = r
			}
			f := r.Word[surface]
			if f == nil {
				f = &formRec{}
				r.Word[surface] = f
			}
			f.Verses = append(f.Verses, occRec{Key: strconv.Itoa(w), ID: id})
			f.WordCount++
			f.VerseCount = len(f.Verses)
			r.RootCount++
		}
	}

	files := fstest.MapFS{
		"sura.json":                &fstest.MapFile{Data: mustJSON(chapters)},
		"combined_quran.json":      &fstest.MapFile{Data: mustJSON(shape(opts, verseTable))},
		"quran_harakat_words.json": &fstest.MapFile{Data: mustJSON(shape(opts, words))},
		"quran_morphology.json":    &fstest.MapFile{Data: mustJSON(morph)},
		"pagination_map.json":      &fstest.MapFile{Data: mustJSON(pages(verses))},
		"root_words.json":          &fstest.MapFile{Data: mustJSON(roots)},
	}
	if !opts.NoGlosses {
		files["en-word.json"] = &fstest.MapFile{Data: mustJSON(shape(opts, glosses))}
	}
	return files
}

type rootRec struct {
	RootCount int                 `json:"RootCount"`
	Word      map[string]*formRec `json:"Word"`
}

type formRec struct {
	WordCount  int      `json:"WordCount"`
	VerseCount int      `json:"VerseCount"`
	Verses     []occRec `json:"Verses"`
}

type occRec struct {
	Key string `json:"Key"`
	ID  string `json:"ID"`
}

func morphKey(opts Options, w int, id string) string {
	if opts.LegacyMorphology {
		return id
	}
	return strconv.Itoa(w)
}

func morphRecord(opts Options, w int, id string, segs []map[string]any) map[string]any {
	if opts.LegacyMorphology {
		return map[string]any{"id": w, "words": segs}
	}
	keyed := map[string]any{}
	for i, s := range segs {
		keyed[id+":"+strconv.Itoa(i+1)] = s
	}
	return map[string]any{"id": id, "words": keyed}
}

// shape renders an id-keyed table as an object or, for ArrayTables, as
// an array whose position is the id (position 0 is null).
func shape(opts Options, table map[int]any) any {
	if !opts.ArrayTables {
		obj := make(map[string]any, len(table))
		for k, v := range table {
			obj[strconv.Itoa(k)] = v
		}
		return obj
	}
	arr := make([]any, len(table)+1)
	for k, v := range table {
		arr[k] = v
	}
	return arr
}

func pages(verses []verseInfo) []map[string]any {
	var out []map[string]any
	add := func(from, to int) {
		words := verses[to].end - verses[from].start + 1
		out = append(out, map[string]any{
			"page":       len(out) + 1,
			"from":       ref(verses[from]),
			"to":         ref(verses[to]),
			"word_count": words,
		})
	}
	// Page 1 is 1:1..2:5.
	first := ChapterSizes[0] + 5 - 1
	add(0, first)
	for from := first + 1; from < len(verses); from += versesPerPage {
		add(from, min(from+versesPerPage-1, len(verses)-1))
	}
	return out
}

func ref(v verseInfo) string { return strconv.Itoa(v.chapter) + ":" + strconv.Itoa(v.local) }

func mustJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

// Source serves tables from any fs.FS.
type Source struct{ FS fs.FS }

func (s Source) Open(_ context.Context, name string) (io.ReadCloser, error) {
	return s.FS.Open(name)
}

// Load builds an index from the fixture tables, failing the test on error.
func Load(t testing.TB, opts Options) *corpus.Index {
	t.Helper()
	idx, err := corpus.Load(context.Background(), Source{FS: Files(opts)}, corpus.DefaultTableNames())
	if err != nil {
		t.Fatalf("load fixture corpus: %v", err)
	}
	return idx
}

// TotalVerses is the number of verses in the fixture.
func TotalVerses() int {
	n := 0
	for _, s := range ChapterSizes {
		n += s
	}
	return n
}

// PageCount is the number of pages in the fixture.
func PageCount() int {
	rest := TotalVerses() - (ChapterSizes[0] + 5)
	return 1 + (rest+versesPerPage-1)/versesPerPage
}
