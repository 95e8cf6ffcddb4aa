package corpus

import (
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// build normalizes the raw tables into an Index and validates every
// cross-table invariant. Any violation is a DataLoadError.
func build(raw *rawTables) (*Index, error) {
	x := &Index{
		morph:     make(map[int]*Morphology, len(raw.morphology)),
		morphByID: make(map[string]*Morphology, len(raw.morphology)),
		roots:     make(map[string]*Root, len(raw.roots)),
	}

	steps := []func(*rawTables) error{
		x.buildWords,
		x.buildVerses,
		x.buildChapters,
		x.checkWordRanges,
		x.buildMorphology,
		x.buildPages,
		x.buildRoots,
	}
	for _, step := range steps {
		if err := step(raw); err != nil {
			return nil, err
		}
	}
	return x, nil
}

// sortedContiguous returns the keys in order and checks they have no gaps.
func sortedContiguous[T any](table map[int]T, what string) ([]int, error) {
	if len(table) == 0 {
		return nil, loadErrorf("%s: table is empty", what)
	}
	keys := make([]int, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for i := 1; i < len(keys); i++ {
		if keys[i] != keys[i-1]+1 {
			return nil, loadErrorf("%s: gap between %d and %d", what, keys[i-1], keys[i])
		}
	}
	return keys, nil
}

func (x *Index) buildWords(raw *rawTables) error {
	keys, err := sortedContiguous(raw.words, "words")
	if err != nil {
		return err
	}
	x.firstWord = keys[0]
	x.words = make([]Word, len(keys))
	for i, k := range keys {
		x.words[i] = Word{Index: k, Text: raw.words[k], Gloss: raw.glosses[k]}
	}
	return nil
}

func (x *Index) buildVerses(raw *rawTables) error {
	keys, err := sortedContiguous(raw.verses, "verses")
	if err != nil {
		return err
	}
	x.firstVerse = keys[0]
	x.verses = make([]Verse, len(keys))
	for i, k := range keys {
		rv := raw.verses[k]
		x.verses[i] = Verse{
			Index:       k,
			StartWord:   int(rv.StartWord),
			EndWord:     int(rv.EndWord),
			Translation: rv.En,
		}
	}
	return nil
}

// buildChapters accepts both chapter shapes: records with precomputed
// start/end verse indices and records carrying only a verse count.
func (x *Index) buildChapters(raw *rawTables) error {
	keys, err := sortedContiguous(raw.chapters, "chapters")
	if err != nil {
		return err
	}
	if keys[0] != 1 {
		return loadErrorf("chapters: numbering starts at %d, want 1", keys[0])
	}

	total := 0
	for _, k := range keys {
		total += raw.chapters[k].count()
	}
	if total != len(x.verses) {
		return loadErrorf("chapters: verse counts sum to %d, verse table has %d", total, len(x.verses))
	}

	x.chapters = make([]Chapter, len(keys))
	start := x.firstVerse
	for i, k := range keys {
		rc := raw.chapters[k]
		n := rc.count()
		if n < 1 {
			return loadErrorf("chapter %d: no verses", k)
		}
		if rc.Start != nil && int(*rc.Start) != start {
			return loadErrorf("chapter %d: start is %d, expected %d", k, int(*rc.Start), start)
		}
		if rc.End != nil && int(*rc.End) != start+n-1 {
			return loadErrorf("chapter %d: end is %d, expected %d", k, int(*rc.End), start+n-1)
		}
		x.chapters[i] = Chapter{Number: k, Name: rc.Name, VerseCount: n, Start: start}
		for local := 1; local <= n; local++ {
			v := &x.verses[start-x.firstVerse+local-1]
			v.Chapter = k
			v.Local = local
		}
		start += n
	}
	return nil
}

func (x *Index) checkWordRanges(*rawTables) error {
	lastWord := x.firstWord + len(x.words) - 1
	for i, v := range x.verses {
		if v.EndWord < v.StartWord {
			return loadErrorf("verse %d: end word %d before start word %d", v.Index, v.EndWord, v.StartWord)
		}
		if v.StartWord < x.firstWord || v.EndWord > lastWord {
			return loadErrorf("verse %d: words %d..%d outside word table %d..%d",
				v.Index, v.StartWord, v.EndWord, x.firstWord, lastWord)
		}
		if i > 0 && v.StartWord != x.verses[i-1].EndWord+1 {
			return loadErrorf("verse %d: starts at word %d, previous verse ends at %d",
				v.Index, v.StartWord, x.verses[i-1].EndWord)
		}
	}
	return nil
}

// buildMorphology accepts records keyed by global word index with a
// "c:v:w" id, and the older shape keyed by "c:v:w" with a numeric id.
func (x *Index) buildMorphology(raw *rawTables) error {
	for key, rm := range raw.morphology {
		id := strings.TrimSpace(string(rm.ID))
		wordIndex, err := strconv.Atoi(strings.TrimSpace(key))
		refText := id
		if err != nil {
			wordIndex, err = strconv.Atoi(id)
			if err != nil {
				return loadErrorf("morphology %q: neither key nor id is a word index", key)
			}
			refText = key
		}
		ref, err := ParseWordRef(refText)
		if err != nil {
			return &DataLoadError{Reason: fmt.Sprintf("morphology %q", key), Err: err}
		}
		if _, ok := x.Word(wordIndex); !ok {
			return loadErrorf("morphology %q: word %d not in word table", key, wordIndex)
		}
		v, ok := x.VerseOfWord(wordIndex)
		if !ok {
			return loadErrorf("morphology %q: word %d belongs to no verse", key, wordIndex)
		}
		if want := (WordRef{Chapter: v.Chapter, Verse: v.Local, Word: wordIndex - v.StartWord + 1}); ref != want {
			return loadErrorf("morphology %q: id %s does not match word %d at %s", key, ref, wordIndex, want)
		}
		segments, err := decodeSegments(rm.Words)
		if err != nil {
			return &DataLoadError{Reason: fmt.Sprintf("morphology %q: segments", key), Err: err}
		}
		m := &Morphology{WordIndex: wordIndex, ID: ref.String(), Ref: ref, Segments: segments}
		x.morph[wordIndex] = m
		x.morphByID[m.ID] = m
	}
	return nil
}

// decodeSegments reads segments stored as an array or as an object keyed
// by "c:v:w:s", ordered by the trailing segment ordinal.
func decodeSegments(data json.RawMessage) ([]Segment, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	keyed, err := decodeKeyed[rawSegment](data)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(keyed))
	for k := range keyed {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, aok := segmentOrdinal(keys[i])
		b, bok := segmentOrdinal(keys[j])
		if aok && bok && a != b {
			return a < b
		}
		return keys[i] < keys[j]
	})
	out := make([]Segment, 0, len(keys))
	for _, k := range keys {
		rs := keyed[k]
		out = append(out, Segment{
			Surface:  rs.Word,
			POS:      rs.POS,
			Root:     rs.Root,
			Lemma:    rs.Lemma,
			Features: rs.Morphology,
		})
	}
	return out, nil
}

func segmentOrdinal(key string) (int, bool) {
	if i := strings.LastIndexByte(key, ':'); i >= 0 {
		key = key[i+1:]
	}
	n, err := strconv.Atoi(key)
	return n, err == nil
}

func (x *Index) refGlobal(ref Ref) (int, bool) {
	c, ok := x.Chapter(ref.Chapter)
	if !ok || ref.Verse < 1 || ref.Verse > c.VerseCount {
		return 0, false
	}
	return c.Start + ref.Verse - 1, true
}

func (x *Index) buildPages(raw *rawTables) error {
	if len(raw.pages) == 0 {
		return loadErrorf("pages: table is empty")
	}
	pages := slices.Clone(raw.pages)
	sort.SliceStable(pages, func(i, j int) bool { return pages[i].Page < pages[j].Page })

	x.pages = make([]Page, len(pages))
	prevTo := x.firstVerse - 1
	for i, rp := range pages {
		if int(rp.Page) != i+1 {
			return loadErrorf("pages: expected page %d, found %d", i+1, int(rp.Page))
		}
		from, err := ParseRef(rp.From)
		if err != nil {
			return &DataLoadError{Reason: fmt.Sprintf("page %d: from", i+1), Err: err}
		}
		to, err := ParseRef(rp.To)
		if err != nil {
			return &DataLoadError{Reason: fmt.Sprintf("page %d: to", i+1), Err: err}
		}
		fromG, ok := x.refGlobal(from)
		if !ok {
			return loadErrorf("page %d: from %s does not exist", i+1, from)
		}
		toG, ok := x.refGlobal(to)
		if !ok {
			return loadErrorf("page %d: to %s does not exist", i+1, to)
		}
		if fromG > toG {
			return loadErrorf("page %d: from %s is after to %s", i+1, from, to)
		}
		if fromG != prevTo+1 {
			return loadErrorf("page %d: starts at %s, not immediately after previous page", i+1, from)
		}
		words := x.verses[toG-x.firstVerse].EndWord - x.verses[fromG-x.firstVerse].StartWord + 1
		if int(rp.WordCount) != words {
			return loadErrorf("page %d: word_count is %d, verses hold %d words", i+1, int(rp.WordCount), words)
		}
		x.pages[i] = Page{Number: i + 1, From: from, To: to, WordCount: words}
		prevTo = toG
	}
	if last := x.LastVerse(); prevTo != last.Index {
		return loadErrorf("pages: last page ends before verse %d", last.Index)
	}
	return nil
}

func (x *Index) buildRoots(raw *rawTables) error {
	for key, rr := range raw.roots {
		root := &Root{Root: key, Count: int(rr.RootCount), Forms: make(map[string]*WordForm, len(rr.Word))}
		sum := 0
		for form, rf := range rr.Word {
			wf := &WordForm{
				Form:        form,
				Count:       int(rf.WordCount),
				VerseCount:  len(rf.Verses),
				Occurrences: make([]Occurrence, len(rf.Verses)),
			}
			if rf.VerseCount != nil && int(*rf.VerseCount) != len(rf.Verses) {
				return loadErrorf("root %q form %q: VerseCount is %d, %d verses listed",
					key, form, int(*rf.VerseCount), len(rf.Verses))
			}
			for i, o := range rf.Verses {
				wf.Occurrences[i] = Occurrence{Key: string(o.Key), ID: string(o.ID)}
			}
			sum += wf.Count
			root.Forms[form] = wf
		}
		if sum != root.Count {
			return loadErrorf("root %q: RootCount is %d, word forms sum to %d", key, root.Count, sum)
		}
		x.roots[key] = root
	}
	return nil
}
