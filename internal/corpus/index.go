package corpus

import (
	"slices"
	"sort"
)

// Index is the read-only, fully validated view over all source tables.
// It is only ever handed out after a complete, successful load.
type Index struct {
	chapters   []Chapter
	verses     []Verse
	firstVerse int
	words      []Word
	firstWord  int
	morph      map[int]*Morphology
	morphByID  map[string]*Morphology
	pages      []Page
	roots      map[string]*Root
}

func (x *Index) Chapter(number int) (Chapter, bool) {
	if number < 1 || number > len(x.chapters) {
		return Chapter{}, false
	}
	return x.chapters[number-1], true
}

// Chapters returns every chapter in order.
func (x *Index) Chapters() []Chapter { return slices.Clone(x.chapters) }

func (x *Index) ChapterCount() int { return len(x.chapters) }

// Verse looks a verse up by its global index.
func (x *Index) Verse(global int) (Verse, bool) {
	i := global - x.firstVerse
	if i < 0 || i >= len(x.verses) {
		return Verse{}, false
	}
	return x.verses[i], true
}

func (x *Index) VerseCount() int { return len(x.verses) }

func (x *Index) FirstVerse() Verse { return x.verses[0] }

func (x *Index) LastVerse() Verse { return x.verses[len(x.verses)-1] }

// VerseOfWord finds the verse whose word range holds the given word index.
func (x *Index) VerseOfWord(word int) (Verse, bool) {
	i := sort.Search(len(x.verses), func(i int) bool { return x.verses[i].EndWord >= word })
	if i == len(x.verses) || x.verses[i].StartWord > word {
		return Verse{}, false
	}
	return x.verses[i], true
}

func (x *Index) Word(index int) (Word, bool) {
	i := index - x.firstWord
	if i < 0 || i >= len(x.words) {
		return Word{}, false
	}
	return x.words[i], true
}

func (x *Index) WordCount() int { return len(x.words) }

// Morphology looks a word's analysis up by global word index.
func (x *Index) Morphology(word int) (*Morphology, bool) {
	m, ok := x.morph[word]
	return m, ok
}

// MorphologyByID looks a word's analysis up by its "chapter:verse:word" id.
func (x *Index) MorphologyByID(id string) (*Morphology, bool) {
	m, ok := x.morphByID[id]
	return m, ok
}

func (x *Index) Page(number int) (Page, bool) {
	if number < 1 || number > len(x.pages) {
		return Page{}, false
	}
	return x.pages[number-1], true
}

// Pages returns every page in order.
func (x *Index) Pages() []Page { return slices.Clone(x.pages) }

func (x *Index) PageCount() int { return len(x.pages) }

func (x *Index) Root(root string) (*Root, bool) {
	r, ok := x.roots[root]
	return r, ok
}

// Roots returns the root keys in no particular order.
func (x *Index) Roots() []string {
	out := make([]string, 0, len(x.roots))
	for k := range x.roots {
		out = append(out, k)
	}
	return out
}

func (x *Index) RootCount() int { return len(x.roots) }
