package corpus

import (
	"fmt"
	"strconv"
	"strings"
)

// Ref addresses a verse by chapter and local verse number.
type Ref struct {
	Chapter int
	Verse   int
}

func (r Ref) String() string { return fmt.Sprintf("%d:%d", r.Chapter, r.Verse) }

// Compare orders refs lexicographically by (chapter, verse).
func (r Ref) Compare(o Ref) int {
	switch {
	case r.Chapter < o.Chapter:
		return -1
	case r.Chapter > o.Chapter:
		return 1
	case r.Verse < o.Verse:
		return -1
	case r.Verse > o.Verse:
		return 1
	}
	return 0
}

// ParseRef parses "chapter:verse".
func ParseRef(s string) (Ref, error) {
	parts, err := splitNumbers(s, 2)
	if err != nil {
		return Ref{}, fmt.Errorf("parse ref %q: %w", s, err)
	}
	return Ref{Chapter: parts[0], Verse: parts[1]}, nil
}

// WordRef addresses a word by chapter, local verse and word ordinal.
type WordRef struct {
	Chapter int
	Verse   int
	Word    int
}

func (w WordRef) String() string { return fmt.Sprintf("%d:%d:%d", w.Chapter, w.Verse, w.Word) }

func (w WordRef) VerseRef() Ref { return Ref{Chapter: w.Chapter, Verse: w.Verse} }

// ParseWordRef parses "chapter:verse:word".
func ParseWordRef(s string) (WordRef, error) {
	parts, err := splitNumbers(s, 3)
	if err != nil {
		return WordRef{}, fmt.Errorf("parse word ref %q: %w", s, err)
	}
	return WordRef{Chapter: parts[0], Verse: parts[1], Word: parts[2]}, nil
}

func splitNumbers(s string, want int) ([]int, error) {
	fields := strings.Split(strings.TrimSpace(s), ":")
	if len(fields) != want {
		return nil, fmt.Errorf("expected %d parts, got %d", want, len(fields))
	}
	out := make([]int, want)
	for i, f := range fields {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, fmt.Errorf("part %d: %w", i+1, err)
		}
		if n < 1 {
			return nil, fmt.Errorf("part %d: %d is not positive", i+1, n)
		}
		out[i] = n
	}
	return out, nil
}

type Chapter struct {
	Number     int
	Name       string
	VerseCount int
	// Start is the global index of the chapter's first verse.
	Start int
}

// End is the global index of the chapter's last verse.
func (c Chapter) End() int { return c.Start + c.VerseCount - 1 }

type Verse struct {
	Index       int
	Chapter     int
	Local       int
	StartWord   int
	EndWord     int
	Translation string
}

func (v Verse) Ref() Ref { return Ref{Chapter: v.Chapter, Verse: v.Local} }

func (v Verse) WordCount() int { return v.EndWord - v.StartWord + 1 }

type Word struct {
	Index int
	Text  string
	Gloss string
}

// Segment is one morphological sub-unit of a word.
type Segment struct {
	Surface  string
	POS      string
	Root     string
	Lemma    string
	Features string
}

type Morphology struct {
	WordIndex int
	ID        string
	Ref       WordRef
	Segments  []Segment
}

type Page struct {
	Number    int
	From      Ref
	To        Ref
	WordCount int
}

// Contains reports whether ref lies in the inclusive page range.
func (p Page) Contains(ref Ref) bool {
	return p.From.Compare(ref) <= 0 && ref.Compare(p.To) <= 0
}

type Root struct {
	Root  string
	Count int
	Forms map[string]*WordForm
}

type WordForm struct {
	Form        string
	Count       int
	VerseCount  int
	Occurrences []Occurrence
}

// Occurrence is one concordance hit: Key is the global word index and
// ID the "chapter:verse:word" location, both as stored in the root table.
type Occurrence struct {
	Key string
	ID  string
}
