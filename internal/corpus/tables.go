package corpus

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// flexInt accepts a JSON number, a numeric string or null.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*f = 0
		return nil
	}
	s = strings.Trim(s, `"`)
	if s == "" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid integer %s", string(b))
	}
	*f = flexInt(n)
	return nil
}

// flexString accepts a JSON string, a number or null.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || string(b) == "null":
		*f = ""
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
	default:
		*f = flexString(b)
	}
	return nil
}

type rawChapter struct {
	Name       string   `json:"name"`
	NAyah      flexInt  `json:"nAyah"`
	VerseCount flexInt  `json:"verseCount"`
	Start      *flexInt `json:"start"`
	End        *flexInt `json:"end"`
}

func (c rawChapter) count() int {
	if c.NAyah > 0 {
		return int(c.NAyah)
	}
	if c.VerseCount > 0 {
		return int(c.VerseCount)
	}
	if c.Start != nil && c.End != nil {
		return int(*c.End) - int(*c.Start) + 1
	}
	return 0
}

type rawVerse struct {
	StartWord flexInt `json:"start_word"`
	EndWord   flexInt `json:"end_word"`
	En        string  `json:"en"`
}

type rawMorphology struct {
	ID    flexString      `json:"id"`
	Words json.RawMessage `json:"words"`
}

type rawSegment struct {
	Word       string `json:"word"`
	POS        string `json:"pos"`
	Root       string `json:"root"`
	Lemma      string `json:"lemma"`
	Morphology string `json:"morphology"`
}

type rawPage struct {
	Page      flexInt `json:"page"`
	From      string  `json:"from"`
	To        string  `json:"to"`
	WordCount flexInt `json:"word_count"`
}

type rawRoot struct {
	RootCount flexInt            `json:"RootCount"`
	Word      map[string]rawForm `json:"Word"`
}

type rawForm struct {
	WordCount  flexInt         `json:"WordCount"`
	VerseCount *flexInt        `json:"VerseCount"`
	Verses     []rawOccurrence `json:"Verses"`
}

type rawOccurrence struct {
	Key flexString `json:"Key"`
	ID  flexString `json:"ID"`
}

// rawTables holds every decoded source table before normalization.
type rawTables struct {
	chapters   map[int]rawChapter
	verses     map[int]rawVerse
	words      map[int]string
	glosses    map[int]string
	morphology map[string]rawMorphology
	pages      []rawPage
	roots      map[string]rawRoot
}

// decodeKeyed decodes a table stored either as an object or as an array.
// Array positions become decimal keys; null entries are skipped.
func decodeKeyed[T any](data []byte) (map[string]T, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("empty table")
	}
	out := make(map[string]T)
	switch data[0] {
	case '{':
		var m map[string]*T
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, err
		}
		for k, v := range m {
			if v != nil {
				out[k] = *v
			}
		}
	case '[':
		var a []*T
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, err
		}
		for i, v := range a {
			if v != nil {
				out[strconv.Itoa(i)] = *v
			}
		}
	default:
		return nil, fmt.Errorf("expected object or array, got %q", data[0])
	}
	return out, nil
}

// decodeIndexed is decodeKeyed for tables keyed by a numeric id.
func decodeIndexed[T any](data []byte) (map[int]T, error) {
	keyed, err := decodeKeyed[T](data)
	if err != nil {
		return nil, err
	}
	out := make(map[int]T, len(keyed))
	for k, v := range keyed {
		n, err := strconv.Atoi(strings.TrimSpace(k))
		if err != nil {
			return nil, fmt.Errorf("key %q is not numeric", k)
		}
		out[n] = v
	}
	return out, nil
}

func decodePages(data []byte) ([]rawPage, error) {
	var pages []rawPage
	if err := json.Unmarshal(data, &pages); err != nil {
		return nil, err
	}
	return pages, nil
}

func decodeRoots(data []byte) (map[string]rawRoot, error) {
	var roots map[string]rawRoot
	if err := json.Unmarshal(data, &roots); err != nil {
		return nil, err
	}
	return roots, nil
}
