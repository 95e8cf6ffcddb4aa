// Package audio builds recitation addresses and enforces that only one
// clip plays at a time.
package audio

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// WordKey zero-pads a word location: (2, 255, 1) -> "002255001".
func WordKey(chapter, verse, word int) string {
	return fmt.Sprintf("%03d%03d%03d", chapter, verse, word)
}

// VerseKey zero-pads a verse location: (2, 255) -> "002255".
func VerseKey(chapter, verse int) string {
	return fmt.Sprintf("%03d%03d", chapter, verse)
}

// ParseWordID splits a "chapter:verse:word" id.
func ParseWordID(id string) (chapter, verse, word int, err error) {
	parts := strings.Split(id, ":")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("word id %q: want 3 parts, got %d", id, len(parts))
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 1 {
			return 0, 0, 0, fmt.Errorf("word id %q: part %d is not a positive number", id, i+1)
		}
		nums[i] = n
	}
	return nums[0], nums[1], nums[2], nil
}

// Addresser turns word and verse locations into recitation URLs.
type Addresser struct {
	WordBase  string
	VerseBase string
	log       *slog.Logger
}

func NewAddresser(wordBase, verseBase string, logger *slog.Logger) *Addresser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Addresser{WordBase: wordBase, VerseBase: verseBase, log: logger}
}

// WordURL maps "c:v:w" to base/{c}/{ccc}_{vvv}_{www}.mp3. A malformed id
// yields no URL and is logged.
func (a *Addresser) WordURL(id string) (string, bool) {
	c, v, w, err := ParseWordID(id)
	if err != nil {
		a.log.Warn("invalid word audio key", "key", id, "error", err)
		return "", false
	}
	return fmt.Sprintf("%s%d/%03d_%03d_%03d.mp3", a.WordBase, c, c, v, w), true
}

// VerseURL maps a verse to base/cccvvv.mp3.
func (a *Addresser) VerseURL(chapter, verse int) string {
	return a.VerseBase + VerseKey(chapter, verse) + ".mp3"
}
