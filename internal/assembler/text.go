package assembler

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var htmlTag = regexp.MustCompile(`<[^>]*>`)

// stripHTMLTags drops the markup carried by translation text.
func stripHTMLTags(s string) string {
	return strings.TrimSpace(htmlTag.ReplaceAllString(s, ""))
}

// StripDiacritics removes nonspacing marks (harakat, sukun, shadda,
// superscript alef) and keeps the consonantal skeleton.
func StripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
