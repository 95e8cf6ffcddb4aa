package assembler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quran-tui/internal/audio"
	"quran-tui/internal/corpus"
	"quran-tui/internal/corpus/corpustest"
	"quran-tui/internal/resolver"
)

const navigatorBase = "https://corpuscoranicum.de/en/verse-navigator/"

func newAssembler(t *testing.T, opts Options) (*Assembler, *corpus.Index) {
	t.Helper()
	idx := corpustest.Load(t, corpustest.Options{})
	addr := audio.NewAddresser("https://audio.example/words/", "https://audio.example/verses/", nil)
	return New(idx, resolver.New(idx, nil), addr, opts, nil), idx
}

func TestAssemblePage_CrossesChapterBoundary(t *testing.T) {
	a, _ := newAssembler(t, Options{ShowTranslation: true, ExternalVerseBase: navigatorBase})

	page, err := a.AssemblePage(1, nil)
	require.NoError(t, err)

	require.Len(t, page.Verses, corpustest.ChapterSizes[0]+5)
	assert.Equal(t, corpus.Ref{Chapter: 1, Verse: 1}, page.Verses[0].Ref)
	assert.Equal(t, corpus.Ref{Chapter: 2, Verse: 5}, page.Verses[len(page.Verses)-1].Ref)
	assert.True(t, page.ShowTranslation)
	assert.False(t, page.HasPrev)
	assert.True(t, page.HasNext)
	assert.Equal(t, -1, page.HighlightIndex)

	var markers []int
	for i, v := range page.Verses {
		if v.Marker != nil {
			markers = append(markers, i)
		}
	}
	require.Equal(t, []int{0, 7}, markers)
	assert.Equal(t, ChapterMarker{Number: 1, Name: corpustest.ChapterNames[0]}, *page.Verses[0].Marker)
	assert.Equal(t, ChapterMarker{Number: 2, Name: corpustest.ChapterNames[1]}, *page.Verses[7].Marker)

	v := page.Verses[11]
	assert.Equal(t, "002005", v.ID)
	assert.Equal(t, 12, v.GlobalIndex)
	assert.Equal(t, "Translation of 2:5", v.Translation)
	assert.Equal(t, "https://audio.example/verses/002005.mp3", v.AudioURL)
	assert.Equal(t, navigatorBase+"sura/2/verse/5/manuscripts", v.ExternalURL)
}

func TestAssemblePage_LastPage(t *testing.T) {
	a, _ := newAssembler(t, Options{})

	page, err := a.AssemblePage(corpustest.PageCount(), nil)
	require.NoError(t, err)

	assert.Equal(t, corpus.Ref{Chapter: 2, Verse: 286}, page.Verses[0].Ref)
	assert.Equal(t, corpus.Ref{Chapter: 3, Verse: 5}, page.Verses[len(page.Verses)-1].Ref)
	assert.NotNil(t, page.Verses[0].Marker)
	assert.NotNil(t, page.Verses[1].Marker)
	assert.True(t, page.HasPrev)
	assert.False(t, page.HasNext)
	assert.Empty(t, page.Verses[0].ExternalURL)
}

func TestAssemblePage_WordCountMatchesEveryPage(t *testing.T) {
	a, idx := newAssembler(t, Options{})

	for _, p := range idx.Pages() {
		page, err := a.AssemblePage(p.Number, nil)
		require.NoError(t, err, p.Number)
		assert.Equal(t, p.WordCount, page.Words, "page %d", p.Number)
		for _, v := range page.Verses {
			assert.True(t, p.Contains(v.Ref), "page %d holds %s", p.Number, v.Ref)
		}
	}
}

func TestAssemblePage_Highlight(t *testing.T) {
	a, _ := newAssembler(t, Options{})

	target := corpus.Ref{Chapter: 2, Verse: 3}
	page, err := a.AssemblePage(1, &target)
	require.NoError(t, err)
	require.Equal(t, 9, page.HighlightIndex)
	assert.True(t, page.Verses[9].Highlighted)

	n := 0
	for _, v := range page.Verses {
		if v.Highlighted {
			n++
		}
	}
	assert.Equal(t, 1, n)

	elsewhere := corpus.Ref{Chapter: 3, Verse: 1}
	page, err = a.AssemblePage(1, &elsewhere)
	require.NoError(t, err)
	assert.Equal(t, -1, page.HighlightIndex)
}

func TestAssemblePage_Missing(t *testing.T) {
	a, _ := newAssembler(t, Options{})

	for _, n := range []int{0, -1, corpustest.PageCount() + 1} {
		_, err := a.AssemblePage(n, nil)
		assert.True(t, corpus.IsNotFound(err), n)
	}
}

func TestAssembleChapter(t *testing.T) {
	a, _ := newAssembler(t, Options{})

	ch, err := a.AssembleChapter(2, 255)
	require.NoError(t, err)
	require.Len(t, ch.Verses, 286)
	assert.Equal(t, 254, ch.TargetIndex)
	assert.True(t, ch.Verses[254].Highlighted)
	assert.NotNil(t, ch.Verses[0].Marker)
	for _, v := range ch.Verses[1:] {
		assert.Nil(t, v.Marker)
	}
	assert.Equal(t, corpustest.ChapterNames[1], ch.Chapter.Name)

	for _, target := range []int{0, 8, -3} {
		ch, err := a.AssembleChapter(1, target)
		require.NoError(t, err)
		assert.Equal(t, -1, ch.TargetIndex, target)
	}

	_, err = a.AssembleChapter(4, 1)
	assert.True(t, corpus.IsNotFound(err))
}

func TestAssemble_StripDiacritics(t *testing.T) {
	a, _ := newAssembler(t, Options{StripDiacritics: true})

	page, err := a.AssemblePage(1, nil)
	require.NoError(t, err)
	assert.Equal(t, "بسم", page.Verses[0].Words[0].Text)
	assert.Equal(t, "gloss 1", page.Verses[0].Words[0].Gloss)

	a.SetStripDiacritics(false)
	page, err = a.AssemblePage(1, nil)
	require.NoError(t, err)
	assert.Equal(t, "بِسْمِ", page.Verses[0].Words[0].Text)
}

func TestVerseRecord_Text(t *testing.T) {
	v := VerseRecord{Words: []WordToken{{Text: "بِسْمِ"}, {Text: "ٱللَّهِ"}}}
	assert.Equal(t, "بِسْمِ ٱللَّهِ", v.Text())
}

func TestStripHTMLTags(t *testing.T) {
	assert.Equal(t, "In the name of God", stripHTMLTags(" In the <i>name</i> of God<sup foot_note=1></sup>"))
	assert.Equal(t, "plain", stripHTMLTags("plain"))
}

func TestMorphology(t *testing.T) {
	a, _ := newAssembler(t, Options{})

	// Word 5 is 1:2:2 and carries a conjunction prefix without a root.
	m, err := a.Morphology(5)
	require.NoError(t, err)
	assert.Equal(t, "1:2:2", m.ID)
	assert.Equal(t, corpus.WordRef{Chapter: 1, Verse: 2, Word: 2}, m.Ref)
	assert.Equal(t, corpustest.Surfaces[4], m.Surface)
	assert.Equal(t, "gloss 5", m.Gloss)
	assert.Equal(t, "https://audio.example/words/1/001_002_002.mp3", m.AudioURL)

	require.Len(t, m.Rows, 2)
	assert.Equal(t, SegmentRow{Word: "وَ", POS: "CONJ", Root: "N/A", Lemma: "N/A", Features: "PREFIX|w:CONJ+"}, m.Rows[0])
	assert.Equal(t, corpustest.Roots[4], m.Rows[1].Root)
	assert.True(t, m.Rows[1].RootLinkable)

	_, err = a.Morphology(0)
	assert.True(t, corpus.IsNotFound(err))
}
