package assembler

import "quran-tui/internal/corpus"

const notAvailable = "N/A"

// MorphologyModel is the popup data for one word.
type MorphologyModel struct {
	WordIndex int
	ID        string
	Ref       corpus.WordRef
	Surface   string
	Gloss     string
	AudioURL  string
	Rows      []SegmentRow
}

type SegmentRow struct {
	Word     string
	POS      string
	Root     string
	Lemma    string
	Features string
	// RootLinkable is set when the root can open the concordance.
	RootLinkable bool
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}

// Morphology builds the popup model for a global word index.
func (a *Assembler) Morphology(wordIndex int) (*MorphologyModel, error) {
	w, ok := a.idx.Word(wordIndex)
	if !ok {
		return nil, corpus.NotFound("word", wordIndex)
	}
	m, ok := a.idx.Morphology(wordIndex)
	if !ok {
		return nil, corpus.NotFound("morphology", wordIndex)
	}

	model := &MorphologyModel{
		WordIndex: wordIndex,
		ID:        m.ID,
		Ref:       m.Ref,
		Surface:   w.Text,
		Gloss:     w.Gloss,
		Rows:      make([]SegmentRow, 0, len(m.Segments)),
	}
	if a.audio != nil {
		if url, ok := a.audio.WordURL(m.ID); ok {
			model.AudioURL = url
		}
	}
	for _, s := range m.Segments {
		model.Rows = append(model.Rows, SegmentRow{
			Word:         orNA(s.Surface),
			POS:          orNA(s.POS),
			Root:         orNA(s.Root),
			Lemma:        orNA(s.Lemma),
			Features:     orNA(s.Features),
			RootLinkable: s.Root != "" && s.Root != notAvailable,
		})
	}
	return model, nil
}
