package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"quran-tui/internal/assembler"
	"quran-tui/internal/concordance"
	"quran-tui/internal/corpus"
	"quran-tui/internal/navigation"
	"quran-tui/internal/theme"
)

func (m Model) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}
	if m.session == nil {
		return m.loadingView()
	}

	c := m.session.Navigator.Cursor()
	s := m.styles

	var header string
	switch m.mode {
	case modeGoto:
		header = s.Header.Render("Go to") + "\n" + m.textInput.View()
	case modeChapter:
		ch, _ := m.session.Index.Chapter(c.Chapter)
		header = s.Header.Render(s.Title.Render(fmt.Sprintf("%d. %s", ch.Number, ch.Name)) +
			fmt.Sprintf("  %d verses · font: %s", ch.VerseCount, fontOf(c, m.route())))
	case modeMorph:
		title := "Morphology"
		if m.morph != nil {
			title = fmt.Sprintf("Morphology · %s", m.morph.ID)
		}
		header = s.Header.Render(s.Title.Render(title))
	case modeConcordance:
		header = s.Header.Render(s.Title.Render("Concordance · "+c.Root) +
			fmt.Sprintf("  font: %s", fontOf(c, m.route())))
	default:
		ch, _ := m.session.Index.Chapter(c.Chapter)
		title := s.Title.Render(fmt.Sprintf("Page %d/%d", c.Page, m.session.Index.PageCount()))
		header = s.Header.Render(fmt.Sprintf("%s  %s %d:%d · font: %s",
			title, ch.Name, c.Chapter, c.Verse, fontOf(c, m.route())))
	}

	var help string
	if m.loading {
		help = s.Help.Render("Loading...")
	} else {
		help = s.Help.Render(helpText[m.mode])
	}

	if m.status != "" {
		help += "\n" + s.VerseNumber.Render(m.status)
	}

	var errorMsg string
	if m.err != nil {
		errorMsg = "\n" + s.Error.Render(fmt.Sprintf("Error: %v", m.err))
	}

	return fmt.Sprintf("%s\n%s\n%s%s", header, m.viewport.View(), help, errorMsg)
}

func fontOf(c navigation.Cursor, r navigation.Route) string {
	if f, ok := c.Fonts[r]; ok {
		return f
	}
	return navigation.DefaultFontFor(r)
}

var helpText = map[viewMode]string{
	modeReader:      "n/p: page | [/]: verse | g: go to | c: chapter | m: morphology | r: roots | t: translation | a: audio | x: manuscripts | f: font | s: plain | T: theme | q: quit",
	modeChapter:     "n/p: chapter | [/]: verse | enter: read page | a: audio | x: manuscripts | f: font | esc: back | q: quit",
	modeGoto:        "enter: go | esc: cancel",
	modeMorph:       "h/l: word | a: word audio | o: open root | esc: back | q: quit",
	modeConcordance: "j/k: occurrence | tab: word form | [/]: root | enter: read verse | f: font | esc: back | q: quit",
}

func (m Model) loadingView() string {
	s := m.styles
	if m.loadErr != nil {
		return fmt.Sprintf("\n  %s\n\n  %v\n\n  %s",
			s.Error.Render("The corpus could not be loaded."),
			m.loadErr,
			s.Help.Render("R: retry | q: quit"))
	}
	return "\n  Loading corpus..."
}

func pageWords(page *assembler.PageModel) []int {
	words := make([]int, 0, page.Words)
	for _, v := range page.Verses {
		for _, w := range v.Words {
			words = append(words, w.Index)
		}
	}
	return words
}

func renderMarker(s theme.Styles, width int, mk *assembler.ChapterMarker) string {
	return s.Marker.Width(width).Render(fmt.Sprintf("سورة %s · %d", mk.Name, mk.Number))
}

// renderPage returns the page text and the line of the focused verse.
// selected, when non-zero, is a global word index to emphasize.
func renderPage(page *assembler.PageModel, s theme.Styles, width, selected int) (string, int) {
	var sb strings.Builder
	focus := 0

	for _, v := range page.Verses {
		if v.Marker != nil {
			sb.WriteString(renderMarker(s, width, v.Marker) + "\n\n")
		}

		words := make([]string, len(v.Words))
		for i, w := range v.Words {
			words[i] = w.Text
			if w.Index == selected {
				words[i] = s.Root.Render(w.Text)
				focus = strings.Count(sb.String(), "\n")
			}
		}
		if v.Highlighted && selected == 0 {
			focus = strings.Count(sb.String(), "\n")
		}
		sb.WriteString(renderVerse(v, strings.Join(words, " "), page.ShowTranslation, s, width))
	}

	sb.WriteString(s.Help.Render(pageFooter(page)))
	return sb.String(), focus
}

// pageFooter summarizes the page with arrows for the pages either side.
func pageFooter(page *assembler.PageModel) string {
	prev, next := "", ""
	if page.HasPrev {
		prev = "‹ p "
	}
	if page.HasNext {
		next = " n ›"
	}
	return fmt.Sprintf("%spage %d · %s to %s · %d words%s", prev, page.Number, page.From, page.To, page.Words, next)
}

func renderVerse(v assembler.VerseRecord, text string, translation bool, s theme.Styles, width int) string {
	textStyle := s.Verse
	if v.Highlighted {
		textStyle = s.Highlighted
	}
	num := s.VerseNumber.Render(fmt.Sprintf("﴿%d﴾", v.Ref.Verse))
	out := fmt.Sprintf("%s  %s\n", num, textStyle.Width(width).Render(text))
	if translation && v.Translation != "" {
		out += s.Translation.Width(width).Render(v.Translation) + "\n"
	}
	return out + "\n"
}

func renderChapter(ch *assembler.ChapterModel, s theme.Styles, width int) (string, int) {
	var sb strings.Builder
	focus := 0

	for i, v := range ch.Verses {
		if v.Marker != nil {
			sb.WriteString(renderMarker(s, width, v.Marker) + "\n\n")
		}
		if i == ch.TargetIndex {
			focus = strings.Count(sb.String(), "\n")
		}
		sb.WriteString(renderVerse(v, v.Text(), ch.ShowTranslation, s, width))
	}
	return sb.String(), focus
}

func renderMorphology(morph *assembler.MorphologyModel, s theme.Styles) string {
	rows := make([][]string, len(morph.Rows))
	for i, r := range morph.Rows {
		root := r.Root
		if r.RootLinkable {
			root = s.Root.Render(root)
		}
		rows[i] = []string{r.Word, r.POS, root, r.Lemma, r.Features}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(s.Help).
		Headers("Word", "POS", "Root", "Lemma", "Features").
		Rows(rows...)

	title := fmt.Sprintf("%s  %s  %s", s.Title.Render(morph.Surface), morph.Ref, s.Gloss.Render(morph.Gloss))
	return s.Popup.Render(title + "\n" + t.Render())
}

// renderConcordance lists the occurrences of one word form and returns
// the line of the selected occurrence.
func renderConcordance(res *concordance.Result, forms []string, pos int, idx *corpus.Index, s theme.Styles, width int) (string, int) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s  %s\n", s.Title.Render("Root "+res.Root),
		s.Help.Render(fmt.Sprintf("%d occurrences", res.RootCount))))

	styled := make([]string, len(forms))
	for i, f := range forms {
		styled[i] = f
		if f == res.Form {
			styled[i] = s.Highlighted.Render(f)
		}
	}
	sb.WriteString(strings.Join(styled, "  ") + "\n")
	sb.WriteString(s.Help.Render(fmt.Sprintf("%s: %d words in %d verses", res.Form, res.WordFormCount, res.VerseCount)) + "\n\n")

	focus := 0
	for i, hit := range res.Verses {
		cursor := "  "
		if i == pos {
			cursor = "> "
			focus = strings.Count(sb.String(), "\n")
		}
		if !hit.Resolved {
			sb.WriteString(fmt.Sprintf("%s%-10s %s\n", cursor, hit.ID, s.Error.Render("unresolved")))
			continue
		}
		loc := fmt.Sprintf("%-10s p.%-4d", hit.Ref, hit.Page)
		sb.WriteString(cursor + s.VerseNumber.Render(loc) + " " + lipgloss.NewStyle().Width(width-20).Render(verseWith(idx, hit.Word, s)) + "\n")
	}
	return sb.String(), focus
}

// verseWith renders the verse holding word with that word emphasized.
func verseWith(idx *corpus.Index, word int, s theme.Styles) string {
	v, ok := idx.VerseOfWord(word)
	if !ok {
		return ""
	}
	parts := make([]string, 0, v.WordCount())
	for i := v.StartWord; i <= v.EndWord; i++ {
		w, ok := idx.Word(i)
		if !ok {
			continue
		}
		if i == word {
			parts = append(parts, s.Root.Render(w.Text))
		} else {
			parts = append(parts, w.Text)
		}
	}
	return strings.Join(parts, " ")
}
