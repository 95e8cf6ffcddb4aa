package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"quran-tui/internal/app"
	"quran-tui/internal/assembler"
	"quran-tui/internal/audio"
	"quran-tui/internal/concordance"
	"quran-tui/internal/corpus"
	"quran-tui/internal/navigation"
	"quran-tui/internal/resolver"
	"quran-tui/internal/theme"
)

type viewMode int

const (
	modeReader viewMode = iota
	modeChapter
	modeGoto
	modeMorph
	modeConcordance
)

const (
	headerHeight = 3
	footerHeight = 2
)

type Model struct {
	services  *app.Services
	session   *app.Session
	viewport  viewport.Model
	textInput textinput.Model
	styles    theme.Styles
	mode      viewMode
	width     int
	height    int
	ready     bool
	loading   bool
	loadErr   error
	err       error
	strip     bool

	content   string
	focusLine int
	// focused is the highlighted verse of the page or chapter on screen.
	focused *assembler.VerseRecord
	status  string

	// morphology word cursor over the words of the current page
	pageWords []int
	wordPos   int
	morph     *assembler.MorphologyModel

	conc   *concordance.Result
	hitPos int
}

type indexLoadedMsg struct{ idx *corpus.Index }
type loadFailedMsg struct{ err error }
type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

func NewModel(s *app.Services) Model {
	ti := textinput.New()
	ti.Placeholder = "chapter:verse, chapter, or p page (e.g. 2:255, 18, p 50)"
	ti.CharLimit = 20
	ti.Width = 50

	return Model{
		services:  s,
		textInput: ti,
		styles:    theme.For(s.Config.UI.Theme).Styles(),
		mode:      modeReader,
		loading:   true,
		strip:     s.Config.UI.StripDiacritics,
	}
}

func (m Model) Init() tea.Cmd {
	return loadIndex(m.services.Loader)
}

func loadIndex(l *corpus.Loader) tea.Cmd {
	return func() tea.Msg {
		idx, err := l.Reload(context.Background())
		if err != nil {
			return loadFailedMsg{err}
		}
		return indexLoadedMsg{idx}
	}
}

func playAudio(p *audio.Player, url string) tea.Cmd {
	return func() tea.Msg {
		if err := p.Play(url); err != nil {
			return errMsg{err}
		}
		return nil
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.mode == modeGoto {
			return m.updateGoto(msg)
		}
		if m.session == nil {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "R":
				if !m.loading {
					m.loading = true
					m.loadErr = nil
					return m, loadIndex(m.services.Loader)
				}
			}
			return m, nil
		}
		if next, cmd, handled := m.handleKey(msg); handled {
			return next, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
			m.viewport.YPosition = headerHeight
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - headerHeight - footerHeight
		}
		m.refresh()

	case indexLoadedMsg:
		m.loading = false
		m.loadErr = nil
		m.session = m.services.NewSession(msg.idx)
		m.session.Assembler.SetStripDiacritics(m.strip)
		m.mode = modeReader
		m.refresh()

	case loadFailedMsg:
		m.loading = false
		if m.session != nil {
			m.err = fmt.Errorf("reload failed, still showing the previous corpus: %w", msg.err)
			break
		}
		m.loadErr = msg.err

	case errMsg:
		m.err = msg.err
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m Model) updateGoto(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeReader
		m.textInput.Blur()
		m.refresh()
		return m, nil
	case tea.KeyEnter:
		input := m.textInput.Value()
		m.textInput.SetValue("")
		m.textInput.Blur()
		m.mode = modeReader

		ref, page, err := resolver.ParseTarget(input)
		switch {
		case err != nil:
			m.err = fmt.Errorf("invalid reference %q", input)
		case page > 0:
			m.session.Navigator.Dispatch(navigation.GoToPage{Page: page})
		default:
			m.session.Navigator.Dispatch(navigation.GoToVerse{Chapter: ref.Chapter, Verse: ref.Verse})
		}
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

// handleKey reports handled=false for keys the viewport should see.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	nav := m.session.Navigator
	m.err = nil
	m.status = ""

	switch msg.String() {
	case "q":
		return m, tea.Quit, true
	case "esc":
		if m.mode == modeReader {
			return m, nil, false
		}
		m.mode = modeReader
		m.morph = nil
		m.refresh()
		return m, nil, true
	case "R":
		if m.loading {
			return m, nil, true
		}
		m.loading = true
		return m, loadIndex(m.services.Loader), true
	case "x":
		if m.focused == nil || m.focused.ExternalURL == "" {
			m.status = "No manuscript link for this verse."
		} else {
			m.status = "Manuscripts: " + m.focused.ExternalURL
		}
		return m, nil, true
	case "t":
		nav.Dispatch(navigation.ToggleTranslation{})
		m.refresh()
		return m, nil, true
	case "T":
		nav.Dispatch(navigation.ToggleTheme{})
		m.refresh()
		return m, nil, true
	case "f":
		m.cycleFont()
		return m, nil, true
	case "s":
		m.strip = !m.strip
		m.session.Assembler.SetStripDiacritics(m.strip)
		m.refresh()
		return m, nil, true
	case "g", "/":
		m.mode = modeGoto
		m.textInput.SetValue("")
		m.textInput.Focus()
		return m, textinput.Blink, true
	}

	switch m.mode {
	case modeReader:
		return m.readerKey(msg.String())
	case modeChapter:
		return m.chapterKey(msg.String())
	case modeMorph:
		return m.morphKey(msg.String())
	case modeConcordance:
		return m.concordanceKey(msg.String())
	}
	return m, nil, false
}

func (m Model) readerKey(key string) (Model, tea.Cmd, bool) {
	nav := m.session.Navigator
	c := nav.Cursor()

	switch key {
	case "n", "right":
		nav.Dispatch(navigation.NextPage{})
	case "p", "left":
		nav.Dispatch(navigation.PrevPage{})
	case "]":
		m.stepVerse(1)
	case "[":
		m.stepVerse(-1)
	case "c":
		m.mode = modeChapter
	case "m":
		m.mode = modeMorph
		m.refresh()
		m.wordPos = m.firstWordOf(c)
		m.loadMorph()
	case "r":
		m.mode = modeConcordance
		m.hitPos = 0
	case "a":
		return m, m.playFocused(), true
	default:
		return m, nil, false
	}
	m.refresh()
	return m, nil, true
}

func (m Model) chapterKey(key string) (Model, tea.Cmd, bool) {
	nav := m.session.Navigator
	c := nav.Cursor()

	switch key {
	case "n", "right":
		if c.Chapter >= m.session.Index.ChapterCount() {
			return m, nil, true
		}
		nav.Dispatch(navigation.SelectChapter{Chapter: c.Chapter + 1})
	case "p", "left":
		nav.Dispatch(navigation.SelectChapter{Chapter: max(c.Chapter-1, 1)})
	case "]":
		m.stepVerse(1)
	case "[":
		m.stepVerse(-1)
	case "enter":
		m.mode = modeReader
	case "a":
		return m, m.playFocused(), true
	default:
		return m, nil, false
	}
	m.refresh()
	return m, nil, true
}

func (m Model) morphKey(key string) (Model, tea.Cmd, bool) {
	switch key {
	case "h", "left":
		if m.wordPos > 0 {
			m.wordPos--
		}
	case "l", "right":
		if m.wordPos < len(m.pageWords)-1 {
			m.wordPos++
		}
	case "a":
		if m.morph == nil || m.morph.AudioURL == "" {
			return m, nil, true
		}
		return m, playAudio(m.services.Player, m.morph.AudioURL), true
	case "o", "enter":
		if root, ok := linkableRoot(m.morph); ok {
			m.session.Navigator.Dispatch(navigation.SelectRoot{Root: root})
			m.mode = modeConcordance
			m.hitPos = 0
			m.morph = nil
			m.refresh()
		}
		return m, nil, true
	default:
		return m, nil, false
	}
	m.loadMorph()
	m.refresh()
	return m, nil, true
}

func (m Model) concordanceKey(key string) (Model, tea.Cmd, bool) {
	nav := m.session.Navigator
	conc := m.session.Concordance
	c := nav.Cursor()

	switch key {
	case "j", "down":
		if m.conc != nil && m.hitPos < len(m.conc.Verses)-1 {
			m.hitPos++
		}
	case "k", "up":
		if m.hitPos > 0 {
			m.hitPos--
		}
	case "]", "[":
		roots := conc.ListRoots()
		if i, ok := step(roots, c.Root, key == "]"); ok {
			nav.Dispatch(navigation.SelectRoot{Root: roots[i]})
			m.hitPos = 0
		}
	case "tab", "shift+tab":
		forms, err := conc.WordForms(c.Root)
		if err != nil {
			m.err = err
			break
		}
		if i, ok := step(forms, c.WordForm, key == "tab"); ok {
			nav.Dispatch(navigation.SelectWordForm{Form: forms[i]})
			m.hitPos = 0
		}
	case "enter":
		if m.conc == nil || len(m.conc.Verses) == 0 {
			return m, nil, true
		}
		hit := m.conc.Verses[m.hitPos]
		if !hit.Resolved {
			m.err = fmt.Errorf("occurrence %s cannot be located", hit.ID)
			break
		}
		nav.Dispatch(navigation.GoToVerse{Chapter: hit.Ref.Chapter, Verse: hit.Ref.Verse})
		m.mode = modeReader
	default:
		return m, nil, false
	}
	m.refresh()
	return m, nil, true
}

// step returns the index after (or before) cur in list, wrapping.
func step(list []string, cur string, forward bool) (int, bool) {
	if len(list) == 0 {
		return 0, false
	}
	i := 0
	for j, s := range list {
		if s == cur {
			i = j
			break
		}
	}
	if forward {
		return (i + 1) % len(list), true
	}
	return (i - 1 + len(list)) % len(list), true
}

func (m *Model) stepVerse(delta int) {
	nav := m.session.Navigator
	c := nav.Cursor()
	res := m.session.Resolver

	g, err := res.GlobalVerseIndex(c.Chapter, c.Verse)
	if err != nil {
		m.err = err
		return
	}
	ref, err := res.LocalVerse(g + delta)
	if err != nil {
		return
	}
	nav.Dispatch(navigation.GoToVerse{Chapter: ref.Chapter, Verse: ref.Verse})
}

// playFocused plays the recitation of the highlighted verse.
func (m Model) playFocused() tea.Cmd {
	if m.focused == nil || m.focused.AudioURL == "" {
		return nil
	}
	return playAudio(m.services.Player, m.focused.AudioURL)
}

func (m *Model) cycleFont() {
	route := m.route()
	nav := m.session.Navigator
	cur := nav.Font(route)
	if i, ok := step(navigation.Fonts, cur, true); ok {
		nav.Dispatch(navigation.SetFont{Route: route, Font: navigation.Fonts[i]})
	}
}

func (m Model) route() navigation.Route {
	switch m.mode {
	case modeChapter:
		return navigation.RouteChapter
	case modeConcordance:
		return navigation.RouteConcordance
	default:
		return navigation.RouteReader
	}
}

func (m Model) firstWordOf(c navigation.Cursor) int {
	v, err := m.session.Resolver.Resolve(corpus.Ref{Chapter: c.Chapter, Verse: c.Verse})
	if err != nil {
		return 0
	}
	for i, w := range m.pageWords {
		if w == v.StartWord {
			return i
		}
	}
	return 0
}

func (m *Model) loadMorph() {
	m.morph = nil
	if m.wordPos < 0 || m.wordPos >= len(m.pageWords) {
		return
	}
	morph, err := m.session.Assembler.Morphology(m.pageWords[m.wordPos])
	if err != nil {
		m.err = err
		return
	}
	m.morph = morph
}

func linkableRoot(morph *assembler.MorphologyModel) (string, bool) {
	if morph == nil {
		return "", false
	}
	for _, row := range morph.Rows {
		if row.RootLinkable {
			return row.Root, true
		}
	}
	return "", false
}

func (m Model) textWidth() int {
	if m.width <= 8 {
		return 80
	}
	return min(m.width-6, 100)
}

// refresh rebuilds the viewport content for the current mode and cursor.
func (m *Model) refresh() {
	if m.session == nil {
		return
	}
	// Saves the route's default font the first time the route is shown.
	m.session.Navigator.Font(m.route())
	c := m.session.Navigator.Cursor()
	m.styles = theme.For(string(c.Theme)).Styles()
	asm := m.session.Assembler
	asm.SetShowTranslation(c.TranslationVisible)
	m.focused = nil

	var err error
	switch m.mode {
	case modeChapter:
		var ch *assembler.ChapterModel
		if ch, err = asm.AssembleChapter(c.Chapter, c.Verse); err == nil {
			m.content, m.focusLine = renderChapter(ch, m.styles, m.textWidth())
			if ch.TargetIndex >= 0 {
				m.focused = &ch.Verses[ch.TargetIndex]
			}
		}
	case modeConcordance:
		err = m.refreshConcordance(c)
	default:
		ref := corpus.Ref{Chapter: c.Chapter, Verse: c.Verse}
		var page *assembler.PageModel
		if page, err = asm.AssemblePage(c.Page, &ref); err == nil {
			if page.HighlightIndex >= 0 {
				m.focused = &page.Verses[page.HighlightIndex]
			}
			m.pageWords = pageWords(page)
			selected := 0
			if m.mode == modeMorph && m.wordPos < len(m.pageWords) {
				selected = m.pageWords[m.wordPos]
			}
			m.content, m.focusLine = renderPage(page, m.styles, m.textWidth(), selected)
			if m.mode == modeMorph && m.morph != nil {
				popup := renderMorphology(m.morph, m.styles)
				m.content = popup + "\n\n" + m.content
				m.focusLine += lipgloss.Height(popup) + 1
			}
		}
	}
	if err != nil {
		m.err = err
		m.services.Log.Warn("render failed", "mode", m.mode, "error", err)
		m.content, m.focusLine = m.styles.Error.Render(err.Error()), 0
	}

	m.viewport.SetContent(m.content)
	if m.focusLine > m.viewport.Height/2 {
		m.viewport.SetYOffset(m.focusLine - m.viewport.Height/3)
	} else {
		m.viewport.GotoTop()
	}
}

func (m *Model) refreshConcordance(c navigation.Cursor) error {
	conc := m.session.Concordance
	root, form := conc.Select(c.Root, c.WordForm)
	if root == "" {
		m.conc = nil
		m.content, m.focusLine = m.styles.Help.Render("The root index is empty."), 0
		return nil
	}
	res, err := conc.Occurrences(root, form)
	if err != nil {
		return err
	}
	forms, err := conc.WordForms(root)
	if err != nil {
		return err
	}
	m.conc = res
	m.hitPos = max(0, min(m.hitPos, len(res.Verses)-1))
	m.content, m.focusLine = renderConcordance(res, forms, m.hitPos, m.session.Index, m.styles, m.textWidth())
	return nil
}
