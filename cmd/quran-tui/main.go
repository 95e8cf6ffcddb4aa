// Command quran-tui is a terminal Quran reader with word-by-word
// morphology and a root concordance.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"go.uber.org/multierr"

	"quran-tui/internal/app"
	"quran-tui/internal/assembler"
	"quran-tui/internal/config"
	"quran-tui/internal/corpus"
	"quran-tui/internal/logging"
	"quran-tui/internal/resolver"
	"quran-tui/internal/source"
	"quran-tui/internal/ui"
)

const version = "0.1.0"

// Globals are the flags shared by every command.
type Globals struct {
	Config  string `name:"config" short:"c" help:"Config file (yaml, toml or json)" type:"path"`
	LogFile string `name:"log-file" help:"Write logs to this file" type:"path"`
	Debug   bool   `help:"Log at debug level"`
	DataDir string `name:"data" help:"Directory holding the corpus tables" type:"path"`
}

var CLI struct {
	Globals

	Read        ReadCmd        `cmd:"" default:"1" help:"Open the reader"`
	Page        PageCmd        `cmd:"" help:"Print a page as plain text"`
	Chapter     ChapterCmd     `cmd:"" help:"Print a chapter as plain text"`
	Roots       RootsCmd       `cmd:"" help:"List the roots of the concordance"`
	Concordance ConcordanceCmd `cmd:"" help:"List the occurrences of a root"`
	Morph       MorphCmd       `cmd:"" help:"Show the morphology of a word"`
	Fetch       FetchCmd       `cmd:"" help:"Download the corpus tables"`
	Version     VersionCmd     `cmd:"" help:"Print version information"`
}

func (g *Globals) config() (*config.Config, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, err
	}
	if g.LogFile != "" {
		cfg.Log.File = g.LogFile
	}
	if g.Debug {
		cfg.Log.Level = "debug"
	}
	if g.DataDir != "" {
		cfg.Data.Dir = g.DataDir
	}
	return cfg, nil
}

// services loads the configuration and builds the application services.
// The returned closer releases the services and the log file.
func (g *Globals) services() (*app.Services, io.Closer, error) {
	cfg, err := g.config()
	if err != nil {
		return nil, nil, err
	}
	logger, logCloser := logging.New(cfg.Log)
	svc, err := app.New(cfg, logger)
	if err != nil {
		logCloser.Close()
		return nil, nil, err
	}
	return svc, closerFunc(func() error {
		return multierr.Append(svc.Close(), logCloser.Close())
	}), nil
}

// session loads the corpus for the one-shot commands.
func (g *Globals) session(ctx context.Context) (*app.Session, io.Closer, error) {
	svc, closer, err := g.services()
	if err != nil {
		return nil, nil, err
	}
	idx, err := svc.Loader.Reload(ctx)
	if err != nil {
		closer.Close()
		return nil, nil, fmt.Errorf("load corpus: %w", err)
	}
	return svc.NewSession(idx), closer, nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

type ReadCmd struct{}

func (c *ReadCmd) Run(g *Globals) (err error) {
	svc, closer, err := g.services()
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, closer.Close()) }()

	p := tea.NewProgram(
		ui.NewModel(svc),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}

type PageCmd struct {
	Number      int  `arg:"" help:"Page number"`
	Translation bool `short:"t" help:"Include the translation"`
	Links       bool `help:"Include recitation and manuscript links"`
}

func (c *PageCmd) Run(g *Globals) (err error) {
	s, closer, err := g.session(context.Background())
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, closer.Close()) }()

	s.Assembler.SetShowTranslation(c.Translation)
	page, err := s.Assembler.AssemblePage(c.Number, nil)
	if err != nil {
		return err
	}
	fmt.Printf("Page %d of %d: %s to %s, %d words\n\n", page.Number, s.Index.PageCount(), page.From, page.To, page.Words)
	for _, v := range page.Verses {
		if v.Marker != nil {
			fmt.Printf("== %d. %s ==\n", v.Marker.Number, v.Marker.Name)
		}
		fmt.Printf("%s  %s\n", v.Ref, v.Text())
		if page.ShowTranslation && v.Translation != "" {
			fmt.Printf("    %s\n", v.Translation)
		}
		if c.Links {
			printLinks(v)
		}
	}
	if page.HasPrev || page.HasNext {
		fmt.Println()
	}
	if page.HasPrev {
		fmt.Printf("previous: page %d\n", page.Number-1)
	}
	if page.HasNext {
		fmt.Printf("next: page %d\n", page.Number+1)
	}
	return nil
}

func printLinks(v assembler.VerseRecord) {
	if v.AudioURL != "" {
		fmt.Printf("    audio: %s\n", v.AudioURL)
	}
	if v.ExternalURL != "" {
		fmt.Printf("    manuscripts: %s\n", v.ExternalURL)
	}
}

type ChapterCmd struct {
	Number      int  `arg:"" help:"Chapter number"`
	Translation bool `short:"t" help:"Include the translation"`
	Links       bool `help:"Include recitation and manuscript links"`
}

func (c *ChapterCmd) Run(g *Globals) (err error) {
	s, closer, err := g.session(context.Background())
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, closer.Close()) }()

	s.Assembler.SetShowTranslation(c.Translation)
	ch, err := s.Assembler.AssembleChapter(c.Number, 0)
	if err != nil {
		return err
	}
	fmt.Printf("%d. %s (%d verses)\n\n", ch.Chapter.Number, ch.Chapter.Name, ch.Chapter.VerseCount)
	for _, v := range ch.Verses {
		fmt.Printf("%d  %s\n", v.Ref.Verse, v.Text())
		if ch.ShowTranslation && v.Translation != "" {
			fmt.Printf("    %s\n", v.Translation)
		}
		if c.Links {
			printLinks(v)
		}
	}
	return nil
}

type RootsCmd struct{}

func (c *RootsCmd) Run(g *Globals) (err error) {
	s, closer, err := g.session(context.Background())
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, closer.Close()) }()

	t := table.New().Border(lipgloss.HiddenBorder()).Headers("Root", "Forms", "Occurrences")
	for _, root := range s.Concordance.ListRoots() {
		forms, err := s.Concordance.WordForms(root)
		if err != nil {
			return err
		}
		if len(forms) == 0 {
			t.Row(root, "0", "0")
			continue
		}
		res, err := s.Concordance.Occurrences(root, forms[0])
		if err != nil {
			return err
		}
		t.Row(root, strconv.Itoa(len(forms)), strconv.Itoa(res.RootCount))
	}
	fmt.Println(t.Render())
	return nil
}

type ConcordanceCmd struct {
	Root string `arg:"" help:"Root to look up"`
	Form string `arg:"" optional:"" help:"Word form; defaults to the first form of the root"`
}

func (c *ConcordanceCmd) Run(g *Globals) (err error) {
	s, closer, err := g.session(context.Background())
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, closer.Close()) }()

	form := c.Form
	if form == "" {
		forms, err := s.Concordance.WordForms(c.Root)
		if err != nil {
			return err
		}
		if len(forms) == 0 {
			return fmt.Errorf("root %s has no word forms", c.Root)
		}
		form = forms[0]
	}
	res, err := s.Concordance.Occurrences(c.Root, form)
	if err != nil {
		return err
	}

	fmt.Printf("Root %s: %d occurrences\n", res.Root, res.RootCount)
	fmt.Printf("Form %s: %d words in %d verses\n\n", res.Form, res.WordFormCount, res.VerseCount)
	t := table.New().Border(lipgloss.HiddenBorder()).Headers("Word", "Page", "Verse")
	for _, hit := range res.Verses {
		if !hit.Resolved {
			t.Row(hit.ID, "-", "unresolved")
			continue
		}
		v, err := s.Resolver.Resolve(hit.Ref.VerseRef())
		if err != nil {
			return err
		}
		t.Row(hit.Ref.String(), strconv.Itoa(hit.Page), verseText(s.Index, v))
	}
	fmt.Println(t.Render())
	return nil
}

func verseText(idx *corpus.Index, v corpus.Verse) string {
	words := make([]string, 0, v.WordCount())
	for i := v.StartWord; i <= v.EndWord; i++ {
		if w, ok := idx.Word(i); ok {
			words = append(words, w.Text)
		}
	}
	return strings.Join(words, " ")
}

type MorphCmd struct {
	Word string `arg:"" help:"Word as chapter:verse:word or a global word index"`
}

func (c *MorphCmd) Run(g *Globals) (err error) {
	s, closer, err := g.session(context.Background())
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, closer.Close()) }()

	word, err := wordIndex(s.Resolver, c.Word)
	if err != nil {
		return err
	}
	m, err := s.Assembler.Morphology(word)
	if err != nil {
		return err
	}
	fmt.Printf("%s  %s  %s\n", m.Surface, m.ID, m.Gloss)
	if m.AudioURL != "" {
		fmt.Printf("audio: %s\n", m.AudioURL)
	}
	t := table.New().Border(lipgloss.NormalBorder()).Headers("Word", "POS", "Root", "Lemma", "Features")
	for _, r := range m.Rows {
		t.Row(r.Word, r.POS, r.Root, r.Lemma, r.Features)
	}
	fmt.Println(t.Render())
	return nil
}

func wordIndex(res *resolver.Resolver, s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	ref, err := corpus.ParseWordRef(s)
	if err != nil {
		return 0, err
	}
	return res.WordIndex(ref)
}

type FetchCmd struct {
	URL    string `help:"Bundle URL; defaults to data.bundle_url"`
	Name   string `help:"Cache entry name; defaults to data.bundle_name"`
	Force  bool   `short:"f" help:"Download even when the bundle is cached"`
	List   bool   `short:"l" help:"List cached bundles instead of downloading" xor:"action"`
	Size   bool   `help:"Print the size of the cache" xor:"action"`
	Remove bool   `help:"Remove the named bundle" xor:"action"`
	Clear  bool   `help:"Remove every cached bundle" xor:"action"`
}

func (c *FetchCmd) Run(g *Globals) error {
	cfg, err := g.config()
	if err != nil {
		return err
	}
	logger, logCloser := logging.New(cfg.Log)
	defer logCloser.Close()

	cache, err := source.NewBundleCache(cfg.Data.CacheDir, nil)
	if err != nil {
		return err
	}

	url, name := c.URL, c.Name
	if url == "" {
		url = cfg.Data.BundleURL
	}
	if name == "" {
		name = cfg.Data.BundleName
	}

	switch {
	case c.List:
		names, err := cache.ListCached()
		if err != nil {
			return err
		}
		for _, n := range names {
			fmt.Printf("%s\t%s\n", n, cache.Dir(n))
		}
		return nil
	case c.Size:
		size, err := cache.Size()
		if err != nil {
			return err
		}
		fmt.Printf("%d bytes in %s\n", size, cache.Dir(""))
		return nil
	case c.Remove:
		logger.Info("removing bundle", slog.String("name", name))
		return cache.Remove(name)
	case c.Clear:
		logger.Info("clearing bundle cache")
		return cache.Clear()
	}
	if url == "" {
		return fmt.Errorf("no bundle URL: pass --url or set data.bundle_url")
	}
	if cache.IsCached(name) && !c.Force {
		fmt.Printf("%s is already cached at %s\n", name, cache.Dir(name))
		return nil
	}

	logger.Info("downloading bundle", slog.String("url", url), slog.String("name", name))
	if err := cache.Download(context.Background(), url, name); err != nil {
		return err
	}
	fmt.Printf("Downloaded %s to %s\n", name, cache.Dir(name))
	return nil
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("quran-tui %s\n", version)
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("quran-tui"),
		kong.Description("A terminal Quran reader with morphology and a root concordance"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	err := ctx.Run(&CLI.Globals)
	ctx.FatalIfErrorf(err)
}
