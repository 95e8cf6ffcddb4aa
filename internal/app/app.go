// Package app wires configuration into the reader's components.
package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"go.uber.org/multierr"

	"quran-tui/internal/assembler"
	"quran-tui/internal/audio"
	"quran-tui/internal/concordance"
	"quran-tui/internal/config"
	"quran-tui/internal/corpus"
	"quran-tui/internal/navigation"
	"quran-tui/internal/resolver"
	"quran-tui/internal/settings"
	"quran-tui/internal/source"
)

var ErrNoData = errors.New("no corpus data: set data.dir or data.url, or run fetch")

// Services are the components that exist before the corpus is loaded.
type Services struct {
	Config    *config.Config
	Log       *slog.Logger
	Loader    *corpus.Loader
	Store     settings.Store
	Addresser *audio.Addresser
	Player    *audio.Player

	closers []io.Closer
}

func New(cfg *config.Config, logger *slog.Logger) (*Services, error) {
	if logger == nil {
		logger = slog.Default()
	}

	src, err := NewSource(cfg, logger)
	if err != nil {
		return nil, err
	}
	store, closer, err := OpenStore(cfg.State)
	if err != nil {
		return nil, err
	}

	s := &Services{
		Config:    cfg,
		Log:       logger,
		Loader:    corpus.NewLoader(src, TableNames(cfg.Tables), logger.With("component", "corpus")),
		Store:     store,
		Addresser: audio.NewAddresser(cfg.Audio.WordBase, cfg.Audio.VerseBase, logger.With("component", "audio")),
		Player:    audio.NewPlayer(audio.NewCommandTransport(cfg.Audio.Player), logger.With("component", "player")),
	}
	if closer != nil {
		s.closers = append(s.closers, closer)
	}
	return s, nil
}

// Close stops playback and releases the settings store.
func (s *Services) Close() error {
	s.Player.Stop()
	var err error
	for _, c := range s.closers {
		err = multierr.Append(err, c.Close())
	}
	return err
}

func TableNames(t config.Tables) corpus.TableNames {
	return corpus.TableNames{
		Chapters:   t.Chapters,
		Verses:     t.Verses,
		Words:      t.Words,
		Glosses:    t.Glosses,
		Morphology: t.Morphology,
		Pages:      t.Pages,
		Roots:      t.Roots,
	}
}

// NewSource picks the table source: a directory, then a URL, then the
// cached download bundle.
func NewSource(cfg *config.Config, logger *slog.Logger) (corpus.Source, error) {
	switch {
	case cfg.Data.Dir != "":
		logger.Debug("reading tables from directory", "dir", cfg.Data.Dir)
		return source.NewDirSource(cfg.Data.Dir), nil
	case cfg.Data.URL != "":
		logger.Debug("reading tables over http", "url", cfg.Data.URL)
		return source.NewHTTPSource(cfg.Data.URL, nil), nil
	}

	cache, err := source.NewBundleCache(cfg.Data.CacheDir, nil)
	if err != nil {
		return nil, err
	}
	if !cache.IsCached(cfg.Data.BundleName) {
		return nil, ErrNoData
	}
	logger.Debug("reading tables from bundle", "dir", cache.Dir(cfg.Data.BundleName))
	return cache.Source(cfg.Data.BundleName)
}

// OpenStore opens the configured settings backend. The closer is nil for
// backends that hold no resources.
func OpenStore(cfg config.State) (settings.Store, io.Closer, error) {
	switch cfg.Backend {
	case config.StateSQLite:
		path := cfg.Path
		if path == "" {
			dir, err := os.UserConfigDir()
			if err != nil {
				return nil, nil, err
			}
			path = filepath.Join(dir, "quran-tui", "state.db")
		}
		db, err := settings.OpenSQLite(path)
		if err != nil {
			return nil, nil, err
		}
		return db, db, nil
	case config.StateFile, "":
		store, err := settings.NewFileStore(cfg.Path)
		return store, nil, err
	default:
		return nil, nil, fmt.Errorf("unknown state backend %q", cfg.Backend)
	}
}

// Session holds the components built on top of a loaded index.
type Session struct {
	Index       *corpus.Index
	Resolver    *resolver.Resolver
	Assembler   *assembler.Assembler
	Concordance *concordance.Builder
	Navigator   *navigation.Navigator
}

// NewSession builds the index-dependent components and restores the
// navigation cursor.
func (s *Services) NewSession(idx *corpus.Index) *Session {
	res := resolver.New(idx, s.Log.With("component", "resolver"))
	conc := concordance.New(idx, res, s.Log.With("component", "concordance"))
	asm := assembler.New(idx, res, s.Addresser, assembler.Options{
		StripDiacritics:   s.Config.UI.StripDiacritics,
		ExternalVerseBase: s.Config.Links.ExternalVerseBase,
	}, s.Log.With("component", "assembler"))
	nav := navigation.NewNavigator(
		navigation.NewReducer(idx, res, conc, s.Log.With("component", "navigation")),
		s.Store,
		s.Log.With("component", "navigation"),
	)
	nav.Hydrate()

	return &Session{
		Index:       idx,
		Resolver:    res,
		Assembler:   asm,
		Concordance: conc,
		Navigator:   nav,
	}
}
