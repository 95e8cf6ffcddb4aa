package corpus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"sync"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// Source opens a named table. A missing table must be reported with an
// error wrapping fs.ErrNotExist.
type Source interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// TableNames maps each source table to its file name.
type TableNames struct {
	Chapters   string
	Verses     string
	Words      string
	Glosses    string
	Morphology string
	Pages      string
	Roots      string
}

func DefaultTableNames() TableNames {
	return TableNames{
		Chapters:   "sura.json",
		Verses:     "combined_quran.json",
		Words:      "quran_harakat_words.json",
		Glosses:    "en-word.json",
		Morphology: "quran_morphology.json",
		Pages:      "pagination_map.json",
		Roots:      "root_words.json",
	}
}

// Load fetches every table as one join and builds the index. Nothing is
// returned unless all required tables loaded and validated; every failing
// table is reported in the single DataLoadError.
func Load(ctx context.Context, src Source, names TableNames) (*Index, error) {
	raw, err := fetch(ctx, src, names)
	if err != nil {
		return nil, err
	}
	return build(raw)
}

type tableJob struct {
	name     string
	optional bool
	decode   func([]byte) error
}

func fetch(ctx context.Context, src Source, names TableNames) (*rawTables, error) {
	raw := &rawTables{}
	jobs := []tableJob{
		{name: names.Chapters, decode: func(b []byte) (err error) {
			raw.chapters, err = decodeIndexed[rawChapter](b)
			return err
		}},
		{name: names.Verses, decode: func(b []byte) (err error) {
			raw.verses, err = decodeIndexed[rawVerse](b)
			return err
		}},
		{name: names.Words, decode: func(b []byte) (err error) {
			raw.words, err = decodeIndexed[string](b)
			return err
		}},
		{name: names.Glosses, optional: true, decode: func(b []byte) (err error) {
			raw.glosses, err = decodeIndexed[string](b)
			return err
		}},
		{name: names.Morphology, decode: func(b []byte) (err error) {
			raw.morphology, err = decodeKeyed[rawMorphology](b)
			return err
		}},
		{name: names.Pages, decode: func(b []byte) (err error) {
			raw.pages, err = decodePages(b)
			return err
		}},
		{name: names.Roots, decode: func(b []byte) (err error) {
			raw.roots, err = decodeRoots(b)
			return err
		}},
	}

	errs := make([]error, len(jobs))
	var g errgroup.Group
	for i, job := range jobs {
		g.Go(func() error {
			errs[i] = readTable(ctx, src, job)
			return errs[i]
		})
	}
	_ = g.Wait()

	if err := multierr.Combine(errs...); err != nil {
		failed := len(multierr.Errors(err))
		return nil, &DataLoadError{
			Reason: fmt.Sprintf("%d of %d tables failed", failed, len(jobs)),
			Err:    err,
		}
	}
	if raw.glosses == nil {
		raw.glosses = map[int]string{}
	}
	return raw, nil
}

func readTable(ctx context.Context, src Source, job tableJob) error {
	if job.name == "" {
		if job.optional {
			return nil
		}
		return errors.New("table name not configured")
	}
	rc, err := src.Open(ctx, job.name)
	if err != nil {
		if job.optional && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("%s: %w", job.name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return fmt.Errorf("%s: read: %w", job.name, err)
	}
	if err := job.decode(data); err != nil {
		return fmt.Errorf("%s: decode: %w", job.name, err)
	}
	return nil
}

// Loader owns the current index and can rebuild it on demand.
type Loader struct {
	src   Source
	names TableNames
	log   *slog.Logger

	mu    sync.RWMutex
	index *Index
}

func NewLoader(src Source, names TableNames, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{src: src, names: names, log: logger}
}

// Reload re-runs the full join-load. The current index is replaced only
// when the new one loads and validates completely.
func (l *Loader) Reload(ctx context.Context) (*Index, error) {
	started := time.Now()
	idx, err := Load(ctx, l.src, l.names)
	if err != nil {
		l.log.Error("corpus load failed", "error", err)
		return nil, err
	}

	l.mu.Lock()
	l.index = idx
	l.mu.Unlock()

	l.log.Info("corpus loaded",
		"chapters", idx.ChapterCount(),
		"verses", idx.VerseCount(),
		"words", idx.WordCount(),
		"pages", idx.PageCount(),
		"roots", idx.RootCount(),
		"duration", time.Since(started),
	)
	return idx, nil
}

// Index returns the last successfully loaded index.
func (l *Loader) Index() (*Index, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.index, l.index != nil
}
