// Package concordance answers root and word-form queries over the corpus
// index and resolves every occurrence back to a readable location.
package concordance

import (
	"log/slog"
	"sort"
	"strconv"

	"quran-tui/internal/corpus"
	"quran-tui/internal/resolver"
)

type Builder struct {
	idx *corpus.Index
	res *resolver.Resolver
	log *slog.Logger
}

func New(idx *corpus.Index, res *resolver.Resolver, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{idx: idx, res: res, log: logger}
}

// Hit is one occurrence of a word form.
type Hit struct {
	Key string
	ID  string
	// Ref, Word and Page are only meaningful when Resolved is set.
	Ref      corpus.WordRef
	Word     int
	Page     int
	Resolved bool
}

type Result struct {
	Root          string
	Form          string
	RootCount     int
	WordFormCount int
	VerseCount    int
	Verses        []Hit
}

// ListRoots returns every root in code-point order.
func (b *Builder) ListRoots() []string {
	roots := b.idx.Roots()
	sort.Strings(roots)
	return roots
}

// WordForms returns the surface forms recorded under root, sorted.
func (b *Builder) WordForms(root string) ([]string, error) {
	r, ok := b.idx.Root(root)
	if !ok {
		return nil, corpus.NotFound("root", root)
	}
	forms := make([]string, 0, len(r.Forms))
	for f := range r.Forms {
		forms = append(forms, f)
	}
	sort.Strings(forms)
	return forms, nil
}

func (b *Builder) Occurrences(root, form string) (*Result, error) {
	r, ok := b.idx.Root(root)
	if !ok {
		return nil, corpus.NotFound("root", root)
	}
	f, ok := r.Forms[form]
	if !ok {
		return nil, corpus.NotFound("word form", root+"/"+form)
	}

	res := &Result{
		Root:          r.Root,
		Form:          f.Form,
		RootCount:     r.Count,
		WordFormCount: f.Count,
		VerseCount:    f.VerseCount,
		Verses:        make([]Hit, 0, len(f.Occurrences)),
	}
	for _, occ := range f.Occurrences {
		res.Verses = append(res.Verses, b.resolve(occ))
	}
	return res, nil
}

// resolve locates an occurrence from its "c:v:w" id, falling back to the
// key read as a global word index.
func (b *Builder) resolve(occ corpus.Occurrence) Hit {
	hit := Hit{Key: occ.Key, ID: occ.ID}

	if ref, err := corpus.ParseWordRef(occ.ID); err == nil {
		if w, err := b.res.WordIndex(ref); err == nil {
			hit.Ref, hit.Word, hit.Resolved = ref, w, true
		}
	}
	if !hit.Resolved {
		if w, err := strconv.Atoi(occ.Key); err == nil {
			if ref, err := b.res.WordRef(w); err == nil {
				hit.Ref, hit.Word, hit.Resolved = ref, w, true
			}
		}
	}
	if !hit.Resolved {
		b.log.Warn("unresolved occurrence", "key", occ.Key, "id", occ.ID)
		return hit
	}
	hit.Page = b.res.PageContaining(hit.Ref.Chapter, hit.Ref.Verse)
	return hit
}

// Select returns the root and form to display: the requested pair when
// both exist, otherwise the first root and its first form. Both are empty
// for an empty root table.
func (b *Builder) Select(root, form string) (string, string) {
	if _, ok := b.idx.Root(root); !ok {
		roots := b.ListRoots()
		if len(roots) == 0 {
			return "", ""
		}
		b.log.Debug("root fallback", "requested", root, "root", roots[0])
		root = roots[0]
	}
	forms, _ := b.WordForms(root)
	if len(forms) == 0 {
		return root, ""
	}
	for _, f := range forms {
		if f == form {
			return root, form
		}
	}
	return root, forms[0]
}
