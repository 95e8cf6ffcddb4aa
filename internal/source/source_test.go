package source

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quran-tui/internal/corpus"
	"quran-tui/internal/corpus/corpustest"
)

func TestDirSource(t *testing.T) {
	dir := t.TempDir()
	for name, f := range corpustest.Files(corpustest.Options{}) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), f.Data, 0o644))
	}

	idx, err := corpus.Load(context.Background(), NewDirSource(dir), corpus.DefaultTableNames())
	require.NoError(t, err)
	assert.Equal(t, corpustest.TotalVerses(), idx.VerseCount())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewDirSource(dir).Open(ctx, "sura.json")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHTTPSource(t *testing.T) {
	files := corpustest.Files(corpustest.Options{NoGlosses: true})
	mux := http.NewServeMux()
	mux.Handle("/quran/", http.StripPrefix("/quran/", http.FileServer(http.FS(files))))
	mux.HandleFunc("/broken/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	src := NewHTTPSource(srv.URL+"/quran", srv.Client())
	idx, err := corpus.Load(context.Background(), src, corpus.DefaultTableNames())
	require.NoError(t, err)
	assert.Equal(t, corpustest.PageCount(), idx.PageCount())

	_, err = src.Open(context.Background(), "missing.json")
	assert.ErrorIs(t, err, fs.ErrNotExist)

	_, err = NewHTTPSource(srv.URL+"/broken/", nil).Open(context.Background(), "sura.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
	assert.Contains(t, err.Error(), "upstream unavailable")
}

func zipOf(t *testing.T, files map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, data := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func serveBytes(t *testing.T, data []byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bundle.zip" {
			http.NotFound(w, r)
			return
		}
		w.Write(data)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestBundleCache_DownloadAndServe(t *testing.T) {
	members := map[string][]byte{"README.txt": []byte("tables")}
	for name, f := range corpustest.Files(corpustest.Options{}) {
		members["data/"+name] = f.Data
	}
	srv := serveBytes(t, zipOf(t, members))

	cache, err := NewBundleCache(t.TempDir(), srv.Client())
	require.NoError(t, err)
	assert.False(t, cache.IsCached("default"))
	_, err = cache.Source("default")
	assert.Error(t, err)

	require.NoError(t, cache.Download(context.Background(), srv.URL+"/bundle.zip", "default"))
	assert.True(t, cache.IsCached("default"))
	assert.NoFileExists(t, filepath.Join(cache.Dir("default"), "README.txt"))

	src, err := cache.Source("default")
	require.NoError(t, err)
	idx, err := corpus.Load(context.Background(), src, corpus.DefaultTableNames())
	require.NoError(t, err)
	assert.Equal(t, 3, idx.ChapterCount())

	names, err := cache.ListCached()
	require.NoError(t, err)
	assert.Equal(t, []string{"default"}, names)

	size, err := cache.Size()
	require.NoError(t, err)
	assert.Positive(t, size)

	require.NoError(t, cache.Remove("default"))
	assert.False(t, cache.IsCached("default"))
}

func TestBundleCache_FailedDownloadKeepsBundle(t *testing.T) {
	good := serveBytes(t, zipOf(t, map[string][]byte{"sura.json": []byte(`{}`)}))
	empty := serveBytes(t, zipOf(t, map[string][]byte{"notes.txt": []byte("no tables")}))

	cache, err := NewBundleCache(t.TempDir(), nil)
	require.NoError(t, err)
	require.NoError(t, cache.Download(context.Background(), good.URL+"/bundle.zip", "default"))

	err = cache.Download(context.Background(), empty.URL+"/bundle.zip", "default")
	assert.ErrorContains(t, err, "no JSON file")
	err = cache.Download(context.Background(), good.URL+"/missing.zip", "default")
	assert.ErrorContains(t, err, "status 404")

	assert.True(t, cache.IsCached("default"))
	names, err := cache.ListCached()
	require.NoError(t, err)
	assert.Equal(t, []string{"default"}, names)
}

func TestBundleCache_FlattensMemberPaths(t *testing.T) {
	srv := serveBytes(t, zipOf(t, map[string][]byte{
		"../../escape.json": []byte(`{"a":1}`),
		`win\path\sura.json`: []byte(`{}`),
	}))

	root := t.TempDir()
	cache, err := NewBundleCache(filepath.Join(root, "cache"), nil)
	require.NoError(t, err)
	require.NoError(t, cache.Download(context.Background(), srv.URL+"/bundle.zip", "b"))

	assert.FileExists(t, filepath.Join(cache.Dir("b"), "escape.json"))
	assert.FileExists(t, filepath.Join(cache.Dir("b"), "sura.json"))
	assert.NoFileExists(t, filepath.Join(root, "escape.json"))

	f, err := os.Open(filepath.Join(cache.Dir("b"), "escape.json"))
	require.NoError(t, err)
	defer f.Close()
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(data))

	require.NoError(t, cache.Clear())
	require.NoError(t, cache.Download(context.Background(), srv.URL+"/bundle.zip", "b"))
	assert.True(t, cache.IsCached("b"))
}
