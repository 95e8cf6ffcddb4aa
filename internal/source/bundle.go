package source

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// BundleCache keeps downloaded table bundles, one directory per bundle
// name.
type BundleCache struct {
	cacheDir   string
	httpClient *http.Client
}

// NewBundleCache uses ~/.cache/quran-tui/data when dir is empty.
func NewBundleCache(dir string, client *http.Client) (*BundleCache, error) {
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(homeDir, ".cache", "quran-tui", "data")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	if client == nil {
		client = &http.Client{}
	}
	return &BundleCache{cacheDir: dir, httpClient: client}, nil
}

func (c *BundleCache) Dir(name string) string {
	return filepath.Join(c.cacheDir, name)
}

// IsCached reports whether the bundle holds at least one table.
func (c *BundleCache) IsCached(name string) bool {
	matches, err := filepath.Glob(filepath.Join(c.Dir(name), "*.json"))
	return err == nil && len(matches) > 0
}

// Source serves a cached bundle.
func (c *BundleCache) Source(name string) (*DirSource, error) {
	if !c.IsCached(name) {
		return nil, fmt.Errorf("bundle %s not cached", name)
	}
	return NewDirSource(c.Dir(name)), nil
}

// Download fetches a zip of tables and replaces the bundle with its .json
// members. The old bundle survives a failed download.
func (c *BundleCache) Download(ctx context.Context, url, name string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed with status %d", resp.StatusCode)
	}

	tmpFile, err := os.CreateTemp("", name+"*.zip")
	if err != nil {
		return err
	}
	defer os.Remove(tmpFile.Name())
	defer tmpFile.Close()

	if _, err := io.Copy(tmpFile, resp.Body); err != nil {
		return err
	}

	if err := os.MkdirAll(c.cacheDir, 0o755); err != nil {
		return err
	}
	staging, err := os.MkdirTemp(c.cacheDir, "."+name+"-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(staging)

	if err := extractJSON(tmpFile.Name(), staging); err != nil {
		return err
	}

	if err := os.RemoveAll(c.Dir(name)); err != nil {
		return err
	}
	return os.Rename(staging, c.Dir(name))
}

// extractJSON writes every .json member of the archive into dir, flattened
// to its base name.
func extractJSON(zipPath, dir string) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return err
	}
	defer r.Close()

	n := 0
	for _, f := range r.File {
		if f.FileInfo().IsDir() || filepath.Ext(f.Name) != ".json" {
			continue
		}
		base := filepath.Base(strings.ReplaceAll(f.Name, `\`, "/"))
		if base == "." || base == ".." || strings.HasPrefix(base, ".") {
			continue
		}
		if err := extractFile(f, filepath.Join(dir, base)); err != nil {
			return fmt.Errorf("extract %s: %w", f.Name, err)
		}
		n++
	}

	if n == 0 {
		return fmt.Errorf("no JSON file found in ZIP")
	}
	return nil
}

func extractFile(f *zip.File, outPath string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	outFile, err := os.Create(outPath)
	if err != nil {
		return err
	}
	if _, err := io.Copy(outFile, rc); err != nil {
		outFile.Close()
		return err
	}
	return outFile.Close()
}

// ListCached returns the names of cached bundles.
func (c *BundleCache) ListCached() ([]string, error) {
	entries, err := os.ReadDir(c.cacheDir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() && !strings.HasPrefix(entry.Name(), ".") && c.IsCached(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

// Clear removes every cached bundle.
func (c *BundleCache) Clear() error {
	return os.RemoveAll(c.cacheDir)
}

func (c *BundleCache) Remove(name string) error {
	return os.RemoveAll(c.Dir(name))
}

// Size returns the total size of cached tables in bytes.
func (c *BundleCache) Size() (int64, error) {
	var size int64
	err := filepath.WalkDir(c.cacheDir, func(_ string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		size += info.Size()
		return nil
	})
	return size, err
}
