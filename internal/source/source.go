// Package source serves the corpus tables from a directory, a web server
// or a locally cached download bundle.
package source

import (
	"context"
	"io"
	"io/fs"
	"os"
)

// DirSource reads tables from a file system.
type DirSource struct {
	fsys fs.FS
}

func NewDirSource(dir string) *DirSource {
	return &DirSource{fsys: os.DirFS(dir)}
}

func NewFSSource(fsys fs.FS) *DirSource {
	return &DirSource{fsys: fsys}
}

func (s *DirSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.fsys.Open(name)
}
