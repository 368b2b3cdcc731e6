// Package source abstracts where image bytes come from: a local
// directory tree or an S3-compatible bucket. The scan pipeline and the
// CLI only ever read through the Source interface.
package source

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/EzraMarks/obsidian-image-converter/core"
)

// Entry is one candidate file offered by a Source.
type Entry struct {
	Name    string // source-relative path or object key
	Size    int64
	ModTime time.Time
}

// Source lists image files and serves their bytes. ReadHeader is
// bounded to core.HeaderBytes so scanning large originals stays cheap;
// ReadFile is for the rewrite path, which needs the whole file.
type Source interface {
	List(ctx context.Context) ([]Entry, error)
	ReadHeader(ctx context.Context, name string) ([]byte, error)
	ReadFile(ctx context.Context, name string) ([]byte, error)
}

// Dir serves files from a local directory tree.
type Dir struct {
	Root string
}

// NewDir returns a Source rooted at root.
func NewDir(root string) *Dir {
	return &Dir{Root: root}
}

// List walks the tree and returns every regular file whose extension
// maps to a known image format. Content sniffing happens later against
// the header bytes the scan reads anyway.
func (d *Dir) List(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	err := filepath.WalkDir(d.Root, func(path string, de fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if de.IsDir() || !de.Type().IsRegular() {
			return nil
		}
		if _, ok := core.ExtFormat(path); !ok {
			return nil
		}
		info, err := de.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(d.Root, path)
		if err != nil {
			return err
		}
		entries = append(entries, Entry{Name: rel, Size: info.Size(), ModTime: info.ModTime()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", d.Root, err)
	}
	return entries, nil
}

// ReadHeader returns up to core.HeaderBytes from the start of the file.
func (d *Dir) ReadHeader(ctx context.Context, name string) ([]byte, error) {
	f, err := os.Open(filepath.Join(d.Root, name))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, core.HeaderBytes)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	return buf[:n], nil
}

// ReadFile returns the whole file.
func (d *Dir) ReadFile(ctx context.Context, name string) ([]byte, error) {
	return os.ReadFile(filepath.Join(d.Root, name))
}
