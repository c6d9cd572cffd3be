package adapter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	m "covmerge.dev/pkg/covmerge/internal/model"
)

// DocumentFS abstracts discovery of coverage database files on disk.
type DocumentFS interface {
	// FindDocuments walks root recursively and returns files whose base name
	// matches pattern, skipping exclude (the merge output, when it already
	// lives under root).
	FindDocuments(root m.Path, pattern string, exclude m.Path) ([]m.Path, error)

	// Join joins path elements into a single path.
	Join(elem ...string) m.Path
}

// LocalDocumentFS is the os-backed DocumentFS implementation.
type LocalDocumentFS struct{}

// NewLocalDocumentFS constructs a LocalDocumentFS ready to be wired into the
// workflow.
func NewLocalDocumentFS() *LocalDocumentFS {
	return &LocalDocumentFS{}
}

// FindDocuments walks root and collects matching files in lexical order.
func (fs *LocalDocumentFS) FindDocuments(root m.Path, pattern string, exclude m.Path) ([]m.Path, error) {
	excludeAbs := ""

	if exclude != "" {
		abs, err := filepath.Abs(string(exclude))
		if err != nil {
			return nil, err
		}

		excludeAbs = abs
	}

	var found []m.Path

	err := filepath.Walk(string(root), func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			return nil
		}

		ok, err := filepath.Match(pattern, filepath.Base(path))
		if err != nil {
			return fmt.Errorf("pattern %q: %w", pattern, err)
		}

		if !ok {
			return nil
		}

		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}

		if excludeAbs != "" && abs == excludeAbs {
			slog.Warn("input file matches the merge output, skipping", "path", path)
			return nil
		}

		found = append(found, m.Path(path))

		return nil
	})
	if err != nil {
		return nil, err
	}

	return found, nil
}

// Join joins path elements into a single path.
func (fs *LocalDocumentFS) Join(elem ...string) m.Path {
	return m.Path(filepath.Join(elem...))
}
