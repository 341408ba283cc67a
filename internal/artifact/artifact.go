// Package artifact picks the downloaded media file out of a job workspace.
package artifact

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotFound means the directory held no regular file.
var ErrNotFound = errors.New("no output file produced")

type Artifact struct {
	Path string
	Size int64
}

func (a Artifact) Name() string { return filepath.Base(a.Path) }

// Select returns the largest regular file directly under dir. Equal sizes
// keep the first one in os.ReadDir order (sorted by name).
func Select(dir string) (Artifact, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Artifact{}, fmt.Errorf("list %s: %w", dir, err)
	}
	var best Artifact
	found := false
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// removed between ReadDir and Info
			continue
		}
		if !found || info.Size() > best.Size {
			best = Artifact{Path: filepath.Join(dir, e.Name()), Size: info.Size()}
			found = true
		}
	}
	if !found {
		return Artifact{}, ErrNotFound
	}
	return best, nil
}
