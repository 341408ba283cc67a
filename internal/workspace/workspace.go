// Package workspace hands every job its own scratch directory under a shared root.
package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/wapuda/tg-grabber/internal/logx"
)

const dirPrefix = "tgdl_"

// Workspace is owned by exactly one job. Release is idempotent.
type Workspace struct {
	Path string

	once sync.Once
}

type Manager struct {
	root string
}

func NewManager(root string) *Manager {
	return &Manager{root: root}
}

func (m *Manager) Root() string { return m.root }

// EnsureRoot creates the root with mkdir -p semantics.
func (m *Manager) EnsureRoot() error {
	if err := os.MkdirAll(m.root, 0o755); err != nil {
		return fmt.Errorf("create workspace root %s: %w", m.root, err)
	}
	return nil
}

// Acquire creates a fresh directory named after jobID (a ULID when empty).
// os.Mkdir fails on an existing path, so two jobs never share a directory.
func (m *Manager) Acquire(jobID string) (*Workspace, error) {
	if err := m.EnsureRoot(); err != nil {
		return nil, err
	}
	if jobID == "" {
		jobID = ulid.Make().String()
	}
	path := filepath.Join(m.root, dirPrefix+jobID)
	if err := os.Mkdir(path, 0o700); err != nil {
		if !os.IsExist(err) {
			return nil, fmt.Errorf("create workspace: %w", err)
		}
		path = filepath.Join(m.root, dirPrefix+jobID+"_"+ulid.Make().String())
		if err := os.Mkdir(path, 0o700); err != nil {
			return nil, fmt.Errorf("create workspace: %w", err)
		}
	}
	return &Workspace{Path: path}, nil
}

// Release removes the workspace recursively. Failures are logged only: by
// the time it runs the user already has the job's result.
func (m *Manager) Release(ctx context.Context, ws *Workspace) {
	if ws == nil {
		return
	}
	ws.once.Do(func() {
		log := logx.FromCtx(ctx)
		if err := os.RemoveAll(ws.Path); err != nil {
			log.Error().Err(err).Str("workspace", ws.Path).Msg("workspace cleanup failed")
			return
		}
		log.Debug().Str("workspace", ws.Path).Msg("workspace removed")
	})
}
