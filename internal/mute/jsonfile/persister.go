// Package jsonfile persists the mute registry as a flat JSON file.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/marslan-786/group-guard/internal/mute"
)

const fileMode = 0o644

type Persister struct {
	path string
}

var _ mute.Persister = (*Persister)(nil)

func New(path string) *Persister {
	return &Persister{path: filepath.Clean(path)}
}

func (p *Persister) Path() string { return p.path }

// Load reads the whole file. A missing or empty file is an empty registry.
func (p *Persister) Load(ctx context.Context) (mute.Registry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(p.path)
	if errors.Is(err, os.ErrNotExist) {
		return mute.Registry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", p.path, err)
	}
	if len(raw) == 0 {
		return mute.Registry{}, nil
	}

	reg := mute.Registry{}
	if err := json.Unmarshal(raw, &reg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", p.path, err)
	}
	return reg, nil
}

// Save rewrites the file in full. The new content goes to a temp file in the
// same directory first so a crash never leaves a truncated registry.
func (p *Persister) Save(ctx context.Context, reg mute.Registry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	raw, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode mute registry: %w", err)
	}

	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(p.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Chmod(fileMode); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, p.path); err != nil {
		return fmt.Errorf("replace %s: %w", p.path, err)
	}
	return nil
}
