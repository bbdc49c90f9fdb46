package mute

import (
	"context"
	"sync"
)

// MemoryPersister keeps the registry in process memory. It backs the
// "memory" backend and stands in for real storage in tests.
type MemoryPersister struct {
	mu    sync.Mutex
	reg   Registry
	saves int
	// Err, when set, is returned by Save.
	Err error
}

var _ Persister = (*MemoryPersister)(nil)

func NewMemoryPersister(initial Registry) *MemoryPersister {
	return &MemoryPersister{reg: clone(initial)}
}

func (p *MemoryPersister) Load(ctx context.Context) (Registry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return clone(p.reg), nil
}

func (p *MemoryPersister) Save(ctx context.Context, reg Registry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.reg = clone(reg)
	p.saves++
	return nil
}

// Saved returns the last saved registry.
func (p *MemoryPersister) Saved() Registry {
	p.mu.Lock()
	defer p.mu.Unlock()
	return clone(p.reg)
}

// Saves counts successful Save calls.
func (p *MemoryPersister) Saves() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.saves
}

func clone(reg Registry) Registry {
	out := make(Registry, len(reg))
	for k, v := range reg {
		out[k] = append([]string(nil), v...)
	}
	return out
}
