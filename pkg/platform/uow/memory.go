package uow

import (
	"context"
	"sync"

	dErrors "drivewise/pkg/domain-errors"
)

// Snapshotter is implemented by in-memory stores that can capture their state
// and hand back a restore function. The memory unit of work uses it to make
// Discard actually undo writes instead of silently committing them.
type Snapshotter interface {
	Snapshot() (restore func())
}

// Memory serializes units of work with a coarse lock and rolls back via store
// snapshots. Intended for unit tests and single-process deployments.
type Memory struct {
	mu     sync.Mutex
	stores []Snapshotter
}

// NewMemory builds a memory unit of work over the given stores. Only stores
// registered here are restored on Discard.
func NewMemory(stores ...Snapshotter) *Memory {
	return &Memory{stores: stores}
}

func (m *Memory) Begin(ctx context.Context) (context.Context, Tx, error) {
	if err := ctx.Err(); err != nil {
		return ctx, nil, dErrors.Wrap(err, dErrors.CodeTimeout, "unit of work aborted: context cancelled")
	}

	m.mu.Lock()
	restores := make([]func(), 0, len(m.stores))
	for _, s := range m.stores {
		restores = append(restores, s.Snapshot())
	}
	return ctx, &memoryTx{owner: m, restores: restores}, nil
}

type memoryTx struct {
	owner    *Memory
	restores []func()
	done     bool
}

func (t *memoryTx) Commit() error {
	if t.done {
		return nil
	}
	t.done = true
	t.owner.mu.Unlock()
	return nil
}

func (t *memoryTx) Discard() {
	if t.done {
		return
	}
	t.done = true
	// Restore in reverse registration order so dependent stores unwind last.
	for i := len(t.restores) - 1; i >= 0; i-- {
		t.restores[i]()
	}
	t.owner.mu.Unlock()
}
