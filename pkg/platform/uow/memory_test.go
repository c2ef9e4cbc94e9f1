package uow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapStore is a minimal snapshot-capable store for exercising the unit of work.
type mapStore struct {
	rows map[string]string
}

func (s *mapStore) Snapshot() func() {
	before := make(map[string]string, len(s.rows))
	for k, v := range s.rows {
		before[k] = v
	}
	return func() { s.rows = before }
}

func TestMemoryUnitOfWork(t *testing.T) {
	ctx := context.Background()

	t.Run("commit keeps writes", func(t *testing.T) {
		store := &mapStore{rows: map[string]string{}}
		u := NewMemory(store)

		_, tx, err := u.Begin(ctx)
		require.NoError(t, err)
		defer tx.Discard()

		store.rows["k"] = "v"
		require.NoError(t, tx.Commit())
		assert.Equal(t, "v", store.rows["k"])
	})

	t.Run("discard restores pre-transaction state", func(t *testing.T) {
		store := &mapStore{rows: map[string]string{"existing": "1"}}
		u := NewMemory(store)

		_, tx, err := u.Begin(ctx)
		require.NoError(t, err)

		store.rows["k"] = "v"
		store.rows["existing"] = "2"
		tx.Discard()

		assert.Equal(t, map[string]string{"existing": "1"}, store.rows)
	})

	t.Run("discard after commit is a no-op", func(t *testing.T) {
		store := &mapStore{rows: map[string]string{}}
		u := NewMemory(store)

		_, tx, err := u.Begin(ctx)
		require.NoError(t, err)

		store.rows["k"] = "v"
		require.NoError(t, tx.Commit())
		tx.Discard()

		assert.Equal(t, "v", store.rows["k"])
	})

	t.Run("sequential units of work do not deadlock", func(t *testing.T) {
		store := &mapStore{rows: map[string]string{}}
		u := NewMemory(store)

		for i := 0; i < 3; i++ {
			_, tx, err := u.Begin(ctx)
			require.NoError(t, err)
			tx.Discard()
		}
	})

	t.Run("cancelled context refuses to begin", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, _, err := NewMemory().Begin(cancelled)
		require.Error(t, err)
	})
}
