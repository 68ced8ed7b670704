package ledger

import (
	"context"
	"sync"
)

// Repository persists the economy state. Saves are write-through: the
// engine calls Save after every mutation.
type Repository interface {
	Load(ctx context.Context) (*State, error)
	Save(ctx context.Context, st *State) error
}

// MemoryRepo keeps the state in memory; used by tests.
type MemoryRepo struct {
	mu sync.RWMutex
	st *State
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

func (r *MemoryRepo) Load(ctx context.Context) (*State, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.st == nil {
		return NewState(), nil
	}
	return r.st.Clone(), nil
}

func (r *MemoryRepo) Save(ctx context.Context, st *State) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.st = st.Clone()
	return nil
}
