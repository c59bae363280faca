package tx

import (
	"context"
	"sync"
)

type memoryTxKey struct{}

// MemoryRunner serializes callbacks behind one mutex so in-memory stores get
// the same validate-then-write atomicity as a database transaction.
// AfterCommit hooks run after the callback succeeds, outside the lock.
type MemoryRunner struct {
	mu sync.Mutex
}

func NewMemoryRunner() *MemoryRunner {
	return &MemoryRunner{}
}

func (r *MemoryRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(memoryTxKey{}) == r {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	txCtx, hooks := withHooks(context.WithValue(ctx, memoryTxKey{}, r))
	if err := r.run(txCtx, fn); err != nil {
		return err
	}
	hooks.run()
	return nil
}

func (r *MemoryRunner) run(ctx context.Context, fn func(ctx context.Context) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(ctx)
}
