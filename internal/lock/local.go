package lock

import (
	"context"
	"fmt"
	"sync"

	"github.com/MarkoPoloResearchLab/frontdesk/pkg/frontdesk"
)

// Local grants leases within one process. Held keys fail fast instead of waiting.
type Local struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewLocal returns an empty Local locker.
func NewLocal() *Local {
	return &Local{held: make(map[string]struct{})}
}

// Acquire takes the lease on key or returns frontdesk.ErrTransitionLocked.
func (locker *Local) Acquire(ctx context.Context, key string) (func(context.Context) error, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	locker.mu.Lock()
	defer locker.mu.Unlock()
	if _, busy := locker.held[key]; busy {
		return nil, fmt.Errorf("lock: %s: %w", key, frontdesk.ErrTransitionLocked)
	}
	locker.held[key] = struct{}{}
	var once sync.Once
	return func(context.Context) error {
		once.Do(func() {
			locker.mu.Lock()
			delete(locker.held, key)
			locker.mu.Unlock()
		})
		return nil
	}, nil
}
