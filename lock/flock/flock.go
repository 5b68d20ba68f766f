package flock

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/flock"

	"github.com/projecteru2/ovxview/lock"
)

const retryDelay = 100 * time.Millisecond

var _ lock.Locker = (*Lock)(nil)

// Lock serialises access to a file across processes (flock(2) via
// gofrs/flock) and across goroutines of this process. A flock handle that
// is already held reports success to every caller, so the in-process side is
// a one-slot channel.
type Lock struct {
	fl   *flock.Flock
	slot chan struct{}
}

// New creates a new Lock for the given path.
func New(path string) *Lock {
	return &Lock{fl: flock.New(path), slot: make(chan struct{}, 1)}
}

// Lock blocks until both the in-process slot and the flock are held or ctx
// is done.
func (l *Lock) Lock(ctx context.Context) error {
	select {
	case l.slot <- struct{}{}:
	case <-ctx.Done():
		return fmt.Errorf("acquire %s: %w", l.fl.Path(), ctx.Err())
	}
	locked, err := l.fl.TryLockContext(ctx, retryDelay)
	if err != nil {
		<-l.slot
		return fmt.Errorf("acquire flock %s: %w", l.fl.Path(), err)
	}
	if !locked {
		<-l.slot
		return fmt.Errorf("failed to acquire flock %s: context done", l.fl.Path())
	}
	return nil
}

// Unlock releases the flock and the slot.
func (l *Lock) Unlock(_ context.Context) error {
	defer func() { <-l.slot }()
	if err := l.fl.Unlock(); err != nil {
		return fmt.Errorf("release flock %s: %w", l.fl.Path(), err)
	}
	return nil
}
