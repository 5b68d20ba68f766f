package pipeline

import (
	"context"
	"sync"
)

// Generation tags the requests of one sync cycle. Starting a new generation
// cancels the previous one, and results carrying an old token are dropped.
type Generation struct {
	mu     sync.Mutex
	token  uint64
	cancel context.CancelFunc
}

// Start aborts the running generation and begins the next one.
func (g *Generation) Start(parent context.Context) (context.Context, uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.abortLocked()
	ctx, cancel := context.WithCancel(parent)
	g.cancel = cancel
	return ctx, g.token
}

// Abort cancels the running generation. Its results become stale.
func (g *Generation) Abort() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.abortLocked()
}

func (g *Generation) abortLocked() {
	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
	g.token++
}

// Current reports whether token belongs to the running generation.
func (g *Generation) Current(token uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cancel != nil && g.token == token
}
