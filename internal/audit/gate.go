package audit

import "sync"

// Gate is a per-key busy flag. It does not queue: a caller that fails to
// acquire is expected to give up.
type Gate struct {
	mu   sync.Mutex
	busy map[string]struct{}
}

// NewGate creates an empty gate.
func NewGate() *Gate {
	return &Gate{busy: make(map[string]struct{})}
}

// TryAcquire marks key busy and reports whether it was free.
func (g *Gate) TryAcquire(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.busy[key]; ok {
		return false
	}
	g.busy[key] = struct{}{}
	return true
}

// Release clears key. Releasing a free key is a no-op.
func (g *Gate) Release(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.busy, key)
}

// Busy reports whether key is held.
func (g *Gate) Busy(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.busy[key]
	return ok
}
