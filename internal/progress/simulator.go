package progress

import (
	"context"
	"sync"
	"time"
)

// DefaultInterval is the time between phase advances.
const DefaultInterval = 1500 * time.Millisecond

// Simulator drives a State from a ticker. It is safe for concurrent use.
type Simulator struct {
	interval  time.Duration
	onAdvance func(Snapshot)

	mu     sync.Mutex
	state  *State
	cancel context.CancelFunc
	done   chan struct{}
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithInterval overrides DefaultInterval.
func WithInterval(d time.Duration) Option {
	return func(s *Simulator) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithOnAdvance registers a callback invoked on activation and after every advance.
// It runs on the simulator goroutine and must not call Stop.
func WithOnAdvance(fn func(Snapshot)) Option {
	return func(s *Simulator) {
		s.onAdvance = fn
	}
}

// NewSimulator creates a stopped simulator over labels.
func NewSimulator(labels []string, opts ...Option) *Simulator {
	s := &Simulator{
		interval: DefaultInterval,
		state:    NewState(labels),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start activates the simulator. The ticker goroutine exits when Stop is called,
// when ctx is cancelled, or once the last phase has been reached. Starting a
// running simulator is a no-op.
func (s *Simulator) Start(ctx context.Context) {
	s.mu.Lock()
	if s.state.Active || s.state.Len() == 0 {
		s.mu.Unlock()
		return
	}
	s.state.Start()
	first := s.state.Snapshot()

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	done := s.done
	s.mu.Unlock()

	s.notify(first)
	go s.run(runCtx, done)
}

func (s *Simulator) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			// Stop may have won the race for the lock.
			if ctx.Err() != nil {
				s.mu.Unlock()
				return
			}
			moved := s.state.Tick()
			snap := s.state.Snapshot()
			last := snap.Index >= s.state.Len()-1
			s.mu.Unlock()

			if moved {
				s.notify(snap)
			}
			if last {
				return
			}
		}
	}
}

// Stop cancels the timer, waits for the goroutine to exit and resets the state.
// It is safe to call on a stopped simulator.
func (s *Simulator) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}

	s.mu.Lock()
	s.state.Stop()
	s.mu.Unlock()
}

// Snapshot returns a copy of the current state.
func (s *Simulator) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Snapshot()
}

func (s *Simulator) notify(snap Snapshot) {
	if s.onAdvance != nil {
		s.onAdvance(snap)
	}
}
