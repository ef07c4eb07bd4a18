package progress

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recorder struct {
	mu    sync.Mutex
	snaps []Snapshot
}

func (r *recorder) add(s Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, s)
}

func (r *recorder) all() []Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Snapshot, len(r.snaps))
	copy(out, r.snaps)
	return out
}

func TestSimulator_RunsToLastPhaseAndHalts(t *testing.T) {
	rec := &recorder{}
	sim := NewSimulator(labels, WithInterval(2*time.Millisecond), WithOnAdvance(rec.add))

	sim.Start(context.Background())
	require.Eventually(t, func() bool {
		return sim.Snapshot().Index == len(labels)-1
	}, time.Second, time.Millisecond)

	// Give a stray tick the chance to misbehave.
	time.Sleep(10 * time.Millisecond)

	snap := sim.Snapshot()
	assert.True(t, snap.Active)
	assert.Equal(t, len(labels)-1, snap.Index)
	assert.Len(t, snap.Log, len(labels))
	assert.Equal(t, 1.0, snap.Percent)

	got := rec.all()
	require.Len(t, got, len(labels))
	for i, s := range got {
		assert.Equal(t, i, s.Index)
		assert.Len(t, s.Log, s.Index+1)
		assert.Equal(t, Marker+labels[i], s.Log[i])
	}

	sim.Stop()
	assert.False(t, sim.Snapshot().Active)
	assert.Empty(t, sim.Snapshot().Log)
}

func TestSimulator_StopCancelsTimer(t *testing.T) {
	rec := &recorder{}
	sim := NewSimulator(DefaultPhases, WithInterval(time.Hour), WithOnAdvance(rec.add))

	sim.Start(context.Background())
	snap := sim.Snapshot()
	assert.True(t, snap.Active)
	assert.Equal(t, 0, snap.Index)

	sim.Stop()
	sim.Stop() // idempotent

	assert.False(t, sim.Snapshot().Active)
	assert.Len(t, rec.all(), 1, "only the activation is reported")
}

func TestSimulator_ContextCancellationEndsGoroutine(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sim := NewSimulator(DefaultPhases, WithInterval(time.Hour))

	sim.Start(ctx)
	cancel()
	sim.Stop()

	assert.False(t, sim.Snapshot().Active)
}

func TestSimulator_RestartAfterStop(t *testing.T) {
	sim := NewSimulator(labels, WithInterval(time.Millisecond))

	sim.Start(context.Background())
	require.Eventually(t, func() bool { return sim.Snapshot().Index == 2 }, time.Second, time.Millisecond)
	sim.Stop()

	sim.Start(context.Background())
	snap := sim.Snapshot()
	assert.True(t, snap.Active)
	assert.LessOrEqual(t, snap.Index, 2)
	assert.Len(t, snap.Log, snap.Index+1)
	sim.Stop()
}

func TestSimulator_InvariantsUnderConcurrentReads(t *testing.T) {
	sim := NewSimulator(DefaultPhases, WithInterval(time.Millisecond))
	sim.Start(context.Background())
	defer sim.Stop()

	deadline := time.Now().Add(30 * time.Millisecond)
	for time.Now().Before(deadline) {
		snap := sim.Snapshot()
		if !snap.Active {
			continue
		}
		assert.LessOrEqual(t, snap.Index, len(DefaultPhases)-1)
		assert.Len(t, snap.Log, snap.Index+1)
	}
}

func TestWithInterval_IgnoresNonPositive(t *testing.T) {
	sim := NewSimulator(labels, WithInterval(0))
	assert.Equal(t, DefaultInterval, sim.interval)
}
