package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var labels = []string{"one", "two", "three"}

func TestState_StartTickStop(t *testing.T) {
	s := NewState(labels)
	assert.False(t, s.Active)
	assert.Equal(t, 0.0, s.Percent())
	assert.False(t, s.Tick(), "inactive state must not advance")

	s.Start()
	require.True(t, s.Active)
	assert.Equal(t, 0, s.Index)
	assert.Equal(t, []string{Marker + "one"}, s.Log)
	assert.InDelta(t, 1.0/3.0, s.Percent(), 1e-9)

	assert.True(t, s.Tick())
	assert.True(t, s.Tick())
	assert.Equal(t, 2, s.Index)
	assert.Equal(t, "three", s.Current())
	assert.Equal(t, 1.0, s.Percent())

	// Halts at the last phase without cycling.
	for range 5 {
		assert.False(t, s.Tick())
	}
	assert.Equal(t, 2, s.Index)
	assert.Len(t, s.Log, 3)

	s.Stop()
	assert.False(t, s.Active)
	assert.Equal(t, 0, s.Index)
	assert.Empty(t, s.Log)
	assert.Equal(t, "", s.Current())
}

func TestState_Invariants(t *testing.T) {
	s := NewState(DefaultPhases)
	s.Start()

	for range 3 * len(DefaultPhases) {
		assert.LessOrEqual(t, s.Index, s.Len()-1)
		assert.Len(t, s.Log, s.Index+1)
		s.Tick()
	}
}

func TestState_RestartAfterStop(t *testing.T) {
	s := NewState(labels)
	s.Start()
	s.Tick()
	s.Stop()
	s.Start()

	assert.Equal(t, 0, s.Index)
	assert.Equal(t, []string{Marker + "one"}, s.Log)
}

func TestState_StartWhileActiveIsNoop(t *testing.T) {
	s := NewState(labels)
	s.Start()
	s.Tick()
	s.Start()

	assert.Equal(t, 1, s.Index)
	assert.Len(t, s.Log, 2)
}

func TestState_EmptyLabels(t *testing.T) {
	s := NewState(nil)
	s.Start()

	assert.False(t, s.Active)
	assert.False(t, s.Tick())
	assert.Equal(t, 0.0, s.Percent())
}

func TestState_SnapshotIsCopy(t *testing.T) {
	s := NewState(labels)
	s.Start()
	snap := s.Snapshot()
	snap.Log[0] = "mutated"

	assert.Equal(t, Marker+"one", s.Log[0])
	assert.Equal(t, "one", snap.Label)
	assert.True(t, snap.Active)
}

func TestNewState_CopiesLabels(t *testing.T) {
	in := []string{"a", "b"}
	s := NewState(in)
	in[0] = "z"
	s.Start()

	assert.Equal(t, "a", s.Current())
}
