// Package progress provides the loading phase simulator: a cosmetic, timer-driven
// walk through a fixed list of status labels shown while an audit is generated.
// It has no connection to the real progress of the model call.
package progress

// Marker prefixes every label appended to the log.
const Marker = "› "

// DefaultPhases is the ordered list of labels shown during generation.
var DefaultPhases = []string{
	"Searching the web for the business",
	"Reviewing the Google Business Profile",
	"Checking reviews and ratings",
	"Scanning the website and social channels",
	"Benchmarking local competitors",
	"Estimating revenue impact",
	"Writing the action plan",
	"Formatting the report",
}

// State is the simulator's explicit state. Start and Tick are the only
// transitions that grow the log; Stop resets it.
//
// While Active: 0 <= Index <= len(labels)-1 and len(Log) == Index+1.
type State struct {
	labels []string
	Index  int
	Log    []string
	Active bool
}

// NewState creates an inactive state over labels. The slice is copied.
func NewState(labels []string) *State {
	l := make([]string, len(labels))
	copy(l, labels)
	return &State{labels: l}
}

// Len returns the number of phases.
func (s *State) Len() int {
	return len(s.labels)
}

// Start activates the state at the first phase. Starting an active state is a no-op.
func (s *State) Start() {
	if s.Active || len(s.labels) == 0 {
		return
	}
	s.Active = true
	s.Index = 0
	s.Log = []string{Marker + s.labels[0]}
}

// Tick advances to the next phase and reports whether it moved.
// It stops advancing at the last phase and never wraps around.
func (s *State) Tick() bool {
	if !s.Active || s.Index >= len(s.labels)-1 {
		return false
	}
	s.Index++
	s.Log = append(s.Log, Marker+s.labels[s.Index])
	return true
}

// Stop deactivates the state and clears index and log for the next activation.
func (s *State) Stop() {
	s.Active = false
	s.Index = 0
	s.Log = nil
}

// Current returns the label of the current phase, or "" when inactive.
func (s *State) Current() string {
	if !s.Active {
		return ""
	}
	return s.labels[s.Index]
}

// Percent returns (Index+1)/N as a value in [0, 1]; 0 when inactive.
func (s *State) Percent() float64 {
	if !s.Active || len(s.labels) == 0 {
		return 0
	}
	return float64(s.Index+1) / float64(len(s.labels))
}

// Snapshot is an immutable copy of a State.
type Snapshot struct {
	Index   int      `json:"index"`
	Label   string   `json:"label"`
	Log     []string `json:"log"`
	Percent float64  `json:"percent"`
	Active  bool     `json:"active"`
}

// Snapshot copies the state.
func (s *State) Snapshot() Snapshot {
	log := make([]string, len(s.Log))
	copy(log, s.Log)
	return Snapshot{
		Index:   s.Index,
		Label:   s.Current(),
		Log:     log,
		Percent: s.Percent(),
		Active:  s.Active,
	}
}
