package sanitize

import (
	"fmt"
	"strings"

	"github.com/jonathan/presence-audit/internal/types"
)

// Mode selects how page-break markers at the edges of the fragment are matched.
type Mode string

const (
	// ModePattern matches the marker by its exact text. This is the default.
	ModePattern Mode = "pattern"
	// ModeStructural additionally parses the fragment and strips edge markers by structure.
	ModeStructural Mode = "structural"
)

// ParseMode converts a config string to a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModePattern:
		return ModePattern, nil
	case ModeStructural:
		return ModeStructural, nil
	default:
		return "", fmt.Errorf("unknown sanitize mode %q (want %q or %q)", s, ModePattern, ModeStructural)
	}
}

// Pipeline is the configured post-processing applied to every model response.
type Pipeline struct {
	Mode  Mode
	Scrub bool
}

// DefaultPipeline returns pattern matching with scrubbing enabled.
func DefaultPipeline() Pipeline {
	return Pipeline{Mode: ModePattern, Scrub: true}
}

// Run sanitizes raw and applies the optional structural and scrub passes.
// The pattern pass always runs first; the later passes only ever narrow its output.
func (p Pipeline) Run(raw string) (types.SanitizedReport, error) {
	fragment := Fragment(raw)

	if p.Mode == ModeStructural && fragment != "" {
		structural, err := Structural(fragment)
		if err != nil {
			return types.SanitizedReport{}, err
		}
		fragment = structural
	}

	if p.Scrub && fragment != "" {
		fragment = strings.TrimSpace(Scrub(fragment))
		// Scrubbing can expose a marker at an edge by removing a script next to it.
		fragment = Fragment(fragment)
	}

	return types.SanitizedReport{Fragment: fragment, Present: fragment != ""}, nil
}
