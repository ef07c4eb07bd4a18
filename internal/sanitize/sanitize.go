// Package sanitize normalizes raw model output into an HTML fragment that can be
// embedded directly in the report view.
package sanitize

import (
	"regexp"
	"strings"

	"github.com/jonathan/presence-audit/internal/types"
)

// PageBreakMarker is the exact element the model is told to emit between pages.
const PageBreakMarker = `<div class="page-break"></div>`

const (
	htmlFenceOpen = "```html"
	fence         = "```"
)

var (
	// boilerplatePatterns strip document-level wrapper tags, case-insensitively.
	// The optional attribute group requires whitespace so <bodyguard> is left alone.
	boilerplatePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)<!doctype(?:\s[^>]*)?>`),
		regexp.MustCompile(`(?i)<html(?:\s[^>]*)?>`),
		regexp.MustCompile(`(?i)</html\s*>`),
		regexp.MustCompile(`(?i)<body(?:\s[^>]*)?>`),
		regexp.MustCompile(`(?i)</body\s*>`),
	}

	leadingBreaks  = regexp.MustCompile(`^(?:` + regexp.QuoteMeta(PageBreakMarker) + `\s*)+`)
	trailingBreaks = regexp.MustCompile(`(?:\s*` + regexp.QuoteMeta(PageBreakMarker) + `)+$`)
)

// maxPasses bounds the fixed-point loop. Every pass that changes the input makes
// it strictly shorter, so the bound is never reached for real responses.
const maxPasses = 16

// Sanitize cleans a raw model response. It never fails: an empty result is
// reported with Present == false and the caller decides how to surface it.
func Sanitize(raw string) types.SanitizedReport {
	fragment := Fragment(raw)
	return types.SanitizedReport{
		Fragment: fragment,
		Present:  fragment != "",
	}
}

// Fragment applies the cleanup pass until the output stops changing, so that a
// removal exposing a new match (for example a fence split by a body tag) is still
// handled and the result is idempotent.
func Fragment(raw string) string {
	current := raw
	for range maxPasses {
		next := pass(current)
		if next == current {
			return next
		}
		current = next
	}
	return current
}

// pass runs the five cleanup steps once, in order.
func pass(s string) string {
	s = StripFences(s)
	s = StripBoilerplate(s)
	s = strings.TrimSpace(s)
	s = StripLeadingBreaks(s)
	s = StripTrailingBreaks(s)
	return s
}

// StripFences removes every ```html opening fence and every plain ``` fence.
func StripFences(s string) string {
	s = strings.ReplaceAll(s, htmlFenceOpen, "")
	return strings.ReplaceAll(s, fence, "")
}

// StripBoilerplate removes doctype, html and body tags regardless of case.
func StripBoilerplate(s string) string {
	for _, re := range boilerplatePatterns {
		s = re.ReplaceAllString(s, "")
	}
	return s
}

// StripLeadingBreaks removes a run of page-break markers at the very start of s.
// s is expected to be trimmed; only the exact marker signature is matched.
func StripLeadingBreaks(s string) string {
	return leadingBreaks.ReplaceAllString(s, "")
}

// StripTrailingBreaks removes a run of page-break markers at the very end of s.
func StripTrailingBreaks(s string) string {
	return trailingBreaks.ReplaceAllString(s, "")
}
