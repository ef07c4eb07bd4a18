package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructural_StripsVariantMarkers(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "single quotes and extra attribute",
			input:    `<div id="p0" class='page-break'></div><p>A</p><div class="page-break"></div><p>B</p><div data-x="1" class="page-break"></div>`,
			expected: `<p>A</p><div class="page-break"></div><p>B</p>`,
		},
		{
			name:     "class list and whitespace content",
			input:    "<div class=\"break page-break\"> </div>\n<h1>T</h1>\n<section class=\"page-break\"></section>",
			expected: "<h1>T</h1>",
		},
		{
			name:     "non-empty page-break element is content",
			input:    `<div class="page-break">Cover</div><p>A</p>`,
			expected: `<div class="page-break">Cover</div><p>A</p>`,
		},
		{
			name:     "leading style element survives",
			input:    `<style>.x{color:red}</style><p>A</p>`,
			expected: `<style>.x{color:red}</style><p>A</p>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Structural(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestStructural_Empty(t *testing.T) {
	got, err := Structural("  \n ")
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestStructural_ToleratesMalformedMarkup(t *testing.T) {
	got, err := Structural(`<p>unclosed <b>bold <div class="page-break">`)
	require.NoError(t, err)
	assert.Contains(t, got, "unclosed")
}

func TestCountPageBreaks(t *testing.T) {
	assert.Equal(t, 2, CountPageBreaks(`<p>a</p><div class="page-break"></div><p>b</p><div class='page-break'></div>`))
	assert.Equal(t, 0, CountPageBreaks(`<p>a</p>`))
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Joe's Pizza Audit", Title("<p>x</p><h1>\n  Joe's   Pizza Audit </h1><h1>Second</h1>"))
	assert.Equal(t, "", Title("<p>no heading</p>"))
}
