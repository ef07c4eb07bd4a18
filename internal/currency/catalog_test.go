package currency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_FirstIsUSD(t *testing.T) {
	c := Default()

	first := c.First()
	assert.Equal(t, "USD", first.Code)
	assert.Equal(t, "$", first.Symbol)
	assert.NotEmpty(t, c.All())
}

func TestLookup(t *testing.T) {
	c := Default()

	eur, ok := c.Lookup("eur")
	require.True(t, ok)
	assert.Equal(t, "€", eur.Symbol)

	_, ok = c.Lookup("XXX")
	assert.False(t, ok)
}

func TestResolve_FallsBackToDefault(t *testing.T) {
	c := Default()

	assert.Equal(t, "GBP", c.Resolve("GBP").Code)
	assert.Equal(t, "USD", c.Resolve("").Code)
	assert.Equal(t, "USD", c.Resolve("nope").Code)
}

func TestAll_ReturnsCopy(t *testing.T) {
	c := Default()

	all := c.All()
	all[0].Code = "ZZZ"
	assert.Equal(t, "USD", c.First().Code)
}

func TestParse_SchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "empty array", doc: `[]`},
		{name: "lowercase code", doc: `[{"code":"usd","symbol":"$","label":"Dollar"}]`},
		{name: "missing symbol", doc: `[{"code":"USD","label":"Dollar"}]`},
		{name: "extra field", doc: `[{"code":"USD","symbol":"$","label":"Dollar","rate":1}]`},
		{name: "not json", doc: `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			var catErr *CatalogError
			assert.ErrorAs(t, err, &catErr)
		})
	}
}

func TestParse_DuplicateCode(t *testing.T) {
	_, err := Parse([]byte(`[{"code":"USD","symbol":"$","label":"A"},{"code":"USD","symbol":"$","label":"B"}]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate currency code USD")
}
