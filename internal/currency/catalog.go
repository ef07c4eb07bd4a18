// Package currency provides the fixed catalog of currencies an audit can be denominated in.
// The catalog is embedded at compile time and checked against a JSON schema on load.
package currency

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/jonathan/presence-audit/internal/types"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed currencies.json
var catalogJSON []byte

//go:embed catalog.schema.json
var catalogSchema []byte

// CatalogError represents an invalid currency catalog document
type CatalogError struct {
	Message string
	Cause   error
}

func (e *CatalogError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("currency catalog error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("currency catalog error: %s", e.Message)
}

func (e *CatalogError) Unwrap() error {
	return e.Cause
}

// Catalog is an ordered set of currencies. The first entry is the default.
type Catalog struct {
	entries []types.Currency
	byCode  map[string]types.Currency
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the embedded catalog, panicking if the embedded document is invalid.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(catalogJSON)
		if err != nil {
			panic(fmt.Sprintf("embedded currency catalog: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Parse validates data against the catalog schema and builds a Catalog.
func Parse(data []byte) (*Catalog, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(catalogSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, &CatalogError{Message: "failed to validate catalog", Cause: err}
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, fmt.Sprintf("%s: %s", e.Field(), e.Description()))
		}
		return nil, &CatalogError{Message: strings.Join(msgs, "; ")}
	}

	var entries []types.Currency
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, &CatalogError{Message: "failed to parse catalog", Cause: err}
	}

	byCode := make(map[string]types.Currency, len(entries))
	for _, c := range entries {
		if _, dup := byCode[c.Code]; dup {
			return nil, &CatalogError{Message: fmt.Sprintf("duplicate currency code %s", c.Code)}
		}
		byCode[c.Code] = c
	}

	return &Catalog{entries: entries, byCode: byCode}, nil
}

// All returns a copy of the catalog in display order.
func (c *Catalog) All() []types.Currency {
	out := make([]types.Currency, len(c.entries))
	copy(out, c.entries)
	return out
}

// First returns the default currency.
func (c *Catalog) First() types.Currency {
	return c.entries[0]
}

// Lookup finds a currency by its code (case-insensitive).
func (c *Catalog) Lookup(code string) (types.Currency, bool) {
	cur, ok := c.byCode[strings.ToUpper(strings.TrimSpace(code))]
	return cur, ok
}

// Resolve returns the currency for code, falling back to the default for unknown or empty codes.
func (c *Catalog) Resolve(code string) types.Currency {
	if cur, ok := c.Lookup(code); ok {
		return cur
	}
	return c.First()
}
