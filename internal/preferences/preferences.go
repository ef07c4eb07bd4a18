// Package preferences persists per-session settings: an API key override,
// the UI theme and the report currency.
package preferences

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jonathan/presence-audit/internal/currency"
	"github.com/jonathan/presence-audit/internal/types"
)

// ErrInvalid wraps every rejection of a preference value.
var ErrInvalid = errors.New("invalid preference")

// Store reads and writes preferences keyed by session.
// Get never fails for an unknown session; it returns the defaults.
type Store interface {
	Get(ctx context.Context, session string) (types.Preferences, error)
	Put(ctx context.Context, session string, prefs types.Preferences) error
}

// Defaults returns the preferences of a session that never saved any.
func Defaults(catalog *currency.Catalog) types.Preferences {
	return types.Preferences{
		Theme:    types.ThemeLight,
		Currency: catalog.First().Code,
	}
}

// Normalize validates prefs against catalog and canonicalises the theme and currency code.
// Empty theme or currency fall back to the defaults.
func Normalize(prefs types.Preferences, catalog *currency.Catalog) (types.Preferences, error) {
	out := prefs
	out.APIKey = strings.TrimSpace(prefs.APIKey)

	switch types.Theme(strings.ToLower(strings.TrimSpace(string(prefs.Theme)))) {
	case "", types.ThemeLight:
		out.Theme = types.ThemeLight
	case types.ThemeDark:
		out.Theme = types.ThemeDark
	default:
		return types.Preferences{}, fmt.Errorf("%w: unknown theme %q", ErrInvalid, prefs.Theme)
	}

	if strings.TrimSpace(prefs.Currency) == "" {
		out.Currency = catalog.First().Code
	} else {
		cur, ok := catalog.Lookup(strings.TrimSpace(prefs.Currency))
		if !ok {
			return types.Preferences{}, fmt.Errorf("%w: unknown currency %q", ErrInvalid, prefs.Currency)
		}
		out.Currency = cur.Code
	}
	return out, nil
}

// MemoryStore keeps preferences in process memory.
type MemoryStore struct {
	catalog *currency.Catalog

	mu    sync.RWMutex
	prefs map[string]types.Preferences
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(catalog *currency.Catalog) *MemoryStore {
	return &MemoryStore{
		catalog: catalog,
		prefs:   make(map[string]types.Preferences),
	}
}

func (s *MemoryStore) Get(_ context.Context, session string) (types.Preferences, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.prefs[session]; ok {
		return p, nil
	}
	return Defaults(s.catalog), nil
}

func (s *MemoryStore) Put(_ context.Context, session string, prefs types.Preferences) error {
	normalized, err := Normalize(prefs, s.catalog)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs[session] = normalized
	return nil
}
