package preferences

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/presence-audit/internal/currency"
	"github.com/jonathan/presence-audit/internal/types"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func stores(t *testing.T) map[string]Store {
	_, client := setupRedis(t)
	return map[string]Store{
		"memory": NewMemoryStore(currency.Default()),
		"redis":  NewRedisStore(client, currency.Default(), DefaultTTL),
	}
}

func TestStore_DefaultsForUnknownSession(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			prefs, err := store.Get(context.Background(), "nobody")
			require.NoError(t, err)
			assert.Equal(t, types.Preferences{Theme: types.ThemeLight, Currency: "USD"}, prefs)
		})
	}
}

func TestStore_RoundTrip(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.Put(ctx, "s1", types.Preferences{
				APIKey:   "  key-1234  ",
				Theme:    "Dark",
				Currency: "eur",
			}))

			prefs, err := store.Get(ctx, "s1")
			require.NoError(t, err)
			assert.Equal(t, "key-1234", prefs.APIKey)
			assert.Equal(t, types.ThemeDark, prefs.Theme)
			assert.Equal(t, "EUR", prefs.Currency)

			other, err := store.Get(ctx, "s2")
			require.NoError(t, err)
			assert.Empty(t, other.APIKey)
		})
	}
}

func TestStore_ClearingAPIKey(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.Put(ctx, "s1", types.Preferences{APIKey: "secret"}))
			require.NoError(t, store.Put(ctx, "s1", types.Preferences{Theme: types.ThemeDark}))

			prefs, err := store.Get(ctx, "s1")
			require.NoError(t, err)
			assert.Empty(t, prefs.APIKey)
			assert.Equal(t, types.ThemeDark, prefs.Theme)
		})
	}
}

func TestStore_RejectsUnknownValues(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			assert.ErrorIs(t, store.Put(ctx, "s1", types.Preferences{Theme: "neon"}), ErrInvalid)
			assert.ErrorIs(t, store.Put(ctx, "s1", types.Preferences{Currency: "XXX"}), ErrInvalid)

			prefs, err := store.Get(ctx, "s1")
			require.NoError(t, err)
			assert.Equal(t, Defaults(currency.Default()), prefs)
		})
	}
}

func TestRedisStore_HashLayoutAndTTL(t *testing.T) {
	mr, client := setupRedis(t)
	store := NewRedisStore(client, currency.Default(), time.Hour)

	require.NoError(t, store.Put(context.Background(), "abc", types.Preferences{APIKey: "k", Currency: "GBP"}))

	assert.Equal(t, "k", mr.HGet("audit:prefs:abc", "api_key"))
	assert.Equal(t, "GBP", mr.HGet("audit:prefs:abc", "currency"))
	assert.Equal(t, "light", mr.HGet("audit:prefs:abc", "theme"))
	assert.Equal(t, time.Hour, mr.TTL("audit:prefs:abc"))
	require.NoError(t, store.Ping(context.Background()))
}

func TestRedisStore_IgnoresCorruptFields(t *testing.T) {
	mr, client := setupRedis(t)
	mr.HSet("audit:prefs:abc", "theme", "purple")
	mr.HSet("audit:prefs:abc", "currency", "ZZZ")

	prefs, err := NewRedisStore(client, currency.Default(), 0).Get(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, Defaults(currency.Default()), prefs)
}

func TestRedisStore_ConnectionError(t *testing.T) {
	mr, client := setupRedis(t)
	mr.Close()

	_, err := NewRedisStore(client, currency.Default(), 0).Get(context.Background(), "abc")
	assert.Error(t, err)
}
