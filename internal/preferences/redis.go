package preferences

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jonathan/presence-audit/internal/currency"
	"github.com/jonathan/presence-audit/internal/types"
)

const (
	keyPrefix = "audit:prefs:"

	fieldAPIKey   = "api_key"
	fieldTheme    = "theme"
	fieldCurrency = "currency"
)

// DefaultTTL is how long an untouched session keeps its preferences.
const DefaultTTL = 30 * 24 * time.Hour

// RedisStore keeps each session's preferences in a Redis hash.
type RedisStore struct {
	client  *redis.Client
	catalog *currency.Catalog
	ttl     time.Duration
}

// NewRedisStore wraps client. A non-positive ttl keeps keys forever.
func NewRedisStore(client *redis.Client, catalog *currency.Catalog, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, catalog: catalog, ttl: ttl}
}

// NewRedisClient creates a go-redis client with conservative timeouts.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
}

func sessionKey(session string) string {
	return keyPrefix + session
}

// Get loads the hash for session. Missing or unrecognised fields fall back to defaults.
func (s *RedisStore) Get(ctx context.Context, session string) (types.Preferences, error) {
	fields, err := s.client.HGetAll(ctx, sessionKey(session)).Result()
	if err != nil {
		return types.Preferences{}, fmt.Errorf("failed to load preferences: %w", err)
	}

	prefs := Defaults(s.catalog)
	prefs.APIKey = fields[fieldAPIKey]
	if t := types.Theme(fields[fieldTheme]); t == types.ThemeLight || t == types.ThemeDark {
		prefs.Theme = t
	}
	if cur, ok := s.catalog.Lookup(fields[fieldCurrency]); ok {
		prefs.Currency = cur.Code
	}
	return prefs, nil
}

// Put validates prefs and replaces the stored hash. An empty API key deletes the override.
func (s *RedisStore) Put(ctx context.Context, session string, prefs types.Preferences) error {
	normalized, err := Normalize(prefs, s.catalog)
	if err != nil {
		return err
	}

	key := sessionKey(session)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, fieldTheme, string(normalized.Theme), fieldCurrency, normalized.Currency)
		if normalized.APIKey == "" {
			pipe.HDel(ctx, key, fieldAPIKey)
		} else {
			pipe.HSet(ctx, key, fieldAPIKey, normalized.APIKey)
		}
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}
