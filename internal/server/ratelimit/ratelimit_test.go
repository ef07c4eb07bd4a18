package ratelimit

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestBucket_TakeAndRefill(t *testing.T) {
	start := time.Unix(0, 0)
	b := newBucket(3, 1, start)

	for i := 0; i < 3; i++ {
		ok, remaining, _ := b.take(start)
		require.True(t, ok)
		assert.Equal(t, 2-i, remaining)
	}
	ok, _, untilFull := b.take(start)
	assert.False(t, ok)
	assert.Equal(t, 3*time.Second, untilFull)
	assert.Equal(t, time.Second, b.untilNext())

	ok, _, _ = b.take(start.Add(1500 * time.Millisecond))
	assert.True(t, ok, "one token refilled")
}

func TestLimiter_DefaultLimit(t *testing.T) {
	l := NewLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})
	defer l.Stop()

	for i := 0; i < 10; i++ {
		allowed, info := l.Allow("127.0.0.1", "/currencies", "GET")
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 10, info.Limit)
		assert.Equal(t, 9-i, info.Remaining)
	}

	allowed, info := l.Allow("127.0.0.1", "/currencies", "GET")
	assert.False(t, allowed)
	assert.Equal(t, 0, info.Remaining)
	assert.Greater(t, info.RetryAfter, time.Duration(0))

	allowed, _ = l.Allow("10.0.0.2", "/currencies", "GET")
	assert.True(t, allowed, "clients are independent")
}

func TestLimiter_AuditRules(t *testing.T) {
	l := NewLimiter(NewConfig(5))
	defer l.Stop()

	for i := 0; i < 2; i++ {
		allowed, info := l.Allow("1.2.3.4", "/audits", "POST")
		require.True(t, allowed)
		assert.Equal(t, 5, info.Limit)
	}
	allowed, _ := l.Allow("1.2.3.4", "/audits", "POST")
	assert.False(t, allowed, "burst of 2 exhausted")

	allowed, _ = l.Allow("1.2.3.4", "/audits/stream", "POST")
	assert.True(t, allowed, "stream route has its own bucket")

	for i := 0; i < 50; i++ {
		allowed, info := l.Allow("1.2.3.4", "/health", "GET")
		require.True(t, allowed)
		assert.Zero(t, info.Limit)
	}
}

func TestLimiter_TrailingSlashSharesBucket(t *testing.T) {
	l := NewLimiter(NewConfig(1))
	defer l.Stop()

	allowed, info := l.Allow("1.2.3.4", "/audits/", "POST")
	require.True(t, allowed)
	assert.Equal(t, 1, info.Limit)

	allowed, _ = l.Allow("1.2.3.4", "/audits", "POST")
	assert.False(t, allowed)
	allowed, _ = l.Allow("1.2.3.4", "/audits//", "POST")
	assert.False(t, allowed)
	allowed, _ = l.Allow("1.2.3.4", "/audits/stream/", "POST")
	assert.True(t, allowed, "stream route keeps its own bucket")
}

func TestLimiter_PrefixRule(t *testing.T) {
	l := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
		Rules:         []Rule{{Path: "/audits/", Method: "GET", Limit: 1, Window: time.Minute}},
	})
	defer l.Stop()

	allowed, _ := l.Allow("c", "/audits/abc/report.pdf", "GET")
	assert.True(t, allowed)
	allowed, _ = l.Allow("c", "/audits/def/report.html", "GET")
	assert.False(t, allowed, "prefix rule shares one bucket")

	allowed, info := l.Allow("c", "/audits", "GET")
	assert.True(t, allowed)
	assert.Equal(t, 1000, info.Limit)
}

func TestLimiter_AllowAndDenyLists(t *testing.T) {
	l := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
		Allowlist:     map[string]bool{"trusted": true},
		Denylist:      map[string]bool{"blocked": true},
	})
	defer l.Stop()

	for i := 0; i < 20; i++ {
		allowed, _ := l.Allow("trusted", "/x", "GET")
		require.True(t, allowed)
	}
	allowed, _ := l.Allow("blocked", "/x", "GET")
	assert.False(t, allowed)
}

func TestLimiter_Disabled(t *testing.T) {
	for _, cfg := range []*Config{nil, NewConfig(0)} {
		l := NewLimiter(cfg)
		for i := 0; i < 20; i++ {
			allowed, info := l.Allow("c", "/audits", "POST")
			require.True(t, allowed)
			assert.Zero(t, info.Limit)
		}
		l.Stop()
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	l := NewLimiter(&Config{Enabled: true, DefaultLimit: 100, DefaultWindow: time.Hour})
	defer l.Stop()

	var allowed atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.Allow("c", "/x", "GET"); ok {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(100), allowed.Load())
}

func TestLimiter_EvictsIdleBuckets(t *testing.T) {
	l := NewLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute, IdleTTL: time.Minute})
	defer l.Stop()

	now := time.Now()
	l.now = func() time.Time { return now }
	for i := 0; i < 5; i++ {
		l.Allow(fmt.Sprintf("10.0.0.%d", i), "/x", "GET")
	}
	require.Equal(t, 5, l.Size())

	now = now.Add(30 * time.Second)
	l.Allow("10.0.0.0", "/x", "GET")

	now = now.Add(45 * time.Second)
	l.evictIdle()
	assert.Equal(t, 1, l.Size(), "only the recently used bucket survives")
}

func TestLimiter_StopIsIdempotent(t *testing.T) {
	l := NewLimiter(&Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute, CleanupInterval: time.Millisecond})
	l.Stop()
	l.Stop()
}
