package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Rule limits one route. Paths ending in "/" match by prefix.
type Rule struct {
	Path   string
	Method string
	Limit  int // requests per Window; 0 means unlimited
	Window time.Duration
	Burst  int // defaults to Limit
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	IdleTTL         time.Duration
	Allowlist       map[string]bool
	Denylist        map[string]bool
	Rules           []Rule
}

// NewConfig returns the limits for the audit API. Generation is the expensive
// route and gets auditsPerMinute with a burst of 2; everything else shares a
// generous default. auditsPerMinute of 0 disables limiting altogether.
func NewConfig(auditsPerMinute int) *Config {
	cfg := &Config{
		Enabled:         auditsPerMinute > 0,
		DefaultLimit:    600,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		IdleTTL:         time.Hour,
		Allowlist:       parseList(os.Getenv("RATE_LIMIT_ALLOWLIST")),
		Denylist:        parseList(os.Getenv("RATE_LIMIT_DENYLIST")),
	}
	burst := min(2, auditsPerMinute)
	cfg.Rules = []Rule{
		{Path: "/audits", Method: "POST", Limit: auditsPerMinute, Window: time.Minute, Burst: burst},
		{Path: "/audits/stream", Method: "POST", Limit: auditsPerMinute, Window: time.Minute, Burst: burst},
		// PDF rendering starts a browser.
		{Path: "/audits/", Method: "GET", Limit: 30, Window: time.Minute, Burst: 5},
		{Path: "/health", Method: "GET"},
		{Path: "/metrics", Method: "GET"},
	}
	if v, err := strconv.Atoi(os.Getenv("RATE_LIMIT_DEFAULT_LIMIT")); err == nil && v > 0 {
		cfg.DefaultLimit = v
	}
	return cfg
}

func parseList(list string) map[string]bool {
	out := make(map[string]bool)
	for _, item := range strings.Split(list, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out[item] = true
		}
	}
	return out
}

// match returns the rule for path and method, preferring exact matches.
// Trailing slashes are ignored because the router serves "/audits/" and
// "/audits" with the same handler.
func match(path, method string, rules []Rule) (Rule, bool) {
	path = trimTrailingSlash(path)
	for _, r := range rules {
		if r.Method == method && r.Path == path {
			return r, true
		}
	}
	for _, r := range rules {
		if r.Method == method && strings.HasSuffix(r.Path, "/") && strings.HasPrefix(path, r.Path) {
			return r, true
		}
	}
	return Rule{}, false
}

func trimTrailingSlash(path string) string {
	for len(path) > 1 && strings.HasSuffix(path, "/") {
		path = path[:len(path)-1]
	}
	return path
}
