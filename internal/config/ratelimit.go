package config

import (
	"strings"
	"time"
)

// Rate limit key parts accepted in RATE_LIMIT_SCOPE.
const (
	ScopeIP      = "ip"
	ScopeSession = "session"
	ScopeRoute   = "route"
)

// RateLimitConfig configures the token bucket in front of the booking and
// reservation routes.  A bucket holds Capacity tokens and regains
// RefillTokens every RefillInterval.  Scope lists the request attributes
// that make up the bucket key, in key order.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration // idle buckets expire after this
	Scope          []string
	Prefix         string
	Debug          bool // adds X-RateLimit-Key and logs blocks
}

// LoadRateLimitConfig reads RATE_LIMIT_* variables.  RATE_LIMIT_BURST
// overrides the capacity and RATE_LIMIT_REFILL_EVERY sets a one token per
// interval refill.  RATE_LIMIT_KEY_STRATEGY ("ip_session") is accepted as
// an older spelling of RATE_LIMIT_SCOPE ("ip,session").
func LoadRateLimitConfig() RateLimitConfig {
	scope := envStr("RATE_LIMIT_SCOPE", "")
	if scope == "" {
		scope = strings.ReplaceAll(envStr("RATE_LIMIT_KEY_STRATEGY", "ip_session_route"), "_", ",")
	}
	cfg := RateLimitConfig{
		Enabled:        envBool("RATE_LIMIT_ENABLED", true),
		Capacity:       envInt("RATE_LIMIT_CAPACITY", 60),
		RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 1),
		RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", time.Second),
		TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
		Scope:          parseScope(scope),
		Prefix:         envStr("RATE_LIMIT_PREFIX", "rl"),
		Debug:          envBool("RATE_LIMIT_DEBUG", false),
	}
	if burst := envInt("RATE_LIMIT_BURST", 0); burst > 0 {
		cfg.Capacity = burst
	}
	if every := envDur("RATE_LIMIT_REFILL_EVERY", 0); every > 0 {
		cfg.RefillTokens, cfg.RefillInterval = 1, every
	}
	return cfg.normalize()
}

// normalize clamps the bucket to at least one token and one token per
// interval, and keeps idle buckets alive for five refill intervals.
func (c RateLimitConfig) normalize() RateLimitConfig {
	c.Capacity = max(c.Capacity, 1)
	c.RefillTokens = max(c.RefillTokens, 1)
	if c.RefillInterval <= 0 {
		c.RefillInterval = time.Second
	}
	c.TTL = max(c.TTL, 5*c.RefillInterval)
	if len(c.Scope) == 0 {
		c.Scope = []string{ScopeIP, ScopeSession, ScopeRoute}
	}
	return c
}

// parseScope keeps the known parts of a comma separated list, dropping
// repeats.
func parseScope(s string) []string {
	var out []string
	seen := map[string]bool{}
	for _, p := range strings.Split(s, ",") {
		p = strings.ToLower(strings.TrimSpace(p))
		switch p {
		case ScopeIP, ScopeSession, ScopeRoute:
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	return out
}
