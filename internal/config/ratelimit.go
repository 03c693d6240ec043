package config

import "time"

// RateLimitConfig drives the token bucket in front of /api/login and
// /api/register.  Both routes are anonymous, so buckets are keyed by client
// IP and optionally by route; there is no user to key on.
//
// Environment:
//
//	AUTH_RATE_LIMIT_ENABLED   default true
//	AUTH_RATE_LIMIT_BURST     bucket size, default 10
//	AUTH_RATE_LIMIT_EVERY     one token is returned per interval, default 6s
//	AUTH_RATE_LIMIT_PER_ROUTE separate buckets for login and register, default true
//	AUTH_RATE_LIMIT_PREFIX    Redis key prefix, default "rl:auth"
type RateLimitConfig struct {
	Enabled  bool
	Burst    int
	Every    time.Duration
	PerRoute bool
	Prefix   string
}

// LoadRateLimitConfig reads the limiter settings and clamps them to usable
// values.
func LoadRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Enabled:  envBool("AUTH_RATE_LIMIT_ENABLED", true),
		Burst:    envInt("AUTH_RATE_LIMIT_BURST", 10),
		Every:    envDur("AUTH_RATE_LIMIT_EVERY", 6*time.Second),
		PerRoute: envBool("AUTH_RATE_LIMIT_PER_ROUTE", true),
		Prefix:   envStr("AUTH_RATE_LIMIT_PREFIX", "rl:auth"),
	}.Normalized()
}

// Normalized clamps zero or negative settings to working values.
func (c RateLimitConfig) Normalized() RateLimitConfig {
	if c.Burst < 1 {
		c.Burst = 1
	}
	if c.Every <= 0 {
		c.Every = time.Second
	}
	if c.Prefix == "" {
		c.Prefix = "rl:auth"
	}
	return c
}

// KeyTTL is how long an idle bucket survives in Redis: long enough to refill
// completely, after which a fresh bucket is equivalent.
func (c RateLimitConfig) KeyTTL() time.Duration {
	c = c.Normalized()
	return time.Duration(c.Burst+1) * c.Every
}
