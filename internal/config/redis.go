package config

// Redis backs two optional features of the storefront: the product listing
// cache and the login/register rate limiter.  Neither is required for
// correctness, so a missing or unreachable server disables both instead of
// failing startup.

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig describes how to reach Redis.  URL, when set, wins over the
// individual fields.
type RedisConfig struct {
	Disabled bool
	URL      string // redis:// or rediss://
	Addr     string // host:port
	Password string
	DB       int
	TLS      bool
}

// LoadRedisConfig reads REDIS_DISABLED, REDIS_URL, REDIS_ADDR (or
// REDIS_HOST plus REDIS_PORT), REDIS_PASSWORD, REDIS_DB and REDIS_TLS.
func LoadRedisConfig() RedisConfig {
	rc := RedisConfig{
		Disabled: envBool("REDIS_DISABLED", false),
		URL:      envStr("REDIS_URL", ""),
		Addr:     envStr("REDIS_ADDR", "localhost:6379"),
		Password: envStr("REDIS_PASSWORD", ""),
		DB:       envInt("REDIS_DB", 0),
		TLS:      envBool("REDIS_TLS", false),
	}
	if host, port := envStr("REDIS_HOST", ""), envStr("REDIS_PORT", ""); host != "" && port != "" {
		rc.Addr = host + ":" + port
	}
	return rc
}

// Options converts the config into go-redis client options.
func (rc RedisConfig) Options() (*redis.Options, error) {
	if rc.URL != "" {
		opts, err := redis.ParseURL(rc.URL)
		if err != nil {
			return nil, fmt.Errorf("REDIS_URL: %w", err)
		}
		return opts, nil
	}
	if rc.DB < 0 {
		return nil, fmt.Errorf("REDIS_DB must not be negative, got %d", rc.DB)
	}
	opts := &redis.Options{Addr: rc.Addr, Password: rc.Password, DB: rc.DB}
	if rc.TLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return opts, nil
}

// NewRedisClient connects and pings.  It returns nil, after logging why,
// when Redis is disabled, misconfigured or unreachable.
func NewRedisClient(rc RedisConfig) *redis.Client {
	if rc.Disabled {
		log.Printf("redis: disabled; product cache and auth rate limit off")
		return nil
	}
	opts, err := rc.Options()
	if err != nil {
		log.Printf("redis: %v; product cache and auth rate limit off", err)
		return nil
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("redis: %s unreachable: %v; product cache and auth rate limit off", opts.Addr, err)
		_ = client.Close()
		return nil
	}
	log.Printf("redis: connected to %s db=%d", opts.Addr, opts.DB)
	return client
}
