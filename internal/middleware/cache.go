package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/mercado-storefront/internal/config"
)

// cachedListing is what is stored under CacheConfig.Key.
type cachedListing struct {
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// bodyRecorder tees the response body into a buffer while it streams to the
// client.  Once the body passes limit the copy is dropped.
type bodyRecorder struct {
	http.ResponseWriter
	buf      bytes.Buffer
	limit    int
	overflow bool
}

func (r *bodyRecorder) Write(p []byte) (int, error) {
	if !r.overflow {
		if r.limit > 0 && r.buf.Len()+len(p) > r.limit {
			r.overflow = true
			r.buf.Reset()
		} else {
			r.buf.Write(p)
		}
	}
	return r.ResponseWriter.Write(p)
}

// NewRedisCache serves GET /api/products from Redis when a copy is there
// and stores successful responses otherwise.  It is only for responses that
// are the same for every caller; the cart must never sit behind it.
// "Cache-Control: no-cache" skips the lookup but still refreshes the copy.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	if cfg.Key == "" {
		cfg.Key = "cache:products"
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodGet {
				return next(c)
			}
			ctx := c.Request().Context()
			res := c.Response()

			bypass := strings.Contains(strings.ToLower(c.Request().Header.Get("Cache-Control")), "no-cache")
			if !bypass {
				if hit, ok := loadListing(ctx, rdb, cfg.Key); ok {
					res.Header().Set("X-Cache", "HIT")
					return c.Blob(http.StatusOK, hit.ContentType, hit.Body)
				}
			}

			rec := &bodyRecorder{ResponseWriter: res.Writer, limit: cfg.MaxBodyBytes}
			res.Writer = rec
			res.Header().Set("X-Cache", "MISS")
			if err := next(c); err != nil {
				return err
			}
			if res.Status != http.StatusOK || rec.overflow {
				return nil
			}

			payload, err := json.Marshal(cachedListing{
				ContentType: res.Header().Get(echo.HeaderContentType),
				Body:        rec.buf.Bytes(),
			})
			if err != nil {
				return nil
			}
			// the response is already sent; a cancelled client must not abort the store
			if err := rdb.Set(context.WithoutCancel(ctx), cfg.Key, payload, cfg.TTL).Err(); err != nil {
				log.Printf("cache: store %s failed: %v", cfg.Key, err)
			}
			return nil
		}
	}
}

func loadListing(ctx context.Context, rdb *redis.Client, key string) (cachedListing, bool) {
	bs, err := rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("cache: read %s failed: %v", key, err)
		}
		return cachedListing{}, false
	}
	var l cachedListing
	if err := json.Unmarshal(bs, &l); err != nil || l.ContentType == "" {
		return cachedListing{}, false
	}
	return l, true
}
