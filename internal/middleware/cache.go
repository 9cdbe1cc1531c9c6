package middleware

import (
	"bytes"
	"crypto/sha1"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/mselim/awards-voting/internal/config"
)

// tallyWriter captures a JSON response body while forwarding it to the
// client, up to a size limit.
type tallyWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
	limit  int
}

func (w *tallyWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *tallyWriter) Write(b []byte) (int, error) {
	if w.buf.Len()+len(b) <= w.limit {
		w.buf.Write(b)
	} else {
		w.buf.Reset()
		w.limit = -1 // oversized; stop capturing
	}
	return w.ResponseWriter.Write(b)
}

// CacheResults returns a middleware caching successful GET responses in
// Redis for a short TTL. It fronts the public results endpoint, where the
// tally only needs to be reasonably fresh and announcement spikes produce
// many identical reads. Anything but a 200, and any Redis hiccup, passes
// straight through to the handler.
func CacheResults(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 10 * time.Second
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodGet {
				return next(c)
			}
			sum := sha1.Sum([]byte(c.Request().URL.RequestURI()))
			key := fmt.Sprintf("%s:%x", cfg.Prefix, sum[:])

			ctx := c.Request().Context()
			if body, err := rdb.Get(ctx, key).Bytes(); err == nil {
				return c.JSONBlob(http.StatusOK, body)
			}

			w := &tallyWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: cfg.MaxBodyBytes}
			c.Response().Writer = w
			if err := next(c); err != nil {
				return err
			}
			if w.status == http.StatusOK && w.limit > 0 && w.buf.Len() > 0 {
				_ = rdb.Set(ctx, key, w.buf.Bytes(), ttl).Err()
			}
			return nil
		}
	}
}
