package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/FaizaanMd/cinema-booking/internal/config"
)

// HeaderCache reports HIT or MISS on cacheable requests.
const HeaderCache = "X-Cache"

// teeWriter forwards the response to the client and keeps a copy of up to
// limit bytes (no limit when limit <= 0).
type teeWriter struct {
	http.ResponseWriter
	status  int
	copied  bytes.Buffer
	written int
	limit   int
}

func (w *teeWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *teeWriter) Write(b []byte) (int, error) {
	if keep := w.limit - w.written; w.limit <= 0 || keep >= len(b) {
		w.copied.Write(b)
	} else if keep > 0 {
		w.copied.Write(b[:keep])
	}
	w.written += len(b)
	return w.ResponseWriter.Write(b)
}

// complete reports whether the copy holds the whole body.
func (w *teeWriter) complete() bool {
	return w.limit <= 0 || w.written <= w.limit
}

// cachedResponse is what gets stored under a cache key.
type cachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"contentType"`
	Body        []byte `json:"body"`
}

// responseKey hashes the method, the request path and, unless ignored, the
// query.  The query is re-encoded so parameter order does not matter.
func responseKey(cfg config.CacheConfig, r *http.Request) string {
	id := r.Method + " " + r.URL.Path
	if !cfg.IgnoreQuery {
		id += "?" + r.URL.Query().Encode()
	}
	sum := sha1.Sum([]byte(id))
	return cfg.Prefix + ":" + hex.EncodeToString(sum[:])
}

func passthrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

// NewRedisCache stores successful catalog responses in Redis and replays
// them with X-Cache: HIT.  It is a pass-through when caching is disabled
// or rdb is nil.  The catalog never changes while the process runs, so
// entries only expire.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return passthrough
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if !cfg.Methods[req.Method] {
				return next(c)
			}
			key := responseKey(cfg, req)

			raw, err := rdb.Get(req.Context(), key).Bytes()
			switch {
			case err == nil:
				var hit cachedResponse
				if json.Unmarshal(raw, &hit) == nil {
					c.Response().Header().Set(HeaderCache, "HIT")
					return c.Blob(hit.Status, hit.ContentType, hit.Body)
				}
			case !errors.Is(err, redis.Nil):
				c.Logger().Warnf("cache: get %s: %v", key, err)
			}

			tw := &teeWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: cfg.MaxBodyBytes}
			c.Response().Writer = tw
			c.Response().Header().Set(HeaderCache, "MISS")
			if err := next(c); err != nil {
				return err
			}
			if tw.status != http.StatusOK || !tw.complete() {
				return nil
			}

			entry, err := json.Marshal(cachedResponse{
				Status:      tw.status,
				ContentType: c.Response().Header().Get(echo.HeaderContentType),
				Body:        tw.copied.Bytes(),
			})
			if err != nil {
				return nil
			}
			// the request context may already be done once the body is sent
			if err := rdb.Set(context.Background(), key, entry, cfg.TTL).Err(); err != nil {
				c.Logger().Warnf("cache: set %s: %v", key, err)
			}
			return nil
		}
	}
}
