package middleware

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/online-storefront/internal/config"
)

// cachedPayload is the serialized form of a response stored in Redis.
type cachedPayload struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// captureWriter tees the response body so a successful reply can be
// stored after the handler runs.
type captureWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
	limit  int
	over   bool
}

func (w *captureWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *captureWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	if !w.over {
		if w.buf.Len()+len(b) > w.limit {
			w.over = true
			w.buf.Reset()
		} else {
			w.buf.Write(b)
		}
	}
	return w.ResponseWriter.Write(b)
}

// NewRedisCache returns a read-through response cache for idempotent
// endpoints.  Only methods listed in the config are considered and only
// 200 responses under the size limit are stored.  A nil client or a
// disabled config turns the middleware into a no-op.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !cfg.Methods[c.Request().Method] {
				return next(c)
			}

			key := cacheKeyFrom(cfg.Prefix, c)
			ctx := c.Request().Context()

			if raw, err := rdb.Get(ctx, key).Bytes(); err == nil {
				var payload cachedPayload
				if json.Unmarshal(raw, &payload) == nil {
					c.Response().Header().Set("X-Cache", "HIT")
					return c.Blob(payload.Status, payload.ContentType, payload.Body)
				}
			}

			cw := &captureWriter{
				ResponseWriter: c.Response().Writer,
				limit:          cfg.MaxBodyBytes,
			}
			c.Response().Writer = cw
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}

			if cw.status == http.StatusOK && !cw.over && cw.buf.Len() > 0 {
				payload := cachedPayload{
					Status:      cw.status,
					ContentType: c.Response().Header().Get(echo.HeaderContentType),
					Body:        cw.buf.Bytes(),
				}
				if raw, err := json.Marshal(payload); err == nil {
					// Best effort: a failed store just means the next
					// request recomputes the response.
					rdb.Set(ctx, key, raw, cfg.TTL)
				}
			}
			return nil
		}
	}
}

func cacheKeyFrom(prefix string, c echo.Context) string {
	req := c.Request()
	sum := sha1.Sum([]byte(req.Method + " " + req.URL.Path + "?" + req.URL.RawQuery))
	return prefix + ":" + hex.EncodeToString(sum[:])
}
