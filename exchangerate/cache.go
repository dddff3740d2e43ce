package exchangerate

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha1"
	"fmt"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

type reloadKey struct{}

// Reload returns a context in which a Fetch skips the cached rates. Fresh
// rates are still written to the caches.
func Reload(ctx context.Context) context.Context {
	return context.WithValue(ctx, reloadKey{}, true)
}

func reloading(ctx context.Context) bool {
	v, _ := ctx.Value(reloadKey{}).(bool)
	return v
}

// diskCache implements a simple disk cache for HTTP responses.
// Keys include the current day, so that entries expire every day.
type diskCache struct {
	base   http.RoundTripper
	dir    string
	logger *zap.Logger
	now    func() time.Time
}

// RoundTrip implements the http.RoundTripper interface. It checks for a cached
// response on disk first. If none is found, it proceeds with the actual HTTP
// request and caches the new response if it's successful.
func (c *diskCache) RoundTrip(req *http.Request) (resp *http.Response, err error) {
	key := fmt.Sprintf("%s %s %s", c.now().Format(time.DateOnly), req.Method, req.URL.String())
	key = fmt.Sprintf("atr-rates-%x", sha1.Sum([]byte(key)))

	if !reloading(req.Context()) {
		cachedResp, err := c.get(key, req)
		if err == nil { // Cache hit
			c.logger.Debug("http cache hit", zap.String("url", req.URL.String()))
			return cachedResp, nil
		}
	}

	resp, err = c.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("http request",
		zap.String("method", resp.Request.Method),
		zap.String("host", resp.Request.URL.Host),
		zap.String("path", resp.Request.URL.Path),
		zap.String("status", resp.Status))
	if resp.StatusCode >= 300 {
		return resp, nil
	}
	// otherwise attempt to store it in cache

	if err := c.put(key, resp); err != nil {
		c.logger.Warn("cache write error (ignored)", zap.Error(err))
	}
	return resp, nil
}

// get retrieves a cached response from disk.
func (c *diskCache) get(key string, req *http.Request) (resp *http.Response, err error) {
	file := filepath.Join(c.dir, key)
	content, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewBuffer(content)), req)
}

// put stores a response to disk cache.
func (c *diskCache) put(key string, resp *http.Response) (err error) {
	file := filepath.Join(c.dir, key)

	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}
	return os.WriteFile(file, content, 0644)
}

// Daily returns an http client caching successful responses in dir for the
// rest of the day. An empty dir means os.TempDir().
func Daily(dir string, logger *zap.Logger) *http.Client {
	if dir == "" {
		dir = os.TempDir()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &http.Client{
		Timeout:   10 * time.Second,
		Transport: &diskCache{base: http.DefaultTransport, dir: dir, logger: logger, now: time.Now},
	}
}
