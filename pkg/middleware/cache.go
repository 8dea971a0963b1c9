package middleware

import (
	"net/http"
	"strconv"
)

// CacheControl lets shared caches keep successful GET and HEAD responses
// for maxAge seconds. Error responses are marked no-store, and a
// Cache-Control header set by the handler itself is left alone.
func CacheControl(maxAge int) func(http.Handler) http.Handler {
	public := "public, max-age=" + strconv.Itoa(maxAge)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}
			cw := &cacheWriter{ResponseWriter: w, public: public}
			next.ServeHTTP(cw, r)
			if !cw.decided {
				cw.decide(http.StatusOK)
			}
		})
	}
}

// cacheWriter picks the Cache-Control value once the status is known.
type cacheWriter struct {
	http.ResponseWriter
	public  string
	decided bool
}

func (c *cacheWriter) decide(status int) {
	c.decided = true
	h := c.Header()
	if h.Get("Cache-Control") != "" {
		return
	}
	if status >= http.StatusBadRequest {
		h.Set("Cache-Control", "no-store")
		return
	}
	h.Set("Cache-Control", c.public)
}

func (c *cacheWriter) WriteHeader(status int) {
	if !c.decided {
		c.decide(status)
	}
	c.ResponseWriter.WriteHeader(status)
}

func (c *cacheWriter) Write(b []byte) (int, error) {
	if !c.decided {
		c.decide(http.StatusOK)
	}
	return c.ResponseWriter.Write(b)
}

// Flush passes through so streaming handlers keep working.
func (c *cacheWriter) Flush() {
	if f, ok := c.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
