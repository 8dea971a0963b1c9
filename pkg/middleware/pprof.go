package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"net/http/pprof"
	"net/netip"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/Storefront/pkg/httputil"
)

// MountPprof serves the runtime profiles under /debug/pprof to callers
// whose address falls inside one of prefixes.
func MountPprof(r chi.Router, prefixes []string, logger *slog.Logger) {
	r.Group(func(r chi.Router) {
		r.Use(AllowPrefixes(prefixes, logger))
		r.HandleFunc("/debug/pprof/*", pprof.Index)
		r.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		r.HandleFunc("/debug/pprof/profile", pprof.Profile)
		r.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		r.HandleFunc("/debug/pprof/trace", pprof.Trace)
	})
}

// AllowPrefixes rejects requests from addresses outside prefixes with 403.
// Unparseable prefixes are logged and ignored.
func AllowPrefixes(prefixes []string, logger *slog.Logger) func(http.Handler) http.Handler {
	allowed := make([]netip.Prefix, 0, len(prefixes))
	for _, s := range prefixes {
		p, err := netip.ParsePrefix(s)
		if err != nil {
			logger.Warn("ignoring invalid CIDR", slog.String("cidr", s))
			continue
		}
		allowed = append(allowed, p.Masked())
	}

	contains := func(addr netip.Addr) bool {
		addr = addr.Unmap()
		for _, p := range allowed {
			if p.Contains(addr) {
				return true
			}
		}
		return false
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}
			addr, err := netip.ParseAddr(host)
			if err != nil || !contains(addr) {
				logger.WarnContext(r.Context(), "debug endpoint denied",
					slog.String("remote", host),
					slog.String("path", r.URL.Path),
				)
				httputil.WriteJSON(w, http.StatusForbidden, httputil.Response{
					Error: &httputil.ErrorResponse{Code: "FORBIDDEN", Message: "address not allowed"},
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
