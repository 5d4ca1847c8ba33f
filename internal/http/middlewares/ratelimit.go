package middlewares

import (
	"net"
	"net/http"
	"strconv"

	httpx "github.com/dropDatabas3/frontdoor/internal/http"
	"github.com/dropDatabas3/frontdoor/internal/observability/logger"
	"github.com/dropDatabas3/frontdoor/internal/rate"
)

// WithRateLimit enforces a per-client-IP limit. A limiter failure lets the
// request through: the limiter is protection, not a dependency.
func WithRateLimit(limiter rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, err := limiter.Allow(r.Context(), clientIP(r))
			if err != nil {
				logger.From(r.Context()).Warn("rate limiter unavailable", logger.Err(err))
				next.ServeHTTP(w, r)
				return
			}
			if !res.Allowed {
				w.Header().Set("Retry-After", strconv.Itoa(int(res.RetryAfter.Seconds())))
				httpx.WriteErrorMsg(w, http.StatusTooManyRequests, "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
