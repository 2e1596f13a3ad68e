package middleware

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/smartcardai/trialdesk/internal/http/response"
	"github.com/smartcardai/trialdesk/internal/store/sqlite"
	"github.com/smartcardai/trialdesk/pkg/logger"
)

// RateLimit caps requests per client address within a fixed window. The
// limiter fails open: a storage error lets the request through rather
// than turning the limiter into an outage.
func RateLimit(repo sqlite.RateLimitRepo, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientKey(r)

			allowed, err := repo.Allow(r.Context(), key, limit, window)
			if err != nil {
				logger.ErrorContext(r.Context(), "Rate limiter check failed", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				response.Error(w, http.StatusTooManyRequests, "Too many requests, please try again later")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i > 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
