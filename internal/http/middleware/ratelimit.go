package middleware

import (
	"context"
	"net"
	"net/http"

	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/kova/internal/http/respond"
	"github.com/MrJamesThe3rd/kova/internal/metrics"
)

type Allower interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimit limits requests per client address. When the limiter itself
// fails the request is let through and the failure logged.
func RateLimit(limiter Allower, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, err := limiter.Allow(r.Context(), clientIP(r))
			if err != nil {
				logger.Warn("rate limiter unavailable", zap.Error(err))
				next.ServeHTTP(w, r)

				return
			}

			if !ok {
				metrics.RecordShareLookup("limited")
				respond.JSON(w, logger, http.StatusTooManyRequests, map[string]string{"error": "too many requests"})

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP strips the port RemoteAddr carries when RealIP did not rewrite it.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}

	return r.RemoteAddr
}
