package middleware

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"teamcal-backend/pkg/auth"
)

// RateLimitByIP applies an in-process sliding window limiter keyed by
// client IP. Each instance tracks its own budget, which is enough for a
// single long-lived server.
func RateLimitByIP(requestsPerMinute int) func(next http.Handler) http.Handler {
	limiter := auth.NewIPRateLimiter(requestsPerMinute)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, _ := limiter.Allow(r.Context(), getClientIP(r))
			if !allowed {
				w.Header().Set("Retry-After", "60")
				respondWithError(w, http.StatusTooManyRequests, "Rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// DistributedRateLimit applies the DynamoDB-backed limiter so one budget
// holds across Lambda invocations and server instances. The limiter fails
// open when the store is degraded; a broken table never blocks traffic.
func DistributedRateLimit(limiter *auth.DistributedRateLimiter, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := getClientIP(r)

			allowed, err := limiter.Allow(r.Context(), ip)
			if err != nil {
				logger.Warn("Rate limiter degraded", zap.Error(err), zap.String("ip", ip))
			}
			if !allowed {
				// The remaining-budget lookup costs a read, so it only
				// happens on rejections.
				headers := map[string]string{}
				if err := limiter.SetHeaders(r.Context(), ip, headers); err == nil {
					for k, v := range headers {
						w.Header().Set(k, v)
					}
				}
				w.Header().Set("Retry-After", fmt.Sprintf("%d", int(limiter.GetWindow()/time.Second)))
				respondWithError(w, http.StatusTooManyRequests, "Rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
