package middleware

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/Adithya-Monish-Kumar-K/learning-hub/internal/auth/ratelimit"
	apperrors "github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/response"
)

var errTooManyRequests = apperrors.New(apperrors.ErrRateLimited, http.StatusTooManyRequests, "Too many requests, try again later")

// RateLimit rejects clients that exceed limiter's budget with 429. Clients
// are keyed by IP, so chi's RealIP must run first when behind a proxy.
func RateLimit(limiter *ratelimit.Limiter, retryAfter time.Duration) func(http.Handler) http.Handler {
	retry := strconv.Itoa(int(retryAfter.Seconds()))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			if !limiter.Allow(ip) {
				logger.FromContext(r.Context()).Warn("rate limit exceeded", "ip", ip, "path", r.URL.Path)
				w.Header().Set("Retry-After", retry)
				response.Error(w, errTooManyRequests)
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
