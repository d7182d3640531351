package middleware

import (
	"net"
	"net/http"

	internal_errors "github.com/itchan-dev/postwall/backend/internal/errors"
	"github.com/itchan-dev/postwall/backend/internal/middleware/ratelimiter"
	"github.com/itchan-dev/postwall/backend/internal/utils"
	"github.com/itchan-dev/postwall/shared/logger"
)

func RateLimit(rl *ratelimiter.KeyRateLimiter, getIdentity func(r *http.Request) (string, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := getIdentity(r)
			if err != nil {
				utils.WriteErrorAndStatusCode(w, err)
				return
			}
			if !rl.Allow(identity) {
				logger.Log.Debug("rate limit exceeded", "identity", identity, "path", r.URL.Path)
				http.Error(w, "Rate limit exceeded, try again later", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// LimitByIP limits only requests that modify state. Reads pass through.
func LimitByIP(rl *ratelimiter.KeyRateLimiter) func(http.Handler) http.Handler {
	limited := RateLimit(rl, GetIP)
	return func(next http.Handler) http.Handler {
		guarded := limited(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
			default:
				guarded.ServeHTTP(w, r)
			}
		})
	}
}

// GetIP extracts the client IP from RemoteAddr. X-Real-IP and X-Forwarded-For are
// not trusted.
func GetIP(r *http.Request) (string, error) {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr without port
		ip = r.RemoteAddr
	}
	if net.ParseIP(ip) == nil {
		return "", internal_errors.NewInvalidInput("invalid IP address: %s", ip)
	}
	return ip, nil
}
