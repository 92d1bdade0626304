package http

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/purochile/pcbot/internal/logger"
)

// RateLimiter counts requests per key within a fixed window. retryAfter is
// only meaningful when allowed is false.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error)
}

// rateLimitMiddleware rejects clients over their budget with 429. Limiter
// failures let the request through.
func rateLimitMiddleware(limiter RateLimiter, trustedProxies []string, log logger.Logger) func(http.Handler) http.Handler {
	trusted := make(map[string]struct{}, len(trustedProxies))
	for _, p := range trustedProxies {
		if p = strings.TrimSpace(p); p != "" {
			trusted[p] = struct{}{}
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ip := clientIP(r, trusted)
			key := "api:ip:" + ip

			allowed, retryAfter, err := limiter.Allow(ctx, key)
			if err != nil {
				log.Error(ctx, "failed to check rate limit", err, map[string]interface{}{"ip": ip})
				next.ServeHTTP(w, r)
				return
			}

			if !allowed {
				log.Warn(ctx, "rate limit exceeded", map[string]interface{}{
					"ip":   ip,
					"path": r.URL.Path,
				})
				seconds := int(retryAfter.Round(time.Second).Seconds())
				if seconds < 1 {
					seconds = 1
				}
				w.Header().Set("Retry-After", fmt.Sprintf("%d", seconds))
				writeError(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP returns the peer address. Proxy headers are honoured only when
// the peer is a trusted proxy.
func clientIP(r *http.Request, trusted map[string]struct{}) string {
	peer, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		peer = r.RemoteAddr
	}
	if _, ok := trusted[peer]; !ok {
		return peer
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return peer
}
