package middlewares

import (
	"net"
	"net/http"
	"strconv"

	"github.com/baggiolabs/baggio/internal/http/errors"
	"github.com/baggiolabs/baggio/internal/observability/logger"
	"github.com/baggiolabs/baggio/internal/rate"
)

// RateLimit limita por IP de origen con el limiter dado. Si el limiter falla
// (Redis caído) el request pasa: un login de más es mejor que un login de
// menos por infraestructura.
func RateLimit(l rate.Limiter) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, err := l.Allow(r.Context(), clientIP(r))
			if err != nil {
				logger.From(r.Context()).Warn("rate limiter unavailable", logger.Err(err))
				next.ServeHTTP(w, r)
				return
			}
			if !res.Allowed {
				if secs := int(res.RetryAfter.Seconds()); secs > 0 {
					w.Header().Set("Retry-After", strconv.Itoa(secs))
				}
				errors.WriteError(w, errors.ErrTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
