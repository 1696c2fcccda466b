package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"warranty_shop/pkg/response"
)

// ipLimiter keeps one token bucket per client IP.
type ipLimiter struct {
	limiters sync.Map
	r        rate.Limit
	b        int
}

func newIPLimiter(r rate.Limit, b int) *ipLimiter {
	return &ipLimiter{r: r, b: b}
}

func (l *ipLimiter) get(ip string) *rate.Limiter {
	if lim, ok := l.limiters.Load(ip); ok {
		return lim.(*rate.Limiter)
	}
	lim, _ := l.limiters.LoadOrStore(ip, rate.NewLimiter(l.r, l.b))
	return lim.(*rate.Limiter)
}

// RateLimitMiddleware limits requests per client IP. Used on the
// public quote endpoints (vehicle lookup, discount validation) which
// front metered third-party APIs.
func RateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	limiter := newIPLimiter(rate.Limit(rps), burst)

	return func(c *gin.Context) {
		if !limiter.get(c.ClientIP()).Allow() {
			response.Error(c, http.StatusTooManyRequests, response.ErrTooManyRequests, "Too many requests")
			c.Abort()
			return
		}
		c.Next()
	}
}
