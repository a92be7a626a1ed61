package middleares

import (
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"paygate/internal/errors"
)

// RateLimiter throttles requests per API key with a token-bucket limiter,
// the teacher's outbound Etherscan rate limiter repurposed for inbound
// throttling (blockexplorer.EtherscanExplorer's rate.NewLimiter pattern).
// A single shared API key (§1 Non-goals) means one limiter in practice,
// but the map keeps the door open for per-caller limits.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

// NewRateLimiter builds a RateLimiter allowing rps requests per second per
// key, with the given burst allowance.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
}

func (r *RateLimiter) limiterFor(key string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.limiters[key]
	if !ok {
		l = rate.NewLimiter(r.rps, r.burst)
		r.limiters[key] = l
	}
	return l
}

// Middleware returns a gin.HandlerFunc that rejects requests exceeding the
// per-key rate with the rate_limited error code.
func (r *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("Authorization")
		if key == "" {
			key = c.ClientIP()
		}
		if !r.limiterFor(key).Allow() {
			c.Error(errors.NewRateLimitedError())
			c.Abort()
			return
		}
		c.Next()
	}
}
