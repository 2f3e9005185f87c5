package middleware

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/time/rate"

	"github.com/rif-protocol-server/internal/domain"
	"github.com/rif-protocol-server/internal/metrics"
)

// RateLimiter hands out one token bucket per client IP. The table is bounded;
// the least recently seen client is evicted first.
type RateLimiter struct {
	limit   rate.Limit
	burst   int
	mu      sync.Mutex
	clients *lru.Cache
}

// NewRateLimiter creates a limiter table from configuration
func NewRateLimiter(cfg domain.RateLimitConfig) (*RateLimiter, error) {
	size := cfg.MaxClients
	if size <= 0 {
		size = 10000
	}
	clients, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("failed to create limiter table: %w", err)
	}
	return &RateLimiter{
		limit:   rate.Limit(cfg.RequestsPerSecond),
		burst:   cfg.Burst,
		clients: clients,
	}, nil
}

// limiterFor returns the bucket of one client, creating it on first use.
func (r *RateLimiter) limiterFor(client string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v, ok := r.clients.Get(client); ok {
		return v.(*rate.Limiter)
	}
	limiter := rate.NewLimiter(r.limit, r.burst)
	r.clients.Add(client, limiter)
	return limiter
}

// Allow reports whether the client may make a request now
func (r *RateLimiter) Allow(client string) bool {
	return r.limiterFor(client).Allow()
}

// Clients returns the number of tracked clients
func (r *RateLimiter) Clients() int {
	return r.clients.Len()
}

// Middleware rejects requests over the client's rate with 429.
func (r *RateLimiter) Middleware() gin.HandlerFunc {
	retryAfter := "1"
	if r.limit > 0 {
		retryAfter = strconv.Itoa(int(math.Ceil(1 / float64(r.limit))))
	}

	return func(c *gin.Context) {
		if r.Allow(c.ClientIP()) {
			c.Next()
			return
		}

		metrics.RecordRateLimited()
		c.Header("Retry-After", retryAfter)
		c.AbortWithStatusJSON(http.StatusTooManyRequests, domain.NewAPIError(
			domain.ErrRateLimit,
			"Too many requests",
			fmt.Sprintf("limit is %.2f requests per second", float64(r.limit)),
			c.GetString(CorrelationIDKey),
		))
	}
}
