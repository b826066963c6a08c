package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// ipRateLimiter 每个 IP 一个令牌桶
type ipRateLimiter struct {
	limiters          map[string]*limiterInfo
	mu                sync.Mutex
	requestsPerMinute int
	burst             int
	cleanupInterval   time.Duration
	idleTTL           time.Duration
}

type limiterInfo struct {
	limiter      *rate.Limiter
	lastAccessed time.Time
}

func newIPRateLimiter(requestsPerMinute, burst int) *ipRateLimiter {
	return &ipRateLimiter{
		limiters:          make(map[string]*limiterInfo),
		requestsPerMinute: requestsPerMinute,
		burst:             burst,
		cleanupInterval:   5 * time.Minute,
		idleTTL:           10 * time.Minute,
	}
}

func (i *ipRateLimiter) getLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	info, exists := i.limiters[ip]
	if !exists {
		info = &limiterInfo{
			limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(i.requestsPerMinute)), i.burst),
		}
		i.limiters[ip] = info
	}
	info.lastAccessed = time.Now()
	return info.limiter
}

// prune 删除长时间未访问的限流器
func (i *ipRateLimiter) prune(now time.Time) {
	i.mu.Lock()
	defer i.mu.Unlock()
	for ip, info := range i.limiters {
		if now.Sub(info.lastAccessed) > i.idleTTL {
			delete(i.limiters, ip)
		}
	}
}

func (i *ipRateLimiter) cleanupStaleEntries(stop <-chan struct{}) {
	ticker := time.NewTicker(i.cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case now := <-ticker.C:
			i.prune(now)
		case <-stop:
			return
		}
	}
}

// RateLimit limits each client IP to requestsPerMinute with the given burst.
// The key is gin's ClientIP, so forwarding headers only count when the engine
// trusts the peer (see Engine.SetTrustedProxies).
// The cleanup goroutine exits when stop is closed; a nil stop keeps it running
// for the life of the process.
func RateLimit(requestsPerMinute, burst int, stop <-chan struct{}) gin.HandlerFunc {
	limiter := newIPRateLimiter(requestsPerMinute, burst)
	go limiter.cleanupStaleEntries(stop)

	return func(c *gin.Context) {
		if !limiter.getLimiter(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": "Too many requests, please try again later"})
			return
		}
		c.Next()
	}
}
