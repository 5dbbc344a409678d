package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"directorassist/internal/config"
)

// RateLimitInfo informations sur l'état du rate limiting
type RateLimitInfo struct {
	Limit      int           `json:"limit"`
	Remaining  int           `json:"remaining"`
	ResetTime  time.Time     `json:"reset_time"`
	RetryAfter time.Duration `json:"retry_after"`
}

// MemoryRateLimiter implémentation en mémoire du rate limiter
type MemoryRateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	rate     rate.Limit
	burst    int
	cleanup  time.Duration
}

// NewMemoryRateLimiter crée un nouveau rate limiter en mémoire
func NewMemoryRateLimiter(requestsPerMinute int, burst int) *MemoryRateLimiter {
	rl := &MemoryRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(requestsPerMinute) / 60, // Convertir en requêtes par seconde
		burst:    burst,
		cleanup:  5 * time.Minute,
	}

	go rl.cleanupRoutine()

	return rl
}

// Allow vérifie si une requête est autorisée
func (rl *MemoryRateLimiter) Allow(key string) bool {
	return rl.getLimiter(key).Allow()
}

// GetInfo retourne les informations sur le rate limiting
func (rl *MemoryRateLimiter) GetInfo(key string) RateLimitInfo {
	limiter := rl.getLimiter(key)

	// Calculer les tokens restants (approximation)
	tokens := int(limiter.Tokens())
	if tokens > rl.burst {
		tokens = rl.burst
	}
	if tokens < 0 {
		tokens = 0
	}

	return RateLimitInfo{
		Limit:      rl.burst,
		Remaining:  tokens,
		ResetTime:  time.Now().Add(time.Duration(float64(rl.burst-tokens) / float64(rl.rate))),
		RetryAfter: time.Second,
	}
}

// getLimiter récupère ou crée un limiter pour une clé
func (rl *MemoryRateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.RLock()
	limiter, exists := rl.limiters[key]
	rl.mu.RUnlock()

	if !exists {
		rl.mu.Lock()
		// Double-check après acquisition du lock exclusif
		if limiter, exists = rl.limiters[key]; !exists {
			limiter = rate.NewLimiter(rl.rate, rl.burst)
			rl.limiters[key] = limiter
		}
		rl.mu.Unlock()
	}

	return limiter
}

// cleanupRoutine nettoie périodiquement les limiters inactifs
func (rl *MemoryRateLimiter) cleanupRoutine() {
	ticker := time.NewTicker(rl.cleanup)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		for key, limiter := range rl.limiters {
			if limiter.Tokens() >= float64(rl.burst) {
				delete(rl.limiters, key)
			}
		}
		rl.mu.Unlock()
	}
}

// RateLimit middleware de rate limiting global
func RateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	limiter := NewMemoryRateLimiter(cfg.RequestsPerMinute, cfg.BurstSize)

	return func(c *gin.Context) {
		key := getClientKey(c)

		if !limiter.Allow(key) {
			info := limiter.GetInfo(key)

			logrus.WithFields(logrus.Fields{
				"client_key": key,
				"client_ip":  c.ClientIP(),
				"path":       c.Request.URL.Path,
				"method":     c.Request.Method,
				"limit":      info.Limit,
				"remaining":  info.Remaining,
				"request_id": c.GetHeader("X-Request-ID"),
			}).Warn("Rate limit exceeded")

			c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
			c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
			c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
			c.Header("Retry-After", fmt.Sprintf("%.0f", info.RetryAfter.Seconds()))

			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"limit":       info.Limit,
				"remaining":   info.Remaining,
				"reset_time":  info.ResetTime.Unix(),
				"retry_after": int(info.RetryAfter.Seconds()),
				"request_id":  c.GetHeader("X-Request-ID"),
			})
			c.Abort()
			return
		}

		info := limiter.GetInfo(key)
		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))

		c.Next()
	}
}

// AIRateLimit rate limiting spécifique aux générations IA, plus coûteuses
// que les autres opérations.
func AIRateLimit(generationsPerMinute int) gin.HandlerFunc {
	burst := generationsPerMinute / 4
	if burst < 1 {
		burst = 1
	}
	limiter := NewMemoryRateLimiter(generationsPerMinute, burst)

	return func(c *gin.Context) {
		key := fmt.Sprintf("ai:%s", getClientKey(c))

		if !limiter.Allow(key) {
			info := limiter.GetInfo(key)

			logrus.WithFields(logrus.Fields{
				"client_key": key,
				"client_ip":  c.ClientIP(),
				"path":       c.Request.URL.Path,
				"limit":      info.Limit,
				"remaining":  info.Remaining,
				"request_id": c.GetHeader("X-Request-ID"),
			}).Warn("AI generation rate limit exceeded")

			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Too many generation requests",
				"limit":       info.Limit,
				"remaining":   info.Remaining,
				"retry_after": int(info.RetryAfter.Seconds()),
				"message":     "Please wait before requesting another generation",
				"request_id":  c.GetHeader("X-Request-ID"),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// getClientKey génère une clé unique pour identifier le client
func getClientKey(c *gin.Context) string {
	// Priorité : User ID > IP Address
	if userID := c.GetString("user_id"); userID != "" {
		return fmt.Sprintf("user:%s", userID)
	}

	return fmt.Sprintf("ip:%s", c.ClientIP())
}
