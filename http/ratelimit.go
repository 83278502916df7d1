package http

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

// DefaultAPIRPS is the request rate allowed against the SproutVideo API.
const DefaultAPIRPS = 5.0

// RateLimiter spaces requests per host using a token bucket per host.
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	config   RateLimiterConfig
}

// RateLimiterConfig defines rate limiting behavior.
type RateLimiterConfig struct {
	// RPS is requests per second for any host without a custom rate.
	// Zero disables limiting.
	RPS float64
	// CustomRates maps host names to RPS values. Zero means unlimited.
	CustomRates map[string]float64
}

// DefaultRateLimiterConfig limits every host to DefaultAPIRPS.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		RPS:         DefaultAPIRPS,
		CustomRates: make(map[string]float64),
	}
}

// NewRateLimiter creates a rate limiter with the given configuration.
func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	if cfg.CustomRates == nil {
		cfg.CustomRates = make(map[string]float64)
	}
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		config:   cfg,
	}
}

// Wait blocks until a request to urlStr is allowed or ctx is done.
func (rl *RateLimiter) Wait(ctx context.Context, urlStr string) error {
	if rl == nil {
		return nil
	}
	limiter := rl.getLimiter(extractDomain(urlStr))
	if limiter == nil {
		return nil
	}
	return limiter.Wait(ctx)
}

// getLimiter returns the limiter for domain, creating it on first use.
// It returns nil for unlimited hosts.
func (rl *RateLimiter) getLimiter(domain string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rps := rl.getRPS(domain)
	if rps <= 0 {
		return nil
	}
	if limiter, ok := rl.limiters[domain]; ok {
		return limiter
	}

	// Burst of 1: requests are spaced evenly at 1/rps.
	limiter := rate.NewLimiter(rate.Limit(rps), 1)
	rl.limiters[domain] = limiter
	return limiter
}

// getRPS must be called with mu held.
func (rl *RateLimiter) getRPS(domain string) float64 {
	if rps, ok := rl.config.CustomRates[domain]; ok {
		return rps
	}
	return rl.config.RPS
}

// SetCustomRate sets the rate for one host.
func (rl *RateLimiter) SetCustomRate(domain string, rps float64) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	domain = strings.ToLower(domain)
	rl.config.CustomRates[domain] = rps
	delete(rl.limiters, domain)
}

// Stats returns the configured rate of every host seen so far.
func (rl *RateLimiter) Stats() map[string]float64 {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	stats := make(map[string]float64, len(rl.limiters))
	for domain := range rl.limiters {
		stats[domain] = rl.getRPS(domain)
	}
	return stats
}

// extractDomain returns the lower-cased host of urlStr without its port.
func extractDomain(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}
