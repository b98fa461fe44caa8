package ratelimiter

import (
	"sync"
	"time"

	"github.com/cosealhq/coseal/internal/config"
	"go.uber.org/zap"
)

// FixedWindowRateLimiter counts requests per client within a fixed time
// window. Counters reset when their window elapses.
type FixedWindowRateLimiter struct {
	sync.RWMutex
	clients map[string]int
	cfg     config.RateLimiterConfig
	logger  *zap.SugaredLogger
}

func NewFixedWindowLimiter(cfg config.RateLimiterConfig, logger *zap.SugaredLogger) *FixedWindowRateLimiter {
	return &FixedWindowRateLimiter{
		clients: make(map[string]int),
		cfg:     cfg,
		logger:  logger,
	}
}

// Allow reports whether clientId may make another request now, and on
// rejection how long until the window resets.
func (rl *FixedWindowRateLimiter) Allow(clientId string) (bool, time.Duration) {
	if !rl.cfg.Enabled {
		return true, 0
	}

	rl.RLock()
	count, exists := rl.clients[clientId]
	rl.RUnlock()

	if !exists || count < rl.cfg.RequestsPerTimeFrame {
		rl.Lock()
		if !exists {
			go rl.resetCount(clientId)
		}

		rl.clients[clientId]++
		rl.Unlock()
		return true, 0
	}

	return false, rl.cfg.TimeFrame
}

func (rl *FixedWindowRateLimiter) resetCount(clientId string) {
	time.Sleep(rl.cfg.TimeFrame)
	rl.Lock()
	delete(rl.clients, clientId)
	rl.Unlock()
}
