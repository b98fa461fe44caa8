package ratelimiter

import (
	"github.com/cosealhq/coseal/internal/config"
	"github.com/cosealhq/coseal/internal/util"
	"go.uber.org/zap"
)

func NewRateLimiter(cfg config.RateLimiterConfig, logger *zap.SugaredLogger) *FixedWindowRateLimiter {
	// For unit test
	if logger == nil {
		logger = util.NewLogger("")
	}

	return NewFixedWindowLimiter(cfg, logger)
}
