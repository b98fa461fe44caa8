package middleware

import (
	"net/http"

	"github.com/cosealhq/coseal/internal/util"
	"github.com/gin-gonic/gin"
)

func (m Middleware) RateLimitMiddleware(ctx *gin.Context) {
	if m.rateLimiter == nil {
		ctx.Next()
		return
	}

	allowed, retryAfter := m.rateLimiter.Allow(ctx.ClientIP())
	if !allowed {
		ctx.Header("Retry-After", retryAfter.String())
		util.ResponseFailed(ctx, http.StatusTooManyRequests, "Too many requests", nil, nil)
		ctx.Abort()
		return
	}

	ctx.Next()
}
