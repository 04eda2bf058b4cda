package ratelimit

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

type Result struct {
	Result string `json:"result"`
}

// Limit rejects requests beyond limiter's rate with 429. A nil limiter lets everything through.
func Limit(limiter *rate.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter != nil && !limiter.Allow() {
			logrus.WithField("path", c.Request.URL.Path).Debug("request rate limited")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, &Result{Result: "request rate limited"})
			return
		}
		c.Next()
	}
}

// NewLimiter returns nil when perSecond is not positive, meaning unlimited.
func NewLimiter(perSecond float64, burst int) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}
