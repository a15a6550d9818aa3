package config

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"propertybooking-backend/utils"
)

const slowRequestThreshold = 200 * time.Millisecond

func PerformanceLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		entry := log.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency_ms": latency.Milliseconds(),
			"request_id": c.GetString(utils.CtxKeyRequestID),
		})
		if len(c.Errors) > 0 {
			entry = entry.WithField("errors", c.Errors.String())
		}

		if latency > slowRequestThreshold {
			entry.Warn("slow request")
			return
		}
		entry.Info("request")
	}
}
