package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Logger пишет в лог каждый запрос. Ошибки, добавленные обработчиками в контекст, попадают в поле error.
func Logger(l *logrus.Logger) gin.HandlerFunc {
	entry := l.WithFields(logrus.Fields{
		"component": "api",
		"module":    "http",
	})
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		fields := logrus.Fields{
			"method":   c.Request.Method,
			"path":     path,
			"status":   c.Writer.Status(),
			"latency":  time.Since(start),
			"clientIP": c.ClientIP(),
		}
		if admin, ok := c.Get(CurrentAdminKey); ok {
			fields["admin"] = admin
		}

		le := entry.WithFields(fields)
		if len(c.Errors) > 0 {
			le = le.WithField("error", c.Errors.String())
		}

		switch status := c.Writer.Status(); {
		case status >= 500: //nolint:mnd
			le.Error("request")
		case status >= 400: //nolint:mnd
			le.Warn("request")
		default:
			le.Info("request")
		}
	}
}
