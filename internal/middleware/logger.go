package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/user/nextflix/internal/logger"
	"github.com/user/nextflix/internal/metrics"
)

// Logger 请求日志与请求指标
func Logger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		// 处理请求
		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.ObserveHTTP(c.Request.Method, route, strconv.Itoa(status), latency)

		kv := []interface{}{
			"method", c.Request.Method,
			"path", path,
			"ip", c.ClientIP(),
			"status", status,
			"latency", latency,
		}
		if len(c.Errors) > 0 {
			kv = append(kv, "errors", c.Errors.String())
		}
		switch {
		case status >= 500:
			log.Error("请求失败", kv...)
		case status >= 400:
			log.Warn("请求异常", kv...)
		default:
			log.Info("请求完成", kv...)
		}
	}
}
