package middleware

import (
	"strconv"

	"adminbase/backend/internal/api/response"
	"adminbase/backend/internal/service"

	"github.com/gin-gonic/gin"
)

/*
RateLimit 限流中间件
功能：按客户端 IP 做固定窗口计数，无论放行与否都写
X-RateLimit-Limit / X-RateLimit-Remaining / X-RateLimit-Reset（unix 秒）
三个响应头供客户端退避；超限返回 429。
keyPrefix 区分不同限流域（全局 / 认证端点），同一 IP 在
不同限流域中各自独立计数。
*/
func RateLimit(limiter *service.RateLimiter, keyPrefix, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		res := limiter.Allow(keyPrefix + ":" + c.ClientIP())

		c.Header("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))

		if !res.Allowed {
			response.GinTooManyRequests(c, message)
			c.Abort()
			return
		}

		c.Next()
	}
}
