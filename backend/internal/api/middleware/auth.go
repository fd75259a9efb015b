package middleware

import (
	"strings"

	"adminbase/backend/internal/api/response"
	"adminbase/backend/internal/service"

	"github.com/gin-gonic/gin"
)

/*
JWTAuth 访问令牌认证中间件
功能：从 Authorization 头提取 Bearer 令牌，经令牌服务校验签名与有效期
（无状态热路径，不查吊销索引），解析后把用户身份注入 Gin 上下文。
过期与无效对外统一为 401，内部类别仅用于日志。
*/
func JWTAuth(tokens *service.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.GinUnauthorized(c, "缺少认证令牌")
			c.Abort()
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenStr == authHeader {
			response.GinUnauthorized(c, "认证头格式无效，需 Bearer <token>")
			c.Abort()
			return
		}

		claims, err := tokens.VerifyAccess(tokenStr)
		if err != nil {
			response.GinUnauthorized(c, "无效或已过期的令牌")
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("username", claims.Username)
		c.Next()
	}
}
