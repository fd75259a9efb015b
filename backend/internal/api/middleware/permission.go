package middleware

import (
	"adminbase/backend/internal/api/response"
	"adminbase/backend/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

/*
RequirePermission 权限校验中间件
功能：检查当前用户的权限集（角色并集，带缓存）是否包含指定权限标识。
须挂在 JWTAuth 之后。权限解析出错（数据库不可用）按 500 处理，
不降级放行。
*/
func RequirePermission(perms *service.PermissionService, permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := GetUserID(c)
		if userID == "" {
			response.GinUnauthorized(c, "缺少认证令牌")
			c.Abort()
			return
		}

		ok, err := perms.HasPermission(userID, permission)
		if err != nil {
			zap.L().Error("权限解析失败",
				zap.String("user_id", userID),
				zap.String("permission", permission),
				zap.Error(err))
			response.GinInternalError(c, "权限校验失败")
			c.Abort()
			return
		}
		if !ok {
			response.GinForbidden(c, "没有操作权限")
			c.Abort()
			return
		}

		c.Next()
	}
}
