package middleware

import (
	"strings"
	"time"

	"adminbase/backend/internal/db/dao"
	"adminbase/backend/internal/db/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

/* moduleNames 路径前缀到业务模块名的映射 */
var moduleNames = []struct {
	prefix string
	name   string
}{
	{"/api/v1/users", "用户管理"},
	{"/api/v1/roles", "角色管理"},
	{"/api/v1/menus", "菜单管理"},
	{"/api/v1/settings", "系统设置"},
	{"/api/v1/auth", "认证"},
}

/* actionNames HTTP 方法到操作动作的映射 */
var actionNames = map[string]string{
	"POST":   "新增",
	"PUT":    "修改",
	"PATCH":  "修改",
	"DELETE": "删除",
}

/*
OperationLog 操作审计中间件
功能：为写操作（非 GET）落库一条审计记录：谁、何时、对什么做了什么。
GET 与日志查询自身的请求跳过，避免审计表被读流量灌满。
落库异步执行且失败只记日志，审计不阻塞、不拖垮业务请求。
*/
func OperationLog(d *dao.DAO) gin.HandlerFunc {
	return func(c *gin.Context) {
		method := c.Request.Method
		path := c.Request.URL.Path

		if method == "GET" || strings.Contains(path, "/logs") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		entry := &models.OperationLog{
			UserID:    GetUserID(c),
			Username:  GetUsername(c),
			Module:    moduleName(path),
			Action:    actionName(method),
			Method:    method,
			Path:      path,
			Query:     sanitizeQuery(c.Request.URL.RawQuery),
			ClientIP:  c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
			Duration:  time.Since(start).Milliseconds(),
		}
		if c.Writer.Status() < 400 {
			entry.Status = 1
		}

		go func() {
			if err := d.CreateOperationLog(entry); err != nil {
				zap.L().Warn("写入操作日志失败",
					zap.String("path", entry.Path),
					zap.Error(err))
			}
		}()
	}
}

func moduleName(path string) string {
	for _, m := range moduleNames {
		if strings.HasPrefix(path, m.prefix) {
			return m.name
		}
	}
	return "其他"
}

func actionName(method string) string {
	if name, ok := actionNames[method]; ok {
		return name
	}
	return method
}
