package api

import (
	"net"
	"time"

	"adminbase/backend/internal/api/handler"
	"adminbase/backend/internal/api/middleware"
	"adminbase/backend/internal/api/response"
	"adminbase/backend/internal/service"
	"adminbase/backend/internal/types"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter 设置路由
func SetupRouter(app *types.App) *gin.Engine {
	if app.Config.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 全局中间件
	router.Use(middleware.Recovery())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.BodyLimit(2 << 20)) /* 2MB 请求体上限，防止 OOM */
	router.Use(middleware.Logger())
	router.Use(middleware.CORS(app.Config.Server.CORSAllowedOrigins))

	/* 全局固定窗口限流：按 IP 计数，默认 100 次/60 秒 */
	globalLimiter := service.NewRateLimiter(app.DB.Store, service.RateLimitRule{
		Limit:  app.Config.RateLimit.GlobalLimit,
		Window: time.Duration(app.Config.RateLimit.GlobalWindow) * time.Second,
	})
	router.Use(middleware.RateLimit(globalLimiter, "global", "请求过于频繁，请稍后再试"))

	// 健康检查
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	/*
		Prometheus /metrics 包含敏感运行指标，仅允许本地访问，
		生产环境应通过反向代理进一步限制。
	*/
	router.GET("/metrics", localOnlyGuard(), gin.WrapH(promhttp.Handler()))

	/* 登录/注册等敏感端点专用限流：默认 5 次/60 秒，与全局限流独立计数 */
	authLimiter := service.NewRateLimiter(app.DB.Store, service.RateLimitRule{
		Limit:  app.Config.RateLimit.AuthLimit,
		Window: time.Duration(app.Config.RateLimit.AuthWindow) * time.Second,
	})
	strictLimit := middleware.RateLimit(authLimiter, "auth", "登录尝试过于频繁，请1分钟后再试")

	// API v1
	v1 := router.Group("/api/v1")
	v1.Use(middleware.OperationLog(app.DAO))
	{
		// 认证路由（无需JWT）
		authHandler := handler.NewAuthHandler(app)
		auth := v1.Group("/auth")
		{
			auth.POST("/login", strictLimit, authHandler.Login)
			auth.POST("/register", strictLimit, authHandler.Register)
			auth.POST("/refresh", authHandler.Refresh)
			auth.POST("/logout", authHandler.Logout)
		}

		// 需要JWT认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(app.Tokens))
		{
			// 个人中心
			authorized.GET("/auth/profile", authHandler.Profile)
			authorized.PUT("/auth/profile", authHandler.UpdateProfile)
			authorized.PUT("/auth/password", authHandler.ChangePassword)

			// 用户管理
			users := authorized.Group("/users")
			{
				userHandler := handler.NewUserHandler(app)
				users.GET("", middleware.RequirePermission(app.Perms, "system:user:list"), userHandler.List)
				users.GET("/:id", middleware.RequirePermission(app.Perms, "system:user:list"), userHandler.Get)
				users.POST("", middleware.RequirePermission(app.Perms, "system:user:list"), userHandler.Create)
				users.PUT("/:id", middleware.RequirePermission(app.Perms, "system:user:list"), userHandler.Update)
				users.PUT("/:id/password", middleware.RequirePermission(app.Perms, "system:user:list"), userHandler.ResetPassword)
				users.DELETE("/:id", middleware.RequirePermission(app.Perms, "system:user:list"), userHandler.Delete)
				users.POST("/batch-delete", middleware.RequirePermission(app.Perms, "system:user:list"), userHandler.BatchDelete)
			}

			// 角色管理
			roles := authorized.Group("/roles")
			roles.Use(middleware.RequirePermission(app.Perms, "system:role:list"))
			{
				roleHandler := handler.NewRoleHandler(app)
				roles.GET("", roleHandler.List)
				roles.GET("/all", roleHandler.ListAll)
				roles.GET("/:id", roleHandler.Get)
				roles.POST("", roleHandler.Create)
				roles.PUT("/:id", roleHandler.Update)
				roles.DELETE("/:id", roleHandler.Delete)
			}

			// 菜单
			menus := authorized.Group("/menus")
			{
				menuHandler := handler.NewMenuHandler(app)
				/* 当前用户视角：登录即可访问，无需管理权限 */
				menus.GET("/user", menuHandler.UserMenus)
				menus.GET("/permissions", menuHandler.UserPermissions)

				/* 管理端视角 */
				adminOnly := middleware.RequirePermission(app.Perms, "system:menu:list")
				menus.GET("", adminOnly, menuHandler.Tree)
				menus.GET("/list", adminOnly, menuHandler.List)
				menus.GET("/:id", adminOnly, menuHandler.Get)
				menus.POST("", adminOnly, menuHandler.Create)
				menus.PUT("/:id", adminOnly, menuHandler.Update)
				menus.DELETE("/:id", adminOnly, menuHandler.Delete)
				menus.POST("/batch-delete", adminOnly, menuHandler.BatchDelete)
			}

			// 系统设置
			settings := authorized.Group("/settings")
			settings.Use(middleware.RequirePermission(app.Perms, "system:setting:view"))
			{
				settingHandler := handler.NewSettingHandler(app)
				settings.GET("", settingHandler.List)
				settings.PUT("", settingHandler.Update)
			}

			// 操作日志
			logs := authorized.Group("/logs")
			logs.Use(middleware.RequirePermission(app.Perms, "system:log:view"))
			{
				logHandler := handler.NewLogHandler(app)
				logs.GET("", logHandler.List)
				logs.POST("/clear", logHandler.Clear)
			}
		}
	}

	return router
}

/*
localOnlyGuard 本地访问限制中间件
功能：仅允许 127.0.0.1 / ::1 访问，保护 /metrics 等运维端点
*/
func localOnlyGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := net.ParseIP(c.ClientIP())
		if ip == nil || !ip.IsLoopback() {
			response.GinForbidden(c, "仅允许本地访问")
			c.Abort()
			return
		}
		c.Next()
	}
}
