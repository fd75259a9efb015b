package types

import (
	"time"

	"adminbase/backend/internal/config"
	"adminbase/backend/internal/db"
	"adminbase/backend/internal/db/dao"
	"adminbase/backend/internal/service"
)

/*
App 应用实例
功能：全局应用上下文。有状态的服务（令牌索引、锁定计数、权限缓存）
必须是进程级单例，统一在这里构造并注入使用方，生命周期由 App 负责——
启动时创建，退出时 Close 释放后台 goroutine。
*/
type App struct {
	Config  *config.Config
	DB      *db.Manager
	DAO     *dao.DAO
	Tokens  *service.TokenService
	Lockout *service.LockoutTracker
	Perms   *service.PermissionService
	Auth    *service.AuthService
	Users   *service.UserService
}

/*
NewApp 创建应用实例并装配全部服务
*/
func NewApp(cfg *config.Config, dbManager *db.Manager) *App {
	d := dao.New(dbManager.GormDB)

	tokens := service.NewTokenService(
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.AccessTokenTTL)*time.Minute,
		time.Duration(cfg.Auth.RefreshTokenTTL)*time.Hour,
		time.Hour,
	)
	lockout := service.NewLockoutTracker(
		dbManager.Store,
		cfg.Auth.MaxLoginAttempts,
		time.Duration(cfg.Auth.LockoutDuration)*time.Minute,
	)
	perms := service.NewPermissionService(d, dbManager.Store, 0)

	return &App{
		Config:  cfg,
		DB:      dbManager,
		DAO:     d,
		Tokens:  tokens,
		Lockout: lockout,
		Perms:   perms,
		Auth:    service.NewAuthService(d, tokens, lockout, cfg.Auth.PasswordMinLength),
		Users:   service.NewUserService(d, perms, tokens),
	}
}

/*
Close 释放服务持有的后台资源
功能：数据库与 Store 由 db.Manager.Close 单独释放
*/
func (a *App) Close() {
	a.Tokens.Close()
}
