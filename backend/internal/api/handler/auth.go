package handler

import (
	"errors"

	"adminbase/backend/internal/api/middleware"
	"adminbase/backend/internal/api/response"
	"adminbase/backend/internal/service"
	"adminbase/backend/internal/types"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

/*
AuthHandler 认证处理器
功能：处理登录、注册、登出、令牌续期与个人资料维护
*/
type AuthHandler struct {
	app    *types.App
	logger *zap.Logger
}

/*
NewAuthHandler 创建认证处理器
*/
func NewAuthHandler(app *types.App) *AuthHandler {
	return &AuthHandler{
		app:    app,
		logger: zap.L().Named("auth-handler"),
	}
}

/*
LoginRequest 登录请求
*/
type LoginRequest struct {
	Username string `json:"username" binding:"required,max=64"`
	Password string `json:"password" binding:"required,max=128"`
}

/*
Login 用户登录
功能：锁定检查 → 凭据认证 → 签发令牌对
路由：POST /api/v1/auth/login
*/
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.GinBadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	result, err := h.app.Auth.Login(req.Username, req.Password)
	if err != nil {
		h.logger.Debug("登录失败",
			zap.String("username", req.Username),
			zap.String("client_ip", c.ClientIP()),
			zap.Error(err))

		switch {
		case errors.Is(err, service.ErrAccountLocked):
			response.GinForbidden(c, err.Error())
		case errors.Is(err, service.ErrAccountDisabled):
			response.GinForbidden(c, err.Error())
		default:
			response.GinUnauthorized(c, err.Error())
		}
		return
	}

	response.GinSuccess(c, result)
}

/*
RegisterRequest 注册请求
*/
type RegisterRequest struct {
	Username string `json:"username" binding:"required,max=32"`
	Email    string `json:"email" binding:"required,max=128"`
	Password string `json:"password" binding:"required,max=128"`
	Nickname string `json:"nickname" binding:"max=64"`
}

/*
Register 用户注册
路由：POST /api/v1/auth/register
*/
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.GinBadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	user, err := h.app.Auth.Register(service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Nickname: req.Nickname,
	})
	if err != nil {
		response.GinBadRequest(c, err.Error())
		return
	}

	response.GinSuccess(c, user)
}

/*
RefreshRequest 续期请求
*/
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

/*
Refresh 用刷新令牌换发新访问令牌
功能：刷新令牌须同时通过签名校验与服务端索引检查；
用户被禁用或删除后续期失败且令牌被吊销。
对外统一 401 文案，内部类别只进日志。
路由：POST /api/v1/auth/refresh
*/
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.GinBadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	access, user, err := h.app.Auth.Refresh(req.RefreshToken)
	if err != nil {
		h.logger.Debug("令牌续期失败",
			zap.String("client_ip", c.ClientIP()),
			zap.Error(err))
		response.GinUnauthorized(c, "登录已失效，请重新登录")
		return
	}

	response.GinSuccess(c, gin.H{
		"token": access,
		"user":  user,
	})
}

/*
Logout 登出
功能：吊销请求携带的刷新令牌；访问令牌无状态，等待自然过期
路由：POST /api/v1/auth/logout
*/
func (h *AuthHandler) Logout(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	_ = c.ShouldBindJSON(&req)

	h.app.Auth.Logout(req.RefreshToken)
	response.GinSuccessMsg(c, "已退出登录", nil)
}

/*
Profile 获取当前用户资料
路由：GET /api/v1/auth/profile
*/
func (h *AuthHandler) Profile(c *gin.Context) {
	user, err := h.app.Auth.Profile(middleware.GetUserID(c))
	if err != nil {
		if errors.Is(err, service.ErrUserUnavailable) {
			response.GinUnauthorized(c, err.Error())
			return
		}
		response.GinInternalError(c, "获取用户信息失败")
		return
	}
	response.GinSuccess(c, user)
}

/*
UpdateProfileRequest 资料更新请求
*/
type UpdateProfileRequest struct {
	Nickname string `json:"nickname" binding:"max=64"`
	Phone    string `json:"phone" binding:"max=32"`
	Avatar   string `json:"avatar" binding:"max=256"`
}

/*
UpdateProfile 更新当前用户资料
路由：PUT /api/v1/auth/profile
*/
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.GinBadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	user, err := h.app.Auth.UpdateProfile(middleware.GetUserID(c), req.Nickname, req.Phone, req.Avatar)
	if err != nil {
		response.GinInternalError(c, "更新资料失败")
		return
	}
	response.GinSuccess(c, user)
}

/*
ChangePasswordRequest 改密请求
*/
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required,max=128"`
	NewPassword string `json:"newPassword" binding:"required,max=128"`
}

/*
ChangePassword 修改当前用户密码
功能：成功后该用户全部刷新令牌被吊销，其他会话需重新登录
路由：PUT /api/v1/auth/password
*/
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.GinBadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	err := h.app.Auth.ChangePassword(middleware.GetUserID(c), req.OldPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPasswordMismatch), errors.Is(err, service.ErrPasswordUnchanged):
			response.GinBadRequest(c, err.Error())
		case errors.Is(err, service.ErrUserUnavailable):
			response.GinUnauthorized(c, err.Error())
		default:
			response.GinBadRequest(c, err.Error())
		}
		return
	}

	response.GinSuccessMsg(c, "密码修改成功，请重新登录", nil)
}
