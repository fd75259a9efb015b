package handler

import (
	"errors"
	"strconv"

	"adminbase/backend/internal/api/response"
	"adminbase/backend/internal/service"
	"adminbase/backend/internal/types"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

/*
UserHandler 用户管理处理器（管理端）
*/
type UserHandler struct {
	app    *types.App
	logger *zap.Logger
}

/*
NewUserHandler 创建用户管理处理器
*/
func NewUserHandler(app *types.App) *UserHandler {
	return &UserHandler{
		app:    app,
		logger: zap.L().Named("user-handler"),
	}
}

/*
List 分页列出用户
路由：GET /api/v1/users?page=1&pageSize=20&keyword=
*/
func (h *UserHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	keyword := c.Query("keyword")

	users, total, err := h.app.Users.List(page, pageSize, keyword)
	if err != nil {
		h.logger.Error("查询用户列表失败", zap.Error(err))
		response.GinInternalError(c, "查询用户列表失败")
		return
	}

	response.GinPage(c, users, page, pageSize, total)
}

/*
Get 获取单个用户详情
路由：GET /api/v1/users/:id
*/
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.app.Users.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrUserUnavailable) {
			response.GinNotFound(c, "用户不存在")
			return
		}
		response.GinInternalError(c, "查询用户失败")
		return
	}
	response.GinSuccess(c, user)
}

/*
CreateUserRequest 创建用户请求
*/
type CreateUserRequest struct {
	Username string   `json:"username" binding:"required,max=32"`
	Email    string   `json:"email" binding:"required,max=128"`
	Password string   `json:"password" binding:"required,max=128"`
	Nickname string   `json:"nickname" binding:"max=64"`
	Phone    string   `json:"phone" binding:"max=32"`
	Status   *int     `json:"status"`
	RoleIDs  []string `json:"roleIds"`
}

/*
Create 创建用户
路由：POST /api/v1/users
*/
func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.GinBadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	status := 1
	if req.Status != nil {
		status = *req.Status
	}

	user, err := h.app.Users.Create(service.CreateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Nickname: req.Nickname,
		Phone:    req.Phone,
		Status:   status,
		RoleIDs:  req.RoleIDs,
	})
	if err != nil {
		if errors.Is(err, service.ErrUserExists) {
			response.GinBadRequest(c, err.Error())
			return
		}
		response.GinBadRequest(c, err.Error())
		return
	}

	response.GinSuccess(c, user)
}

/*
UpdateUserRequest 更新用户请求
*/
type UpdateUserRequest struct {
	Email    string   `json:"email" binding:"max=128"`
	Nickname string   `json:"nickname" binding:"max=64"`
	Phone    string   `json:"phone" binding:"max=32"`
	Avatar   string   `json:"avatar" binding:"max=256"`
	Status   *int     `json:"status"`
	RoleIDs  []string `json:"roleIds"`
}

/*
Update 更新用户基本信息与角色
功能：角色变更联动失效权限缓存；status 显式传入时按启停处理
路由：PUT /api/v1/users/:id
*/
func (h *UserHandler) Update(c *gin.Context) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.GinBadRequest(c, "请求参数无效: "+err.Error())
		return
	}
	id := c.Param("id")

	fields := map[string]interface{}{}
	if req.Email != "" {
		if err := service.ValidateEmail(req.Email); err != nil {
			response.GinBadRequest(c, err.Error())
			return
		}
		fields["email"] = req.Email
	}
	if req.Nickname != "" {
		fields["nickname"] = req.Nickname
	}
	if req.Phone != "" {
		fields["phone"] = req.Phone
	}
	if req.Avatar != "" {
		fields["avatar"] = req.Avatar
	}

	if len(fields) > 0 {
		if err := h.app.Users.Update(id, fields); err != nil {
			if errors.Is(err, service.ErrUserUnavailable) {
				response.GinNotFound(c, "用户不存在")
				return
			}
			response.GinInternalError(c, "更新用户失败")
			return
		}
	}

	if req.Status != nil {
		if err := h.app.Users.SetStatus(id, *req.Status); err != nil {
			response.GinInternalError(c, "更新用户状态失败")
			return
		}
	}

	if req.RoleIDs != nil {
		if err := h.app.Users.SetRoles(id, req.RoleIDs); err != nil {
			response.GinInternalError(c, "分配角色失败")
			return
		}
	}

	response.GinSuccessMsg(c, "更新成功", nil)
}

/*
ResetPasswordRequest 管理员重置密码请求
*/
type ResetPasswordRequest struct {
	Password string `json:"password" binding:"required,max=128"`
}

/*
ResetPassword 管理员重置用户密码
路由：PUT /api/v1/users/:id/password
*/
func (h *UserHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.GinBadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	if err := h.app.Users.ResetPassword(c.Param("id"), req.Password, h.app.Config.Auth.PasswordMinLength); err != nil {
		response.GinBadRequest(c, err.Error())
		return
	}
	response.GinSuccessMsg(c, "密码已重置", nil)
}

/*
Delete 删除用户
路由：DELETE /api/v1/users/:id
*/
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.app.Users.Delete(c.Param("id")); err != nil {
		response.GinInternalError(c, "删除用户失败")
		return
	}
	response.GinSuccessMsg(c, "删除成功", nil)
}

/*
BatchDeleteRequest 批量删除请求
*/
type BatchDeleteRequest struct {
	IDs []string `json:"ids" binding:"required,min=1"`
}

/*
BatchDelete 批量删除用户
路由：POST /api/v1/users/batch-delete
*/
func (h *UserHandler) BatchDelete(c *gin.Context) {
	var req BatchDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.GinBadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	for _, id := range req.IDs {
		if err := h.app.Users.Delete(id); err != nil {
			h.logger.Warn("批量删除用户失败", zap.String("id", id), zap.Error(err))
		}
	}
	response.GinSuccessMsg(c, "删除成功", nil)
}
