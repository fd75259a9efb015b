package handler

import (
	"strconv"

	"adminbase/backend/internal/api/response"
	"adminbase/backend/internal/db/models"
	"adminbase/backend/internal/types"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

/*
RoleHandler 角色管理处理器
功能：角色 CRUD 与菜单授权。授权变更会批量失效权限缓存——
任何用户的有效权限都可能经由该角色而变化。
*/
type RoleHandler struct {
	app    *types.App
	logger *zap.Logger
}

/*
NewRoleHandler 创建角色管理处理器
*/
func NewRoleHandler(app *types.App) *RoleHandler {
	return &RoleHandler{
		app:    app,
		logger: zap.L().Named("role-handler"),
	}
}

/*
List 分页列出角色
路由：GET /api/v1/roles
*/
func (h *RoleHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	roles, total, err := h.app.DAO.ListRoles(page, pageSize)
	if err != nil {
		h.logger.Error("查询角色列表失败", zap.Error(err))
		response.GinInternalError(c, "查询角色列表失败")
		return
	}
	response.GinPage(c, roles, page, pageSize, total)
}

/*
ListAll 列出全部启用角色（下拉选择用）
路由：GET /api/v1/roles/all
*/
func (h *RoleHandler) ListAll(c *gin.Context) {
	roles, err := h.app.DAO.ListEnabledRoles()
	if err != nil {
		response.GinInternalError(c, "查询角色失败")
		return
	}
	response.GinSuccess(c, roles)
}

/*
Get 获取角色详情（含授权菜单）
路由：GET /api/v1/roles/:id
*/
func (h *RoleHandler) Get(c *gin.Context) {
	role, err := h.app.DAO.GetRole(c.Param("id"))
	if err != nil {
		response.GinInternalError(c, "查询角色失败")
		return
	}
	if role == nil {
		response.GinNotFound(c, "角色不存在")
		return
	}
	response.GinSuccess(c, role)
}

/*
RoleRequest 角色创建/更新请求
*/
type RoleRequest struct {
	Name        string   `json:"name" binding:"required,max=64"`
	Code        string   `json:"code" binding:"required,max=64"`
	Description string   `json:"description" binding:"max=256"`
	Status      *int     `json:"status"`
	Sort        int      `json:"sort"`
	MenuIDs     []string `json:"menuIds"`
}

/*
Create 创建角色并授权菜单
路由：POST /api/v1/roles
*/
func (h *RoleHandler) Create(c *gin.Context) {
	var req RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.GinBadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	if existing, err := h.app.DAO.GetRoleByCode(req.Code); err != nil {
		response.GinInternalError(c, "查询角色失败")
		return
	} else if existing != nil {
		response.GinBadRequest(c, "角色编码已存在")
		return
	}

	status := models.StatusEnabled
	if req.Status != nil {
		status = *req.Status
	}
	role := &models.Role{
		Name:        req.Name,
		Code:        req.Code,
		Description: req.Description,
		Status:      status,
		Sort:        req.Sort,
	}
	if err := h.app.DAO.CreateRole(role, req.MenuIDs); err != nil {
		h.logger.Error("创建角色失败", zap.Error(err))
		response.GinInternalError(c, "创建角色失败")
		return
	}

	h.app.Perms.InvalidateAll()
	response.GinSuccess(c, role)
}

/*
Update 更新角色并重设菜单授权
路由：PUT /api/v1/roles/:id
*/
func (h *RoleHandler) Update(c *gin.Context) {
	var req RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.GinBadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	role, err := h.app.DAO.GetRole(c.Param("id"))
	if err != nil {
		response.GinInternalError(c, "查询角色失败")
		return
	}
	if role == nil {
		response.GinNotFound(c, "角色不存在")
		return
	}

	role.Name = req.Name
	role.Code = req.Code
	role.Description = req.Description
	role.Sort = req.Sort
	if req.Status != nil {
		role.Status = *req.Status
	}
	role.Menus = nil // 关联经 SetRolePermissions 单独维护，避免 Save 级联写入
	if err := h.app.DAO.UpdateRole(role); err != nil {
		response.GinInternalError(c, "更新角色失败")
		return
	}

	if req.MenuIDs != nil {
		if err := h.app.DAO.SetRolePermissions(role.ID, req.MenuIDs); err != nil {
			response.GinInternalError(c, "更新角色授权失败")
			return
		}
	}

	h.app.Perms.InvalidateAll()
	response.GinSuccessMsg(c, "更新成功", nil)
}

/*
Delete 删除角色
功能：仍被用户持有的角色不允许删除
路由：DELETE /api/v1/roles/:id
*/
func (h *RoleHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	inUse, err := h.app.DAO.RoleInUse(id)
	if err != nil {
		response.GinInternalError(c, "查询角色失败")
		return
	}
	if inUse {
		response.GinBadRequest(c, "角色下存在用户，不能删除")
		return
	}

	if err := h.app.DAO.DeleteRole(id); err != nil {
		response.GinInternalError(c, "删除角色失败")
		return
	}

	h.app.Perms.InvalidateAll()
	response.GinSuccessMsg(c, "删除成功", nil)
}
