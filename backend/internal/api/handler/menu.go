package handler

import (
	"adminbase/backend/internal/api/middleware"
	"adminbase/backend/internal/api/response"
	"adminbase/backend/internal/db/models"
	"adminbase/backend/internal/types"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

/*
MenuHandler 菜单管理处理器
功能：菜单 CRUD 与两类查询——当前用户视角（按角色过滤的菜单树与
权限集）和管理端视角（全量树/列表）。所有写操作之后批量失效
权限缓存：任何用户的有效集合都可能依赖任何一条菜单记录。
*/
type MenuHandler struct {
	app    *types.App
	logger *zap.Logger
}

/*
NewMenuHandler 创建菜单管理处理器
*/
func NewMenuHandler(app *types.App) *MenuHandler {
	return &MenuHandler{
		app:    app,
		logger: zap.L().Named("menu-handler"),
	}
}

/*
UserMenus 获取当前用户可见的菜单树
路由：GET /api/v1/menus/user
*/
func (h *MenuHandler) UserMenus(c *gin.Context) {
	tree, err := h.app.Perms.GetUserMenuTree(middleware.GetUserID(c))
	if err != nil {
		h.logger.Error("解析用户菜单失败", zap.Error(err))
		response.GinInternalError(c, "获取菜单失败")
		return
	}
	response.GinSuccess(c, tree)
}

/*
UserPermissions 获取当前用户的权限标识集合
路由：GET /api/v1/menus/permissions
*/
func (h *MenuHandler) UserPermissions(c *gin.Context) {
	perms, err := h.app.Perms.GetUserPermissionSet(middleware.GetUserID(c))
	if err != nil {
		h.logger.Error("解析用户权限失败", zap.Error(err))
		response.GinInternalError(c, "获取权限失败")
		return
	}
	response.GinSuccess(c, perms)
}

/*
Tree 获取全量菜单树（管理端）
路由：GET /api/v1/menus
*/
func (h *MenuHandler) Tree(c *gin.Context) {
	tree, err := h.app.Perms.GetMenuTree()
	if err != nil {
		response.GinInternalError(c, "获取菜单树失败")
		return
	}
	response.GinSuccess(c, tree)
}

/*
List 获取平铺菜单列表（管理端）
路由：GET /api/v1/menus/list
*/
func (h *MenuHandler) List(c *gin.Context) {
	menus, err := h.app.DAO.ListMenus()
	if err != nil {
		response.GinInternalError(c, "获取菜单列表失败")
		return
	}
	response.GinSuccess(c, menus)
}

/*
Get 获取单个菜单
路由：GET /api/v1/menus/:id
*/
func (h *MenuHandler) Get(c *gin.Context) {
	menu, err := h.app.DAO.GetMenu(c.Param("id"))
	if err != nil {
		response.GinInternalError(c, "查询菜单失败")
		return
	}
	if menu == nil {
		response.GinNotFound(c, "菜单不存在")
		return
	}
	response.GinSuccess(c, menu)
}

/*
MenuRequest 菜单创建/更新请求
*/
type MenuRequest struct {
	ParentID   *string `json:"parentId"`
	Name       string  `json:"name" binding:"required,max=64"`
	Title      string  `json:"title" binding:"max=64"`
	Path       string  `json:"path" binding:"max=256"`
	Component  string  `json:"component" binding:"max=256"`
	Redirect   string  `json:"redirect" binding:"max=256"`
	Icon       string  `json:"icon" binding:"max=64"`
	Permission string  `json:"permission" binding:"max=128"`
	Type       string  `json:"type"`
	Visible    *int    `json:"visible"`
	Status     *int    `json:"status"`
	Sort       int     `json:"sort"`
	KeepAlive  int     `json:"keepAlive"`
	External   int     `json:"external"`
}

func (r *MenuRequest) apply(menu *models.Menu) {
	menu.ParentID = r.ParentID
	menu.Name = r.Name
	menu.Title = r.Title
	menu.Path = r.Path
	menu.Component = r.Component
	menu.Redirect = r.Redirect
	menu.Icon = r.Icon
	menu.Permission = r.Permission
	if r.Type != "" {
		menu.Type = models.MenuType(r.Type)
	}
	if r.Visible != nil {
		menu.Visible = *r.Visible
	}
	if r.Status != nil {
		menu.Status = *r.Status
	}
	menu.Sort = r.Sort
	menu.KeepAlive = r.KeepAlive
	menu.External = r.External
}

/*
Create 创建菜单
路由：POST /api/v1/menus
*/
func (h *MenuHandler) Create(c *gin.Context) {
	var req MenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.GinBadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	menu := &models.Menu{Type: models.MenuTypeMenu, Visible: 1, Status: models.StatusEnabled}
	req.apply(menu)

	if err := h.app.DAO.CreateMenu(menu); err != nil {
		h.logger.Error("创建菜单失败", zap.Error(err))
		response.GinInternalError(c, "创建菜单失败")
		return
	}

	h.app.Perms.InvalidateAll()
	response.GinSuccess(c, menu)
}

/*
Update 更新菜单
路由：PUT /api/v1/menus/:id
*/
func (h *MenuHandler) Update(c *gin.Context) {
	var req MenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.GinBadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	menu, err := h.app.DAO.GetMenu(c.Param("id"))
	if err != nil {
		response.GinInternalError(c, "查询菜单失败")
		return
	}
	if menu == nil {
		response.GinNotFound(c, "菜单不存在")
		return
	}

	req.apply(menu)
	if err := h.app.DAO.UpdateMenu(menu); err != nil {
		response.GinInternalError(c, "更新菜单失败")
		return
	}

	h.app.Perms.InvalidateAll()
	response.GinSuccess(c, menu)
}

/*
Delete 删除菜单
功能：存在子菜单的节点不允许直接删除
路由：DELETE /api/v1/menus/:id
*/
func (h *MenuHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	hasChildren, err := h.app.DAO.HasChildMenus(id)
	if err != nil {
		response.GinInternalError(c, "查询菜单失败")
		return
	}
	if hasChildren {
		response.GinBadRequest(c, "存在子菜单，不能删除")
		return
	}

	if err := h.app.DAO.DeleteMenu(id); err != nil {
		response.GinInternalError(c, "删除菜单失败")
		return
	}

	h.app.Perms.InvalidateAll()
	response.GinSuccessMsg(c, "删除成功", nil)
}

/*
BatchDelete 批量删除菜单
路由：POST /api/v1/menus/batch-delete
*/
func (h *MenuHandler) BatchDelete(c *gin.Context) {
	var req BatchDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.GinBadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	affected, err := h.app.DAO.BatchDeleteMenus(req.IDs)
	if err != nil {
		response.GinInternalError(c, "批量删除失败")
		return
	}

	h.app.Perms.InvalidateAll()
	response.GinSuccess(c, gin.H{"deleted": affected})
}
