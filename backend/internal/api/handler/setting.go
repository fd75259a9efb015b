package handler

import (
	"adminbase/backend/internal/api/response"
	"adminbase/backend/internal/db/models"
	"adminbase/backend/internal/types"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

/*
SettingHandler 系统设置处理器
*/
type SettingHandler struct {
	app    *types.App
	logger *zap.Logger
}

/*
NewSettingHandler 创建系统设置处理器
*/
func NewSettingHandler(app *types.App) *SettingHandler {
	return &SettingHandler{
		app:    app,
		logger: zap.L().Named("setting-handler"),
	}
}

/*
List 列出设置项（可按分组过滤）
路由：GET /api/v1/settings?group=
*/
func (h *SettingHandler) List(c *gin.Context) {
	group := c.Query("group")

	var settings []models.Setting
	var err error
	if group != "" {
		settings, err = h.app.DAO.ListSettingsByGroup(group)
	} else {
		settings, err = h.app.DAO.ListSettings()
	}
	if err != nil {
		h.logger.Error("查询设置失败", zap.Error(err))
		response.GinInternalError(c, "查询设置失败")
		return
	}
	response.GinSuccess(c, settings)
}

/*
SettingItem 单个设置项
*/
type SettingItem struct {
	Key         string `json:"key" binding:"required,max=128"`
	Value       string `json:"value"`
	Group       string `json:"group" binding:"max=64"`
	Description string `json:"description" binding:"max=256"`
}

/*
Update 批量插入或更新设置项
路由：PUT /api/v1/settings
*/
func (h *SettingHandler) Update(c *gin.Context) {
	var req struct {
		Settings []SettingItem `json:"settings" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.GinBadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	settings := make([]models.Setting, 0, len(req.Settings))
	for _, item := range req.Settings {
		group := item.Group
		if group == "" {
			group = "system"
		}
		settings = append(settings, models.Setting{
			Key:         item.Key,
			Value:       item.Value,
			Group:       group,
			Description: item.Description,
		})
	}

	if err := h.app.DAO.BatchUpsertSettings(settings); err != nil {
		h.logger.Error("保存设置失败", zap.Error(err))
		response.GinInternalError(c, "保存设置失败")
		return
	}
	response.GinSuccessMsg(c, "保存成功", nil)
}
