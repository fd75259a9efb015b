package handler

import (
	"strconv"

	"adminbase/backend/internal/api/response"
	"adminbase/backend/internal/db/dao"
	"adminbase/backend/internal/types"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

/*
LogHandler 操作日志处理器
*/
type LogHandler struct {
	app    *types.App
	logger *zap.Logger
}

/*
NewLogHandler 创建操作日志处理器
*/
func NewLogHandler(app *types.App) *LogHandler {
	return &LogHandler{
		app:    app,
		logger: zap.L().Named("log-handler"),
	}
}

/*
List 分页查询操作日志
路由：GET /api/v1/logs?page=1&pageSize=20&username=
*/
func (h *LogHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	page, pageSize = dao.SanitizePagination(page, pageSize, 100)

	logs, total, err := h.app.DAO.ListOperationLogs(page, pageSize, c.Query("username"))
	if err != nil {
		h.logger.Error("查询操作日志失败", zap.Error(err))
		response.GinInternalError(c, "查询操作日志失败")
		return
	}
	response.GinPage(c, logs, page, pageSize, total)
}

/*
Clear 清理操作日志
功能：days > 0 清理该天数之前的记录，否则清空全部
路由：POST /api/v1/logs/clear?days=30
*/
func (h *LogHandler) Clear(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "0"))

	affected, err := h.app.DAO.ClearOperationLogs(days)
	if err != nil {
		h.logger.Error("清理操作日志失败", zap.Error(err))
		response.GinInternalError(c, "清理操作日志失败")
		return
	}
	response.GinSuccess(c, gin.H{"deleted": affected})
}
