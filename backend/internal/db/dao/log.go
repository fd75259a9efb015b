package dao

import (
	"time"

	"adminbase/backend/internal/db/models"
)

/* ==================== 操作日志 ==================== */

/*
CreateOperationLog 写入一条操作日志
*/
func (d *DAO) CreateOperationLog(entry *models.OperationLog) error {
	return d.DB.Create(entry).Error
}

/*
ListOperationLogs 列出操作日志（分页，按时间倒序，可按用户名过滤）
*/
func (d *DAO) ListOperationLogs(page, pageSize int, username string) ([]models.OperationLog, int64, error) {
	var logs []models.OperationLog
	var total int64

	query := d.DB.Model(&models.OperationLog{})
	if username != "" {
		query = query.Where("username = ?", username)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

/*
ClearOperationLogs 清空指定天数之前的操作日志
功能：days <= 0 时清空全部
*/
func (d *DAO) ClearOperationLogs(days int) (int64, error) {
	query := d.DB.Unscoped()
	if days > 0 {
		cutoff := time.Now().AddDate(0, 0, -days)
		query = query.Where("created_at < ?", cutoff)
	} else {
		query = query.Where("1 = 1")
	}

	result := query.Delete(&models.OperationLog{})
	return result.RowsAffected, result.Error
}
