package dao

import (
	"adminbase/backend/internal/db/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

/* ==================== 系统设置 ==================== */

/*
GetSetting 根据键获取设置项
*/
func (d *DAO) GetSetting(key string) (*models.Setting, error) {
	var setting models.Setting
	if err := d.DB.Where("key = ?", key).First(&setting).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &setting, nil
}

/*
ListSettings 列出全部设置项
"group" 是 SQL 保留字，排序统一走 clause 让 GORM 按方言加引号
*/
func (d *DAO) ListSettings() ([]models.Setting, error) {
	var settings []models.Setting
	err := d.DB.
		Order(clause.OrderByColumn{Column: clause.Column{Name: "group"}}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "key"}}).
		Find(&settings).Error
	return settings, err
}

/*
ListSettingsByGroup 按分组列出设置项
*/
func (d *DAO) ListSettingsByGroup(group string) ([]models.Setting, error) {
	var settings []models.Setting
	err := d.DB.Where(&models.Setting{Group: group}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "key"}}).
		Find(&settings).Error
	return settings, err
}

/*
UpsertSetting 插入或更新设置项（按键冲突时更新值）
*/
func (d *DAO) UpsertSetting(setting *models.Setting) error {
	return d.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "group", "description", "updated_at"}),
	}).Create(setting).Error
}

/*
BatchUpsertSettings 批量插入或更新设置项（同一事务）
*/
func (d *DAO) BatchUpsertSettings(settings []models.Setting) error {
	return d.Transaction(func(tx *DAO) error {
		for i := range settings {
			if err := tx.UpsertSetting(&settings[i]); err != nil {
				return err
			}
		}
		return nil
	})
}
