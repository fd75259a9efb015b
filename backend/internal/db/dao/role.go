package dao

import (
	"adminbase/backend/internal/db/models"

	"gorm.io/gorm"
)

/* ==================== 角色 CRUD ==================== */

/*
GetRole 根据ID获取角色（含授权菜单）
*/
func (d *DAO) GetRole(id string) (*models.Role, error) {
	var role models.Role
	if err := d.DB.Preload("Menus").First(&role, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &role, nil
}

/*
GetRoleByCode 根据角色编码获取角色
*/
func (d *DAO) GetRoleByCode(code string) (*models.Role, error) {
	var role models.Role
	if err := d.DB.Where("code = ?", code).First(&role).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &role, nil
}

/*
ListRoles 列出角色（分页）
*/
func (d *DAO) ListRoles(page, pageSize int) ([]models.Role, int64, error) {
	var roles []models.Role
	var total int64

	if err := d.DB.Model(&models.Role{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := d.DB.Order("sort ASC").Offset(offset).Limit(pageSize).Find(&roles).Error; err != nil {
		return nil, 0, err
	}
	return roles, total, nil
}

/*
ListEnabledRoles 列出全部启用角色（下拉选择用）
*/
func (d *DAO) ListEnabledRoles() ([]models.Role, error) {
	var roles []models.Role
	err := d.DB.Where("status = ?", models.StatusEnabled).Order("sort ASC").Find(&roles).Error
	return roles, err
}

/*
CreateRole 创建角色，可同时授予菜单
*/
func (d *DAO) CreateRole(role *models.Role, menuIDs []string) error {
	return d.Transaction(func(tx *DAO) error {
		if err := tx.DB.Create(role).Error; err != nil {
			return err
		}
		for _, menuID := range menuIDs {
			rp := models.RolePermission{RoleID: role.ID, MenuID: menuID}
			if err := tx.DB.Create(&rp).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

/*
UpdateRole 更新角色基本信息
*/
func (d *DAO) UpdateRole(role *models.Role) error {
	return d.DB.Save(role).Error
}

/*
SetRolePermissions 重设角色的菜单授权
功能：先删后插，整体在事务中执行
*/
func (d *DAO) SetRolePermissions(roleID string, menuIDs []string) error {
	return d.Transaction(func(tx *DAO) error {
		if err := tx.DB.Where("role_id = ?", roleID).Delete(&models.RolePermission{}).Error; err != nil {
			return err
		}
		for _, menuID := range menuIDs {
			rp := models.RolePermission{RoleID: roleID, MenuID: menuID}
			if err := tx.DB.Create(&rp).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

/*
DeleteRole 删除角色并清理关联
*/
func (d *DAO) DeleteRole(id string) error {
	return d.Transaction(func(tx *DAO) error {
		if err := tx.DB.Where("role_id = ?", id).Delete(&models.RolePermission{}).Error; err != nil {
			return err
		}
		if err := tx.DB.Where("role_id = ?", id).Delete(&models.UserRole{}).Error; err != nil {
			return err
		}
		return tx.DB.Delete(&models.Role{}, "id = ?", id).Error
	})
}

/*
RoleInUse 检查角色是否仍被用户持有
功能：删除前守卫
*/
func (d *DAO) RoleInUse(id string) (bool, error) {
	var count int64
	err := d.DB.Model(&models.UserRole{}).Where("role_id = ?", id).Count(&count).Error
	return count > 0, err
}
