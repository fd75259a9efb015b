package dao

import (
	"adminbase/backend/internal/db/models"

	"gorm.io/gorm"
)

/* ==================== 菜单 CRUD ==================== */

/*
GetMenu 根据ID获取菜单
*/
func (d *DAO) GetMenu(id string) (*models.Menu, error) {
	var menu models.Menu
	if err := d.DB.First(&menu, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &menu, nil
}

/*
ListMenus 列出全部菜单（管理端视图，不过滤状态/可见性）
*/
func (d *DAO) ListMenus() ([]models.Menu, error) {
	var menus []models.Menu
	err := d.DB.Order("sort ASC").Find(&menus).Error
	return menus, err
}

/*
GetMenusByIDs 按ID集合获取菜单
功能：用户菜单树构建的第二步查询。onlyActive 为 true 时
过滤为 status=启用 且 visible=显示（用户视图）；
false 时不过滤（管理端视图）。
*/
func (d *DAO) GetMenusByIDs(ids []string, onlyActive bool) ([]models.Menu, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := d.DB.Where("id IN ?", ids)
	if onlyActive {
		query = query.Where("status = ? AND visible = ?", models.StatusEnabled, 1)
	}

	var menus []models.Menu
	err := query.Order("sort ASC").Find(&menus).Error
	return menus, err
}

/*
CreateMenu 创建菜单
*/
func (d *DAO) CreateMenu(menu *models.Menu) error {
	return d.DB.Create(menu).Error
}

/*
UpdateMenu 更新菜单
*/
func (d *DAO) UpdateMenu(menu *models.Menu) error {
	return d.DB.Save(menu).Error
}

/*
DeleteMenu 删除菜单并清理角色授权关联
*/
func (d *DAO) DeleteMenu(id string) error {
	return d.Transaction(func(tx *DAO) error {
		if err := tx.DB.Where("menu_id = ?", id).Delete(&models.RolePermission{}).Error; err != nil {
			return err
		}
		return tx.DB.Delete(&models.Menu{}, "id = ?", id).Error
	})
}

/*
BatchDeleteMenus 批量删除菜单
*/
func (d *DAO) BatchDeleteMenus(ids []string) (int64, error) {
	var affected int64
	err := d.Transaction(func(tx *DAO) error {
		if err := tx.DB.Where("menu_id IN ?", ids).Delete(&models.RolePermission{}).Error; err != nil {
			return err
		}
		result := tx.DB.Delete(&models.Menu{}, "id IN ?", ids)
		affected = result.RowsAffected
		return result.Error
	})
	return affected, err
}

/*
HasChildMenus 检查菜单是否存在子菜单
功能：删除前守卫，存在子菜单的节点不允许直接删除
*/
func (d *DAO) HasChildMenus(id string) (bool, error) {
	var count int64
	err := d.DB.Model(&models.Menu{}).Where("parent_id = ?", id).Count(&count).Error
	return count > 0, err
}

/* ==================== 核心窄查询接口（权限解析消费） ==================== */

/*
GetUserMenuIDs 获取用户经全部角色授予的菜单ID集合（去重）
功能：user_roles → role_permissions 两跳关联，多角色取并集——
持有任一授权角色即视为拥有该菜单。
*/
func (d *DAO) GetUserMenuIDs(userID string) ([]string, error) {
	var ids []string
	err := d.DB.Model(&models.RolePermission{}).
		Distinct("role_permissions.menu_id").
		Joins("JOIN user_roles ON user_roles.role_id = role_permissions.role_id").
		Where("user_roles.user_id = ?", userID).
		Pluck("role_permissions.menu_id", &ids).Error
	return ids, err
}

/*
GetUserPermissionMenus 获取用户经全部角色授予的菜单记录
功能：权限集构建的单次关联查询，调用方提取非空 permission 字段去重
*/
func (d *DAO) GetUserPermissionMenus(userID string) ([]models.Menu, error) {
	var menus []models.Menu
	err := d.DB.Model(&models.Menu{}).
		Distinct("menus.*").
		Joins("JOIN role_permissions ON role_permissions.menu_id = menus.id").
		Joins("JOIN user_roles ON user_roles.role_id = role_permissions.role_id").
		Where("user_roles.user_id = ?", userID).
		Find(&menus).Error
	return menus, err
}
