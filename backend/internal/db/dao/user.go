package dao

import (
	"time"

	"adminbase/backend/internal/db/models"

	"gorm.io/gorm"
)

/* ==================== 用户 CRUD ==================== */

/*
GetUser 根据ID获取用户
*/
func (d *DAO) GetUser(id string) (*models.User, error) {
	var user models.User
	if err := d.DB.First(&user, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

/*
GetUserByIdentifier 根据用户名或邮箱获取用户
功能：登录时用户可提交用户名或邮箱，统一从此入口查找
*/
func (d *DAO) GetUserByIdentifier(identifier string) (*models.User, error) {
	var user models.User
	if err := d.DB.Where("username = ? OR email = ?", identifier, identifier).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

/*
GetUserByUsername 根据用户名获取用户
*/
func (d *DAO) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	if err := d.DB.Where("username = ?", username).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

/*
GetUserByEmail 根据邮箱获取用户
*/
func (d *DAO) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := d.DB.Where("email = ?", email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

/*
GetUserWithRoles 获取用户及其角色列表
*/
func (d *DAO) GetUserWithRoles(id string) (*models.User, error) {
	var user models.User
	if err := d.DB.Preload("Roles").First(&user, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

/*
CreateUser 创建用户
*/
func (d *DAO) CreateUser(user *models.User) error {
	return d.DB.Create(user).Error
}

/*
UpdateUser 更新用户
*/
func (d *DAO) UpdateUser(user *models.User) error {
	return d.DB.Save(user).Error
}

/*
UpdateUserFields 更新用户指定字段
*/
func (d *DAO) UpdateUserFields(id string, fields map[string]interface{}) error {
	return d.DB.Model(&models.User{}).Where("id = ?", id).Updates(fields).Error
}

/*
UpdateUserLastLogin 更新最后登录时间
*/
func (d *DAO) UpdateUserLastLogin(id string) error {
	now := time.Now()
	return d.DB.Model(&models.User{}).Where("id = ?", id).Update("last_login", &now).Error
}

/*
ListUsers 列出用户（分页，可选关键字搜索用户名/邮箱/昵称）
*/
func (d *DAO) ListUsers(page, pageSize int, keyword string) ([]models.User, int64, error) {
	var users []models.User
	var total int64

	query := d.DB.Model(&models.User{})
	if keyword != "" {
		like := "%" + keyword + "%"
		query = query.Where("username LIKE ? OR email LIKE ? OR nickname LIKE ?", like, like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Preload("Roles").Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

/*
DeleteUser 删除用户（软删除）并清理角色关联
*/
func (d *DAO) DeleteUser(id string) error {
	return d.Transaction(func(tx *DAO) error {
		if err := tx.DB.Where("user_id = ?", id).Delete(&models.UserRole{}).Error; err != nil {
			return err
		}
		return tx.DB.Delete(&models.User{}, "id = ?", id).Error
	})
}

/*
GetUserCount 获取用户总数
*/
func (d *DAO) GetUserCount() (int64, error) {
	var count int64
	err := d.DB.Model(&models.User{}).Count(&count).Error
	return count, err
}

/* ==================== 用户角色关联 ==================== */

/*
SetUserRoles 重设用户的角色列表
功能：先删后插，整体在事务中执行
*/
func (d *DAO) SetUserRoles(userID string, roleIDs []string) error {
	return d.Transaction(func(tx *DAO) error {
		if err := tx.DB.Where("user_id = ?", userID).Delete(&models.UserRole{}).Error; err != nil {
			return err
		}
		for _, roleID := range roleIDs {
			ur := models.UserRole{UserID: userID, RoleID: roleID}
			if err := tx.DB.Create(&ur).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

/*
GetUserIDsByRole 获取持有指定角色的用户ID列表
功能：角色授权变更时用于定向失效受影响用户的权限缓存
*/
func (d *DAO) GetUserIDsByRole(roleID string) ([]string, error) {
	var ids []string
	err := d.DB.Model(&models.UserRole{}).Where("role_id = ?", roleID).Pluck("user_id", &ids).Error
	return ids, err
}
