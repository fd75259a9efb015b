package models

import (
	"time"
)

/* 状态枚举：启用/禁用，用户、角色、菜单共用 */
const (
	StatusEnabled  = 1
	StatusDisabled = 0
)

/*
User 用户模型
功能：存储用户基本信息、认证凭据和账户状态
*/
type User struct {
	BaseModel
	Username  string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"username"`
	Email     string     `gorm:"type:varchar(128);uniqueIndex;not null" json:"email"`
	Password  string     `gorm:"type:varchar(256);not null" json:"-"`
	Nickname  string     `gorm:"type:varchar(64)" json:"nickname"`
	Phone     string     `gorm:"type:varchar(32)" json:"phone"`
	Avatar    string     `gorm:"type:varchar(512)" json:"avatar"`
	/* 不设列默认值：gorm 会把 Create 时的零值替换为列默认值，导致无法创建禁用账户 */
	Status    int        `gorm:"not null" json:"status"` /* 1 启用 / 0 禁用 */
	LastLogin *time.Time `gorm:"" json:"last_login"`

	/* 关联 */
	Roles []Role `gorm:"many2many:user_roles;" json:"roles,omitempty"`
}

func (User) TableName() string {
	return "users"
}

/*
Role 角色模型
功能：权限授予的单位，用户通过持有角色获得菜单/权限，
多角色权限取并集。
*/
type Role struct {
	BaseModel
	Name        string `gorm:"type:varchar(64);uniqueIndex;not null" json:"name"`
	Code        string `gorm:"type:varchar(64);uniqueIndex;not null" json:"code"`
	Description string `gorm:"type:varchar(256)" json:"description"`
	Status      int    `gorm:"not null" json:"status"`
	Sort        int    `gorm:"default:0" json:"sort"`

	/* 关联 */
	Menus []Menu `gorm:"many2many:role_permissions;" json:"menus,omitempty"`
}

func (Role) TableName() string {
	return "roles"
}

/*
UserRole 用户角色关联
*/
type UserRole struct {
	UserID    string    `gorm:"type:varchar(36);primaryKey" json:"user_id"`
	RoleID    string    `gorm:"type:varchar(36);primaryKey" json:"role_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (UserRole) TableName() string {
	return "user_roles"
}

/*
RolePermission 角色菜单授权关联
功能：角色被授予哪些菜单（菜单承载权限标识）
*/
type RolePermission struct {
	RoleID    string    `gorm:"type:varchar(36);primaryKey" json:"role_id"`
	MenuID    string    `gorm:"type:varchar(36);primaryKey" json:"menu_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (RolePermission) TableName() string {
	return "role_permissions"
}
