package models

/*
MenuType 菜单类型枚举
*/
type MenuType string

const (
	MenuTypeDirectory MenuType = "directory" /* 目录，仅用于组织层级 */
	MenuTypeMenu      MenuType = "menu"      /* 页面菜单 */
	MenuTypeButton    MenuType = "button"    /* 按钮级权限项，不出现在导航中 */
)

/*
Menu 菜单模型
功能：前端导航树的节点，同时承载权限标识（permission 字段）。
parent_id 为空表示根节点；同级按 sort 升序排列。
*/
type Menu struct {
	BaseModel
	ParentID   *string  `gorm:"type:varchar(36);index" json:"parent_id"`
	Name       string   `gorm:"type:varchar(64);not null" json:"name"`
	Title      string   `gorm:"type:varchar(64)" json:"title"`
	Path       string   `gorm:"type:varchar(256)" json:"path"`
	Component  string   `gorm:"type:varchar(256)" json:"component"`
	Redirect   string   `gorm:"type:varchar(256)" json:"redirect"`
	Icon       string   `gorm:"type:varchar(64)" json:"icon"`
	Permission string   `gorm:"type:varchar(128);index" json:"permission"` /* 权限标识，如 system:user:list */
	Type       MenuType `gorm:"type:varchar(16);default:'menu';not null" json:"type"`
	/*
		visible/status 不设列默认值：gorm 在 Create 时会把零值字段替换为
		列默认值，带 default:1 就无法创建隐藏或停用的菜单。
		默认显示/启用由创建方（handler、初始化种子）显式赋值。
	*/
	Visible int `gorm:"not null" json:"visible"` /* 1 显示 / 0 隐藏 */
	Status  int `gorm:"not null" json:"status"`  /* 1 启用 / 0 停用 */
	Sort       int      `gorm:"default:0" json:"sort"`
	KeepAlive  int      `gorm:"default:0" json:"keep_alive"`
	External   int      `gorm:"default:0" json:"external"` /* 外链标记 */
}

func (Menu) TableName() string {
	return "menus"
}

/*
MenuNode 菜单树节点
功能：菜单记录加子节点列表，权限解析服务的树构建输出。
根节点为 parent_id 为空的菜单；孤儿节点（父节点不在结果集中）
不会挂入树——父菜单被禁用或隐藏时其子树整体不可见。
*/
type MenuNode struct {
	Menu
	Children []*MenuNode `json:"children"`
}
