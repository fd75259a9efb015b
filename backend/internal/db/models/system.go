package models

/*
Setting 系统设置
功能：键值对形式的动态配置项，按 group 分组（system/security/ui 等）
*/
type Setting struct {
	BaseModel
	Key         string `gorm:"type:varchar(128);uniqueIndex;not null" json:"key"`
	Value       string `gorm:"type:text" json:"value"`
	Group       string `gorm:"type:varchar(64);index;default:'system';not null" json:"group"`
	Description string `gorm:"type:varchar(256)" json:"description"`
}

func (Setting) TableName() string {
	return "settings"
}

/*
OperationLog 操作日志
功能：记录写操作的审计信息（谁、何时、对什么做了什么）
*/
type OperationLog struct {
	BaseModel
	UserID    string `gorm:"type:varchar(36);index" json:"user_id"`
	Username  string `gorm:"type:varchar(64);index" json:"username"`
	Module    string `gorm:"type:varchar(64)" json:"module"` /* 所属业务模块，如 用户管理 */
	Action    string `gorm:"type:varchar(32)" json:"action"` /* 新增/修改/删除 */
	Method    string `gorm:"type:varchar(16)" json:"method"`
	Path      string `gorm:"type:varchar(256)" json:"path"`
	Query     string `gorm:"type:varchar(512)" json:"query"`
	ClientIP  string `gorm:"type:varchar(64)" json:"client_ip"`
	UserAgent string `gorm:"type:varchar(256)" json:"user_agent"`
	Status    int    `gorm:"default:0" json:"status"`   /* 1 成功（HTTP < 400）/ 0 失败 */
	Duration  int64  `gorm:"default:0" json:"duration"` /* 耗时（毫秒） */
}

func (OperationLog) TableName() string {
	return "operation_logs"
}
