package dao

import (
	"go.uber.org/zap"
	"gorm.io/gorm"
)

/*
DAO 统一 GORM 数据访问对象
功能：所有数据库操作的 GORM 实现，handler 和 service 通过它访问数据库。
权限解析等核心服务只消费其中的窄查询接口
（GetUserByIdentifier / GetUser / GetUserMenuIDs / GetUserPermissionMenus），
便于测试时用内存 SQLite 替换。
*/
type DAO struct {
	DB     *gorm.DB
	logger *zap.Logger
}

/*
New 创建 DAO 实例
*/
func New(db *gorm.DB) *DAO {
	return &DAO{
		DB:     db,
		logger: zap.L().Named("dao"),
	}
}

/*
SanitizePagination 校正分页参数
功能：防止负值、零值和超大值导致的异常查询。
pageSize 范围 [1, maxSize]，page 最小为 1。
*/
func SanitizePagination(page, pageSize, maxSize int) (int, int) {
	if maxSize <= 0 {
		maxSize = 200
	}
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	} else if pageSize > maxSize {
		pageSize = maxSize
	}
	return page, pageSize
}

/*
Transaction 在事务中执行多个数据库操作
功能：自动提交成功的事务，自动回滚失败的事务。
fn 内通过 txDAO 执行的所有操作共享同一事务。
*/
func (d *DAO) Transaction(fn func(txDAO *DAO) error) error {
	return d.DB.Transaction(func(tx *gorm.DB) error {
		txDAO := &DAO{
			DB:     tx,
			logger: d.logger,
		}
		return fn(txDAO)
	})
}
