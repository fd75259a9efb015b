package db

import (
	"fmt"
	"log"
	"time"

	"adminbase/backend/internal/db/database"
	"adminbase/backend/internal/store"

	"gorm.io/gorm"
)

/*
Manager 数据层管理器
功能：统一管理 GORM 数据库连接和 TTL 键值存储。
TTL 存储默认为进程内内存实现；配置了 Redis 地址时切换为
Redis 实现（多实例部署），上层服务通过 store.Store 接口访问，
无需感知后端差异。
*/
type Manager struct {
	GormDB *gorm.DB
	Store  store.Store
}

/*
Config 数据层配置
*/
type Config struct {
	/* 数据库类型：sqlite, mysql, postgres */
	DBType string

	/* SQLite 配置 */
	SQLitePath string

	/* MySQL/PostgreSQL 配置 */
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBCharset  string

	/* 连接池 */
	MaxOpenConns int
	MaxIdleConns int

	/* 日志级别 */
	DBLogLevel string

	/* Redis 配置（可选，非空启用） */
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	/* 内存存储后台清扫间隔 */
	StoreSweepInterval time.Duration
}

/*
NewManager 创建数据层管理器
功能：初始化 GORM 数据库并执行 AutoMigrate，
再按配置选择 TTL 存储后端。Redis 连接失败时降级为内存存储
并继续运行（缓存类状态允许单机语义兜底）。
*/
func NewManager(cfg *Config) (*Manager, error) {
	manager := &Manager{}

	/* 1. 初始化 GORM 数据库 */
	dbType := cfg.DBType
	if dbType == "" {
		dbType = "sqlite"
	}

	gormCfg := &database.Config{
		Type:         database.DBType(dbType),
		Host:         cfg.DBHost,
		Port:         cfg.DBPort,
		User:         cfg.DBUser,
		Password:     cfg.DBPassword,
		DBName:       cfg.DBName,
		SSLMode:      cfg.DBSSLMode,
		Charset:      cfg.DBCharset,
		SQLitePath:   cfg.SQLitePath,
		MaxOpenConns: cfg.MaxOpenConns,
		MaxIdleConns: cfg.MaxIdleConns,
		LogLevel:     cfg.DBLogLevel,
	}

	/* 连接池默认值 */
	if gormCfg.MaxOpenConns == 0 {
		gormCfg.MaxOpenConns = 25
	}
	if gormCfg.MaxIdleConns == 0 {
		gormCfg.MaxIdleConns = 5
	}
	if gormCfg.ConnMaxLifetime == 0 {
		gormCfg.ConnMaxLifetime = time.Hour
	}
	if gormCfg.ConnMaxIdleTime == 0 {
		gormCfg.ConnMaxIdleTime = 30 * time.Minute
	}
	if gormCfg.LogLevel == "" {
		gormCfg.LogLevel = "warn"
	}

	gormDB, err := database.NewDatabase(gormCfg)
	if err != nil {
		return nil, fmt.Errorf("初始化 GORM 数据库失败: %w", err)
	}
	manager.GormDB = gormDB

	if err := database.AutoMigrate(gormDB); err != nil {
		return nil, err
	}

	/* 2. 选择 TTL 存储后端 */
	sweep := cfg.StoreSweepInterval
	if sweep <= 0 {
		sweep = time.Minute
	}

	if cfg.RedisAddr != "" {
		redisStore, err := store.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Printf("⚠ Redis 连接失败: %v（降级为内存存储）", err)
			manager.Store = store.NewMemoryStore(sweep)
		} else {
			manager.Store = redisStore
			log.Printf("✓ TTL 存储使用 Redis: %s", cfg.RedisAddr)
		}
	} else {
		manager.Store = store.NewMemoryStore(sweep)
	}

	return manager, nil
}

/*
Close 关闭数据层
功能：停止 TTL 存储的后台清扫并关闭数据库连接
*/
func (m *Manager) Close() error {
	if m.Store != nil {
		m.Store.Destroy()
	}

	if m.GormDB != nil {
		if sqlDB, err := m.GormDB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				return fmt.Errorf("关闭数据库失败: %w", err)
			}
		}
	}

	return nil
}
