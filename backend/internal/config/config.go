package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config 全局配置
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	Mode         string `yaml:"mode"` // debug, release
	ReadTimeout  int    `yaml:"read_timeout"`
	WriteTimeout int    `yaml:"write_timeout"`

	/* CORS 跨域配置 */
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"` /* 允许的来源列表，["*"] 表示允许所有（仅开发环境） */
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Type     string `yaml:"type"`     // 数据库类型: sqlite, mysql, postgres
	Host     string `yaml:"host"`     // 数据库主机
	Port     int    `yaml:"port"`     // 数据库端口
	User     string `yaml:"user"`     // 数据库用户名
	Password string `yaml:"password"` // 数据库密码
	DBName   string `yaml:"db_name"`  // 数据库名称
	SSLMode  string `yaml:"ssl_mode"` // SSL模式 (postgres)
	Charset  string `yaml:"charset"`  // 字符集 (mysql)

	/* SQLite 专用 */
	SQLitePath string `yaml:"sqlite_path"`

	/* 连接池 */
	MaxOpenConns int `yaml:"max_open_conns"`
	MaxIdleConns int `yaml:"max_idle_conns"`

	/* 日志 */
	LogLevel string `yaml:"log_level"` // silent, error, warn, info
}

/*
RedisConfig Redis 配置
功能：addr 非空时，TTL 存储切换为 Redis 后端（分布式部署场景），
为空则使用进程内内存存储。
*/
type RedisConfig struct {
	Addr         string `yaml:"addr"`
	Password     string `yaml:"password"`
	DB           int    `yaml:"db"`
	PoolSize     int    `yaml:"pool_size"`
	MinIdleConns int    `yaml:"min_idle_conns"`
	MaxRetries   int    `yaml:"max_retries"`
}

/*
AuthConfig 认证配置
功能：JWT 密钥、双令牌有效期、登录失败锁定策略
*/
type AuthConfig struct {
	JWTSecret         string `yaml:"jwt_secret"`
	AccessTokenTTL    int    `yaml:"access_token_ttl"`    // 访问令牌有效期（分钟），默认 120
	RefreshTokenTTL   int    `yaml:"refresh_token_ttl"`   // 刷新令牌有效期（小时），默认 168（7天）
	MaxLoginAttempts  int    `yaml:"max_login_attempts"`  // 连续失败多少次后锁定，默认 5
	LockoutDuration   int    `yaml:"lockout_duration"`    // 锁定时长（分钟），默认 15
	PasswordMinLength int    `yaml:"password_min_length"` // 密码最小长度，默认 8
}

/*
RateLimitConfig 限流配置
功能：固定窗口计数限流的阈值，分全局 API 和登录/注册等敏感端点两档
*/
type RateLimitConfig struct {
	GlobalLimit   int `yaml:"global_limit"`   // 全局 API 每窗口最大请求数，默认 100
	GlobalWindow  int `yaml:"global_window"`  // 全局窗口时长（秒），默认 60
	AuthLimit     int `yaml:"auth_limit"`     // 敏感端点每窗口最大请求数，默认 5
	AuthWindow    int `yaml:"auth_window"`    // 敏感端点窗口时长（秒），默认 60
	SweepInterval int `yaml:"sweep_interval"` // 存储过期清理间隔（秒），默认 60
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `yaml:"level"`       // debug, info, warn, error
	Format     string `yaml:"format"`      // json, console
	OutputPath string `yaml:"output_path"` // 日志文件路径
	MaxSize    int    `yaml:"max_size"`    // 单个日志文件大小(MB)
	MaxBackups int    `yaml:"max_backups"` // 保留的旧日志文件数量
	MaxAge     int    `yaml:"max_age"`     // 保留天数
	Compress   bool   `yaml:"compress"`    // 是否压缩
}

// LoadConfig 从文件加载配置
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyEnvOverrides()
	config.warnInsecureDefaults()
	return config, nil
}

/*
applyEnvOverrides 应用环境变量覆盖
功能：JWT 密钥等敏感配置允许通过环境变量注入，
避免写入配置文件（容器化部署场景）。
*/
func (c *Config) applyEnvOverrides() {
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		c.Auth.JWTSecret = secret
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		c.Redis.Addr = addr
	}
}

/*
warnInsecureDefaults 检查生产环境下是否使用了不安全的默认值
功能：在 release 模式下对默认/过短的 JWT 密钥、全开 CORS 输出警告，
提醒运维人员及时修改。
*/
func (c *Config) warnInsecureDefaults() {
	if c.Server.Mode != "release" {
		return
	}

	if c.Auth.JWTSecret == "change-this-secret-in-production" || len(c.Auth.JWTSecret) < 16 {
		fmt.Println("[SECURITY WARNING] 生产环境使用了默认或过短的 JWT 密钥，请立即修改 auth.jwt_secret 或设置 JWT_SECRET 环境变量")
	}
	for _, o := range c.Server.CORSAllowedOrigins {
		if o == "*" {
			fmt.Println("[SECURITY WARNING] 生产环境 CORS 允许所有来源（*），请配置具体域名白名单 server.cors_allowed_origins")
			break
		}
	}
}

// LoadConfigOrDefault 加载配置或使用默认值
func LoadConfigOrDefault(path string) *Config {
	if path == "" {
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		return cfg
	}

	config, err := LoadConfig(path)
	if err != nil {
		fmt.Printf("Failed to load config: %v, using defaults\n", err)
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		return cfg
	}

	return config
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:               "0.0.0.0",
			Port:               8080,
			Mode:               "debug",
			ReadTimeout:        30,
			WriteTimeout:       30,
			CORSAllowedOrigins: []string{"*"}, /* 开发模式默认允许所有，生产环境应改为具体域名 */
		},
		Database: DatabaseConfig{
			Type:         "sqlite",
			SQLitePath:   "./data/adminbase.db",
			Host:         "localhost",
			Port:         3306,
			User:         "root",
			Password:     "",
			DBName:       "adminbase",
			SSLMode:      "disable",
			Charset:      "utf8mb4",
			MaxOpenConns: 25,
			MaxIdleConns: 5,
			LogLevel:     "warn",
		},
		Redis: RedisConfig{
			Addr:         "", /* 默认不启用 Redis，使用内存存储 */
			Password:     "",
			DB:           0,
			PoolSize:     10,
			MinIdleConns: 3,
			MaxRetries:   3,
		},
		Auth: AuthConfig{
			JWTSecret:         "change-this-secret-in-production",
			AccessTokenTTL:    120,
			RefreshTokenTTL:   168,
			MaxLoginAttempts:  5,
			LockoutDuration:   15,
			PasswordMinLength: 8,
		},
		RateLimit: RateLimitConfig{
			GlobalLimit:   100,
			GlobalWindow:  60,
			AuthLimit:     5,
			AuthWindow:    60,
			SweepInterval: 60,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "console",
			OutputPath: "./logs/adminbase.log",
			MaxSize:    100,
			MaxBackups: 10,
			MaxAge:     30,
			Compress:   true,
		},
	}
}

// SaveConfig 保存配置到文件
func SaveConfig(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	/* 0600：仅所有者可读写，配置文件含签名密钥 */
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
