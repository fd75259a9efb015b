package initializer

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"adminbase/backend/internal/config"
	"adminbase/backend/internal/db/models"
	"adminbase/backend/internal/pkg/logger"
	"adminbase/backend/internal/service"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// IsFirstRun 检查是否首次运行
func IsFirstRun(configPath string) bool {
	_, err := os.Stat(configPath)
	return os.IsNotExist(err)
}

// InitConfig 初始化配置文件
func InitConfig(configPath string) error {
	// 确保目录存在
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("创建配置目录失败: %w", err)
	}

	// 生成默认配置
	cfg := config.DefaultConfig()

	// 生成随机 JWT Secret
	cfg.Auth.JWTSecret = generateRandomSecret()

	// 保存配置文件
	if err := config.SaveConfig(cfg, configPath); err != nil {
		return fmt.Errorf("保存配置文件失败: %w", err)
	}

	logger.Info("✓ 配置文件已生成", zap.String("path", configPath))
	return nil
}

// InitDirectories 初始化必要的目录
func InitDirectories() error {
	dirs := []string{
		"./data",
		"./logs",
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("创建目录失败 %s: %w", dir, err)
		}
	}

	return nil
}

/* generateRandomSecret 生成 32 字节（256 位）随机密钥 */
func generateRandomSecret() string {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		/* 极端情况下回退到时间戳+PID（不应发生） */
		return fmt.Sprintf("adminbase-fallback-%d-%d", os.Getpid(), os.Getppid())
	}
	return hex.EncodeToString(bytes)
}

/*
InitAdmin 初始化默认数据
功能：检查数据库中是否已有用户，若无则在同一事务内创建
默认角色（admin/user）、系统管理菜单树、管理员账户，并把全部
菜单授权给 admin 角色。管理员初始密码随机生成并打印到控制台，
仅在首次启动（空数据库）时执行。
*/
func InitAdmin(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return fmt.Errorf("查询用户数量失败: %w", err)
	}
	if count > 0 {
		return nil /* 已有用户，跳过 */
	}

	/* 生成随机密码（8 字节 = 16 位十六进制） */
	pwdBytes := make([]byte, 8)
	if _, err := rand.Read(pwdBytes); err != nil {
		return fmt.Errorf("生成随机密码失败: %w", err)
	}
	defaultPassword := hex.EncodeToString(pwdBytes)

	hashedPwd, err := service.HashPassword(defaultPassword)
	if err != nil {
		return fmt.Errorf("哈希密码失败: %w", err)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		/* 1. 默认角色 */
		adminRole := &models.Role{
			Name:        "超级管理员",
			Code:        "admin",
			Description: "系统内置角色，拥有全部菜单与权限",
			Status:      models.StatusEnabled,
			Sort:        0,
		}
		userRole := &models.Role{
			Name:        "普通用户",
			Code:        "user",
			Description: "系统内置角色，仅可访问个人中心",
			Status:      models.StatusEnabled,
			Sort:        1,
		}
		if err := tx.Create(adminRole).Error; err != nil {
			return err
		}
		if err := tx.Create(userRole).Error; err != nil {
			return err
		}

		/* 2. 系统管理菜单树 */
		menus, err := seedMenus(tx)
		if err != nil {
			return err
		}

		/* 3. admin 角色授权全部菜单 */
		for _, menu := range menus {
			grant := &models.RolePermission{RoleID: adminRole.ID, MenuID: menu.ID}
			if err := tx.Create(grant).Error; err != nil {
				return err
			}
		}

		/* 4. 管理员账户 */
		admin := &models.User{
			Username: "admin",
			Email:    "admin@example.com",
			Password: hashedPwd,
			Nickname: "管理员",
			Status:   models.StatusEnabled,
		}
		if err := tx.Create(admin).Error; err != nil {
			return err
		}
		bind := &models.UserRole{UserID: admin.ID, RoleID: adminRole.ID}
		return tx.Create(bind).Error
	})
	if err != nil {
		return fmt.Errorf("初始化默认数据失败: %w", err)
	}

	logger.Info("✓ 默认管理员已创建",
		zap.String("username", "admin"),
		zap.String("password", defaultPassword))
	fmt.Printf("\n  默认管理员账户: admin / %s\n  请登录后立即修改密码！\n\n", defaultPassword)

	return nil
}

/*
seedMenus 创建内置菜单
功能：仪表盘 + 系统管理目录（用户/角色/菜单/日志/设置），
返回全部创建的菜单用于角色授权。
*/
func seedMenus(tx *gorm.DB) ([]*models.Menu, error) {
	dashboard := &models.Menu{
		Name:      "dashboard",
		Title:     "仪表盘",
		Path:      "/dashboard",
		Component: "dashboard/index",
		Icon:      "i-lucide-layout-dashboard",
		Type:      models.MenuTypeMenu,
		Visible:   1,
		Status:    models.StatusEnabled,
		Sort:      0,
	}
	if err := tx.Create(dashboard).Error; err != nil {
		return nil, err
	}

	system := &models.Menu{
		Name:     "system",
		Title:    "系统管理",
		Path:     "/system",
		Redirect: "/system/user",
		Icon:     "i-lucide-settings",
		Type:     models.MenuTypeDirectory,
		Visible:  1,
		Status:   models.StatusEnabled,
		Sort:     1,
	}
	if err := tx.Create(system).Error; err != nil {
		return nil, err
	}

	children := []*models.Menu{
		{
			Name: "system-user", Title: "用户管理",
			Path: "/system/user", Component: "system/user/index",
			Icon: "i-lucide-users", Permission: "system:user:list",
			Sort: 0,
		},
		{
			Name: "system-role", Title: "角色管理",
			Path: "/system/role", Component: "system/role/index",
			Icon: "i-lucide-shield", Permission: "system:role:list",
			Sort: 1,
		},
		{
			Name: "system-menu", Title: "菜单管理",
			Path: "/system/menu", Component: "system/menu/index",
			Icon: "i-lucide-menu", Permission: "system:menu:list",
			Sort: 2,
		},
		{
			Name: "system-log", Title: "操作日志",
			Path: "/system/log", Component: "system/log/index",
			Icon: "i-lucide-scroll-text", Permission: "system:log:view",
			Sort: 3,
		},
		{
			Name: "system-setting", Title: "系统设置",
			Path: "/system/setting", Component: "system/setting/index",
			Icon: "i-lucide-sliders-horizontal", Permission: "system:setting:view",
			Sort: 4,
		},
	}

	menus := []*models.Menu{dashboard, system}
	for _, child := range children {
		child.ParentID = &system.ID
		child.Type = models.MenuTypeMenu
		child.Visible = 1
		child.Status = models.StatusEnabled
		if err := tx.Create(child).Error; err != nil {
			return nil, err
		}
		menus = append(menus, child)
	}

	return menus, nil
}
