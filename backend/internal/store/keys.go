package store

import "time"

/* 缓存键生成器，统一键命名避免散落的字符串拼接 */

/* RateLimitKey 限流窗口记录键 */
func RateLimitKey(clientKey string) string {
	return "ratelimit:" + clientKey
}

/* LockoutKey 登录失败锁定记录键 */
func LockoutKey(identifier string) string {
	return "lockout:" + identifier
}

/* UserMenusKey 用户菜单树缓存键 */
func UserMenusKey(userID string) string {
	return "user:" + userID + ":menus"
}

/* UserPermissionsKey 用户权限集缓存键 */
func UserPermissionsKey(userID string) string {
	return "user:" + userID + ":permissions"
}

/* MenuTreeKey 全量菜单树缓存键（管理端视图） */
func MenuTreeKey() string {
	return "menu:tree"
}

/* 缓存有效期常量 */
const (
	TTLShort  = time.Minute      /* 短期缓存 */
	TTLMedium = 5 * time.Minute  /* 权限/菜单缓存默认值 */
	TTLLong   = 15 * time.Minute /* 长期缓存 */
)
