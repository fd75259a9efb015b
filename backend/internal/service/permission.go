package service

import (
	"encoding/json"
	"sort"
	"time"

	"adminbase/backend/internal/db/dao"
	"adminbase/backend/internal/db/models"
	"adminbase/backend/internal/store"

	"go.uber.org/zap"
)

/*
PermissionService 权限解析与缓存
功能：把用户全部角色授予的菜单聚合为权限标识集合与层级菜单树，
结果以中等 TTL 缓存在 Store 中。缓存是性能缓存（有界陈旧可接受），
但菜单/角色授权变更时必须主动按前缀批量失效，不能只等过期——
任何用户的有效集合都可能依赖任何一条菜单记录，精确依赖追踪不值得，
用更大的失效半径换正确性的简单。
*/
type PermissionService struct {
	dao    *dao.DAO
	cache  store.Store
	ttl    time.Duration
	logger *zap.Logger
}

/*
NewPermissionService 创建权限服务
功能：ttl <= 0 回落为 5 分钟
*/
func NewPermissionService(d *dao.DAO, cache store.Store, ttl time.Duration) *PermissionService {
	if ttl <= 0 {
		ttl = store.TTLMedium
	}
	return &PermissionService{
		dao:    d,
		cache:  cache,
		ttl:    ttl,
		logger: zap.L().Named("permission"),
	}
}

/*
GetUserMenuTree 获取用户可见的菜单树（缓存）
功能：多角色取并集——持有任一授权角色即拥有该菜单；
菜单记录过滤为启用且可见，再按 parentId 组装为树
*/
func (s *PermissionService) GetUserMenuTree(userID string) ([]*models.MenuNode, error) {
	key := store.UserMenusKey(userID)
	if tree, ok := s.cachedTree(key); ok {
		return tree, nil
	}

	menuIDs, err := s.dao.GetUserMenuIDs(userID)
	if err != nil {
		return nil, err
	}
	menus, err := s.dao.GetMenusByIDs(menuIDs, true)
	if err != nil {
		return nil, err
	}

	tree := BuildMenuTree(menus)
	s.cacheSet(key, tree)
	return tree, nil
}

/*
GetUserPermissionSet 获取用户的权限标识集合（缓存）
功能：与菜单树相同的角色并集逻辑，收集各菜单非空的 permission
字段，去重后排序返回
*/
func (s *PermissionService) GetUserPermissionSet(userID string) ([]string, error) {
	key := store.UserPermissionsKey(userID)
	if data, ok := s.cache.Get(key); ok {
		var perms []string
		if err := json.Unmarshal(data, &perms); err == nil {
			return perms, nil
		}
		s.logger.Warn("权限缓存损坏，重新计算", zap.String("key", key))
	}

	menus, err := s.dao.GetUserPermissionMenus(userID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(menus))
	perms := make([]string, 0, len(menus))
	for _, m := range menus {
		if m.Permission == "" {
			continue
		}
		if _, ok := seen[m.Permission]; ok {
			continue
		}
		seen[m.Permission] = struct{}{}
		perms = append(perms, m.Permission)
	}
	sort.Strings(perms)

	s.cacheSet(key, perms)
	return perms, nil
}

/*
HasPermission 判断用户是否持有指定权限标识
*/
func (s *PermissionService) HasPermission(userID, permission string) (bool, error) {
	perms, err := s.GetUserPermissionSet(userID)
	if err != nil {
		return false, err
	}
	for _, p := range perms {
		if p == permission {
			return true, nil
		}
	}
	return false, nil
}

/*
GetMenuTree 获取完整菜单树（管理端视图，缓存）
功能：不按用户过滤、不过滤状态/可见性
*/
func (s *PermissionService) GetMenuTree() ([]*models.MenuNode, error) {
	key := store.MenuTreeKey()
	if tree, ok := s.cachedTree(key); ok {
		return tree, nil
	}

	menus, err := s.dao.ListMenus()
	if err != nil {
		return nil, err
	}

	tree := BuildMenuTree(menus)
	s.cacheSet(key, tree)
	return tree, nil
}

/*
InvalidateUser 精确失效单个用户的缓存（用户角色变更时调用）
*/
func (s *PermissionService) InvalidateUser(userID string) {
	s.cache.Delete(store.UserMenusKey(userID))
	s.cache.Delete(store.UserPermissionsKey(userID))
}

/*
InvalidateAll 按前缀批量失效全部权限相关缓存
功能：菜单或角色授权发生任何变更时调用
*/
func (s *PermissionService) InvalidateAll() {
	s.cache.DeleteByPrefix("menu:")
	s.cache.DeleteByPrefix("user:")
}

func (s *PermissionService) cachedTree(key string) ([]*models.MenuNode, bool) {
	data, ok := s.cache.Get(key)
	if !ok {
		return nil, false
	}
	var tree []*models.MenuNode
	if err := json.Unmarshal(data, &tree); err != nil {
		s.logger.Warn("菜单树缓存损坏，重新计算", zap.String("key", key))
		return nil, false
	}
	return tree, true
}

func (s *PermissionService) cacheSet(key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Error("权限缓存序列化失败", zap.String("key", key), zap.Error(err))
		return
	}
	s.cache.Set(key, data, s.ttl)
}

/*
BuildMenuTree 把平铺菜单组装为树
功能：入参须已按 sort 升序排列，组装保持相对顺序（同级稳定）。
根节点为 parentId 为空的菜单；父节点不在集合内的条目被丢弃——
父菜单被禁用或隐藏时其子树整体不可见。
*/
func BuildMenuTree(menus []models.Menu) []*models.MenuNode {
	nodes := make(map[string]*models.MenuNode, len(menus))
	for i := range menus {
		nodes[menus[i].ID] = &models.MenuNode{Menu: menus[i]}
	}

	roots := make([]*models.MenuNode, 0)
	for i := range menus {
		node := nodes[menus[i].ID]
		if menus[i].ParentID == nil || *menus[i].ParentID == "" {
			roots = append(roots, node)
			continue
		}
		if parent, ok := nodes[*menus[i].ParentID]; ok {
			parent.Children = append(parent.Children, node)
		}
	}
	return roots
}
