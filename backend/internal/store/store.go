/*
Package store 带 TTL 的键值存储

为限流器、登录锁定、权限缓存等提供统一的过期键值存储抽象。
默认实现为进程内内存存储（MemoryStore）；配置 Redis 后切换为
RedisStore（多实例部署场景），调用方无需改动。
*/
package store

import (
	"strings"
	"sync"
	"time"
)

/*
Store TTL 键值存储接口
约定：
  - 值为字节序列，调用方自行负责 JSON 等编解码
  - ttl <= 0 表示永不过期（仅能通过 Delete/Destroy 移除）
  - Get/Has 对已过期但尚未被清扫的条目视为不存在（惰性过期）
  - 实现内部错误（如 Redis 不可用）表现为未命中，不向调用方传播
*/
type Store interface {
	/* Get 读取键值，未命中或已过期返回 (nil, false) */
	Get(key string) ([]byte, bool)
	/* Set 写入键值并设置有效期 */
	Set(key string, value []byte, ttl time.Duration)
	/* Delete 删除单个键 */
	Delete(key string)
	/* DeleteByPrefix 删除所有以 prefix 开头的键（模式失效） */
	DeleteByPrefix(prefix string)
	/* Has 检查键是否存在且未过期 */
	Has(key string) bool
	/* Cleanup 立即清扫所有已过期条目 */
	Cleanup()
	/* Destroy 停止后台清扫并释放全部条目 */
	Destroy()
}

/* entry 存储条目。expiresAt 为零值表示永不过期。 */
type entry struct {
	value     []byte
	expiresAt time.Time
}

func (e *entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

/*
MemoryStore 进程内 TTL 键值存储
功能：map + 读写锁实现，双重过期机制：
  - 惰性过期：每次 Get/Has 检查条目有效期，过期即删
  - 主动过期：后台按固定间隔清扫，防止无人再读的条目堆积内存

并发安全：单把 sync.RWMutex 保护，所有操作为 O(1) map 访问
（DeleteByPrefix/Cleanup 为有界全表扫描，不应出现在高频请求路径）。
*/
type MemoryStore struct {
	mu       sync.RWMutex
	entries  map[string]*entry
	stopChan chan struct{}
	stopOnce sync.Once
}

/*
NewMemoryStore 创建内存存储
sweepInterval: 后台清扫间隔，<= 0 时不启动后台清扫（仅惰性过期）
*/
func NewMemoryStore(sweepInterval time.Duration) *MemoryStore {
	s := &MemoryStore{
		entries:  make(map[string]*entry),
		stopChan: make(chan struct{}),
	}

	if sweepInterval > 0 {
		go s.sweepLoop(sweepInterval)
	}

	return s
}

/*
Get 读取键值
功能：命中已过期条目时当场删除并返回未命中，
保证即使清扫间隔很长，过期语义也严格成立。
*/
func (s *MemoryStore) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return nil, false
	}

	if e.expired(time.Now()) {
		/* 惰性过期：读到过期条目即删除 */
		s.mu.Lock()
		/* 重新检查，避免删除并发 Set 写入的新条目 */
		if cur, still := s.entries[key]; still && cur == e {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return nil, false
	}

	/* 返回副本：条目归存储独占，调用方改写返回值不得污染缓存 */
	value := make([]byte, len(e.value))
	copy(value, e.value)
	return value, true
}

/* Set 写入键值，ttl <= 0 表示永不过期 */
func (s *MemoryStore) Set(key string, value []byte, ttl time.Duration) {
	e := &entry{value: value}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}

	s.mu.Lock()
	s.entries[key] = e
	s.mu.Unlock()
}

/* Delete 删除单个键 */
func (s *MemoryStore) Delete(key string) {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

/*
DeleteByPrefix 删除所有以 prefix 开头的键
功能：权限缓存的模式失效（如删除全部 "user:" 前缀键），
全表扫描，键数量以活跃会话/用户数为界。
*/
func (s *MemoryStore) DeleteByPrefix(prefix string) {
	s.mu.Lock()
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
		}
	}
	s.mu.Unlock()
}

/* Has 检查键是否存在且未过期 */
func (s *MemoryStore) Has(key string) bool {
	_, ok := s.Get(key)
	return ok
}

/* Cleanup 立即清扫所有已过期条目 */
func (s *MemoryStore) Cleanup() {
	now := time.Now()
	s.mu.Lock()
	for key, e := range s.entries {
		if e.expired(now) {
			delete(s.entries, key)
		}
	}
	s.mu.Unlock()
}

/*
Destroy 停止后台清扫并释放全部条目
功能：进程退出或测试结束时调用，防止 goroutine 泄漏
*/
func (s *MemoryStore) Destroy() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})

	s.mu.Lock()
	s.entries = make(map[string]*entry)
	s.mu.Unlock()
}

/* Len 当前条目数（含未清扫的过期条目），供测试和统计使用 */
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

/* sweepLoop 后台定期清扫过期条目 */
func (s *MemoryStore) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Cleanup()
		case <-s.stopChan:
			return
		}
	}
}
