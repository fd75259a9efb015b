package store

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestMemoryStoreSetGet(t *testing.T) {
	s := NewMemoryStore(0)
	defer s.Destroy()

	s.Set("k1", []byte("v1"), time.Minute)

	val, ok := s.Get("k1")
	if !ok {
		t.Fatal("期望命中 k1")
	}
	if string(val) != "v1" {
		t.Errorf("期望 v1, 实际 %s", val)
	}

	if _, ok := s.Get("missing"); ok {
		t.Error("不存在的键不应命中")
	}
}

/* 修改 Get 返回的切片不得影响存储内的条目 */
func TestMemoryStoreGetReturnsCopy(t *testing.T) {
	s := NewMemoryStore(0)
	defer s.Destroy()

	s.Set("k1", []byte("v1"), time.Minute)

	val, ok := s.Get("k1")
	if !ok {
		t.Fatal("期望命中 k1")
	}
	val[0] = 'X'

	again, _ := s.Get("k1")
	if string(again) != "v1" {
		t.Errorf("调用方改写返回值污染了存储条目: %s", again)
	}
}

func TestMemoryStoreTTLExpiry(t *testing.T) {
	s := NewMemoryStore(0)
	defer s.Destroy()

	s.Set("short", []byte("v"), 50*time.Millisecond)
	s.Set("forever", []byte("v"), 0)

	if !s.Has("short") {
		t.Fatal("过期前应命中")
	}

	time.Sleep(80 * time.Millisecond)

	// 未跑过 Cleanup，惰性过期必须独立保证语义
	if _, ok := s.Get("short"); ok {
		t.Error("过期后不应命中")
	}
	if !s.Has("forever") {
		t.Error("ttl<=0 的键应永不过期")
	}
}

func TestMemoryStoreLazyExpiryDeletes(t *testing.T) {
	s := NewMemoryStore(0)
	defer s.Destroy()

	s.Set("k", []byte("v"), 30*time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	s.Get("k")
	if s.Len() != 0 {
		t.Errorf("惰性过期应删除条目, 剩余 %d", s.Len())
	}
}

func TestMemoryStoreOverwriteResetsTTL(t *testing.T) {
	s := NewMemoryStore(0)
	defer s.Destroy()

	s.Set("k", []byte("old"), 30*time.Millisecond)
	s.Set("k", []byte("new"), time.Minute)

	time.Sleep(50 * time.Millisecond)

	val, ok := s.Get("k")
	if !ok || string(val) != "new" {
		t.Errorf("覆盖写应使用新值和新 TTL, 实际 ok=%v val=%s", ok, val)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	s := NewMemoryStore(0)
	defer s.Destroy()

	s.Set("k", []byte("v"), time.Minute)
	s.Delete("k")

	if s.Has("k") {
		t.Error("删除后不应命中")
	}
}

func TestMemoryStoreDeleteByPrefix(t *testing.T) {
	s := NewMemoryStore(0)
	defer s.Destroy()

	s.Set(UserMenusKey("u1"), []byte("a"), time.Minute)
	s.Set(UserPermissionsKey("u1"), []byte("b"), time.Minute)
	s.Set(MenuTreeKey(), []byte("c"), time.Minute)
	s.Set(RateLimitKey("1.2.3.4"), []byte("d"), time.Minute)

	s.DeleteByPrefix("user:")

	if s.Has(UserMenusKey("u1")) || s.Has(UserPermissionsKey("u1")) {
		t.Error("user: 前缀键应全部删除")
	}
	if !s.Has(MenuTreeKey()) || !s.Has(RateLimitKey("1.2.3.4")) {
		t.Error("其他前缀的键不应受影响")
	}
}

func TestMemoryStoreCleanup(t *testing.T) {
	s := NewMemoryStore(0)
	defer s.Destroy()

	for i := 0; i < 10; i++ {
		s.Set(fmt.Sprintf("expired:%d", i), []byte("v"), 20*time.Millisecond)
	}
	s.Set("alive", []byte("v"), time.Minute)

	time.Sleep(40 * time.Millisecond)
	s.Cleanup()

	if s.Len() != 1 {
		t.Errorf("清扫后应只剩 1 条, 实际 %d", s.Len())
	}
	if !s.Has("alive") {
		t.Error("未过期条目不应被清扫")
	}
}

func TestMemoryStoreBackgroundSweep(t *testing.T) {
	s := NewMemoryStore(30 * time.Millisecond)
	defer s.Destroy()

	s.Set("k", []byte("v"), 20*time.Millisecond)

	time.Sleep(100 * time.Millisecond)

	// 不经过 Get 的惰性路径，后台清扫应已回收
	if s.Len() != 0 {
		t.Errorf("后台清扫应回收过期条目, 剩余 %d", s.Len())
	}
}

func TestMemoryStoreDestroy(t *testing.T) {
	s := NewMemoryStore(10 * time.Millisecond)

	s.Set("k", []byte("v"), time.Minute)
	s.Destroy()

	if s.Len() != 0 {
		t.Error("Destroy 后应清空全部条目")
	}
	// 重复调用安全
	s.Destroy()
}

func TestMemoryStoreConcurrentAccess(t *testing.T) {
	s := NewMemoryStore(10 * time.Millisecond)
	defer s.Destroy()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				key := fmt.Sprintf("k:%d:%d", n, j%10)
				s.Set(key, []byte("v"), 20*time.Millisecond)
				s.Get(key)
				if j%50 == 0 {
					s.DeleteByPrefix(fmt.Sprintf("k:%d:", n))
				}
			}
		}(i)
	}
	wg.Wait()
}
