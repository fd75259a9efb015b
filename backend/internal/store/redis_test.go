package store

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("启动 miniredis 失败: %v", err)
	}
	t.Cleanup(mr.Close)

	s, err := NewRedisStore(mr.Addr(), "", 0)
	if err != nil {
		t.Fatalf("连接 miniredis 失败: %v", err)
	}
	t.Cleanup(s.Destroy)

	return s, mr
}

func TestRedisStoreSetGet(t *testing.T) {
	s, _ := newTestRedisStore(t)

	s.Set("k1", []byte("v1"), time.Minute)

	val, ok := s.Get("k1")
	if !ok || string(val) != "v1" {
		t.Errorf("期望命中 v1, 实际 ok=%v val=%s", ok, val)
	}

	if _, ok := s.Get("missing"); ok {
		t.Error("不存在的键不应命中")
	}
}

func TestRedisStoreTTLExpiry(t *testing.T) {
	s, mr := newTestRedisStore(t)

	s.Set("k", []byte("v"), time.Second)
	if !s.Has("k") {
		t.Fatal("过期前应命中")
	}

	mr.FastForward(2 * time.Second)

	if _, ok := s.Get("k"); ok {
		t.Error("过期后不应命中")
	}
}

func TestRedisStoreDelete(t *testing.T) {
	s, _ := newTestRedisStore(t)

	s.Set("k", []byte("v"), time.Minute)
	s.Delete("k")

	if s.Has("k") {
		t.Error("删除后不应命中")
	}
}

func TestRedisStoreDeleteByPrefix(t *testing.T) {
	s, _ := newTestRedisStore(t)

	s.Set(UserMenusKey("u1"), []byte("a"), time.Minute)
	s.Set(UserPermissionsKey("u2"), []byte("b"), time.Minute)
	s.Set(MenuTreeKey(), []byte("c"), time.Minute)

	s.DeleteByPrefix("user:")

	if s.Has(UserMenusKey("u1")) || s.Has(UserPermissionsKey("u2")) {
		t.Error("user: 前缀键应全部删除")
	}
	if !s.Has(MenuTreeKey()) {
		t.Error("其他前缀的键不应受影响")
	}
}

func TestRedisStoreConnectionFailure(t *testing.T) {
	if _, err := NewRedisStore("127.0.0.1:1", "", 0); err == nil {
		t.Error("连不上的地址应返回错误")
	}
}

func TestRedisStoreDegradesToMiss(t *testing.T) {
	s, mr := newTestRedisStore(t)

	s.Set("k", []byte("v"), time.Minute)
	mr.Close()

	// 连接断开后按未命中降级，不 panic 不传播错误
	if _, ok := s.Get("k"); ok {
		t.Error("Redis 不可用时应表现为未命中")
	}
	s.Set("k2", []byte("v"), time.Minute)
	s.Delete("k")
	s.DeleteByPrefix("user:")
}
