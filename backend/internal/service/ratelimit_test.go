package service

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"adminbase/backend/internal/store"
)

func newTestLimiter(limit int, window time.Duration) (*RateLimiter, *store.MemoryStore) {
	s := store.NewMemoryStore(0)
	return NewRateLimiter(s, RateLimitRule{Limit: limit, Window: window}), s
}

/*
TestRateLimiter_Monotonic 窗口内连续请求的计数单调递增
*/
func TestRateLimiter_Monotonic(t *testing.T) {
	limiter, s := newTestLimiter(5, time.Minute)
	defer s.Destroy()

	for i := 1; i <= 5; i++ {
		res := limiter.Allow("client-a")
		if !res.Allowed {
			t.Fatalf("第 %d 次请求应放行", i)
		}
		if res.Remaining != 5-i {
			t.Errorf("第 %d 次请求剩余额度期望 %d, 实际 %d", i, 5-i, res.Remaining)
		}
	}

	res := limiter.Allow("client-a")
	if res.Allowed {
		t.Error("超限后应拒绝")
	}
	if res.Remaining != 0 {
		t.Errorf("拒绝时剩余额度应为 0, 实际 %d", res.Remaining)
	}
}

/*
TestRateLimiter_WindowReset 窗口过期后计数从 1 重新开始
*/
func TestRateLimiter_WindowReset(t *testing.T) {
	limiter, s := newTestLimiter(2, 50*time.Millisecond)
	defer s.Destroy()

	limiter.Allow("client-a")
	limiter.Allow("client-a")
	if limiter.Allow("client-a").Allowed {
		t.Fatal("窗口内超限应拒绝")
	}

	time.Sleep(80 * time.Millisecond)

	res := limiter.Allow("client-a")
	if !res.Allowed {
		t.Error("新窗口的首次请求应放行")
	}
	if res.Remaining != 1 {
		t.Errorf("新窗口计数应从 1 开始, 剩余额度期望 1, 实际 %d", res.Remaining)
	}
}

/*
TestRateLimiter_IndependentKeys 不同键的窗口互不影响
*/
func TestRateLimiter_IndependentKeys(t *testing.T) {
	limiter, s := newTestLimiter(1, time.Minute)
	defer s.Destroy()

	if !limiter.Allow("client-a").Allowed {
		t.Fatal("client-a 首次请求应放行")
	}
	if limiter.Allow("client-a").Allowed {
		t.Fatal("client-a 超限应拒绝")
	}
	if !limiter.Allow("client-b").Allowed {
		t.Error("client-b 不应受 client-a 限流影响")
	}
}

/*
TestRateLimiter_RejectionKeepsWindow 被拒绝的请求不延长窗口
*/
func TestRateLimiter_RejectionKeepsWindow(t *testing.T) {
	limiter, s := newTestLimiter(1, time.Minute)
	defer s.Destroy()

	first := limiter.Allow("client-a")
	rejected := limiter.Allow("client-a")

	if rejected.Allowed {
		t.Fatal("超限应拒绝")
	}
	if !rejected.ResetAt.Equal(first.ResetAt) {
		t.Errorf("拒绝不应改变窗口结束时间, 期望 %v, 实际 %v", first.ResetAt, rejected.ResetAt)
	}
}

/*
TestRateLimiter_CountsPastLimit 超限后计数继续增长
功能：第 N 次请求后存储记录的计数恰为 N，被拒绝的请求同样计入——
计数反映窗口内的真实请求量，而不是放行量
*/
func TestRateLimiter_CountsPastLimit(t *testing.T) {
	limiter, s := newTestLimiter(2, time.Minute)
	defer s.Destroy()

	for i := 1; i <= 5; i++ {
		res := limiter.Allow("client-a")
		if (i <= 2) != res.Allowed {
			t.Fatalf("第 %d 次请求放行结果错误: %v", i, res.Allowed)
		}
	}

	data, ok := s.Get(store.RateLimitKey("client-a"))
	if !ok {
		t.Fatal("限流记录应存在")
	}
	var win struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(data, &win); err != nil {
		t.Fatalf("解析限流记录失败: %v", err)
	}
	if win.Count != 5 {
		t.Errorf("期望超限后计数继续增长到 5, 实际 %d", win.Count)
	}
}

/*
TestRateLimiter_Reset 手动清除后额度恢复
*/
func TestRateLimiter_Reset(t *testing.T) {
	limiter, s := newTestLimiter(1, time.Minute)
	defer s.Destroy()

	limiter.Allow("client-a")
	if limiter.Allow("client-a").Allowed {
		t.Fatal("超限应拒绝")
	}

	limiter.Reset("client-a")
	if !limiter.Allow("client-a").Allowed {
		t.Error("清除后应重新放行")
	}
}

/*
TestRateLimiter_ConcurrentCounting 并发判定不丢计数
*/
func TestRateLimiter_ConcurrentCounting(t *testing.T) {
	limiter, s := newTestLimiter(100, time.Minute)
	defer s.Destroy()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				if limiter.Allow("shared").Allowed {
					mu.Lock()
					allowed++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	// 200 次并发请求，限额 100，严格计数下恰好放行 100 次
	if allowed != 100 {
		t.Errorf("期望恰好放行 100 次, 实际 %d", allowed)
	}

	for i := 0; i < 8; i++ {
		key := fmt.Sprintf("other-%d", i)
		if !limiter.Allow(key).Allowed {
			t.Errorf("键 %s 不应受 shared 限流影响", key)
		}
	}
}
