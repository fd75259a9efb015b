package service

import (
	"encoding/json"
	"sync"
	"time"

	"adminbase/backend/internal/store"

	"go.uber.org/zap"
)

/*
RateLimitRule 限流规则（固定窗口）
*/
type RateLimitRule struct {
	Limit  int           // 窗口内允许的最大请求数
	Window time.Duration // 窗口长度
}

/*
RateLimitResult 单次判定结果
功能：无论放行与否都返回完整计数信息，HTTP 层据此写 X-RateLimit-* 响应头
*/
type RateLimitResult struct {
	Allowed   bool
	Limit     int
	Remaining int       // 本窗口剩余额度，被拒绝时为 0
	ResetAt   time.Time // 当前窗口结束时间
}

/* rateWindow 存储中的窗口记录，JSON 编码后写入 Store */
type rateWindow struct {
	Count   int   `json:"count"`
	ResetAt int64 `json:"reset_at"` // Unix 毫秒
}

/*
RateLimiter 固定窗口限流器
功能：同一键在窗口内计数，达到上限后拒绝直至窗口过期。
记录带 TTL 写入 Store，窗口过期由存储层回收，无需主动重置。
读改写全程持锁，保证同键并发判定的严格计数。
*/
type RateLimiter struct {
	store  store.Store
	rule   RateLimitRule
	mu     sync.Mutex
	logger *zap.Logger
}

/*
NewRateLimiter 创建限流器
功能：limit <= 0 或 window <= 0 时回落到 100次/60秒 的默认规则
*/
func NewRateLimiter(s store.Store, rule RateLimitRule) *RateLimiter {
	if rule.Limit <= 0 {
		rule.Limit = 100
	}
	if rule.Window <= 0 {
		rule.Window = 60 * time.Second
	}
	return &RateLimiter{
		store:  s,
		rule:   rule,
		logger: zap.L().Named("ratelimit"),
	}
}

/*
Allow 判定一次请求并计数
功能：键通常为客户端IP或 IP+路径。窗口不存在或已过期时
开启新窗口并计 1；否则无条件递增计数——超限后计数继续增长，
记录真实请求压力，但拒绝不延长窗口，窗口滚动后计数归 1。
*/
func (r *RateLimiter) Allow(key string) RateLimitResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	storeKey := store.RateLimitKey(key)

	var win rateWindow
	if data, ok := r.store.Get(storeKey); ok {
		if err := json.Unmarshal(data, &win); err != nil {
			// 记录损坏按不存在处理，重开窗口
			r.logger.Warn("限流记录损坏，已重置", zap.String("key", key), zap.Error(err))
			win = rateWindow{}
		}
	}

	resetAt := time.UnixMilli(win.ResetAt)
	if win.Count == 0 || !now.Before(resetAt) {
		// 新窗口
		win = rateWindow{Count: 1, ResetAt: now.Add(r.rule.Window).UnixMilli()}
		r.persist(storeKey, win, r.rule.Window)
		return RateLimitResult{
			Allowed:   true,
			Limit:     r.rule.Limit,
			Remaining: r.rule.Limit - 1,
			ResetAt:   time.UnixMilli(win.ResetAt),
		}
	}

	/* 记录沿用剩余窗口 TTL，被拒绝的请求不延长窗口 */
	win.Count++
	r.persist(storeKey, win, time.Until(resetAt))

	remaining := r.rule.Limit - win.Count
	if remaining < 0 {
		remaining = 0
	}
	return RateLimitResult{
		Allowed:   win.Count <= r.rule.Limit,
		Limit:     r.rule.Limit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
}

/*
Reset 清除指定键的限流窗口（测试与管理端手动解封用）
*/
func (r *RateLimiter) Reset(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.store.Delete(store.RateLimitKey(key))
}

func (r *RateLimiter) persist(storeKey string, win rateWindow, ttl time.Duration) {
	data, err := json.Marshal(win)
	if err != nil {
		r.logger.Error("限流记录序列化失败", zap.Error(err))
		return
	}
	if ttl <= 0 {
		ttl = time.Millisecond
	}
	r.store.Set(storeKey, data, ttl)
}
