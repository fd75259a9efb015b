package service

import (
	"encoding/json"
	"sync"
	"time"

	"adminbase/backend/internal/store"

	"go.uber.org/zap"
)

/* lockoutRecord 存储中的失败计数记录 */
type lockoutRecord struct {
	Attempts      int   `json:"attempts"`
	LastAttemptAt int64 `json:"last_attempt_at"` // Unix 毫秒
}

/*
LockoutStatus 锁定状态查询结果
*/
type LockoutStatus struct {
	Locked    bool
	Attempts  int           // 当前累计失败次数
	Remaining int           // 距锁定还剩的尝试次数，锁定后可为 0 或负数
	RetryAt   time.Time     // 锁定解除时间，未锁定时为零值
	Wait      time.Duration // 距解锁的剩余时长，未锁定时为 0
}

/*
LockoutTracker 登录失败锁定追踪器
功能：按账户标识累计连续失败次数，达到阈值后在锁定期内拒绝登录。
状态机：Clean → Warning(n) → Locked。锁定窗口以最后一次失败为起点，
到期后记录整体删除——计数从零重新开始，而非在旧计数上继续。
记录带 TTL 写入 Store，无人访问的计数由存储层到期回收。
*/
type LockoutTracker struct {
	store       store.Store
	maxAttempts int
	duration    time.Duration
	mu          sync.Mutex
	logger      *zap.Logger
}

/*
NewLockoutTracker 创建锁定追踪器
功能：maxAttempts <= 0 回落为 5 次，duration <= 0 回落为 15 分钟
*/
func NewLockoutTracker(s store.Store, maxAttempts int, duration time.Duration) *LockoutTracker {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if duration <= 0 {
		duration = 15 * time.Minute
	}
	return &LockoutTracker{
		store:       s,
		maxAttempts: maxAttempts,
		duration:    duration,
		logger:      zap.L().Named("lockout"),
	}
}

/*
IsLocked 查询账户是否处于锁定期
功能：计数达到阈值且距最后一次失败未满锁定时长时为锁定态；
锁定到期即删除记录，回到 Clean 而非 Warning。
*/
func (t *LockoutTracker) IsLocked(identifier string) bool {
	return t.Check(identifier).Locked
}

/*
Check 查询账户当前完整状态（不修改计数）
*/
func (t *LockoutTracker) Check(identifier string) LockoutStatus {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	key := store.LockoutKey(identifier)
	rec, ok := t.load(key)
	if !ok {
		return LockoutStatus{Remaining: t.maxAttempts}
	}

	if rec.Attempts >= t.maxAttempts {
		retryAt := time.UnixMilli(rec.LastAttemptAt).Add(t.duration)
		if now.Before(retryAt) {
			return LockoutStatus{
				Locked:    true,
				Attempts:  rec.Attempts,
				Remaining: t.maxAttempts - rec.Attempts,
				RetryAt:   retryAt,
				Wait:      retryAt.Sub(now),
			}
		}
		// 锁定到期，整条记录删除，计数归零
		t.store.Delete(key)
		return LockoutStatus{Remaining: t.maxAttempts}
	}

	return LockoutStatus{
		Attempts:  rec.Attempts,
		Remaining: t.maxAttempts - rec.Attempts,
	}
}

/*
RecordFailure 记录一次登录失败
功能：计数递增且更新最后失败时间（锁定窗口随之顺延），
返回记录后的最新状态。达到阈值的那次失败立即进入锁定。
*/
func (t *LockoutTracker) RecordFailure(identifier string) LockoutStatus {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	key := store.LockoutKey(identifier)

	rec, _ := t.load(key)
	rec.Attempts++
	rec.LastAttemptAt = now.UnixMilli()
	t.persist(key, rec)

	st := LockoutStatus{
		Attempts:  rec.Attempts,
		Remaining: t.maxAttempts - rec.Attempts,
	}
	if rec.Attempts >= t.maxAttempts {
		st.Locked = true
		st.RetryAt = now.Add(t.duration)
		st.Wait = t.duration
		if rec.Attempts == t.maxAttempts {
			t.logger.Warn("账户触发登录锁定",
				zap.String("identifier", identifier),
				zap.Int("attempts", rec.Attempts),
				zap.Time("retry_at", st.RetryAt))
		}
	}
	return st
}

/*
ClearOnSuccess 登录成功后无条件清除失败计数
*/
func (t *LockoutTracker) ClearOnSuccess(identifier string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.store.Delete(store.LockoutKey(identifier))
}

/* load 读取并解码记录，不存在或损坏时返回零值 */
func (t *LockoutTracker) load(key string) (lockoutRecord, bool) {
	data, ok := t.store.Get(key)
	if !ok {
		return lockoutRecord{}, false
	}
	var rec lockoutRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		t.logger.Warn("锁定记录损坏，已重置", zap.String("key", key), zap.Error(err))
		return lockoutRecord{}, false
	}
	return rec, true
}

/* persist 以锁定时长为 TTL 写入——距最后一次失败满一个锁定周期后记录自然消失 */
func (t *LockoutTracker) persist(key string, rec lockoutRecord) {
	data, err := json.Marshal(rec)
	if err != nil {
		t.logger.Error("锁定记录序列化失败", zap.Error(err))
		return
	}
	t.store.Set(key, data, t.duration)
}
