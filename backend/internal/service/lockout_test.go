package service

import (
	"testing"
	"time"

	"adminbase/backend/internal/store"
)

func newTestLockout(maxAttempts int, duration time.Duration) (*LockoutTracker, *store.MemoryStore) {
	s := store.NewMemoryStore(0)
	return NewLockoutTracker(s, maxAttempts, duration), s
}

/*
TestLockout_Threshold 恰好达到阈值才锁定
*/
func TestLockout_Threshold(t *testing.T) {
	tracker, s := newTestLockout(5, time.Minute)
	defer s.Destroy()

	for i := 1; i <= 4; i++ {
		st := tracker.RecordFailure("alice")
		if st.Locked {
			t.Fatalf("第 %d 次失败不应锁定", i)
		}
		if st.Remaining != 5-i {
			t.Errorf("第 %d 次失败后剩余次数期望 %d, 实际 %d", i, 5-i, st.Remaining)
		}
	}

	st := tracker.RecordFailure("alice")
	if !st.Locked {
		t.Fatal("第 5 次失败应锁定")
	}
	if st.Remaining != 0 {
		t.Errorf("锁定时剩余次数应为 0, 实际 %d", st.Remaining)
	}
	if !tracker.IsLocked("alice") {
		t.Error("IsLocked 应为 true")
	}
}

/*
TestLockout_ClearOnSuccess 成功登录清零计数
*/
func TestLockout_ClearOnSuccess(t *testing.T) {
	tracker, s := newTestLockout(5, time.Minute)
	defer s.Destroy()

	for i := 0; i < 4; i++ {
		tracker.RecordFailure("alice")
	}
	tracker.ClearOnSuccess("alice")

	st := tracker.RecordFailure("alice")
	if st.Attempts != 1 {
		t.Errorf("清零后计数应从 1 开始, 实际 %d", st.Attempts)
	}
	if st.Locked {
		t.Error("清零后的单次失败不应锁定")
	}
}

/*
TestLockout_ExpiryRestartsClean 锁定到期后计数归零而非延续
*/
func TestLockout_ExpiryRestartsClean(t *testing.T) {
	tracker, s := newTestLockout(3, 50*time.Millisecond)
	defer s.Destroy()

	for i := 0; i < 3; i++ {
		tracker.RecordFailure("alice")
	}
	if !tracker.IsLocked("alice") {
		t.Fatal("达到阈值应锁定")
	}

	time.Sleep(80 * time.Millisecond)

	if tracker.IsLocked("alice") {
		t.Fatal("锁定到期应自动解除")
	}

	st := tracker.RecordFailure("alice")
	if st.Attempts != 1 {
		t.Errorf("到期后失败计数应从 1 重新开始, 实际 %d", st.Attempts)
	}
}

/*
TestLockout_WindowFollowsLastFailure 锁定窗口以最后一次失败为起点
*/
func TestLockout_WindowFollowsLastFailure(t *testing.T) {
	tracker, s := newTestLockout(2, 60*time.Millisecond)
	defer s.Destroy()

	tracker.RecordFailure("alice")
	time.Sleep(40 * time.Millisecond)
	st := tracker.RecordFailure("alice")
	if !st.Locked {
		t.Fatal("第 2 次失败应锁定")
	}

	// 距第一次失败已超 60ms，但距最后一次失败未超，仍应锁定
	time.Sleep(40 * time.Millisecond)
	if !tracker.IsLocked("alice") {
		t.Error("窗口应从最后一次失败起算")
	}

	time.Sleep(40 * time.Millisecond)
	if tracker.IsLocked("alice") {
		t.Error("距最后一次失败满时长后应解锁")
	}
}

/*
TestLockout_IndependentIdentifiers 不同账户互不影响
*/
func TestLockout_IndependentIdentifiers(t *testing.T) {
	tracker, s := newTestLockout(2, time.Minute)
	defer s.Destroy()

	tracker.RecordFailure("alice")
	tracker.RecordFailure("alice")

	if !tracker.IsLocked("alice") {
		t.Fatal("alice 应锁定")
	}
	if tracker.IsLocked("bob") {
		t.Error("bob 不应受 alice 影响")
	}
}

/*
TestLockout_CheckDoesNotMutate 查询不改变计数
*/
func TestLockout_CheckDoesNotMutate(t *testing.T) {
	tracker, s := newTestLockout(5, time.Minute)
	defer s.Destroy()

	tracker.RecordFailure("alice")
	for i := 0; i < 10; i++ {
		tracker.Check("alice")
	}

	st := tracker.Check("alice")
	if st.Attempts != 1 {
		t.Errorf("Check 不应改变计数, 期望 1, 实际 %d", st.Attempts)
	}
}
