package service

import (
	"errors"
	"testing"
	"time"

	"adminbase/backend/internal/db/models"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret-for-token-service"

func newTestTokenService() *TokenService {
	return NewTokenService(testSecret, 2*time.Hour, 7*24*time.Hour, time.Hour)
}

func enabledUser(id, username string) *models.User {
	u := &models.User{Username: username, Status: models.StatusEnabled}
	u.ID = id
	return u
}

/*
TestToken_IssueAndVerifyAccess 签发后访问令牌可校验且载荷完整
*/
func TestToken_IssueAndVerifyAccess(t *testing.T) {
	svc := newTestTokenService()
	defer svc.Close()

	pair, err := svc.IssuePair("u1", "alice")
	if err != nil {
		t.Fatalf("IssuePair 失败: %v", err)
	}

	claims, err := svc.VerifyAccess(pair.AccessToken)
	if err != nil {
		t.Fatalf("VerifyAccess 失败: %v", err)
	}
	if claims.UserID != "u1" || claims.Username != "alice" {
		t.Errorf("载荷不符: %+v", claims)
	}
}

/*
TestToken_VerifyAccessRejectsGarbage 签名错误与格式损坏归为无效
*/
func TestToken_VerifyAccessRejectsGarbage(t *testing.T) {
	svc := newTestTokenService()
	defer svc.Close()

	if _, err := svc.VerifyAccess("not-a-token"); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("损坏令牌期望 ErrTokenInvalid, 实际 %v", err)
	}

	other := NewTokenService("different-secret", time.Hour, time.Hour, time.Hour)
	defer other.Close()
	pair, _ := other.IssuePair("u1", "alice")

	if _, err := svc.VerifyAccess(pair.AccessToken); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("错误密钥签名期望 ErrTokenInvalid, 实际 %v", err)
	}
}

/*
TestToken_VerifyAccessExpired 过期令牌归为独立错误类别
*/
func TestToken_VerifyAccessExpired(t *testing.T) {
	svc := newTestTokenService()
	defer svc.Close()

	claims := AccessClaims{
		UserID:   "u1",
		Username: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("构造过期令牌失败: %v", err)
	}

	if _, err := svc.VerifyAccess(expired); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("期望 ErrTokenExpired, 实际 %v", err)
	}
}

/*
TestToken_VerifyRefreshRequiresIndex 吊销后签名仍有效的刷新令牌被拒
*/
func TestToken_VerifyRefreshRequiresIndex(t *testing.T) {
	svc := newTestTokenService()
	defer svc.Close()

	pair, _ := svc.IssuePair("u1", "alice")

	if _, err := svc.VerifyRefresh(pair.RefreshToken); err != nil {
		t.Fatalf("吊销前校验应通过: %v", err)
	}

	svc.Revoke(pair.RefreshToken)

	if _, err := svc.VerifyRefresh(pair.RefreshToken); !errors.Is(err, ErrTokenRevoked) {
		t.Errorf("吊销后期望 ErrTokenRevoked, 实际 %v", err)
	}
}

/*
TestToken_ConcurrentPairsAreIndependent 同一用户紧邻签发的令牌对互不干扰
功能：jwt 时间戳只有秒级精度，同一秒内签发的两个刷新令牌
必须仍是不同字符串（各占一条索引），吊销其一不影响另一个会话
*/
func TestToken_ConcurrentPairsAreIndependent(t *testing.T) {
	svc := newTestTokenService()
	defer svc.Close()

	first, err := svc.IssuePair("u1", "alice")
	if err != nil {
		t.Fatalf("签发失败: %v", err)
	}
	second, err := svc.IssuePair("u1", "alice")
	if err != nil {
		t.Fatalf("签发失败: %v", err)
	}

	if first.RefreshToken == second.RefreshToken {
		t.Fatal("同一秒内签发的两个刷新令牌不应相同")
	}
	if got := svc.ActiveSessions("u1"); got != 2 {
		t.Fatalf("期望 2 个活跃会话, 实际 %d", got)
	}

	svc.Revoke(first.RefreshToken)

	if _, err := svc.VerifyRefresh(second.RefreshToken); err != nil {
		t.Errorf("吊销一个会话不应影响另一个: %v", err)
	}
}

/*
TestToken_VerifyRefreshRejectsAccessToken 访问令牌不能冒充刷新令牌
*/
func TestToken_VerifyRefreshRejectsAccessToken(t *testing.T) {
	svc := newTestTokenService()
	defer svc.Close()

	pair, _ := svc.IssuePair("u1", "alice")

	if _, err := svc.VerifyRefresh(pair.AccessToken); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("期望 ErrTokenInvalid, 实际 %v", err)
	}
}

/*
TestToken_Rotate 正常轮换返回新访问令牌
*/
func TestToken_Rotate(t *testing.T) {
	svc := newTestTokenService()
	defer svc.Close()

	pair, _ := svc.IssuePair("u1", "alice")

	access, user, err := svc.Rotate(pair.RefreshToken, func(id string) (*models.User, error) {
		if id != "u1" {
			t.Errorf("查询的用户ID期望 u1, 实际 %s", id)
		}
		return enabledUser("u1", "alice"), nil
	})
	if err != nil {
		t.Fatalf("Rotate 失败: %v", err)
	}
	if user.Username != "alice" {
		t.Errorf("返回用户不符: %+v", user)
	}

	claims, err := svc.VerifyAccess(access)
	if err != nil || claims.UserID != "u1" {
		t.Errorf("新访问令牌应可校验, err=%v claims=%+v", err, claims)
	}

	// 刷新令牌不轮换，可再次使用
	if _, _, err := svc.Rotate(pair.RefreshToken, func(string) (*models.User, error) {
		return enabledUser("u1", "alice"), nil
	}); err != nil {
		t.Errorf("刷新令牌应可重复使用: %v", err)
	}
}

/*
TestToken_RotateRevokesOnUnavailableUser 用户不可用时轮换失败并吊销令牌
*/
func TestToken_RotateRevokesOnUnavailableUser(t *testing.T) {
	svc := newTestTokenService()
	defer svc.Close()

	disabled := enabledUser("u1", "alice")
	disabled.Status = models.StatusDisabled

	cases := []struct {
		name   string
		lookup UserLookup
	}{
		{"用户已删除", func(string) (*models.User, error) { return nil, nil }},
		{"用户已禁用", func(string) (*models.User, error) { return disabled, nil }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pair, _ := svc.IssuePair("u1", "alice")

			if _, _, err := svc.Rotate(pair.RefreshToken, tc.lookup); !errors.Is(err, ErrUserUnavailable) {
				t.Fatalf("期望 ErrUserUnavailable, 实际 %v", err)
			}

			// 失败的轮换顺手吊销，之后永远不能再试
			if _, err := svc.VerifyRefresh(pair.RefreshToken); !errors.Is(err, ErrTokenRevoked) {
				t.Errorf("失败轮换后令牌应已吊销, 实际 %v", err)
			}
		})
	}
}

/*
TestToken_RevokeAllForUser 按用户批量吊销不波及他人
*/
func TestToken_RevokeAllForUser(t *testing.T) {
	svc := newTestTokenService()
	defer svc.Close()

	var alicePairs []*TokenPair
	for i := 0; i < 3; i++ {
		p, _ := svc.IssuePair("u1", "alice")
		alicePairs = append(alicePairs, p)
	}
	bobPair, _ := svc.IssuePair("u2", "bob")

	if n := svc.RevokeAllForUser("u1"); n != 3 {
		t.Errorf("期望吊销 3 条, 实际 %d", n)
	}

	for i, p := range alicePairs {
		if _, err := svc.VerifyRefresh(p.RefreshToken); !errors.Is(err, ErrTokenRevoked) {
			t.Errorf("alice 的第 %d 个刷新令牌应已吊销, 实际 %v", i, err)
		}
	}
	if _, err := svc.VerifyRefresh(bobPair.RefreshToken); err != nil {
		t.Errorf("bob 的刷新令牌不应受影响: %v", err)
	}
}

/*
TestToken_ActiveSessions 活跃会话计数
*/
func TestToken_ActiveSessions(t *testing.T) {
	svc := newTestTokenService()
	defer svc.Close()

	svc.IssuePair("u1", "alice")
	svc.IssuePair("u1", "alice")
	svc.IssuePair("u2", "bob")

	if n := svc.ActiveSessions("u1"); n != 2 {
		t.Errorf("u1 活跃会话期望 2, 实际 %d", n)
	}

	svc.RevokeAllForUser("u1")
	if n := svc.ActiveSessions("u1"); n != 0 {
		t.Errorf("吊销后活跃会话期望 0, 实际 %d", n)
	}
}

/*
TestToken_CloseIdempotent 重复关闭安全
*/
func TestToken_CloseIdempotent(t *testing.T) {
	svc := newTestTokenService()
	svc.Close()
	svc.Close()
}
