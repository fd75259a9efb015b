package service

import (
	"errors"
	"testing"
	"time"

	"adminbase/backend/internal/db/dao"
	"adminbase/backend/internal/db/models"
	"adminbase/backend/internal/store"
)

func newTestAuthService(t *testing.T) (*AuthService, *dao.DAO, *TokenService) {
	t.Helper()

	d := setupTestDAO(t)
	tokens := newTestTokenService()
	t.Cleanup(tokens.Close)

	lockStore := store.NewMemoryStore(0)
	t.Cleanup(lockStore.Destroy)
	lockout := NewLockoutTracker(lockStore, 5, 15*time.Minute)

	return NewAuthService(d, tokens, lockout, 8), d, tokens
}

func seedAuthUser(t *testing.T, d *dao.DAO, username, password string) *models.User {
	t.Helper()

	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("密码散列失败: %v", err)
	}
	user := &models.User{
		Username: username,
		Email:    username + "@test.local",
		Password: hash,
		Nickname: username,
		Status:   models.StatusEnabled,
	}
	if err := d.CreateUser(user); err != nil {
		t.Fatalf("写入用户失败: %v", err)
	}
	return user
}

/*
TestAuth_LoginSuccess 正确凭证返回令牌对与用户信息
*/
func TestAuth_LoginSuccess(t *testing.T) {
	auth, d, tokens := newTestAuthService(t)
	seedAuthUser(t, d, "alice", "Passw0rdA")

	result, err := auth.Login("alice", "Passw0rdA")
	if err != nil {
		t.Fatalf("登录失败: %v", err)
	}
	if result.User.Username != "alice" {
		t.Errorf("返回用户不符: %+v", result.User)
	}

	claims, err := tokens.VerifyAccess(result.AccessToken)
	if err != nil || claims.Username != "alice" {
		t.Errorf("访问令牌应可校验, err=%v", err)
	}
	if _, err := tokens.VerifyRefresh(result.RefreshToken); err != nil {
		t.Errorf("刷新令牌应已登记, err=%v", err)
	}
}

/*
TestAuth_LoginByEmail 邮箱也可作为登录标识
*/
func TestAuth_LoginByEmail(t *testing.T) {
	auth, d, _ := newTestAuthService(t)
	seedAuthUser(t, d, "alice", "Passw0rdA")

	if _, err := auth.Login("alice@test.local", "Passw0rdA"); err != nil {
		t.Errorf("邮箱登录失败: %v", err)
	}
}

/*
TestAuth_LoginWrongPassword 密码错误归为凭证无效
*/
func TestAuth_LoginWrongPassword(t *testing.T) {
	auth, d, _ := newTestAuthService(t)
	seedAuthUser(t, d, "alice", "Passw0rdA")

	_, err := auth.Login("alice", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials, 实际 %v", err)
	}
}

/*
TestAuth_UnknownUserCountsFailure 未知用户同样计入失败，防枚举绕过锁定
*/
func TestAuth_UnknownUserCountsFailure(t *testing.T) {
	auth, _, _ := newTestAuthService(t)

	for i := 0; i < 5; i++ {
		if _, err := auth.Login("ghost", "whatever"); err == nil {
			t.Fatal("未知用户登录不应成功")
		}
	}

	_, err := auth.Login("ghost", "whatever")
	if !errors.Is(err, ErrAccountLocked) {
		t.Errorf("未知用户累计失败后也应锁定, 实际 %v", err)
	}
}

/*
TestAuth_DisabledUser 禁用账户拒绝登录且不计入失败
*/
func TestAuth_DisabledUser(t *testing.T) {
	auth, d, _ := newTestAuthService(t)
	user := seedAuthUser(t, d, "alice", "Passw0rdA")
	if err := d.UpdateUserFields(user.ID, map[string]interface{}{"status": models.StatusDisabled}); err != nil {
		t.Fatal(err)
	}

	_, err := auth.Login("alice", "Passw0rdA")
	if !errors.Is(err, ErrAccountDisabled) {
		t.Errorf("期望 ErrAccountDisabled, 实际 %v", err)
	}
}

/*
TestAuth_LockoutScenario 连续 5 次错误密码锁定账户，正确密码也进不来
*/
func TestAuth_LockoutScenario(t *testing.T) {
	auth, d, _ := newTestAuthService(t)
	seedAuthUser(t, d, "alice", "Passw0rdA")

	var lastErr error
	for i := 0; i < 5; i++ {
		_, lastErr = auth.Login("alice", "wrong")
	}
	// 第 5 次失败的报错即锁定
	if !errors.Is(lastErr, ErrAccountLocked) {
		t.Fatalf("第 5 次失败期望 ErrAccountLocked, 实际 %v", lastErr)
	}

	// 第 6 次用正确密码仍被锁定挡住
	_, err := auth.Login("alice", "Passw0rdA")
	if !errors.Is(err, ErrAccountLocked) {
		t.Errorf("锁定期内正确密码也应被拒, 实际 %v", err)
	}
}

/*
TestAuth_SuccessClearsFailures 成功登录清零失败计数
*/
func TestAuth_SuccessClearsFailures(t *testing.T) {
	auth, d, _ := newTestAuthService(t)
	seedAuthUser(t, d, "alice", "Passw0rdA")

	for i := 0; i < 4; i++ {
		auth.Login("alice", "wrong")
	}
	if _, err := auth.Login("alice", "Passw0rdA"); err != nil {
		t.Fatalf("第 5 次前成功登录应放行: %v", err)
	}

	// 计数已清零，再失败 4 次也不会锁定
	for i := 0; i < 4; i++ {
		auth.Login("alice", "wrong")
	}
	if _, err := auth.Login("alice", "Passw0rdA"); err != nil {
		t.Errorf("清零后不应锁定: %v", err)
	}
}

/*
TestAuth_RefreshAndLogout 续期与登出
*/
func TestAuth_RefreshAndLogout(t *testing.T) {
	auth, d, _ := newTestAuthService(t)
	seedAuthUser(t, d, "alice", "Passw0rdA")

	result, err := auth.Login("alice", "Passw0rdA")
	if err != nil {
		t.Fatal(err)
	}

	access, user, err := auth.Refresh(result.RefreshToken)
	if err != nil {
		t.Fatalf("续期失败: %v", err)
	}
	if access == "" || user.Username != "alice" {
		t.Errorf("续期结果不符, access=%q user=%+v", access, user)
	}

	auth.Logout(result.RefreshToken)

	if _, _, err := auth.Refresh(result.RefreshToken); !errors.Is(err, ErrTokenRevoked) {
		t.Errorf("登出后续期期望 ErrTokenRevoked, 实际 %v", err)
	}
}

/*
TestAuth_RefreshDisabledUser 登录后被禁用的用户不能续期
*/
func TestAuth_RefreshDisabledUser(t *testing.T) {
	auth, d, _ := newTestAuthService(t)
	user := seedAuthUser(t, d, "alice", "Passw0rdA")

	result, err := auth.Login("alice", "Passw0rdA")
	if err != nil {
		t.Fatal(err)
	}

	if err := d.UpdateUserFields(user.ID, map[string]interface{}{"status": models.StatusDisabled}); err != nil {
		t.Fatal(err)
	}

	if _, _, err := auth.Refresh(result.RefreshToken); !errors.Is(err, ErrUserUnavailable) {
		t.Errorf("期望 ErrUserUnavailable, 实际 %v", err)
	}
	// 失败的续期顺手吊销了令牌
	if _, _, err := auth.Refresh(result.RefreshToken); !errors.Is(err, ErrTokenRevoked) {
		t.Errorf("二次续期期望 ErrTokenRevoked, 实际 %v", err)
	}
}

/*
TestAuth_Register 注册校验与重复检查
*/
func TestAuth_Register(t *testing.T) {
	auth, _, _ := newTestAuthService(t)

	user, err := auth.Register(RegisterInput{
		Username: "newuser",
		Email:    "new@test.local",
		Password: "Passw0rdA",
	})
	if err != nil {
		t.Fatalf("注册失败: %v", err)
	}
	if user.Nickname != "newuser" {
		t.Errorf("昵称应默认为用户名, 实际 %s", user.Nickname)
	}

	_, err = auth.Register(RegisterInput{
		Username: "newuser",
		Email:    "other@test.local",
		Password: "Passw0rdA",
	})
	if !errors.Is(err, ErrUserExists) {
		t.Errorf("重复用户名期望 ErrUserExists, 实际 %v", err)
	}

	_, err = auth.Register(RegisterInput{
		Username: "weakuser",
		Email:    "weak@test.local",
		Password: "short",
	})
	if err == nil {
		t.Error("弱密码应被拒绝")
	}
}

/*
TestAuth_ChangePassword 改密校验与会话吊销
*/
func TestAuth_ChangePassword(t *testing.T) {
	auth, d, _ := newTestAuthService(t)
	user := seedAuthUser(t, d, "alice", "Passw0rdA")

	result, err := auth.Login("alice", "Passw0rdA")
	if err != nil {
		t.Fatal(err)
	}

	if err := auth.ChangePassword(user.ID, "wrong", "NewPassw0rd"); !errors.Is(err, ErrPasswordMismatch) {
		t.Errorf("原密码错误期望 ErrPasswordMismatch, 实际 %v", err)
	}
	if err := auth.ChangePassword(user.ID, "Passw0rdA", "Passw0rdA"); !errors.Is(err, ErrPasswordUnchanged) {
		t.Errorf("新旧相同期望 ErrPasswordUnchanged, 实际 %v", err)
	}

	if err := auth.ChangePassword(user.ID, "Passw0rdA", "NewPassw0rd1"); err != nil {
		t.Fatalf("改密失败: %v", err)
	}

	// 旧会话全部吊销
	if _, _, err := auth.Refresh(result.RefreshToken); !errors.Is(err, ErrTokenRevoked) {
		t.Errorf("改密后旧刷新令牌期望 ErrTokenRevoked, 实际 %v", err)
	}

	if _, err := auth.Login("alice", "NewPassw0rd1"); err != nil {
		t.Errorf("新密码应可登录: %v", err)
	}
	if _, err := auth.Login("alice", "Passw0rdA"); err == nil {
		t.Error("旧密码不应再可用")
	}
}

/*
TestAuth_ValidatePasswordStrength 密码强度规则
*/
func TestAuth_ValidatePasswordStrength(t *testing.T) {
	cases := []struct {
		password string
		wantErr  bool
	}{
		{"Passw0rd", false},
		{"short1A", true},     /* 长度不足 */
		{"alllowercase1", true}, /* 无大写 */
		{"ALLUPPERCASE1", true}, /* 无小写 */
		{"NoDigitsHere", true},  /* 无数字 */
	}

	for _, tc := range cases {
		err := ValidatePasswordStrength(tc.password, 8)
		if (err != nil) != tc.wantErr {
			t.Errorf("密码 %q 期望出错=%v, 实际 %v", tc.password, tc.wantErr, err)
		}
	}
}
