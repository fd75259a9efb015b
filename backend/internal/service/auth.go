package service

import (
	"fmt"
	"time"

	"adminbase/backend/internal/db/dao"
	"adminbase/backend/internal/db/models"

	"go.uber.org/zap"
)

/*
AuthService 认证流程编排
功能：登录、注册、令牌续期、登出与个人资料维护。
登录路径的顺序是契约：先查锁定（锁定账户不浪费昂贵的密码校验，
也避免计时侧信道探测账户），核验之后才更新计数——失败递增、成功清零。
*/
type AuthService struct {
	dao      *dao.DAO
	tokens   *TokenService
	lockout  *LockoutTracker
	pwMinLen int
	logger   *zap.Logger
}

/*
NewAuthService 创建认证服务
*/
func NewAuthService(d *dao.DAO, tokens *TokenService, lockout *LockoutTracker, passwordMinLength int) *AuthService {
	return &AuthService{
		dao:      d,
		tokens:   tokens,
		lockout:  lockout,
		pwMinLen: passwordMinLength,
		logger:   zap.L().Named("auth"),
	}
}

/*
LoginResult 登录成功的返回
*/
type LoginResult struct {
	AccessToken  string       `json:"token"`
	RefreshToken string       `json:"refreshToken"`
	User         *models.User `json:"user"`
}

/*
RegisterInput 注册入参
*/
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Nickname string
}

/*
Login 账号密码登录
功能：identifier 为用户名或邮箱。锁定检查在一切之前；
未知用户与密码错误同样记入失败计数（防止枚举账户绕过锁定）。
*/
func (s *AuthService) Login(identifier, password string) (*LoginResult, error) {
	if st := s.lockout.Check(identifier); st.Locked {
		return nil, fmt.Errorf("%w，请%d分钟后再试", ErrAccountLocked, retryMinutes(st.Wait))
	}

	user, err := s.dao.GetUserByIdentifier(identifier)
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.lockout.RecordFailure(identifier)
		return nil, ErrInvalidCredentials
	}

	if user.Status != models.StatusEnabled {
		return nil, ErrAccountDisabled
	}

	if !CheckPassword(user.Password, password) {
		st := s.lockout.RecordFailure(identifier)
		if st.Locked {
			return nil, fmt.Errorf("%w，请%d分钟后再试", ErrAccountLocked, retryMinutes(st.Wait))
		}
		return nil, fmt.Errorf("%w，还剩%d次尝试机会", ErrInvalidCredentials, st.Remaining)
	}

	s.lockout.ClearOnSuccess(identifier)

	pair, err := s.tokens.IssuePair(user.ID, user.Username)
	if err != nil {
		return nil, err
	}

	if err := s.dao.UpdateUserLastLogin(user.ID); err != nil {
		s.logger.Warn("更新最后登录时间失败", zap.String("user_id", user.ID), zap.Error(err))
	}

	// 登录响应带角色信息，前端据此初始化界面
	full, err := s.dao.GetUserWithRoles(user.ID)
	if err != nil || full == nil {
		full = user
	}

	s.logger.Info("用户登录成功", zap.String("user_id", user.ID), zap.String("username", user.Username))
	return &LoginResult{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         full,
	}, nil
}

/*
Refresh 用刷新令牌换发新的访问令牌
功能：用户核验经注入查询委托给令牌服务完成
*/
func (s *AuthService) Refresh(refreshToken string) (string, *models.User, error) {
	return s.tokens.Rotate(refreshToken, s.dao.GetUser)
}

/*
Logout 登出，吊销本次会话的刷新令牌
*/
func (s *AuthService) Logout(refreshToken string) {
	if refreshToken != "" {
		s.tokens.Revoke(refreshToken)
	}
}

/*
Register 注册新用户
*/
func (s *AuthService) Register(input RegisterInput) (*models.User, error) {
	if err := ValidateUsername(input.Username); err != nil {
		return nil, err
	}
	if err := ValidateEmail(input.Email); err != nil {
		return nil, err
	}
	if err := ValidatePasswordStrength(input.Password, s.pwMinLen); err != nil {
		return nil, err
	}

	if existing, err := s.dao.GetUserByUsername(input.Username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrUserExists
	}
	if existing, err := s.dao.GetUserByEmail(input.Email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrUserExists
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	nickname := input.Nickname
	if nickname == "" {
		nickname = input.Username
	}
	user := &models.User{
		Username: input.Username,
		Email:    input.Email,
		Password: hash,
		Nickname: nickname,
		Status:   models.StatusEnabled,
	}
	if err := s.dao.CreateUser(user); err != nil {
		return nil, err
	}

	s.logger.Info("新用户注册", zap.String("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

/*
Profile 获取当前用户资料（含角色）
*/
func (s *AuthService) Profile(userID string) (*models.User, error) {
	user, err := s.dao.GetUserWithRoles(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserUnavailable
	}
	return user, nil
}

/*
UpdateProfile 更新当前用户的昵称/手机号/头像
*/
func (s *AuthService) UpdateProfile(userID, nickname, phone, avatar string) (*models.User, error) {
	fields := map[string]interface{}{}
	if nickname != "" {
		fields["nickname"] = nickname
	}
	if phone != "" {
		fields["phone"] = phone
	}
	if avatar != "" {
		fields["avatar"] = avatar
	}
	if len(fields) > 0 {
		if err := s.dao.UpdateUserFields(userID, fields); err != nil {
			return nil, err
		}
	}
	return s.Profile(userID)
}

/*
ChangePassword 修改当前用户密码
功能：原密码必须正确且新密码不得与原密码相同；
成功后吊销该用户全部刷新令牌，其他已登录会话随之失效
*/
func (s *AuthService) ChangePassword(userID, oldPassword, newPassword string) error {
	if err := ValidatePasswordStrength(newPassword, s.pwMinLen); err != nil {
		return err
	}

	user, err := s.dao.GetUser(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserUnavailable
	}

	if !CheckPassword(user.Password, oldPassword) {
		return ErrPasswordMismatch
	}
	if CheckPassword(user.Password, newPassword) {
		return ErrPasswordUnchanged
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.dao.UpdateUserFields(userID, map[string]interface{}{"password": hash}); err != nil {
		return err
	}

	revoked := s.tokens.RevokeAllForUser(userID)
	s.logger.Info("用户修改密码", zap.String("user_id", userID), zap.Int("revoked_tokens", revoked))
	return nil
}

func retryMinutes(wait time.Duration) int {
	minutes := int(wait.Minutes())
	if wait > time.Duration(minutes)*time.Minute {
		minutes++
	}
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}
