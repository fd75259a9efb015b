package service

import (
	"errors"
	"fmt"
	"regexp"

	"adminbase/backend/internal/db/dao"
	"adminbase/backend/internal/db/models"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

/* bcryptCost 密码散列成本因子 */
const bcryptCost = 12

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,32}$`)
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	upperPattern    = regexp.MustCompile(`[A-Z]`)
	lowerPattern    = regexp.MustCompile(`[a-z]`)
	digitPattern    = regexp.MustCompile(`\d`)
)

/*
HashPassword 生成密码散列
*/
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("密码散列失败: %w", err)
	}
	return string(hash), nil
}

/*
CheckPassword 校验明文密码与散列是否匹配
*/
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

/*
ValidatePasswordStrength 校验密码强度
功能：长度不低于 minLength（<=0 时按 8），且必须同时包含大小写字母和数字
*/
func ValidatePasswordStrength(password string, minLength int) error {
	if minLength <= 0 {
		minLength = 8
	}
	if len(password) < minLength {
		return fmt.Errorf("密码长度至少%d位", minLength)
	}
	if !upperPattern.MatchString(password) || !lowerPattern.MatchString(password) || !digitPattern.MatchString(password) {
		return errors.New("密码必须包含大小写字母和数字")
	}
	return nil
}

/*
ValidateUsername 校验用户名格式（3-32位字母、数字、下划线）
*/
func ValidateUsername(username string) error {
	if !usernamePattern.MatchString(username) {
		return errors.New("用户名须为3-32位字母、数字或下划线")
	}
	return nil
}

/*
ValidateEmail 校验邮箱格式
*/
func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return errors.New("邮箱格式不正确")
	}
	return nil
}

/* ==================== 用户管理 ==================== */

/*
UserService 用户管理（管理端）
功能：用户 CRUD 与角色分配。角色变更会联动失效权限缓存并
吊销该用户的全部刷新令牌，使权限收紧立即生效。
*/
type UserService struct {
	dao    *dao.DAO
	perms  *PermissionService
	tokens *TokenService
	logger *zap.Logger
}

/*
NewUserService 创建用户管理服务
*/
func NewUserService(d *dao.DAO, perms *PermissionService, tokens *TokenService) *UserService {
	return &UserService{
		dao:    d,
		perms:  perms,
		tokens: tokens,
		logger: zap.L().Named("user"),
	}
}

/*
CreateUserInput 创建用户入参
*/
type CreateUserInput struct {
	Username string
	Email    string
	Password string
	Nickname string
	Phone    string
	Status   int
	RoleIDs  []string
}

/*
List 分页列出用户（可按关键字模糊匹配用户名/昵称/邮箱）
*/
func (s *UserService) List(page, pageSize int, keyword string) ([]models.User, int64, error) {
	page, pageSize = dao.SanitizePagination(page, pageSize, 100)
	return s.dao.ListUsers(page, pageSize, keyword)
}

/*
Get 获取单个用户（含角色）
*/
func (s *UserService) Get(id string) (*models.User, error) {
	user, err := s.dao.GetUserWithRoles(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserUnavailable
	}
	return user, nil
}

/*
Create 创建用户并分配角色
*/
func (s *UserService) Create(input CreateUserInput) (*models.User, error) {
	if err := ValidateUsername(input.Username); err != nil {
		return nil, err
	}
	if err := ValidateEmail(input.Email); err != nil {
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
		Phone:    input.Phone,
		Status:   input.Status,
	}
	if err := s.dao.CreateUser(user); err != nil {
		return nil, err
	}

	if len(input.RoleIDs) > 0 {
		if err := s.dao.SetUserRoles(user.ID, input.RoleIDs); err != nil {
			return nil, err
		}
	}

	s.logger.Info("用户已创建", zap.String("id", user.ID), zap.String("username", user.Username))
	return user, nil
}

/*
Update 更新用户基本信息
*/
func (s *UserService) Update(id string, fields map[string]interface{}) error {
	user, err := s.dao.GetUser(id)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserUnavailable
	}
	return s.dao.UpdateUserFields(id, fields)
}

/*
SetStatus 启用/禁用用户
功能：禁用时吊销其全部刷新令牌，已签发的会话不能继续续期
*/
func (s *UserService) SetStatus(id string, status int) error {
	if err := s.dao.UpdateUserFields(id, map[string]interface{}{"status": status}); err != nil {
		return err
	}
	if status != models.StatusEnabled {
		revoked := s.tokens.RevokeAllForUser(id)
		s.logger.Info("用户已禁用", zap.String("id", id), zap.Int("revoked_tokens", revoked))
	}
	return nil
}

/*
SetRoles 重设用户的角色
功能：成功后失效该用户的权限缓存
*/
func (s *UserService) SetRoles(userID string, roleIDs []string) error {
	if err := s.dao.SetUserRoles(userID, roleIDs); err != nil {
		return err
	}
	s.perms.InvalidateUser(userID)
	return nil
}

/*
ResetPassword 管理员重置用户密码
功能：重置后吊销该用户全部刷新令牌
*/
func (s *UserService) ResetPassword(userID, password string, minLength int) error {
	if err := ValidatePasswordStrength(password, minLength); err != nil {
		return err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	if err := s.dao.UpdateUserFields(userID, map[string]interface{}{"password": hash}); err != nil {
		return err
	}
	s.tokens.RevokeAllForUser(userID)
	return nil
}

/*
Delete 删除用户并清理角色关联、会话与缓存
*/
func (s *UserService) Delete(id string) error {
	if err := s.dao.DeleteUser(id); err != nil {
		return err
	}
	s.tokens.RevokeAllForUser(id)
	s.perms.InvalidateUser(id)
	s.logger.Info("用户已删除", zap.String("id", id))
	return nil
}
