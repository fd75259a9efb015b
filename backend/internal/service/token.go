package service

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"adminbase/backend/internal/db/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

/*
AccessClaims 访问令牌载荷
功能：自包含凭证，仅靠签名+有效期校验，不查服务端状态
*/
type AccessClaims struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

/*
RefreshClaims 刷新令牌载荷
功能：type 固定为 "refresh"，防止访问令牌冒充刷新令牌
*/
type RefreshClaims struct {
	UserID string `json:"userId"`
	Type   string `json:"type"`
	jwt.RegisteredClaims
}

const refreshTokenType = "refresh"

/* TokenPair 一次签发的令牌对 */
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

/* refreshEntry 吊销索引中的条目 */
type refreshEntry struct {
	UserID    string
	ExpiresAt time.Time
}

/* UserLookup 刷新时重新核验用户的注入查询 */
type UserLookup func(userID string) (*models.User, error)

/*
TokenService 令牌服务
功能：签发、校验、轮换、吊销访问/刷新令牌对。
访问令牌无状态；刷新令牌除自身签名外还须命中服务端吊销索引——
删除索引条目即吊销，无需令牌本身过期。
索引大小受活跃会话数约束，过期条目由后台每小时清扫。
*/
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration

	mu    sync.Mutex
	index map[string]refreshEntry

	stopChan chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

/*
NewTokenService 创建令牌服务并启动索引清扫
功能：accessTTL/refreshTTL <= 0 分别回落为 2 小时 / 7 天，
sweepInterval <= 0 回落为 1 小时
*/
func NewTokenService(secret string, accessTTL, refreshTTL, sweepInterval time.Duration) *TokenService {
	if accessTTL <= 0 {
		accessTTL = 2 * time.Hour
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	if sweepInterval <= 0 {
		sweepInterval = time.Hour
	}

	s := &TokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		index:      make(map[string]refreshEntry),
		stopChan:   make(chan struct{}),
		logger:     zap.L().Named("token"),
	}
	go s.sweepLoop(sweepInterval)
	return s
}

/*
IssuePair 为用户签发访问+刷新令牌对
功能：刷新令牌同时登记进吊销索引
*/
func (s *TokenService) IssuePair(userID, username string) (*TokenPair, error) {
	access, err := s.issueAccess(userID, username)
	if err != nil {
		return nil, err
	}

	/*
		jti 保证每个刷新令牌全局唯一：iat/exp 只有秒级精度，
		同一秒内为同一用户签发的两个令牌否则会是相同字符串，
		在索引中塌缩成一条——吊销一个会话连带杀掉另一个。
	*/
	now := time.Now()
	refreshClaims := RefreshClaims{
		UserID: userID,
		Type:   refreshTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshTTL)),
		},
	}
	refresh, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("签发刷新令牌失败: %w", err)
	}

	s.mu.Lock()
	s.index[refresh] = refreshEntry{UserID: userID, ExpiresAt: now.Add(s.refreshTTL)}
	s.mu.Unlock()

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

/*
VerifyAccess 校验访问令牌
功能：纯签名+有效期检查，不触碰索引——每个认证请求的热路径
*/
func (s *TokenService) VerifyAccess(token string) (*AccessClaims, error) {
	var claims AccessClaims
	if err := s.parse(token, &claims); err != nil {
		return nil, err
	}
	return &claims, nil
}

/*
VerifyRefresh 校验刷新令牌
功能：签名+有效期+类型检查，再加吊销索引成员检查，缺一不可
*/
func (s *TokenService) VerifyRefresh(token string) (*RefreshClaims, error) {
	var claims RefreshClaims
	if err := s.parse(token, &claims); err != nil {
		return nil, err
	}
	if claims.Type != refreshTokenType {
		return nil, ErrTokenInvalid
	}

	s.mu.Lock()
	entry, ok := s.index[token]
	if ok && time.Now().After(entry.ExpiresAt) {
		delete(s.index, token)
		ok = false
	}
	s.mu.Unlock()

	if !ok {
		return nil, ErrTokenRevoked
	}
	return &claims, nil
}

/*
Rotate 用刷新令牌换发新的访问令牌
功能：校验刷新令牌后必须经注入查询重新核验用户——
已禁用/已删除的用户即使持有结构上有效的刷新令牌也不能续期。
用户核验失败时顺手吊销该刷新令牌，使其永远不能再次尝试。
*/
func (s *TokenService) Rotate(refreshToken string, lookup UserLookup) (string, *models.User, error) {
	claims, err := s.VerifyRefresh(refreshToken)
	if err != nil {
		return "", nil, err
	}

	user, err := lookup(claims.UserID)
	if err != nil {
		return "", nil, fmt.Errorf("刷新时查询用户失败: %w", err)
	}
	if user == nil || user.Status != models.StatusEnabled {
		s.Revoke(refreshToken)
		return "", nil, ErrUserUnavailable
	}

	access, err := s.issueAccess(user.ID, user.Username)
	if err != nil {
		return "", nil, err
	}
	return access, user, nil
}

/*
Revoke 吊销单个刷新令牌
*/
func (s *TokenService) Revoke(token string) {
	s.mu.Lock()
	delete(s.index, token)
	s.mu.Unlock()
}

/*
RevokeAllForUser 吊销用户的全部刷新令牌
功能：全表扫描，索引大小受活跃会话数约束，仅在改密/禁用等
低频管理操作时调用。返回吊销的条目数。
*/
func (s *TokenService) RevokeAllForUser(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	revoked := 0
	for token, entry := range s.index {
		if entry.UserID == userID {
			delete(s.index, token)
			revoked++
		}
	}
	return revoked
}

/* ActiveSessions 返回用户当前未吊销的刷新令牌数 */
func (s *TokenService) ActiveSessions(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	count := 0
	for _, entry := range s.index {
		if entry.UserID == userID && now.Before(entry.ExpiresAt) {
			count++
		}
	}
	return count
}

/*
Close 停止后台清扫
*/
func (s *TokenService) Close() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
}

func (s *TokenService) issueAccess(userID, username string) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("签发访问令牌失败: %w", err)
	}
	return token, nil
}

/* parse 统一解析入口，把 jwt 库错误归并为内部错误类别 */
func (s *TokenService) parse(token string, claims jwt.Claims) error {
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("不支持的签名算法: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return ErrTokenInvalid
	}
	if !parsed.Valid {
		return ErrTokenInvalid
	}
	return nil
}

/* sweepLoop 周期清理索引中已过期的刷新令牌 */
func (s *TokenService) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			s.mu.Lock()
			for token, entry := range s.index {
				if now.After(entry.ExpiresAt) {
					delete(s.index, token)
				}
			}
			s.mu.Unlock()
		case <-s.stopChan:
			return
		}
	}
}
