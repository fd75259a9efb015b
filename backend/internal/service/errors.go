package service

import "errors"

/*
认证与会话运行时的错误类别。
调用方（HTTP 层）通过 errors.Is 按类别分支，再决定对外文案——
内部必须可区分（如 TokenExpired 与 TokenRevoked），
对外是否合并为统一提示由 handler 决定。
*/
var (
	/* ErrInvalidCredentials 用户名不存在或密码错误（本地可恢复，附剩余尝试次数提示） */
	ErrInvalidCredentials = errors.New("用户名或密码错误")

	/* ErrAccountLocked 连续失败达到阈值后的临时锁定，到期自动解除 */
	ErrAccountLocked = errors.New("账户已被锁定")

	/* ErrAccountDisabled 账户被管理员禁用 */
	ErrAccountDisabled = errors.New("账户已被禁用")

	/* ErrTokenInvalid 签名错误、格式损坏或类型不符的令牌 */
	ErrTokenInvalid = errors.New("令牌无效")

	/* ErrTokenExpired 签名正确但已过有效期的令牌 */
	ErrTokenExpired = errors.New("令牌已过期")

	/* ErrTokenRevoked 刷新令牌自身校验通过但已不在服务端索引中 */
	ErrTokenRevoked = errors.New("令牌已被吊销")

	/*
		ErrUserUnavailable 令牌有效但对应用户已删除或被禁用。
		与 ErrTokenInvalid 必须可区分："你的令牌没问题但账户没了"
		和"你的令牌是垃圾"是不同的失败。
	*/
	ErrUserUnavailable = errors.New("用户不存在或已被禁用")

	/* ErrUserExists 注册时用户名或邮箱已被占用 */
	ErrUserExists = errors.New("用户名或邮箱已存在")

	/* ErrPasswordMismatch 修改密码时原密码校验失败 */
	ErrPasswordMismatch = errors.New("原密码错误")

	/* ErrPasswordUnchanged 新密码与原密码相同 */
	ErrPasswordUnchanged = errors.New("新密码不能与原密码相同")
)
