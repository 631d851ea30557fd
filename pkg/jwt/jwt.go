package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/xiebiao/books-orders/pkg/errors"
)

// Manager 管理租户运维接口使用的管理Token
// 设计说明：
// 1. 本服务没有终端用户账号体系，JWT只用于保护租户bootstrap等运维接口
// 2. 单Token机制（HS256签名），由运维侧离线签发
// 3. Subject记录操作者标识，进审计日志
type Manager struct {
	secret string        // 签名密钥
	expire time.Duration // Token有效期
}

// NewManager 创建JWT管理器
func NewManager(secret string, expire time.Duration) *Manager {
	return &Manager{
		secret: secret,
		expire: expire,
	}
}

// Claims 管理Token的Claims
// 嵌入jwt.RegisteredClaims获取标准字段（exp、iat、nbf等）
type Claims struct {
	Role string `json:"role"` // 固定为"admin"
	jwt.RegisteredClaims
}

// GenerateToken 签发管理Token
// operator为操作者标识（写入Subject）
func (m *Manager) GenerateToken(operator string) (string, error) {
	now := time.Now()

	claims := Claims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expire)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "books-orders",
			Subject:   operator,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(m.secret))
	if err != nil {
		return "", apperrors.Wrap(err, "签发管理Token失败")
	}
	return signed, nil
}

// VerifyToken 校验管理Token
// 返回解析后的Claims；签名错误、过期、角色不符都返回业务错误
func (m *Manager) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		// 限定签名算法，防止alg=none攻击
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperrors.ErrInvalidToken
		}
		return []byte(m.secret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrInvalidToken
	}

	if !token.Valid || claims.Role != "admin" {
		return nil, apperrors.ErrInvalidToken
	}

	return claims, nil
}
