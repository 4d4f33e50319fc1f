// Package jwtmw はJWTアクセストークンの発行・検証と、ルート保護用のGinミドルウェアを提供します。
package jwtmw

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL はアクセストークンの有効期間です。
const DefaultTTL = time.Hour

// ErrInvalidToken は署名不一致・形式不正・期限切れなど、検証に失敗したトークンを表します。
var ErrInvalidToken = errors.New("invalid token")

// Claims はトークンに埋め込まれるペイロードです。
// Subjectにユーザーを、Emailに発行時点のメールアドレスを保持します。
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Manager はHS256で署名されたトークンを発行・検証します。
// 状態を持たないため複数のgoroutineから安全に利用できます。
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewManager は指定されたシークレットと有効期間でManagerを生成します。
// ttlが0以下の場合はDefaultTTLを使用します。
func NewManager(secret string, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue は指定されたユーザーの署名済みトークンを生成します。
func (m *Manager) Issue(subjectID, email string) (string, error) {
	now := m.now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify は署名と有効期限を検証し、埋め込まれたクレームを返します。
// 失敗時は常にErrInvalidTokenをラップしたエラーを返します。
func (m *Manager) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		// HMAC以外（none含む）は拒否
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	},
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
