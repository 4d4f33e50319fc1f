package jwtmw

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ContextClaims はGinコンテキストに検証済みクレームを格納するキーです。
const ContextClaims = "claims"

// Verifier はトークン検証のインターフェースです。
type Verifier interface {
	Verify(token string) (*Claims, error)
}

// AuthRequired はBearerトークンを検証し、認証済みリクエストのみを通過させるGinミドルウェアを返します。
// 検証に成功するとクレームをコンテキストに格納します。ハンドラーはClaimsFromで取得します。
func AuthRequired(v Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Authorizationヘッダーを取得
		tokenStr, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		// 2. 署名と有効期限を検証
		claims, err := v.Verify(tokenStr)
		if err != nil {
			slog.Warn("token rejected", "error", err, "path", c.FullPath(), "remote_addr", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		// 3. クレームを格納して次へ
		c.Set(ContextClaims, claims)
		c.Next()
	}
}

// ClaimsFrom はAuthRequiredが格納したクレームを返します。
func ClaimsFrom(c *gin.Context) (*Claims, bool) {
	v, ok := c.Get(ContextClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok
}

// bearerToken はAuthorizationヘッダーからトークンを取り出します。
// スキーム名は大文字小文字を区別しません（RFC 7235）。
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
