// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"bookshelf_backend/internal/feature/auth/domain/entity"
	"bookshelf_backend/internal/feature/auth/transport/http/dto"
	"bookshelf_backend/internal/feature/auth/usecase"
	"bookshelf_backend/internal/platform/http/response"
	jwtmw "bookshelf_backend/internal/platform/jwt"
)

// AuthUsecase は認証操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	// Signup は新規ユーザーを登録し、保存されたユーザーを返します。
	Signup(ctx context.Context, name, email, password string) (*entity.User, error)
	// Login はユーザーを認証し、成功時にトークンを返します。
	Login(ctx context.Context, email, password string) (string, error)
}

// AuthHandler は認証操作のHTTPリクエストを処理します。
type AuthHandler struct {
	auth AuthUsecase
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
func NewAuthHandler(auth AuthUsecase) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Signup は POST /user を処理します。
// - バリデーションエラー時は400を返却
// - メール重複時は409を返却
// - 成功時はパスワードを含まないユーザーを201で返却
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("signup validation failed", "error", err, "remote_addr", c.ClientIP())
		response.ValidationFailed(c, err)
		return
	}

	user, err := h.auth.Signup(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, usecase.ErrEmailAlreadyExists) {
			slog.Warn("signup rejected", "error", err, "email", req.Email, "remote_addr", c.ClientIP())
			response.Error(c, http.StatusConflict, "email already registered")
			return
		}
		slog.Error("signup failed", "error", err, "email", req.Email)
		response.Internal(c)
		return
	}

	slog.Info("user signup successful", "email", req.Email, "remote_addr", c.ClientIP())
	c.JSON(http.StatusCreated, dto.NewUserRes(user))
}

// Login は POST /login を処理します。
// 未登録のメールと誤ったパスワードは同じ401を返します。
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("login validation failed", "error", err, "remote_addr", c.ClientIP())
		response.ValidationFailed(c, err)
		return
	}

	token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidCredentials) {
			// ユーザー列挙攻撃を防止するため、実際のエラーを公開しない
			slog.Warn("login failed", "email", req.Email, "remote_addr", c.ClientIP())
			response.Error(c, http.StatusUnauthorized, usecase.ErrInvalidCredentials.Error())
			return
		}
		slog.Error("login failed", "error", err, "email", req.Email)
		response.Internal(c)
		return
	}

	slog.Info("user login successful", "email", req.Email, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.TokenRes{Token: token})
}

// Profile は GET /profile を処理します。
// ストアは参照せず、ミドルウェアが検証したクレームをそのまま返します。
func (h *AuthHandler) Profile(c *gin.Context) {
	claims, ok := jwtmw.ClaimsFrom(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "missing bearer token")
		return
	}
	c.JSON(http.StatusOK, claims)
}
