// Package dto defines data transfer objects for the auth feature's HTTP transport layer.
package dto

import (
	"time"

	"bookshelf_backend/internal/feature/auth/domain/entity"
)

// SignupReq represents the request body for POST /user.
// bcrypt only reads the first 72 bytes, so longer passwords are rejected.
type SignupReq struct {
	Name     string `json:"nome" binding:"required,notblank"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,maxbytes=72"`
}

// UserRes is the user payload returned to clients. It has no password field.
type UserRes struct {
	ID        string    `json:"id"`
	Name      string    `json:"nome"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewUserRes はエンティティをレスポンスに変換します。
func NewUserRes(u *entity.User) UserRes {
	return UserRes{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
