// Package response はハンドラー間で共有するJSONレスポンスの形と書き出しを提供します。
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bookshelf_backend/internal/platform/validation"
)

// ErrorResponse はすべてのエラーレスポンスの形です。
// Details はバリデーションエラーの場合のみ設定されます。
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Details []validation.Violation `json:"details,omitempty"`
}

// MessageResponse は本文を持たない成功レスポンスの形です。
type MessageResponse struct {
	Message string `json:"message"`
}

// MsgValidationFailed is the error string of every 400 produced by the schema validator.
const MsgValidationFailed = "validation failed"

// MsgInternal は内部エラーの詳細を隠すための固定メッセージです。
const MsgInternal = "internal server error"

// Error はステータスとメッセージでエラーを返し、後続のハンドラーを中断します。
func Error(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: msg})
}

// ValidationFailed はバインドまたは検証エラーを400 {error, details} に変換します。
func ValidationFailed(c *gin.Context, err error) {
	var details []validation.Violation
	if verr, ok := validation.Normalize(err).(*validation.Error); ok {
		details = verr.Violations
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
		Error:   MsgValidationFailed,
		Details: details,
	})
}

// Internal は500を返します。原因はログにのみ残すこと。
func Internal(c *gin.Context) {
	Error(c, http.StatusInternalServerError, MsgInternal)
}

// Message は {message} 形式の成功レスポンスを返します。
func Message(c *gin.Context, status int, msg string) {
	c.JSON(status, MessageResponse{Message: msg})
}
