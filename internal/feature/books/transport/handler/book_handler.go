// Package handler はbooksフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"bookshelf_backend/internal/feature/books/domain/entity"
	"bookshelf_backend/internal/feature/books/transport/http/dto"
	"bookshelf_backend/internal/feature/books/usecase"
	"bookshelf_backend/internal/platform/http/response"
)

// BookUsecase は書籍操作のユースケースを定義します。
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type BookUsecase interface {
	Create(ctx context.Context, in entity.BookInput) (*entity.Book, error)
	List(ctx context.Context) ([]entity.Book, error)
	Get(ctx context.Context, id string) (*entity.Book, error)
	Update(ctx context.Context, id string, in entity.BookInput) (*entity.Book, error)
	Delete(ctx context.Context, id string) error
}

// ResponseValidator checks an outgoing payload against its declared shape.
type ResponseValidator interface {
	ValidateStruct(obj any) error
}

// BookHandler は書籍に関するHTTPリクエストを処理します。
type BookHandler struct {
	uc       BookUsecase
	validate ResponseValidator
}

// NewBookHandler は新しい BookHandler を作成します。
func NewBookHandler(uc BookUsecase, v ResponseValidator) *BookHandler {
	return &BookHandler{uc: uc, validate: v}
}

// Create は POST /livros を処理します。
func (h *BookHandler) Create(c *gin.Context) {
	var req dto.BookReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("create book validation failed", "error", err, "remote_addr", c.ClientIP())
		response.ValidationFailed(c, err)
		return
	}

	book, err := h.uc.Create(c.Request.Context(), req.ToInput())
	if err != nil {
		slog.Error("create book failed", "error", err)
		response.Internal(c)
		return
	}
	h.writeBook(c, http.StatusCreated, book)
}

// List は GET /livros を処理します。作成順の配列を返し、0件なら [] を返します。
func (h *BookHandler) List(c *gin.Context) {
	books, err := h.uc.List(c.Request.Context())
	if err != nil {
		slog.Error("list books failed", "error", err)
		response.Internal(c)
		return
	}

	out := dto.NewBookList(books)
	if err := h.validate.ValidateStruct(out); err != nil {
		slog.Error("book list failed response validation", "error", err)
		response.Internal(c)
		return
	}
	c.JSON(http.StatusOK, out)
}

// Update は PUT /livros/:id を処理します。
// 対象の存在確認をボディ検証より先に行うため、未知のIDはボディに関わらず404になります。
func (h *BookHandler) Update(c *gin.Context) {
	var uri dto.BookIDUri
	if err := c.ShouldBindUri(&uri); err != nil {
		response.ValidationFailed(c, err)
		return
	}

	ctx := c.Request.Context()
	if _, err := h.uc.Get(ctx, uri.ID); err != nil {
		h.writeLookupError(c, "resolve book for update failed", uri.ID, err)
		return
	}

	var req dto.BookReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("update book validation failed", "error", err, "id", uri.ID, "remote_addr", c.ClientIP())
		response.ValidationFailed(c, err)
		return
	}

	book, err := h.uc.Update(ctx, uri.ID, req.ToInput())
	if err != nil {
		h.writeLookupError(c, "update book failed", uri.ID, err)
		return
	}
	h.writeBook(c, http.StatusOK, book)
}

// Delete は DELETE /livros/:id を処理します。
func (h *BookHandler) Delete(c *gin.Context) {
	var uri dto.BookIDUri
	if err := c.ShouldBindUri(&uri); err != nil {
		response.ValidationFailed(c, err)
		return
	}

	if err := h.uc.Delete(c.Request.Context(), uri.ID); err != nil {
		h.writeLookupError(c, "delete book failed", uri.ID, err)
		return
	}
	slog.Info("book deleted", "id", uri.ID)
	response.Message(c, http.StatusOK, "book deleted")
}

func (h *BookHandler) writeBook(c *gin.Context, status int, book *entity.Book) {
	out := dto.NewBookRes(book)
	if err := h.validate.ValidateStruct(out); err != nil {
		slog.Error("book failed response validation", "error", err, "id", book.ID)
		response.Internal(c)
		return
	}
	c.JSON(status, out)
}

func (h *BookHandler) writeLookupError(c *gin.Context, msg, id string, err error) {
	if errors.Is(err, usecase.ErrBookNotFound) {
		response.Error(c, http.StatusNotFound, "book not found")
		return
	}
	slog.Error(msg, "error", err, "id", id)
	response.Internal(c)
}
