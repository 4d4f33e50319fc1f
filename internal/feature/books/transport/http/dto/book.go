// Package dto はbooksフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

import (
	"time"

	"bookshelf_backend/internal/feature/books/domain/entity"
)

// BookReq は POST /livros と PUT /livros/:id のリクエストボディです。
// 数値は0を有効値として扱うため、未指定と区別できるようポインタで受けます。
type BookReq struct {
	Name     string   `json:"nome" binding:"required,notblank"`
	Author   string   `json:"autor" binding:"required,notblank"`
	Price    *float64 `json:"preco" binding:"required,gte=0"`
	Quantity *int     `json:"quantidade" binding:"required,gte=0"`
}

// ToInput converts a validated request into the usecase input.
func (r BookReq) ToInput() entity.BookInput {
	in := entity.BookInput{Name: r.Name, Author: r.Author}
	if r.Price != nil {
		in.Price = *r.Price
	}
	if r.Quantity != nil {
		in.Quantity = *r.Quantity
	}
	return in
}

// BookIDUri はパスパラメータ :id です。
type BookIDUri struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// BookRes is the book payload returned to clients.
// Its tags are checked before the response is written.
type BookRes struct {
	ID        string    `json:"id" binding:"required,uuid"`
	Name      string    `json:"nome" binding:"required,notblank"`
	Author    string    `json:"autor" binding:"required,notblank"`
	Price     float64   `json:"preco" binding:"gte=0"`
	Quantity  int       `json:"quantidade" binding:"gte=0"`
	CreatedAt time.Time `json:"createdAt" binding:"required"`
	UpdatedAt time.Time `json:"updatedAt" binding:"required"`
}

// NewBookRes はエンティティをレスポンスに変換します。
func NewBookRes(b *entity.Book) BookRes {
	return BookRes{
		ID:        b.ID,
		Name:      b.Name,
		Author:    b.Author,
		Price:     b.Price,
		Quantity:  b.Quantity,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

// NewBookList converts entities in order. An empty input yields an empty, non-nil slice.
func NewBookList(books []entity.Book) []BookRes {
	out := make([]BookRes, 0, len(books))
	for i := range books {
		out = append(out, NewBookRes(&books[i]))
	}
	return out
}
