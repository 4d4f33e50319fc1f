// Package adapters provides repository implementations for the books feature.
package adapters

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"bookshelf_backend/internal/feature/books/domain/entity"
)

// BookModel is the GORM model for the books table.
type BookModel struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"size:255;not null"`
	Author    string    `gorm:"size:255;not null"`
	Price     float64   `gorm:"not null"`
	Quantity  int       `gorm:"not null"`
	CreatedAt time.Time `gorm:"index;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM.
func (BookModel) TableName() string {
	return "books"
}

// BeforeCreate assigns a UUID when the caller did not set one.
func (m *BookModel) BeforeCreate(_ *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// ToEntity converts the GORM model to a domain entity.
func (m *BookModel) ToEntity() *entity.Book {
	return &entity.Book{
		ID:        m.ID,
		Name:      m.Name,
		Author:    m.Author,
		Price:     m.Price,
		Quantity:  m.Quantity,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// BookModelFromEntity converts a domain entity to a GORM model.
func BookModelFromEntity(b *entity.Book) *BookModel {
	return &BookModel{
		ID:        b.ID,
		Name:      b.Name,
		Author:    b.Author,
		Price:     b.Price,
		Quantity:  b.Quantity,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}
