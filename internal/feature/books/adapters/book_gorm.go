package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"bookshelf_backend/internal/feature/books/domain/entity"
	"bookshelf_backend/internal/feature/books/usecase"
)

// bookGorm is a GORM implementation of the BookRepository interface.
type bookGorm struct {
	db *gorm.DB
}

// Compile-time check to ensure bookGorm implements BookRepository.
var _ usecase.BookRepository = (*bookGorm)(nil)

// NewBookRepository creates a new instance of bookGorm.
func NewBookRepository(db *gorm.DB) *bookGorm {
	return &bookGorm{db: db}
}

// Create persists a new book; ID and timestamps are written back to book.
func (r *bookGorm) Create(ctx context.Context, book *entity.Book) error {
	model := BookModelFromEntity(book)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	*book = *model.ToEntity()
	return nil
}

// List returns all books ordered by creation time.
func (r *bookGorm) List(ctx context.Context) ([]entity.Book, error) {
	var models []BookModel
	if err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Order("id ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}

	books := make([]entity.Book, len(models))
	for i := range models {
		books[i] = *models[i].ToEntity()
	}
	return books, nil
}

// FindByID retrieves a book by its ID.
func (r *bookGorm) FindByID(ctx context.Context, id string) (*entity.Book, error) {
	var model BookModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrBookNotFound
		}
		return nil, err
	}
	return model.ToEntity(), nil
}

// Update overwrites the editable fields of a book and refreshes updated_at.
func (r *bookGorm) Update(ctx context.Context, id string, in entity.BookInput) (*entity.Book, error) {
	result := r.db.WithContext(ctx).
		Model(&BookModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"name":       in.Name,
			"author":     in.Author,
			"price":      in.Price,
			"quantity":   in.Quantity,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, usecase.ErrBookNotFound
	}
	return r.FindByID(ctx, id)
}

// Delete removes a book permanently.
func (r *bookGorm) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&BookModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return usecase.ErrBookNotFound
	}
	return nil
}
