package usecase

import (
	"context"
	"fmt"

	"bookshelf_backend/internal/feature/books/domain/entity"
)

// BookRepository abstracts the persistence layer for books.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type BookRepository interface {
	// Create persists a new book and fills in its ID and timestamps.
	Create(ctx context.Context, book *entity.Book) error

	// List returns every book in creation order.
	List(ctx context.Context) ([]entity.Book, error)

	// FindByID returns ErrBookNotFound when no book has the given ID.
	FindByID(ctx context.Context, id string) (*entity.Book, error)

	// Update overwrites the editable fields and returns the stored book.
	// It returns ErrBookNotFound when no book has the given ID.
	Update(ctx context.Context, id string, in entity.BookInput) (*entity.Book, error)

	// Delete removes the book permanently.
	// It returns ErrBookNotFound when no book has the given ID.
	Delete(ctx context.Context, id string) error
}

// BookUsecase provides business logic for book operations.
type BookUsecase struct {
	repo BookRepository
}

// NewBookUsecase creates a new BookUsecase with the given repository.
func NewBookUsecase(r BookRepository) *BookUsecase {
	return &BookUsecase{repo: r}
}

// Create stores a new book.
func (u *BookUsecase) Create(ctx context.Context, in entity.BookInput) (*entity.Book, error) {
	book := &entity.Book{
		Name:     in.Name,
		Author:   in.Author,
		Price:    in.Price,
		Quantity: in.Quantity,
	}
	if err := u.repo.Create(ctx, book); err != nil {
		return nil, fmt.Errorf("failed to create book: %w", err)
	}
	return book, nil
}

// List returns all books. The result is never nil.
func (u *BookUsecase) List(ctx context.Context) ([]entity.Book, error) {
	books, err := u.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	if books == nil {
		books = []entity.Book{}
	}
	return books, nil
}

// Get returns a single book.
func (u *BookUsecase) Get(ctx context.Context, id string) (*entity.Book, error) {
	return u.repo.FindByID(ctx, id)
}

// Update replaces the editable fields of an existing book.
func (u *BookUsecase) Update(ctx context.Context, id string, in entity.BookInput) (*entity.Book, error) {
	return u.repo.Update(ctx, id, in)
}

// Delete removes a book.
func (u *BookUsecase) Delete(ctx context.Context, id string) error {
	return u.repo.Delete(ctx, id)
}
