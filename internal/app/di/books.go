// Package di provides dependency injection factories for creating application components.
package di

import (
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	bookadapters "bookshelf_backend/internal/feature/books/adapters"
	"bookshelf_backend/internal/feature/books/usecase"
	"bookshelf_backend/internal/platform/cache"
)

// NewBookRepository creates a BookRepository implementation.
// If Redis is available, the GORM repository is wrapped with a read-through cache.
// Otherwise, it returns the GORM repository directly.
func NewBookRepository(rdb *redis.Client, db *gorm.DB, ttl time.Duration) usecase.BookRepository {
	repo := bookadapters.NewBookRepository(db)
	if rdb != nil {
		return cache.NewCachingBookRepository(rdb, ttl, repo, "books")
	}
	return repo
}
