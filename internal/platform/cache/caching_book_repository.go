// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"bookshelf_backend/internal/feature/books/domain/entity"
	"bookshelf_backend/internal/feature/books/usecase"
)

// DefaultTTL is used when the caller passes a non-positive ttl.
const DefaultTTL = 5 * time.Minute

// CachingBookRepository decorates a BookRepository with Redis caching.
// Reads of the full list and of single books are cached under the current
// generation. Every successful mutation bumps the generation, so entries written
// by a read that raced with the mutation are never served afterwards.
type CachingBookRepository struct {
	inner     usecase.BookRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.BookRepository = (*CachingBookRepository)(nil)

// NewCachingBookRepository decorates a BookRepository with Redis caching.
// If rdb is nil every call goes straight to inner.
// If ttl is 0, it defaults to DefaultTTL. If namespace is empty, it uses "books".
func NewCachingBookRepository(rdb *redis.Client, ttl time.Duration, inner usecase.BookRepository, namespace string) *CachingBookRepository {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if namespace == "" {
		namespace = "books"
	}
	return &CachingBookRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// Create stores the book and invalidates cached reads.
func (c *CachingBookRepository) Create(ctx context.Context, book *entity.Book) error {
	if err := c.inner.Create(ctx, book); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

// List returns the cached list when present, otherwise loads and caches it.
func (c *CachingBookRepository) List(ctx context.Context) ([]entity.Book, error) {
	if c.rdb == nil {
		return c.inner.List(ctx)
	}

	gen, ok := c.generation(ctx)
	if !ok {
		return c.inner.List(ctx)
	}
	key := c.listKey(gen)
	var cached []entity.Book
	if c.load(ctx, key, &cached) {
		return cached, nil
	}

	out, err := c.inner.List(ctx)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []entity.Book{}
	}
	c.store(ctx, key, out)
	return out, nil
}

// FindByID returns a cached book when present. Misses in the store are not cached.
func (c *CachingBookRepository) FindByID(ctx context.Context, id string) (*entity.Book, error) {
	if c.rdb == nil {
		return c.inner.FindByID(ctx, id)
	}

	gen, ok := c.generation(ctx)
	if !ok {
		return c.inner.FindByID(ctx, id)
	}
	key := c.itemKey(gen, id)
	var cached entity.Book
	if c.load(ctx, key, &cached) {
		return &cached, nil
	}

	book, err := c.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, book)
	return book, nil
}

// Update applies the change and invalidates cached reads.
func (c *CachingBookRepository) Update(ctx context.Context, id string, in entity.BookInput) (*entity.Book, error) {
	book, err := c.inner.Update(ctx, id, in)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx)
	return book, nil
}

// Delete removes the book and invalidates cached reads.
func (c *CachingBookRepository) Delete(ctx context.Context, id string) error {
	if err := c.inner.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

// load reports whether key held a decodable value. Corrupted entries are deleted.
func (c *CachingBookRepository) load(ctx context.Context, key string, dst any) bool {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil || len(b) == 0 {
		return false
	}
	if err := json.Unmarshal(b, dst); err != nil {
		_ = c.rdb.Del(ctx, key).Err()
		return false
	}
	return true
}

// store writes value under key (best effort).
func (c *CachingBookRepository) store(ctx context.Context, key string, value any) {
	b, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, b, c.ttl).Err(); err != nil {
		slog.Warn("book cache write failed", "error", err, "key", key)
	}
}

// generation returns the current cache generation. A missing counter is
// generation 0. ok is false when Redis cannot be read and the cache is bypassed.
func (c *CachingBookRepository) generation(ctx context.Context) (int64, bool) {
	gen, err := c.rdb.Get(ctx, c.genKey()).Int64()
	switch {
	case err == nil:
		return gen, true
	case errors.Is(err, redis.Nil):
		return 0, true
	default:
		slog.Warn("book cache generation read failed", "error", err, "namespace", c.namespace)
		return 0, false
	}
}

// invalidate moves readers to a new generation (best effort).
// Keys of older generations are left to expire with their TTL.
func (c *CachingBookRepository) invalidate(ctx context.Context) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Incr(ctx, c.genKey()).Err(); err != nil {
		slog.Warn("book cache invalidation failed", "error", err, "namespace", c.namespace)
	}
}

func (c *CachingBookRepository) genKey() string {
	return c.namespace + ":gen"
}

func (c *CachingBookRepository) listKey(gen int64) string {
	return c.namespace + ":list:" + strconv.FormatInt(gen, 10)
}

func (c *CachingBookRepository) itemKey(gen int64, id string) string {
	return c.namespace + ":item:" + strconv.FormatInt(gen, 10) + ":" + safe(id)
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	s = strings.ReplaceAll(s, "*", "_")
	return s
}
