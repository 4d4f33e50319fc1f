package di

import (
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	authadapters "bookshelf_backend/internal/feature/auth/adapters"
	authhandler "bookshelf_backend/internal/feature/auth/transport/handler"
	authusecase "bookshelf_backend/internal/feature/auth/usecase"
	bookhandler "bookshelf_backend/internal/feature/books/transport/handler"
	bookusecase "bookshelf_backend/internal/feature/books/usecase"
	jwtmw "bookshelf_backend/internal/platform/jwt"
	"bookshelf_backend/internal/platform/password"
	"bookshelf_backend/internal/platform/validation"
)

// Handlers はルーターに渡すハンドラー一式です。
type Handlers struct {
	Auth   *authhandler.AuthHandler
	Books  *bookhandler.BookHandler
	Tokens *jwtmw.Manager
}

// Options configures NewHandlers.
type Options struct {
	JWTSecret string
	// BcryptCost が0の場合はbcrypt.DefaultCostを使用します。
	BcryptCost int
	CacheTTL   time.Duration
}

// NewHandlers wires repositories, usecases and handlers for both features.
// rdb may be nil.
func NewHandlers(db *gorm.DB, rdb *redis.Client, opts Options) *Handlers {
	cost := opts.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	tokens := jwtmw.NewManager(opts.JWTSecret, jwtmw.DefaultTTL)

	authUC := authusecase.NewAuthUsecase(
		authadapters.NewUserRepository(db),
		password.NewHasher(cost),
		tokens,
	)
	bookUC := bookusecase.NewBookUsecase(NewBookRepository(rdb, db, opts.CacheTTL))

	return &Handlers{
		Auth:   authhandler.NewAuthHandler(authUC),
		Books:  bookhandler.NewBookHandler(bookUC, validation.New()),
		Tokens: tokens,
	}
}
