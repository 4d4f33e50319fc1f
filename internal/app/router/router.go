// Package router はルートテーブルとGinエンジンの組み立てを提供します。
package router

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	authhandler "bookshelf_backend/internal/feature/auth/transport/handler"
	bookhandler "bookshelf_backend/internal/feature/books/transport/handler"
	platformhandler "bookshelf_backend/internal/platform/http/handler"
	jwtmw "bookshelf_backend/internal/platform/jwt"
	"bookshelf_backend/internal/platform/logging"
	"bookshelf_backend/internal/platform/validation"
)

// Access はルートごとの認証要否です。
type Access int

const (
	// Public は認証なしで到達できるルートです。
	Public Access = iota
	// Protected はBearerトークンの検証を通過したリクエストのみ到達できるルートです。
	Protected
)

func (a Access) String() string {
	if a == Protected {
		return "protected"
	}
	return "public"
}

// Route は1件のルート定義です。
type Route struct {
	Method  string
	Path    string
	Access  Access
	Handler gin.HandlerFunc
}

// Options configures the engine built by NewRouter.
type Options struct {
	Logger *slog.Logger
	// AllowedOrigins が空の場合、CORSミドルウェアは登録しません。
	AllowedOrigins []string
}

var installValidator sync.Once

// Routes はアプリケーションのルートテーブルを返します。
// PUT /livros/:id は既存クライアントとの互換のため認証なしで公開しています。
func Routes(auth *authhandler.AuthHandler, books *bookhandler.BookHandler) []Route {
	return []Route{
		{http.MethodGet, "/", Public, platformhandler.Root},
		{http.MethodGet, "/healthz", Public, platformhandler.Health},
		{http.MethodHead, "/healthz", Public, platformhandler.Health},
		{http.MethodOptions, "/healthz", Public, platformhandler.Health},

		{http.MethodPost, "/user", Public, auth.Signup},
		{http.MethodPost, "/login", Public, auth.Login},
		{http.MethodGet, "/profile", Protected, auth.Profile},

		{http.MethodPost, "/livros", Protected, books.Create},
		{http.MethodGet, "/livros", Protected, books.List},
		{http.MethodPut, "/livros/:id", Public, books.Update},
		{http.MethodDelete, "/livros/:id", Protected, books.Delete},
	}
}

// NewRouter はミドルウェアとルートテーブルからGinエンジンを組み立てます。
// Protectedなルートは認証ミドルウェアがハンドラーより先に実行されるため、
// 未認証のリクエストはボディの検証前に401で拒否されます。
func NewRouter(opts Options, verifier jwtmw.Verifier, routes []Route) *gin.Engine {
	installValidator.Do(func() {
		binding.Validator = validation.New()
	})

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := gin.New()
	r.Use(gin.Recovery(), logging.RequestID(), logging.AccessLog(logger))
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:  opts.AllowedOrigins,
			AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders: []string{logging.HeaderRequestID},
			MaxAge:        12 * time.Hour,
		}))
	}

	auth := jwtmw.AuthRequired(verifier)
	for _, rt := range routes {
		if rt.Access == Protected {
			r.Handle(rt.Method, rt.Path, auth, rt.Handler)
			continue
		}
		r.Handle(rt.Method, rt.Path, rt.Handler)
	}
	return r
}
