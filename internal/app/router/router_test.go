package router

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"bookshelf_backend/internal/app/di"
	authadapters "bookshelf_backend/internal/feature/auth/adapters"
	bookadapters "bookshelf_backend/internal/feature/books/adapters"
	jwtmw "bookshelf_backend/internal/platform/jwt"
)

const testSecret = "router-test-secret"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// testApp はsqliteに接続した完全なエンジンと、ストアへのアクセス回数を保持します。
type testApp struct {
	engine     *gin.Engine
	storeCalls *atomic.Int64
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&authadapters.UserModel{}, &bookadapters.BookModel{}))

	calls := &atomic.Int64{}
	count := func(*gorm.DB) { calls.Add(1) }
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("test:count_create", count))
	require.NoError(t, db.Callback().Query().Before("gorm:query").Register("test:count_query", count))
	require.NoError(t, db.Callback().Update().Before("gorm:update").Register("test:count_update", count))
	require.NoError(t, db.Callback().Delete().Before("gorm:delete").Register("test:count_delete", count))

	h := di.NewHandlers(db, nil, di.Options{JWTSecret: testSecret, BcryptCost: 4})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := NewRouter(Options{Logger: logger}, h.Tokens, Routes(h.Auth, h.Books))

	return &testApp{engine: engine, storeCalls: calls}
}

func (a *testApp) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func (a *testApp) login(t *testing.T, email, password string) string {
	t.Helper()

	w := a.do(t, http.MethodPost, "/login", "", `{"email":"`+email+`","password":"`+password+`"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.Token)
	return body.Token
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func signToken(t *testing.T, secret string, issuedAt time.Time, ttl time.Duration) string {
	t.Helper()
	claims := jwtmw.Claims{
		Email: "ana@x.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

// TestRoutes_AccessTable はルートごとの認証要否を固定します。
// PUT /livros/:id が公開されている非対称性もここで検出されます。
func TestRoutes_AccessTable(t *testing.T) {
	t.Parallel()

	h := di.NewHandlers(nil, nil, di.Options{JWTSecret: testSecret})
	got := map[string]Access{}
	for _, rt := range Routes(h.Auth, h.Books) {
		got[rt.Method+" "+rt.Path] = rt.Access
	}

	want := map[string]Access{
		"GET /":              Public,
		"GET /healthz":       Public,
		"HEAD /healthz":      Public,
		"OPTIONS /healthz":   Public,
		"POST /user":         Public,
		"POST /login":        Public,
		"GET /profile":       Protected,
		"POST /livros":       Protected,
		"GET /livros":        Protected,
		"PUT /livros/:id":    Public,
		"DELETE /livros/:id": Protected,
	}
	assert.Equal(t, want, got)
	assert.Equal(t, "public", Public.String())
	assert.Equal(t, "protected", Protected.String())
}

// TestRouter_UserLifecycle は登録・重複登録・ログイン・プロフィールの流れを検証します。
func TestRouter_UserLifecycle(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodPost, "/user", "", `{"nome":"Ana","email":"ana@x.com","password":"12345678"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[map[string]any](t, w)
	assert.NotEmpty(t, created["id"])
	assert.Equal(t, "Ana", created["nome"])
	assert.Equal(t, "ana@x.com", created["email"])
	assert.NotContains(t, created, "password")
	assert.NotContains(t, created, "passwordHash")

	// 2回目の登録は409で、最初のレコードは変わらない
	w = app.do(t, http.MethodPost, "/user", "", `{"nome":"Impostor","email":"ana@x.com","password":"other-password"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, decode[map[string]any](t, w), "error")
	token := app.login(t, "ana@x.com", "12345678")

	unknown := app.do(t, http.MethodPost, "/login", "", `{"email":"nobody@x.com","password":"12345678"}`)
	wrong := app.do(t, http.MethodPost, "/login", "", `{"email":"ana@x.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, unknown.Code, wrong.Code)
	assert.Equal(t, unknown.Body.String(), wrong.Body.String())
	assert.NotContains(t, decode[map[string]any](t, wrong), "token")

	w = app.do(t, http.MethodGet, "/profile", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	profile := decode[map[string]any](t, w)
	assert.Equal(t, created["id"], profile["sub"])
	assert.Equal(t, "ana@x.com", profile["email"])
	assert.Contains(t, profile, "iat")
	assert.Contains(t, profile, "exp")
}

// TestRouter_BookLifecycle は作成・一覧・更新・削除の流れを検証します。
func TestRouter_BookLifecycle(t *testing.T) {
	app := newTestApp(t)
	require.Equal(t, http.StatusCreated,
		app.do(t, http.MethodPost, "/user", "", `{"nome":"Ana","email":"ana@x.com","password":"12345678"}`).Code)
	token := app.login(t, "ana@x.com", "12345678")

	w := app.do(t, http.MethodGet, "/livros", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = app.do(t, http.MethodPost, "/livros", token, `{"nome":"Dom Casmurro","autor":"Machado de Assis","preco":29.9,"quantidade":3}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	book := decode[map[string]any](t, w)
	id, _ := book["id"].(string)
	require.NotEmpty(t, id)
	for _, k := range []string{"nome", "autor", "preco", "quantidade", "createdAt", "updatedAt"} {
		assert.Contains(t, book, k)
	}

	w = app.do(t, http.MethodGet, "/livros", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]map[string]any](t, w)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0]["id"])
	assert.Equal(t, "Dom Casmurro", list[0]["nome"])

	w = app.do(t, http.MethodPut, "/livros/"+id, token, `{"nome":"Dom Casmurro","autor":"Machado de Assis","preco":35,"quantidade":0}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[map[string]any](t, w)
	assert.Equal(t, 35.0, updated["preco"])
	assert.Equal(t, 0.0, updated["quantidade"])
	assert.Equal(t, book["createdAt"], updated["createdAt"])

	w = app.do(t, http.MethodDelete, "/livros/"+id, token, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decode[map[string]any](t, w), "message")

	w = app.do(t, http.MethodDelete, "/livros/"+id, token, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestRouter_UpdateUnknownID は未知のIDの更新がボディに関わらず404になることを検証します。
func TestRouter_UpdateUnknownID(t *testing.T) {
	app := newTestApp(t)
	path := "/livros/" + uuid.NewString()

	for _, body := range []string{
		`{"nome":"x","autor":"y","preco":1,"quantidade":1}`,
		`{"preco":-1}`,
		`not json`,
	} {
		w := app.do(t, http.MethodPut, path, "", body)
		assert.Equal(t, http.StatusNotFound, w.Code, "body %q", body)
	}
}

// TestRouter_UpdateIsPublic は PUT /livros/:id がトークンなしで成功することを検証します。
// 作成と削除は認証必須のため、この挙動は意図的に固定しています。
func TestRouter_UpdateIsPublic(t *testing.T) {
	app := newTestApp(t)
	require.Equal(t, http.StatusCreated,
		app.do(t, http.MethodPost, "/user", "", `{"nome":"Ana","email":"ana@x.com","password":"12345678"}`).Code)
	token := app.login(t, "ana@x.com", "12345678")

	w := app.do(t, http.MethodPost, "/livros", token, `{"nome":"a","autor":"b","preco":1,"quantidade":1}`)
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[map[string]any](t, w)["id"].(string)

	w = app.do(t, http.MethodPut, "/livros/"+id, "", `{"nome":"changed","autor":"b","preco":2,"quantidade":2}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "changed", decode[map[string]any](t, w)["nome"])

	assert.Equal(t, http.StatusUnauthorized, app.do(t, http.MethodPost, "/livros", "", `{"nome":"a","autor":"b","preco":1,"quantidade":1}`).Code)
	assert.Equal(t, http.StatusUnauthorized, app.do(t, http.MethodDelete, "/livros/"+id, "", "").Code)
}

// TestRouter_ProtectedRoutesRejectBadTokens は不正なトークンが401となり、ストアに到達しないことを検証します。
func TestRouter_ProtectedRoutesRejectBadTokens(t *testing.T) {
	app := newTestApp(t)
	id := uuid.NewString()

	tokens := map[string]string{
		"no token":       "",
		"foreign secret": signToken(t, "some-other-secret", time.Now(), time.Hour),
		"expired":        signToken(t, testSecret, time.Now().Add(-2*time.Hour), time.Hour),
		"garbage":        "not.a.jwt",
	}
	routes := []struct {
		method, path, body string
	}{
		{http.MethodGet, "/profile", ""},
		{http.MethodGet, "/livros", ""},
		// 不正なボディでも検証より先に認証で拒否される
		{http.MethodPost, "/livros", `{"preco":-1}`},
		{http.MethodDelete, "/livros/" + id, ""},
		{http.MethodDelete, "/livros/not-a-uuid", ""},
	}

	for name, token := range tokens {
		for _, rt := range routes {
			w := app.do(t, rt.method, rt.path, token, rt.body)
			assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s with %s", rt.method, rt.path, name)
			assert.Contains(t, decode[map[string]any](t, w), "error")
		}
	}
	assert.Zero(t, app.storeCalls.Load(), "rejected requests must not reach the store")
}

func TestRouter_ValidTokenBeforeExpiry(t *testing.T) {
	app := newTestApp(t)

	token := signToken(t, testSecret, time.Now().Add(-50*time.Minute), time.Hour)
	w := app.do(t, http.MethodGet, "/profile", token, "")

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_ValidationErrorShape(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodPost, "/user", "", `{"nome":"","email":"bad","password":"1"}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode[validationBody](t, w)
	assert.Equal(t, "validation failed", body.Error)
	fields := make([]string, 0, len(body.Details))
	for _, d := range body.Details {
		fields = append(fields, d.Field)
	}
	assert.Equal(t, []string{"nome", "email", "password"}, fields)
	assert.Zero(t, app.storeCalls.Load())
}

type validationBody struct {
	Error   string `json:"error"`
	Details []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"details"`
}

// TestRouter_SignupPasswordByteLimit はbcryptの72バイト上限が文字数ではなくバイト数で判定されることを検証します。
func TestRouter_SignupPasswordByteLimit(t *testing.T) {
	app := newTestApp(t)

	// 40文字だが80バイト
	w := app.do(t, http.MethodPost, "/user", "",
		`{"nome":"Ana","email":"ana@x.com","password":"`+strings.Repeat("é", 40)+`"}`)

	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	body := decode[validationBody](t, w)
	require.Len(t, body.Details, 1)
	assert.Equal(t, "password", body.Details[0].Field)
	assert.Equal(t, "must be at most 72 bytes long", body.Details[0].Message)
	assert.Zero(t, app.storeCalls.Load())

	w = app.do(t, http.MethodPost, "/user", "",
		`{"nome":"Ana","email":"ana@x.com","password":"`+strings.Repeat("a", 72)+`"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	app.login(t, "ana@x.com", strings.Repeat("a", 72))
}

// TestRouter_BlankTextFields は空白のみの文字列が保存前に400で拒否されることを検証します。
func TestRouter_BlankTextFields(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodPost, "/user", "", `{"nome":"   ","email":"ana@x.com","password":"12345678"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "nome", decode[validationBody](t, w).Details[0].Field)
	assert.Zero(t, app.storeCalls.Load())

	require.Equal(t, http.StatusCreated,
		app.do(t, http.MethodPost, "/user", "", `{"nome":"Ana","email":"ana@x.com","password":"12345678"}`).Code)
	token := app.login(t, "ana@x.com", "12345678")
	before := app.storeCalls.Load()

	w = app.do(t, http.MethodPost, "/livros", token, `{"nome":" ","autor":"\t\n","preco":10,"quantidade":1}`)

	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	body := decode[validationBody](t, w)
	fields := make([]string, 0, len(body.Details))
	for _, d := range body.Details {
		fields = append(fields, d.Field)
		assert.Equal(t, "must not be blank", d.Message)
	}
	assert.Equal(t, []string{"nome", "autor"}, fields)
	assert.Equal(t, before, app.storeCalls.Load())
}

func TestRouter_PlatformRoutesAndMiddleware(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodGet, "/", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decode[map[string]any](t, w), "message")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = app.do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRouter_CORS(t *testing.T) {
	h := di.NewHandlers(nil, nil, di.Options{JWTSecret: testSecret})
	engine := NewRouter(Options{AllowedOrigins: []string{"https://app.example.com"}}, h.Tokens, Routes(h.Auth, h.Books))

	req := httptest.NewRequest(http.MethodOptions, "/livros", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}
