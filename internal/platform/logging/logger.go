// Package logging はslogロガーの構築とHTTPアクセスログ用ミドルウェアを提供します。
package logging

import (
	"io"
	"log/slog"
	"strings"
)

// NewLogger は環境に応じたslog.Loggerを生成します。
// productionではJSON、それ以外ではテキスト形式で出力します。
func NewLogger(w io.Writer, env, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var h slog.Handler
	if env == "production" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h).With("app", "bookshelf_backend", "env", env)
}

// ParseLevel はレベル文字列をslog.Levelに変換します。未知の値はInfoになります。
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
