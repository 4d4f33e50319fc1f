// Package db はPostgreSQLへの接続とスキーママイグレーションを提供します。
package db

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// retryInterval は接続リトライの待機間隔です。
const retryInterval = 3 * time.Second

// Opener はDSNからgorm.DBを開く関数です。テストで差し替えられるように分離しています。
type Opener func(dsn string) (*gorm.DB, error)

// slowQueryThreshold を超えたクエリは警告として記録されます。
const slowQueryThreshold = 200 * time.Millisecond

// GormConfig はアプリケーション共通のgorm設定を返します。
// TranslateErrorを有効にし、一意制約違反をgorm.ErrDuplicatedKeyとして扱えるようにします。
func GormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         newGormLogger(os.Stdout),
	}
}

// newGormLogger はwに書き出すgormロガーを生成します。
// 未知のIDの参照は404として扱う通常の結果なので、ErrRecordNotFoundは記録しません。
func newGormLogger(w io.Writer) logger.Interface {
	return logger.New(log.New(w, "\r\n", log.LstdFlags), logger.Config{
		SlowThreshold:             slowQueryThreshold,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// OpenPostgres はPostgreSQLに接続するOpenerです。
func OpenPostgres(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), GormConfig())
}

// OpenDB はタイムアウトまでリトライしながらPostgreSQLに接続します。
func OpenDB(dsn string, timeout time.Duration) (*gorm.DB, error) {
	return ConnectWithRetry(dsn, timeout, OpenPostgres)
}

// ConnectWithRetry はopenerが成功するかtimeoutを過ぎるまで接続を試行します。
func ConnectWithRetry(dsn string, timeout time.Duration, opener Opener) (*gorm.DB, error) {
	return connectWithRetry(dsn, timeout, retryInterval, opener)
}

func connectWithRetry(dsn string, timeout, interval time.Duration, opener Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	attempt := 0
	for {
		attempt++
		db, err := opener(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().Add(interval).After(deadline) {
			return nil, fmt.Errorf("db connect failed after %d attempts: %w", attempt, err)
		}
		slog.Warn("db connect failed, retrying", "attempt", attempt, "error", err)
		time.Sleep(interval)
	}
}
