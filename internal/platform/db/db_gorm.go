// Package db はレポートパイプラインのデータベース接続を管理します。
package db

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"invest_bot/internal/config"
)

// OpenDB はデータベース接続を開きます。DATABASE_URL が設定されていれば
// Postgres、なければ組み込みの SQLite ファイルを使います。スキーマ作成は
// datastore 側が行います。接続失敗は致命的エラーとして呼び出し元へ返します。
func OpenDB(cfg config.Config) (*gorm.DB, error) {
	if cfg.DatabaseURL != "" {
		gdb, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		slog.Info("using postgres store")
		return gdb, nil
	}

	gdb, err := gorm.Open(sqlite.Open(cfg.DBPath), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", cfg.DBPath, err)
	}
	abs, _ := filepath.Abs(cfg.DBPath)
	slog.Info("using sqlite store", "path", abs)
	return gdb, nil
}
