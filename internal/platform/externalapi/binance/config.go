// Package binance は Binance 公開APIから暗号資産の日足履歴を取得します。
package binance

import (
	"os"
	"time"
)

// Config は Binance APIクライアントの設定を保持します。
// 公開の kline エンドポイントのみ使うため、APIキーは不要です。
type Config struct {
	BaseURL string        // APIのベースURL
	Timeout time.Duration // HTTPリクエストのタイムアウト
}

// LoadConfig は環境変数から設定を読み込みます。
func LoadConfig() Config {
	base := os.Getenv("BINANCE_BASE_URL")
	if base == "" {
		base = "https://api.binance.com"
	}
	return Config{
		BaseURL: base,
		Timeout: 10 * time.Second,
	}
}
