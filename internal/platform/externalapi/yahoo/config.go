// Package yahoo は Yahoo Finance chart API から株式の日足履歴を取得します。
package yahoo

import (
	"os"
	"time"
)

// Config は Yahoo Finance クライアントの設定を保持します。
type Config struct {
	BaseURL string        // chart APIのベースURL
	Timeout time.Duration // HTTPリクエストのタイムアウト
}

// LoadConfig は環境変数から設定を読み込みます。
func LoadConfig() Config {
	base := os.Getenv("YAHOO_BASE_URL")
	if base == "" {
		base = "https://query1.finance.yahoo.com"
	}
	return Config{
		BaseURL: base,
		Timeout: 10 * time.Second,
	}
}
