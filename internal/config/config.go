// Package config holds application-level settings and the ticker mappings
// between spreadsheet symbols and the symbols the data APIs expect.
package config

import (
	"os"
	"strconv"
)

// Config holds settings loaded from environment variables. Adapter-specific
// settings (API base URLs, timeouts) live with their adapters.
type Config struct {
	DatabaseURL     string // Postgres DSN; empty means the embedded SQLite file
	DBPath          string // SQLite file path
	MarketDataDir   string // Per-symbol series files
	SheetID         string
	CredentialsFile string
	TelegramToken   string
	TelegramChatID  int64
}

// Load reads configuration from environment variables, applying defaults for
// the local store paths.
func Load() Config {
	chatID, _ := strconv.ParseInt(os.Getenv("TELEGRAM_CHAT_ID"), 10, 64)
	cfg := Config{
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		DBPath:          os.Getenv("DB_PATH"),
		MarketDataDir:   os.Getenv("MARKET_DATA_DIR"),
		SheetID:         os.Getenv("GOOGLE_SHEET_ID"),
		CredentialsFile: os.Getenv("GOOGLE_CREDENTIALS_FILE"),
		TelegramToken:   os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:  chatID,
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "./invest.db"
	}
	if cfg.MarketDataDir == "" {
		cfg.MarketDataDir = "./data/market_data"
	}
	if cfg.CredentialsFile == "" {
		cfg.CredentialsFile = "credentials.json"
	}
	return cfg
}

// CryptoMapping maps spreadsheet symbols to exchange pairs.
var CryptoMapping = map[string]string{
	"BTC": "BTCUSDT",
	"ETH": "ETHUSDT",
	"SOL": "SOLUSDT",
	"BNB": "BNBUSDT",
	"WLD": "WLDUSDT",
}

// StockMapping maps spreadsheet symbols to stock API tickers. Identity for
// US tickers; kept as a table so non-US listings can be added.
var StockMapping = map[string]string{
	"TSLA": "TSLA",
	"NVDA": "NVDA",
	"IVV":  "IVV",
	"AAPL": "AAPL",
	"MSFT": "MSFT",
	"COIN": "COIN",
}

// IsCrypto reports whether a spreadsheet symbol is a known crypto asset.
func IsCrypto(symbol string) bool {
	_, ok := CryptoMapping[symbol]
	return ok
}
