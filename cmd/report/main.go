package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"

	"invest_bot/internal/config"
	"invest_bot/internal/datastore"
	"invest_bot/internal/platform/db"
	"invest_bot/internal/platform/externalapi"
	"invest_bot/internal/platform/externalapi/fng"
	infrahttp "invest_bot/internal/platform/http"
	"invest_bot/internal/platform/llm"
	"invest_bot/internal/platform/sheets"
	"invest_bot/internal/platform/telegram"
	"invest_bot/internal/shared/ratelimiter"
	"invest_bot/internal/usecase"
)

func main() {
	// .envを読み込む
	if err := godotenv.Load(".env"); err != nil {
		log.Println("[INFO] .env not found; using system environment variables")
	}
	cfg := config.Load()

	// ストレージ初期化の失敗は致命的（これがないと何もできない）
	gdb, err := db.OpenDB(cfg)
	if err != nil {
		log.Fatal("open database:", err)
	}
	store, err := datastore.New(gdb, cfg.MarketDataDir)
	if err != nil {
		log.Fatal("init datastore:", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	portfolio, err := sheets.NewService(ctx, cfg.CredentialsFile, cfg.SheetID)
	if err != nil {
		log.Fatal("init sheets:", err)
	}

	market := externalapi.NewDefaultMarket(infrahttp.NewHTTPClient)
	fngCfg := fng.LoadConfig()
	sentiment := fng.NewClient(fngCfg, infrahttp.NewHTTPClient(fngCfg.Timeout))

	reporter, err := llm.NewGeminiReporter(ctx)
	if err != nil {
		log.Fatal("init gemini:", err)
	}
	notifier, err := telegram.NewNotifier(cfg.TelegramToken, cfg.TelegramChatID)
	if err != nil {
		log.Fatal("init telegram:", err)
	}

	// 履歴取得APIのレートリミットを考慮
	limiter := ratelimiter.NewRateLimiter(5, time.Minute)

	uc := usecase.NewReportUsecase(
		store, portfolio, market, sentiment,
		usecase.NewAnalysisUsecase(), reporter, notifier, limiter,
	)
	if err := uc.Run(ctx); err != nil {
		log.Fatal(err)
	}
	log.Println("daily report ok")
}
