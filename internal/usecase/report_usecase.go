package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"invest_bot/internal/domain/entity"
	"invest_bot/internal/shared/ratelimiter"
)

const (
	// historyDays は指標計算（EMA120 など）に必要な取得日数です。
	historyDays = 200
)

// DataStore はキャッシュと永続化のファサードです。フェッチャーと分析エンジンは
// ストレージに直接触れず、必ずこのインターフェース経由で読み書きします。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type DataStore interface {
	IsMarketDataFresh(symbol string) bool
	LoadMarketData(symbol string) []entity.Candle
	SaveMarketData(symbol string, candles []entity.Candle) error

	GetSignal(symbol, date string) (*entity.Signal, error)
	SaveSignal(sig entity.Signal) error

	GetPortfolioCache() ([]entity.Holding, bool, error)
	SetPortfolioCache(holdings []entity.Holding) error
	SavePortfolioSnapshot(date string, rows []entity.SnapshotRow) error

	GetSentiment(date string) (*entity.SentimentReading, error)
	SaveSentiment(date string, r entity.SentimentReading) error
}

// PortfolioSource はスプレッドシートから正規化済みの持倉リストを取得します。
type PortfolioSource interface {
	GetHoldings(ctx context.Context) ([]entity.Holding, error)
}

// MarketSource は外部APIから日足の価格履歴を取得します。
type MarketSource interface {
	GetHistoricalData(ctx context.Context, symbol string, assetType entity.AssetType, days int) ([]entity.Candle, error)
}

// SentimentSource は市場センチメント（Fear & Greed）を取得します。
type SentimentSource interface {
	GetSentiment(ctx context.Context) (entity.SentimentReading, error)
}

// ReportGenerator は集計済みデータから Markdown レポートを生成します。
type ReportGenerator interface {
	GenerateReport(ctx context.Context, rc ReportContext) (string, error)
}

// Notifier は生成されたレポートを配信します。
type Notifier interface {
	SendReport(ctx context.Context, text string) error
}

// AssetSummary はレポート用に評価された1銘柄分のサマリーです。
type AssetSummary struct {
	Symbol       string           `json:"symbol"`
	Type         entity.AssetType `json:"type"`
	Qty          float64          `json:"qty"`
	CurrentPrice float64          `json:"current_price"`
	MarketValue  float64          `json:"market_value"`
	CostBasis    float64          `json:"cost_basis"`
	UnrealizedPL float64          `json:"unrealized_pl"`
	ReturnRate   float64          `json:"return_rate"`
}

// ReportContext は LLM に渡す当日の全データです。
type ReportContext struct {
	Date       string                   `json:"date"`
	TotalValue float64                  `json:"total_value"`
	Assets     []AssetSummary           `json:"assets"`
	Sentiment  entity.SentimentReading  `json:"market_sentiment"`
	Signals    map[string]entity.Signal `json:"technical_analysis"`
}

// ReportUsecase は日次レポート生成の一連の流れを調整します。
// 各データ種別とも「鮮度確認 → ミス時のみ外部取得 → ファサード経由で保存」の
// プロトコルに従い、取得失敗時は前回の永続値が最後の正として残ります。
type ReportUsecase struct {
	store     DataStore
	portfolio PortfolioSource
	market    MarketSource
	sentiment SentimentSource
	analysis  *AnalysisUsecase
	reporter  ReportGenerator
	notifier  Notifier
	limiter   ratelimiter.RateLimiterInterface

	now func() time.Time
}

// NewReportUsecase は新しい ReportUsecase を作成します。
func NewReportUsecase(
	store DataStore,
	portfolio PortfolioSource,
	market MarketSource,
	sentiment SentimentSource,
	analysis *AnalysisUsecase,
	reporter ReportGenerator,
	notifier Notifier,
	limiter ratelimiter.RateLimiterInterface,
) *ReportUsecase {
	return &ReportUsecase{
		store:     store,
		portfolio: portfolio,
		market:    market,
		sentiment: sentiment,
		analysis:  analysis,
		reporter:  reporter,
		notifier:  notifier,
		limiter:   limiter,
		now:       time.Now,
	}
}

// Run は1回分の日次レポートを実行します。持倉が取得できない場合のみ
// 致命的エラーとし、個別銘柄の失敗はログに残して処理を続けます。
func (ru *ReportUsecase) Run(ctx context.Context) error {
	runDate := ru.now().Format("2006-01-02")

	holdings, err := ru.getHoldings(ctx)
	if err != nil {
		return fmt.Errorf("load holdings: %w", err)
	}
	if len(holdings) == 0 {
		return fmt.Errorf("no holdings to report on")
	}

	rc := ReportContext{
		Date:    runDate,
		Signals: make(map[string]entity.Signal, len(holdings)),
	}
	rows := make([]entity.SnapshotRow, 0, len(holdings))

	for _, h := range holdings {
		candles := ru.historyFor(ctx, h.Symbol, h.Type)
		if len(candles) == 0 {
			slog.Warn("no history available, skipping analysis", "symbol", h.Symbol)
			rows = append(rows, entity.SnapshotFromHolding(runDate, h))
			rc.Assets = append(rc.Assets, summarize(h, h.MarketPrice))
			rc.TotalValue += h.MarketPrice * h.Qty
			continue
		}

		sig, err := ru.signalFor(h, candles)
		if err != nil {
			slog.Warn("analysis skipped", "symbol", h.Symbol, "error", err)
			rows = append(rows, entity.SnapshotFromHolding(runDate, h))
			rc.Assets = append(rc.Assets, summarize(h, h.MarketPrice))
			rc.TotalValue += h.MarketPrice * h.Qty
			continue
		}

		rc.Signals[h.Symbol] = *sig
		rows = append(rows, entity.SnapshotFromHolding(runDate, h))
		rc.Assets = append(rc.Assets, summarize(h, sig.CurrentPrice))
		rc.TotalValue += sig.CurrentPrice * h.Qty
	}

	if err := ru.store.SavePortfolioSnapshot(runDate, rows); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	rc.Sentiment = ru.sentimentFor(ctx, runDate)

	report, err := ru.reporter.GenerateReport(ctx, rc)
	if err != nil {
		return fmt.Errorf("generate report: %w", err)
	}
	if err := ru.notifier.SendReport(ctx, report); err != nil {
		return fmt.Errorf("send report: %w", err)
	}
	return nil
}

// getHoldings はポートフォリオキャッシュを優先し、ミス時のみスプレッドシートを
// 読み直して書き戻します。
func (ru *ReportUsecase) getHoldings(ctx context.Context) ([]entity.Holding, error) {
	cached, ok, err := ru.store.GetPortfolioCache()
	if err != nil {
		slog.Warn("portfolio cache read failed", "error", err)
	}
	if ok {
		return cached, nil
	}

	holdings, err := ru.portfolio.GetHoldings(ctx)
	if err != nil {
		return nil, err
	}
	if len(holdings) > 0 {
		if err := ru.store.SetPortfolioCache(holdings); err != nil {
			slog.Warn("portfolio cache write failed", "error", err)
		}
	}
	return holdings, nil
}

// historyFor は鮮度が有効なら保存済み系列を返し、そうでなければ外部取得して
// ファサード経由で保存します。取得が失敗または空の場合は何も保存せず、
// 最後に永続化された系列をフォールバックとして返します。
func (ru *ReportUsecase) historyFor(ctx context.Context, symbol string, assetType entity.AssetType) []entity.Candle {
	if ru.store.IsMarketDataFresh(symbol) {
		if candles := ru.store.LoadMarketData(symbol); len(candles) > 0 {
			return candles
		}
	}

	ru.limiter.WaitIfNeeded()
	candles, err := ru.market.GetHistoricalData(ctx, symbol, assetType, historyDays)
	if err != nil || len(candles) == 0 {
		if err != nil {
			slog.Warn("history fetch failed, using last known data", "symbol", symbol, "error", err)
		}
		return ru.store.LoadMarketData(symbol)
	}

	if err := ru.store.SaveMarketData(symbol, candles); err != nil {
		slog.Warn("history save failed", "symbol", symbol, "error", err)
	}
	return candles
}

// signalFor は同じバー日付の保存済みシグナルを再利用し、なければ計算して
// 保存します。
func (ru *ReportUsecase) signalFor(h entity.Holding, candles []entity.Candle) (*entity.Signal, error) {
	barDate := entity.LastBarDate(candles)

	if sig, err := ru.store.GetSignal(h.Symbol, barDate); err != nil {
		slog.Warn("signal lookup failed", "symbol", h.Symbol, "error", err)
	} else if sig != nil {
		return sig, nil
	}

	sig, err := ru.analysis.Analyze(candles, h.Type)
	if err != nil {
		return nil, err
	}
	sig.Symbol = h.Symbol

	if err := ru.store.SaveSignal(*sig); err != nil {
		slog.Warn("signal save failed", "symbol", h.Symbol, "error", err)
	}
	return sig, nil
}

// sentimentFor は当日分の保存済みリーディングを優先し、ミス時のみ外部取得して
// 保存します。取得失敗時は中立値をレポートに使い、保存はしません。
func (ru *ReportUsecase) sentimentFor(ctx context.Context, date string) entity.SentimentReading {
	if stored, err := ru.store.GetSentiment(date); err != nil {
		slog.Warn("sentiment lookup failed", "error", err)
	} else if stored != nil {
		return *stored
	}

	reading, err := ru.sentiment.GetSentiment(ctx)
	if err != nil {
		slog.Warn("sentiment fetch failed, using neutral fallback", "error", err)
		return entity.NeutralSentiment()
	}
	if err := ru.store.SaveSentiment(date, reading); err != nil {
		slog.Warn("sentiment save failed", "error", err)
	}
	return reading
}

func summarize(h entity.Holding, price float64) AssetSummary {
	return AssetSummary{
		Symbol:       h.Symbol,
		Type:         h.Type,
		Qty:          h.Qty,
		CurrentPrice: price,
		MarketValue:  price * h.Qty,
		CostBasis:    h.Cost,
		UnrealizedPL: h.UnrealizedPL,
		ReturnRate:   h.ReturnRate,
	}
}
