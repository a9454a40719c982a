package datastore

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"invest_bot/internal/domain/entity"
)

// newTestStore はインメモリSQLiteと一時ディレクトリでストアを構築します。
func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	s, err := New(db, t.TempDir())
	require.NoError(t, err)
	return s
}

func sampleSignal() entity.Signal {
	return entity.Signal{
		Symbol:       "BTC",
		AssetType:    entity.AssetTypeCrypto,
		Date:         "2025-06-01",
		CurrentPrice: 65000.12,
		RSI:          71.33,
		IsOverbought: false,
		IsOversold:   false,
		Trend:        entity.TrendBullish,
		EMAFast:      64800.5,
		EMAMid:       63000.25,
		EMASlow:      60000.75,
		MACDLine:     120.45,
		MACDSignal:   110.01,
		MACDHist:     10.44,
		BBUpper:      66000.9,
		BBLower:      62000.1,
		BBPctB:       0.75,
	}
}

// TestStore_SignalRoundtrip は保存したシグナルが欠落なく読み戻せることを
// 検証します。
func TestStore_SignalRoundtrip(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	want := sampleSignal()
	require.NoError(t, s.SaveSignal(want))

	got, err := s.GetSignal(want.Symbol, want.Date)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want, *got)
}

// TestStore_SignalUpsert は同一キーへの再保存が行を増やさず、最新値で
// 上書きされることを検証します。
func TestStore_SignalUpsert(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	first := sampleSignal()
	require.NoError(t, s.SaveSignal(first))

	second := first
	second.CurrentPrice = 66000
	second.RSI = 76.5
	second.IsOverbought = true
	require.NoError(t, s.SaveSignal(second))

	var count int64
	require.NoError(t, s.db.Model(&SignalModel{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	got, err := s.GetSignal(first.Symbol, first.Date)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, second, *got)
}

func TestStore_GetSignal_Missing(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	got, err := s.GetSignal("BTC", "2025-06-01")
	require.NoError(t, err)
	assert.Nil(t, got)
}

// TestStore_SnapshotReplacesBatch は同一日の再保存で前回バッチが完全に
// 置き換わること（5行→3行）を検証します。
func TestStore_SnapshotReplacesBatch(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	const date = "2025-06-01"
	makeRows := func(symbols ...string) []entity.SnapshotRow {
		rows := make([]entity.SnapshotRow, 0, len(symbols))
		for _, sym := range symbols {
			rows = append(rows, entity.SnapshotRow{
				Symbol: sym, AssetType: entity.AssetTypeStock,
				Qty: 1, MarketPrice: 100, MarketValue: 100,
			})
		}
		return rows
	}

	require.NoError(t, s.SavePortfolioSnapshot(date, makeRows("A", "B", "C", "D", "E")))
	require.NoError(t, s.SavePortfolioSnapshot(date, makeRows("A", "B", "C")))

	var got []SnapshotModel
	require.NoError(t, s.db.Where("date = ?", date).Order("symbol").Find(&got).Error)
	require.Len(t, got, 3)
	assert.Equal(t, "A", got[0].Symbol)
	assert.Equal(t, "C", got[2].Symbol)
}

// TestStore_SnapshotKeepsOtherDates は別日付のバッチには影響しないことを
// 検証します。
func TestStore_SnapshotKeepsOtherDates(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	rows := []entity.SnapshotRow{{Symbol: "BTC", AssetType: entity.AssetTypeCrypto, Qty: 1}}
	require.NoError(t, s.SavePortfolioSnapshot("2025-06-01", rows))
	require.NoError(t, s.SavePortfolioSnapshot("2025-06-02", rows))
	require.NoError(t, s.SavePortfolioSnapshot("2025-06-02", rows))

	var count int64
	require.NoError(t, s.db.Model(&SnapshotModel{}).Where("date = ?", "2025-06-01").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestStore_SnapshotEmptyBatchIsNoop(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	require.NoError(t, s.SavePortfolioSnapshot("2025-06-01",
		[]entity.SnapshotRow{{Symbol: "BTC", AssetType: entity.AssetTypeCrypto}}))
	require.NoError(t, s.SavePortfolioSnapshot("2025-06-01", nil))

	var count int64
	require.NoError(t, s.db.Model(&SnapshotModel{}).Count(&count).Error)
	assert.Equal(t, int64(1), count, "an empty batch must not erase the stored one")
}

// TestStore_SentimentOnePerDay は同一日への再保存が上書きになることを
// 検証します。
func TestStore_SentimentOnePerDay(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	const date = "2025-06-01"
	require.NoError(t, s.SaveSentiment(date, entity.SentimentReading{Value: 30, Classification: "Fear"}))
	require.NoError(t, s.SaveSentiment(date, entity.SentimentReading{Value: 72, Classification: "Greed"}))

	got, err := s.GetSentiment(date)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entity.SentimentReading{Value: 72, Classification: "Greed"}, *got)

	var count int64
	require.NoError(t, s.db.Model(&SentimentModel{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestStore_GetSentiment_Missing(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	got, err := s.GetSentiment("2025-06-01")
	require.NoError(t, err)
	assert.Nil(t, got)
}

// TestStore_CacheTTLBoundary は有効期限の直前では取得でき、超過後は
// 取得できないことを検証します。
func TestStore_CacheTTLBoundary(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }
	require.NoError(t, s.SetCache("k", "v", PortfolioCacheTTL))

	var v string
	s.now = func() time.Time { return base.Add(59 * time.Minute) }
	ok, err := s.GetCache("k", &v)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	s.now = func() time.Time { return base.Add(61 * time.Minute) }
	ok, err = s.GetCache("k", &v)
	require.NoError(t, err)
	assert.False(t, ok, "expired entries must read as a miss")
}

// TestStore_CacheUpsertExtendsTTL は再書き込みで期限が更新されることを
// 検証します。
func TestStore_CacheUpsertExtendsTTL(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }
	require.NoError(t, s.SetCache("k", 1, time.Minute))

	s.now = func() time.Time { return base.Add(50 * time.Second) }
	require.NoError(t, s.SetCache("k", 2, time.Minute))

	s.now = func() time.Time { return base.Add(100 * time.Second) }
	var v int
	ok, err := s.GetCache("k", &v)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestStore_PortfolioCacheRoundtrip(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	_, ok, err := s.GetPortfolioCache()
	require.NoError(t, err)
	assert.False(t, ok)

	want := []entity.Holding{
		{Symbol: "BTC", Qty: 0.5, Cost: 30000, MarketPrice: 65000, UnrealizedPL: 17500, ReturnRate: 1.17, Type: entity.AssetTypeCrypto},
		{Symbol: "TSLA", Qty: 10, Cost: 200, MarketPrice: 250, UnrealizedPL: 500, ReturnRate: 0.25, Type: entity.AssetTypeStock},
	}
	require.NoError(t, s.SetPortfolioCache(want))

	got, ok, err := s.GetPortfolioCache()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func testCandles(n int) []entity.Candle {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]entity.Candle, 0, n)
	for i := 0; i < n; i++ {
		price := 100 + float64(i)
		candles = append(candles, entity.Candle{
			Date:   base.AddDate(0, 0, i),
			Open:   price - 0.5,
			High:   price + 1,
			Low:    price - 1,
			Close:  price,
			Volume: 1000 + float64(i),
		})
	}
	return candles
}

// TestStore_MarketDataRoundtrip は系列の保存・読み戻しと鮮度マーカーを
// 検証します。
func TestStore_MarketDataRoundtrip(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	assert.False(t, s.IsMarketDataFresh("BTCUSDT"))
	assert.Nil(t, s.LoadMarketData("BTCUSDT"))

	want := testCandles(30)
	require.NoError(t, s.SaveMarketData("BTCUSDT", want))
	assert.True(t, s.IsMarketDataFresh("BTCUSDT"))
	assert.Equal(t, want, s.LoadMarketData("BTCUSDT"))
}

// TestStore_MarketDataFreshnessExpiry は12時間のTTL境界で鮮度判定が
// 切り替わり、系列自体は失効後も読めることを検証します。
func TestStore_MarketDataFreshnessExpiry(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }
	require.NoError(t, s.SaveMarketData("BTCUSDT", testCandles(30)))

	s.now = func() time.Time { return base.Add(11 * time.Hour) }
	assert.True(t, s.IsMarketDataFresh("BTCUSDT"))

	s.now = func() time.Time { return base.Add(13 * time.Hour) }
	assert.False(t, s.IsMarketDataFresh("BTCUSDT"))
	assert.Len(t, s.LoadMarketData("BTCUSDT"), 30, "stale series must stay readable as last known data")
}

// TestStore_MarketDataOverwrite は全量上書きで古い行が残らないことを
// 検証します。
func TestStore_MarketDataOverwrite(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	require.NoError(t, s.SaveMarketData("ETHUSDT", testCandles(30)))
	shorter := testCandles(10)
	require.NoError(t, s.SaveMarketData("ETHUSDT", shorter))
	assert.Equal(t, shorter, s.LoadMarketData("ETHUSDT"))
}

func TestStore_SaveMarketData_EmptyIsNoop(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	require.NoError(t, s.SaveMarketData("BTCUSDT", testCandles(5)))
	require.NoError(t, s.SaveMarketData("BTCUSDT", nil))
	assert.Len(t, s.LoadMarketData("BTCUSDT"), 5)
}

// TestStore_SeriesPathSanitized はペア記号を含むシンボルが安全なファイル名に
// 変換されることを検証します。
func TestStore_SeriesPathSanitized(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	require.NoError(t, s.SaveMarketData("BTC/USDT", testCandles(5)))

	_, err := os.Stat(filepath.Join(s.seriesDir, "BTC_USDT.csv"))
	assert.NoError(t, err)
	assert.Len(t, s.LoadMarketData("BTC/USDT"), 5)
}

// TestStore_LoadMarketData_Corrupt は壊れたファイルを空系列として扱うことを
// 検証します。
func TestStore_LoadMarketData_Corrupt(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	path := filepath.Join(s.seriesDir, "AAPL.csv")
	require.NoError(t, os.WriteFile(path, []byte("date,open\n2025-01-01,not-a-number\n"), 0o644))

	assert.Nil(t, s.LoadMarketData("AAPL"))
}
