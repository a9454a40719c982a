// Package datastore is the single entry point for all freshness decisions
// and persistence in the report pipeline. It composes the relational store
// (signals, snapshots, sentiment, generic TTL cache) with the per-symbol
// time-series files; fetchers and the analysis engine never touch storage
// directly.
package datastore

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"invest_bot/internal/domain/entity"
	"invest_bot/internal/usecase"
)

// Store implements the cache-and-store facade over a gorm database and a
// directory of per-symbol series files.
type Store struct {
	db        *gorm.DB
	seriesDir string

	// now is swapped in tests to simulate TTL expiry.
	now func() time.Time
}

// Store satisfies the facade interface the report usecase consumes.
var _ usecase.DataStore = (*Store)(nil)

// New creates the schema (idempotently; existing tables are never dropped or
// migrated destructively) and prepares the series directory. Failure here is
// fatal for the process: nothing works without its store.
func New(db *gorm.DB, seriesDir string) (*Store, error) {
	if err := os.MkdirAll(seriesDir, 0o755); err != nil {
		return nil, fmt.Errorf("create series dir: %w", err)
	}
	if err := db.AutoMigrate(
		&SignalModel{},
		&SnapshotModel{},
		&SentimentModel{},
		&CacheModel{},
	); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return &Store{db: db, seriesDir: seriesDir, now: time.Now}, nil
}

// GetSignal looks up the signal stored for (symbol, date). A missing row is
// not an error: it returns (nil, nil) so callers can distinguish "compute it"
// from a storage failure.
func (s *Store) GetSignal(symbol, date string) (*entity.Signal, error) {
	var m SignalModel
	err := s.db.Where("symbol = ? AND date = ?", symbol, date).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get signal %s@%s: %w", symbol, date, err)
	}
	sig := signalFromModel(m)
	return &sig, nil
}

// SaveSignal upserts the signal keyed by (symbol, date) in a single atomic
// statement, so a concurrent reader can never observe the row deleted but
// not yet reinserted.
func (s *Store) SaveSignal(sig entity.Signal) error {
	m := signalToModel(sig)
	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "symbol"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"asset_type", "current_price",
			"rsi", "is_overbought", "is_oversold",
			"trend", "ema_fast", "ema_mid", "ema_slow",
			"macd_line", "macd_signal", "macd_hist",
			"bb_upper", "bb_lower", "bb_pct_b",
		}),
	}).Create(&m).Error
	if err != nil {
		return fmt.Errorf("save signal %s@%s: %w", sig.Symbol, sig.Date, err)
	}
	return nil
}

// SavePortfolioSnapshot replaces the snapshot batch for a run date. Delete
// and insert run in one transaction so a partial overwrite is never
// observable.
func (s *Store) SavePortfolioSnapshot(date string, rows []entity.SnapshotRow) error {
	if len(rows) == 0 {
		return nil
	}
	ms := make([]SnapshotModel, 0, len(rows))
	for _, r := range rows {
		ms = append(ms, SnapshotModel{
			Date:         date,
			Symbol:       r.Symbol,
			AssetType:    string(r.AssetType),
			Qty:          r.Qty,
			CostBasis:    r.CostBasis,
			MarketPrice:  r.MarketPrice,
			MarketValue:  r.MarketValue,
			UnrealizedPL: r.UnrealizedPL,
			ReturnRate:   r.ReturnRate,
		})
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("date = ?", date).Delete(&SnapshotModel{}).Error; err != nil {
			return err
		}
		return tx.Create(&ms).Error
	})
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", date, err)
	}
	return nil
}

// GetSentiment returns the reading stored for a date, or (nil, nil) when
// none exists.
func (s *Store) GetSentiment(date string) (*entity.SentimentReading, error) {
	var m SentimentModel
	err := s.db.Where("date = ?", date).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get sentiment %s: %w", date, err)
	}
	return &entity.SentimentReading{Value: m.Value, Classification: m.Classification}, nil
}

// SaveSentiment upserts the single reading for a date.
func (s *Store) SaveSentiment(date string, r entity.SentimentReading) error {
	m := SentimentModel{Date: date, Value: r.Value, Classification: r.Classification}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "classification"}),
	}).Create(&m).Error
	if err != nil {
		return fmt.Errorf("save sentiment %s: %w", date, err)
	}
	return nil
}

func signalToModel(sig entity.Signal) SignalModel {
	return SignalModel{
		Symbol:       sig.Symbol,
		Date:         sig.Date,
		AssetType:    string(sig.AssetType),
		CurrentPrice: sig.CurrentPrice,
		RSI:          sig.RSI,
		IsOverbought: sig.IsOverbought,
		IsOversold:   sig.IsOversold,
		Trend:        string(sig.Trend),
		EMAFast:      sig.EMAFast,
		EMAMid:       sig.EMAMid,
		EMASlow:      sig.EMASlow,
		MACDLine:     sig.MACDLine,
		MACDSignal:   sig.MACDSignal,
		MACDHist:     sig.MACDHist,
		BBUpper:      sig.BBUpper,
		BBLower:      sig.BBLower,
		BBPctB:       sig.BBPctB,
	}
}

func signalFromModel(m SignalModel) entity.Signal {
	return entity.Signal{
		Symbol:       m.Symbol,
		Date:         m.Date,
		AssetType:    entity.AssetType(m.AssetType),
		CurrentPrice: m.CurrentPrice,
		RSI:          m.RSI,
		IsOverbought: m.IsOverbought,
		IsOversold:   m.IsOversold,
		Trend:        entity.Trend(m.Trend),
		EMAFast:      m.EMAFast,
		EMAMid:       m.EMAMid,
		EMASlow:      m.EMASlow,
		MACDLine:     m.MACDLine,
		MACDSignal:   m.MACDSignal,
		MACDHist:     m.MACDHist,
		BBUpper:      m.BBUpper,
		BBLower:      m.BBLower,
		BBPctB:       m.BBPctB,
	}
}
