package datastore

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"invest_bot/internal/domain/entity"
)

var seriesHeader = []string{"date", "open", "high", "low", "close", "volume"}

// seriesPath maps a symbol to its series file, substituting path-unsafe
// separators (pair symbols like BTC/USDT) with underscores.
func (s *Store) seriesPath(symbol string) string {
	safe := strings.NewReplacer("/", "_", "\\", "_", ":", "_").Replace(symbol)
	return filepath.Join(s.seriesDir, safe+".csv")
}

func marketDataKey(symbol string) string {
	return "market_data_" + symbol
}

// IsMarketDataFresh reports whether the series for symbol was written within
// the freshness window. A cache read failure counts as stale (fail open).
func (s *Store) IsMarketDataFresh(symbol string) bool {
	var marker string
	ok, err := s.GetCache(marketDataKey(symbol), &marker)
	if err != nil {
		slog.Warn("freshness check failed", "symbol", symbol, "error", err)
		return false
	}
	return ok
}

// SaveMarketData overwrites the whole series file for symbol and refreshes
// its freshness marker. The file is written to a temp path and renamed so a
// partially written series is never visible. An empty series writes nothing
// and leaves the previous file and marker untouched.
func (s *Store) SaveMarketData(symbol string, candles []entity.Candle) error {
	if len(candles) == 0 {
		return nil
	}
	path := s.seriesPath(symbol)
	tmp, err := os.CreateTemp(s.seriesDir, filepath.Base(path)+".tmp")
	if err != nil {
		return fmt.Errorf("save series %s: %w", symbol, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	w := csv.NewWriter(tmp)
	if err := w.Write(seriesHeader); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("save series %s: %w", symbol, err)
	}
	for _, c := range candles {
		rec := []string{
			c.Date.Format("2006-01-02"),
			strconv.FormatFloat(c.Open, 'f', -1, 64),
			strconv.FormatFloat(c.High, 'f', -1, 64),
			strconv.FormatFloat(c.Low, 'f', -1, 64),
			strconv.FormatFloat(c.Close, 'f', -1, 64),
			strconv.FormatFloat(c.Volume, 'f', -1, 64),
		}
		if err := w.Write(rec); err != nil {
			_ = tmp.Close()
			return fmt.Errorf("save series %s: %w", symbol, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("save series %s: %w", symbol, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save series %s: %w", symbol, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("save series %s: %w", symbol, err)
	}
	return s.SetCache(marketDataKey(symbol), "updated", MarketDataTTL)
}

// LoadMarketData returns the persisted series for symbol regardless of the
// freshness marker; a stale file is still useful as last-known-good data.
// A missing or unreadable file yields an empty series, never an error.
func (s *Store) LoadMarketData(symbol string) []entity.Candle {
	f, err := os.Open(s.seriesPath(symbol))
	if err != nil {
		return nil
	}
	defer func() { _ = f.Close() }()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil || len(records) < 2 {
		if err != nil {
			slog.Warn("unreadable series file", "symbol", symbol, "error", err)
		}
		return nil
	}

	candles := make([]entity.Candle, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) != len(seriesHeader) {
			slog.Warn("malformed series row", "symbol", symbol)
			return nil
		}
		date, err := time.Parse("2006-01-02", rec[0])
		if err != nil {
			slog.Warn("malformed series row", "symbol", symbol, "error", err)
			return nil
		}
		vals := make([]float64, 5)
		for i := 1; i < len(rec); i++ {
			v, err := strconv.ParseFloat(rec[i], 64)
			if err != nil {
				slog.Warn("malformed series row", "symbol", symbol, "error", err)
				return nil
			}
			vals[i-1] = v
		}
		candles = append(candles, entity.Candle{
			Date:   date,
			Open:   vals[0],
			High:   vals[1],
			Low:    vals[2],
			Close:  vals[3],
			Volume: vals[4],
		})
	}
	return candles
}
