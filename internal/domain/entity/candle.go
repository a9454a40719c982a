// Package entity defines the domain models shared across the report pipeline.
package entity

import "time"

// AssetType classifies a holding for data sourcing and indicator tuning.
type AssetType string

const (
	// AssetTypeStock is an equity holding priced via the stock history source.
	AssetTypeStock AssetType = "Stock"
	// AssetTypeCrypto is a crypto holding priced via the exchange history source.
	AssetTypeCrypto AssetType = "Crypto"
)

// Candle represents one daily OHLCV (Open, High, Low, Close, Volume) bar
// for a symbol.
type Candle struct {
	Date   time.Time // Calendar day of this bar
	Open   float64   // Opening price
	High   float64   // Highest price during the day
	Low    float64   // Lowest price during the day
	Close  float64   // Closing price
	Volume float64   // Trading volume (fractional for crypto pairs)
}

// LastBarDate returns the ISO date (YYYY-MM-DD) of the last bar in the
// series, or "" for an empty series. Signals are keyed by this date, not by
// the day the data was fetched.
func LastBarDate(candles []Candle) string {
	if len(candles) == 0 {
		return ""
	}
	return candles[len(candles)-1].Date.Format("2006-01-02")
}
