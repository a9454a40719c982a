package datastore

import "time"

// SignalModel is the persistence model for computed technical signals.
// At most one row may exist per (symbol, date); date is the ISO calendar day
// of the last bar in the source series, not the fetch day.
type SignalModel struct {
	ID        uint   `gorm:"primaryKey"`
	Symbol    string `gorm:"size:32;not null;uniqueIndex:signal_symbol_date,priority:1"`
	Date      string `gorm:"size:10;not null;uniqueIndex:signal_symbol_date,priority:2"`
	AssetType string `gorm:"size:16;not null"`

	CurrentPrice float64

	RSI          float64
	IsOverbought bool
	IsOversold   bool

	Trend   string `gorm:"size:16"`
	EMAFast float64
	EMAMid  float64
	EMASlow float64

	MACDLine   float64
	MACDSignal float64
	MACDHist   float64

	BBUpper float64
	BBLower float64
	BBPctB  float64

	CreatedAt time.Time
}

func (SignalModel) TableName() string {
	return "tech_signals"
}

// SnapshotModel is one holding's valuation row for a report run day.
// No uniqueness constraint: the application replaces the whole batch for a
// date inside one transaction.
type SnapshotModel struct {
	ID        uint   `gorm:"primaryKey"`
	Date      string `gorm:"size:10;not null;index:idx_snapshot_date"`
	Symbol    string `gorm:"size:32;not null"`
	AssetType string `gorm:"size:16;not null"`

	Qty          float64
	CostBasis    float64
	MarketPrice  float64
	MarketValue  float64
	UnrealizedPL float64
	ReturnRate   float64

	CreatedAt time.Time
}

func (SnapshotModel) TableName() string {
	return "portfolio_snapshots"
}

// SentimentModel holds one Fear & Greed reading per calendar day.
type SentimentModel struct {
	ID             uint   `gorm:"primaryKey"`
	Date           string `gorm:"size:10;not null;uniqueIndex"`
	Value          int
	Classification string `gorm:"size:32"`

	CreatedAt time.Time
}

func (SentimentModel) TableName() string {
	return "market_sentiment"
}

// CacheModel is a generic TTL cache entry. Value is a JSON blob; reads
// ignore expired rows without removing them.
type CacheModel struct {
	Key       string `gorm:"primaryKey;size:128"`
	Value     string
	ExpiresAt time.Time
	UpdatedAt time.Time
}

func (CacheModel) TableName() string {
	return "system_cache"
}
