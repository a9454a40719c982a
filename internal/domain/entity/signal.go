package entity

// Trend classifies the current close against the trend-reference EMA.
type Trend string

const (
	TrendBullish Trend = "Bullish"
	TrendBearish Trend = "Bearish"
)

// Signal is the technical-analysis result for one symbol on one bar date.
// All numeric values are rounded to 2 decimal places at emission so that a
// signal read back from storage compares equal to the freshly computed one.
type Signal struct {
	Symbol    string    `json:"symbol"`
	AssetType AssetType `json:"asset_type"`
	Date      string    `json:"date"` // ISO date of the last bar in the source series

	CurrentPrice float64 `json:"current_price"`

	RSI          float64 `json:"rsi"`
	IsOverbought bool    `json:"is_overbought"`
	IsOversold   bool    `json:"is_oversold"`

	Trend   Trend   `json:"trend"`
	EMAFast float64 `json:"ema_fast"`
	EMAMid  float64 `json:"ema_mid"`
	EMASlow float64 `json:"ema_slow"`

	MACDLine   float64 `json:"macd_line"`
	MACDSignal float64 `json:"macd_signal"`
	MACDHist   float64 `json:"macd_hist"`

	BBUpper float64 `json:"bb_upper"`
	BBLower float64 `json:"bb_lower"`
	BBPctB  float64 `json:"bb_pct_b"`
}
