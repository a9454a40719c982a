package entity

// Holding is one normalized row from the portfolio spreadsheet.
// The JSON tags matter: the full holding list is cached as a JSON array in
// the generic TTL cache so repeated runs within the window skip the
// spreadsheet fetch entirely.
type Holding struct {
	Symbol       string    `json:"symbol"`
	Qty          float64   `json:"qty"`
	Cost         float64   `json:"cost"`
	MarketPrice  float64   `json:"market_price"`
	UnrealizedPL float64   `json:"unrealized_pl"`
	ReturnRate   float64   `json:"return_rate"`
	Type         AssetType `json:"type"`
}
