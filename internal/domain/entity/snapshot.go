package entity

// SnapshotRow is one holding's valuation on a report run day. The set of
// rows for a given date is always replaced as a whole batch.
type SnapshotRow struct {
	Date         string    `json:"date"` // Run date, not a bar date
	Symbol       string    `json:"symbol"`
	AssetType    AssetType `json:"asset_type"`
	Qty          float64   `json:"qty"`
	CostBasis    float64   `json:"cost_basis"`
	MarketPrice  float64   `json:"market_price"`
	MarketValue  float64   `json:"market_value"` // MarketPrice * Qty
	UnrealizedPL float64   `json:"unrealized_pl"`
	ReturnRate   float64   `json:"return_rate"`
}

// SnapshotFromHolding values a holding for the given run date.
func SnapshotFromHolding(date string, h Holding) SnapshotRow {
	return SnapshotRow{
		Date:         date,
		Symbol:       h.Symbol,
		AssetType:    h.Type,
		Qty:          h.Qty,
		CostBasis:    h.Cost,
		MarketPrice:  h.MarketPrice,
		MarketValue:  h.MarketPrice * h.Qty,
		UnrealizedPL: h.UnrealizedPL,
		ReturnRate:   h.ReturnRate,
	}
}
