// Package sheets は Google Sheets から持倉データを読み取り正規化します。
package sheets

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"invest_bot/internal/config"
	"invest_bot/internal/domain/entity"
	"invest_bot/internal/usecase"
)

// defaultReadRange は持倉シートの読み取り範囲です（1行目はヘッダー）。
const defaultReadRange = "Sheet1!A:Z"

// columnAliases はシート上の列名の揺れを正規名へ対応付けます。
var columnAliases = map[string]string{
	"Market Price":   "MarketPrice",
	"Price":          "MarketPrice",
	"Unrealized P/L": "UnrealizedPL",
	"P/L":            "UnrealizedPL",
	"Avg Cost":       "Cost",
	"Average Cost":   "Cost",
}

// Service は Google Sheets API で持倉シートを読み取るPortfolioSource実装です。
type Service struct {
	srv       *sheets.Service
	sheetID   string
	readRange string
}

// ServiceがPortfolioSourceを実装していることをコンパイル時に検証します。
var _ usecase.PortfolioSource = (*Service)(nil)

// NewService はサービスアカウント認証でSheetsクライアントを生成します。
func NewService(ctx context.Context, credentialsFile, sheetID string) (*Service, error) {
	srv, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsReadonlyScope),
	)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &Service{srv: srv, sheetID: sheetID, readRange: defaultReadRange}, nil
}

// GetHoldings はシートを読み取り、正規化済みの持倉リストを返します。
func (s *Service) GetHoldings(ctx context.Context) ([]entity.Holding, error) {
	resp, err := s.srv.Spreadsheets.Values.Get(s.sheetID, s.readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", s.sheetID, err)
	}
	return ParseHoldings(resp.Values), nil
}

// ParseHoldings はシートの生の値（1行目ヘッダー）を正規化します。
// Symbol のない行は捨て、数値セルは $ と , を除去してパースし、
// ReturnRate 列がなければ (MarketPrice-Cost)/Cost で補います。
func ParseHoldings(values [][]any) []entity.Holding {
	if len(values) < 2 {
		return nil
	}

	colIndex := make(map[string]int, len(values[0]))
	for i, cell := range values[0] {
		name := strings.TrimSpace(toString(cell))
		if alias, ok := columnAliases[name]; ok {
			name = alias
		}
		if _, exists := colIndex[name]; !exists {
			colIndex[name] = i
		}
	}
	_, hasReturnRate := colIndex["ReturnRate"]

	holdings := make([]entity.Holding, 0, len(values)-1)
	for _, row := range values[1:] {
		symbol := strings.ToUpper(strings.TrimSpace(cellAt(row, colIndex, "Symbol")))
		if symbol == "" {
			continue
		}

		h := entity.Holding{
			Symbol:       symbol,
			Qty:          parseNumber(cellAt(row, colIndex, "Qty")),
			Cost:         parseNumber(cellAt(row, colIndex, "Cost")),
			MarketPrice:  parseNumber(cellAt(row, colIndex, "MarketPrice")),
			UnrealizedPL: parseNumber(cellAt(row, colIndex, "UnrealizedPL")),
			Type:         entity.AssetTypeStock,
		}
		if config.IsCrypto(symbol) {
			h.Type = entity.AssetTypeCrypto
		}

		if hasReturnRate {
			h.ReturnRate = parseNumber(cellAt(row, colIndex, "ReturnRate"))
		} else if h.Cost != 0 {
			h.ReturnRate = (h.MarketPrice - h.Cost) / h.Cost
		}

		holdings = append(holdings, h)
	}
	return holdings
}

func cellAt(row []any, colIndex map[string]int, name string) string {
	i, ok := colIndex[name]
	if !ok || i >= len(row) {
		return ""
	}
	return toString(row[i])
}

func toString(cell any) string {
	s, _ := cell.(string)
	return s
}

// parseNumber は "$1,234.56" のような表記を float64 へ変換します。
// 変換できないセルは 0 として扱います。
func parseNumber(s string) float64 {
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	if cleaned == "" {
		return 0
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return v
}
