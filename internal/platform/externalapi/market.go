// Package externalapi は資産クラスごとの価格履歴ソースを1つの
// MarketSource に束ねます。
package externalapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"invest_bot/internal/config"
	"invest_bot/internal/domain/entity"
	"invest_bot/internal/platform/externalapi/binance"
	"invest_bot/internal/platform/externalapi/yahoo"
	"invest_bot/internal/usecase"
)

// historyBuffer は長期EMAの計算に足りるよう要求日数へ上乗せする日数です。
const historyBuffer = 100

// Market は銘柄の資産クラスに応じて Binance / Yahoo を振り分けます。
type Market struct {
	crypto *binance.Client
	stock  *yahoo.Client
}

// MarketがMarketSourceを実装していることをコンパイル時に検証します。
var _ usecase.MarketSource = (*Market)(nil)

// NewMarket は設定済みのクライアント群からMarketを組み立てます。
func NewMarket(crypto *binance.Client, stock *yahoo.Client) *Market {
	return &Market{crypto: crypto, stock: stock}
}

// NewDefaultMarket は環境変数の設定で各クライアントを生成します。
func NewDefaultMarket(newHTTPClient func(time.Duration) *http.Client) *Market {
	bcfg := binance.LoadConfig()
	ycfg := yahoo.LoadConfig()
	return NewMarket(
		binance.NewClient(bcfg, newHTTPClient(bcfg.Timeout)),
		yahoo.NewClient(ycfg, newHTTPClient(ycfg.Timeout)),
	)
}

// GetHistoricalData はシートの銘柄コードをAPI用のシンボルへ対応付けて
// 日足履歴を取得します。
func (m *Market) GetHistoricalData(ctx context.Context, symbol string, assetType entity.AssetType, days int) ([]entity.Candle, error) {
	if assetType == entity.AssetTypeCrypto {
		pair, ok := config.CryptoMapping[symbol]
		if !ok {
			pair = symbol + "USDT"
		}
		candles, err := m.crypto.GetKlines(ctx, pair, days+historyBuffer)
		if err != nil {
			return nil, fmt.Errorf("crypto history %s: %w", symbol, err)
		}
		return candles, nil
	}

	ticker, ok := config.StockMapping[symbol]
	if !ok {
		ticker = symbol
	}
	candles, err := m.stock.GetDailyHistory(ctx, ticker, days+historyBuffer)
	if err != nil {
		return nil, fmt.Errorf("stock history %s: %w", symbol, err)
	}
	return candles, nil
}
