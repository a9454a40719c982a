package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"invest_bot/internal/domain/entity"
	"invest_bot/internal/platform/externalapi/yahoo/dto"
)

// Client は Yahoo Finance chart API のクライアントです。
type Client struct {
	cfg    Config
	client *http.Client
}

// NewClient は指定された設定とHTTPクライアントでClientの新しいインスタンスを生成します。
func NewClient(cfg Config, client *http.Client) *Client {
	return &Client{cfg: cfg, client: client}
}

// GetDailyHistory はティッカーの日足履歴を古い順で返します。調整後終値が
// あればそれを終値として使います（長期の指標計算向け）。null のバーは
// スキップします。
func (c *Client) GetDailyHistory(ctx context.Context, ticker string, days int) ([]entity.Candle, error) {
	q := url.Values{}
	q.Set("interval", "1d")
	q.Set("range", rangeParam(days))
	q.Set("events", "div,splits")

	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.cfg.BaseURL, url.PathEscape(ticker), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	// chart API は UA なしのリクエストを拒否することがある
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; invest-bot/1.0)")

	res, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("yahoo http %d", res.StatusCode)
	}

	var body dto.ChartResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode chart: %w", err)
	}
	if body.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo: %s", body.Chart.Error.Description)
	}
	if len(body.Chart.Result) == 0 || len(body.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo: empty chart result for %s", ticker)
	}

	result := body.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	var adj []*float64
	if len(result.Indicators.AdjClose) > 0 {
		adj = result.Indicators.AdjClose[0].AdjClose
	}

	candles := make([]entity.Candle, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == nil {
			continue
		}
		c := entity.Candle{
			Date:  time.Unix(ts, 0).UTC().Truncate(24 * time.Hour),
			Close: *quote.Close[i],
		}
		if adj != nil && i < len(adj) && adj[i] != nil {
			c.Close = *adj[i]
		}
		if i < len(quote.Open) && quote.Open[i] != nil {
			c.Open = *quote.Open[i]
		}
		if i < len(quote.High) && quote.High[i] != nil {
			c.High = *quote.High[i]
		}
		if i < len(quote.Low) && quote.Low[i] != nil {
			c.Low = *quote.Low[i]
		}
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			c.Volume = *quote.Volume[i]
		}
		candles = append(candles, c)
	}
	return candles, nil
}

// rangeParam は要求日数を chart API の range 値へ丸めます。
func rangeParam(days int) string {
	switch {
	case days <= 90:
		return "6mo"
	case days <= 250:
		return "1y"
	default:
		return "2y"
	}
}
