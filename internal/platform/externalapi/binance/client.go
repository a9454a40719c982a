package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"invest_bot/internal/domain/entity"
)

// Client は Binance の kline エンドポイントから日足OHLCVを取得します。
type Client struct {
	cfg    Config
	client *http.Client
}

// NewClient は指定された設定とHTTPクライアントでClientの新しいインスタンスを生成します。
func NewClient(cfg Config, client *http.Client) *Client {
	return &Client{cfg: cfg, client: client}
}

// GetKlines は通貨ペア（例: BTCUSDT）の日足履歴を古い順で返します。
// Binance の kline は価格をJSON文字列で返すため個別にパースします。
func (c *Client) GetKlines(ctx context.Context, pair string, limit int) ([]entity.Candle, error) {
	q := url.Values{}
	q.Set("symbol", pair)
	q.Set("interval", "1d")
	q.Set("limit", strconv.Itoa(limit))

	u := fmt.Sprintf("%s/api/v3/klines?%s", c.cfg.BaseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	res, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("binance http %d", res.StatusCode)
	}

	// kline は [openTime, open, high, low, close, volume, ...] の配列の配列
	var rows [][]any
	if err := json.NewDecoder(res.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode klines: %w", err)
	}

	candles := make([]entity.Candle, 0, len(rows))
	for _, row := range rows {
		if len(row) < 6 {
			return nil, fmt.Errorf("kline row too short: %d fields", len(row))
		}
		openTime, ok := row[0].(float64)
		if !ok {
			return nil, fmt.Errorf("kline open time is not a number")
		}
		vals := make([]float64, 5)
		for i := 1; i <= 5; i++ {
			s, ok := row[i].(string)
			if !ok {
				return nil, fmt.Errorf("kline field %d is not a string", i)
			}
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("parse kline field %d %q: %w", i, s, err)
			}
			vals[i-1] = v
		}
		candles = append(candles, entity.Candle{
			Date:   time.UnixMilli(int64(openTime)).UTC(),
			Open:   vals[0],
			High:   vals[1],
			Low:    vals[2],
			Close:  vals[3],
			Volume: vals[4],
		})
	}
	return candles, nil
}
