// Package fng は alternative.me の Fear & Greed Index を取得します。
package fng

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"invest_bot/internal/domain/entity"
)

// Config は Fear & Greed クライアントの設定を保持します。
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// LoadConfig は環境変数から設定を読み込みます。
func LoadConfig() Config {
	base := os.Getenv("FNG_BASE_URL")
	if base == "" {
		base = "https://api.alternative.me"
	}
	return Config{
		BaseURL: base,
		Timeout: 10 * time.Second,
	}
}

// Client は Fear & Greed Index APIのクライアントです。
type Client struct {
	cfg    Config
	client *http.Client
}

// NewClient は指定された設定とHTTPクライアントでClientの新しいインスタンスを生成します。
func NewClient(cfg Config, client *http.Client) *Client {
	return &Client{cfg: cfg, client: client}
}

// fngResponse は /fng/ エンドポイントのJSONレスポンスです。値は文字列で返ります。
type fngResponse struct {
	Data []struct {
		Value               string `json:"value"`
		ValueClassification string `json:"value_classification"`
	} `json:"data"`
}

// GetSentiment は最新のリーディングを取得します。取得や解析の失敗は
// そのままエラーとして返し、フォールバックは呼び出し側が決めます。
func (c *Client) GetSentiment(ctx context.Context) (entity.SentimentReading, error) {
	u := fmt.Sprintf("%s/fng/?limit=1", c.cfg.BaseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return entity.SentimentReading{}, err
	}
	res, err := c.client.Do(req)
	if err != nil {
		return entity.SentimentReading{}, err
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode >= 400 {
		return entity.SentimentReading{}, fmt.Errorf("fng http %d", res.StatusCode)
	}

	var body fngResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return entity.SentimentReading{}, fmt.Errorf("decode fng: %w", err)
	}
	if len(body.Data) == 0 {
		return entity.SentimentReading{}, fmt.Errorf("fng: empty data")
	}

	value, err := strconv.Atoi(body.Data[0].Value)
	if err != nil {
		return entity.SentimentReading{}, fmt.Errorf("parse fng value %q: %w", body.Data[0].Value, err)
	}
	return entity.SentimentReading{
		Value:          value,
		Classification: body.Data[0].ValueClassification,
	}, nil
}
