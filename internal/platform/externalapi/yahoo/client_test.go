package yahoo_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invest_bot/internal/platform/externalapi/yahoo"
)

// chartBody は chart API のレスポンスを3バーに縮めたものです。
// 2本目は休場日を模して null、3本目は調整後終値が生の終値と異なります。
const chartBody = `{
  "chart": {
    "result": [{
      "timestamp": [1735689600, 1735776000, 1735862400],
      "indicators": {
        "quote": [{
          "open":   [250.0, null, 252.0],
          "high":   [255.0, null, 258.0],
          "low":    [248.0, null, 251.0],
          "close":  [252.5, null, 257.0],
          "volume": [1000000, null, 1200000]
        }],
        "adjclose": [{"adjclose": [252.5, null, 256.5]}]
      }
    }],
    "error": null
  }
}`

func TestClient_GetDailyHistory(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/TSLA", r.URL.Path)
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		assert.Equal(t, "1y", r.URL.Query().Get("range"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chartBody))
	}))
	defer srv.Close()

	c := yahoo.NewClient(yahoo.Config{BaseURL: srv.URL, Timeout: time.Second}, srv.Client())
	candles, err := c.GetDailyHistory(context.Background(), "TSLA", 200)
	require.NoError(t, err)

	// null バーはスキップされる
	require.Len(t, candles, 2)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), candles[0].Date)
	assert.Equal(t, 252.5, candles[0].Close)
	assert.Equal(t, 250.0, candles[0].Open)
	assert.Equal(t, 1000000.0, candles[0].Volume)
	// 調整後終値が優先される
	assert.Equal(t, 256.5, candles[1].Close)
	assert.Equal(t, 252.0, candles[1].Open)
}

func TestClient_GetDailyHistory_APIError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
	}))
	defer srv.Close()

	c := yahoo.NewClient(yahoo.Config{BaseURL: srv.URL, Timeout: time.Second}, srv.Client())
	_, err := c.GetDailyHistory(context.Background(), "NOPE", 200)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delisted")
}

func TestRangeParam(t *testing.T) {
	t.Parallel()

	tests := []struct {
		days int
		want string
	}{
		{30, "6mo"},
		{90, "6mo"},
		{200, "1y"},
		{250, "1y"},
		{400, "2y"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, yahoo.RangeParam(tt.days), "days=%d", tt.days)
	}
}
