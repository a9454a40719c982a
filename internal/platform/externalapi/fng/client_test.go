package fng_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invest_bot/internal/domain/entity"
	"invest_bot/internal/platform/externalapi/fng"
)

func newTestClient(srv *httptest.Server) *fng.Client {
	return fng.NewClient(fng.Config{BaseURL: srv.URL, Timeout: time.Second}, srv.Client())
}

func TestClient_GetSentiment(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fng/", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{"name":"Fear and Greed Index","data":[{"value":"72","value_classification":"Greed","timestamp":"1735689600"}]}`))
	}))
	defer srv.Close()

	got, err := newTestClient(srv).GetSentiment(context.Background())
	require.NoError(t, err)
	assert.Equal(t, entity.SentimentReading{Value: 72, Classification: "Greed"}, got)
}

// フォールバックは呼び出し側の責務なので、クライアントは失敗をそのまま
// エラーとして返す。
func TestClient_GetSentiment_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "http error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "rate limited", http.StatusTooManyRequests)
			},
		},
		{
			name: "empty data",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"data":[]}`))
			},
		},
		{
			name: "non numeric value",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"data":[{"value":"n/a","value_classification":"Unknown"}]}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := newTestClient(srv).GetSentiment(context.Background())
			assert.Error(t, err)
		})
	}
}
