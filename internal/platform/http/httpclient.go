package http

import (
	"net"
	"net/http"
	"time"
)

// NewHTTPClient は外部データAPI呼び出し用のHTTPクライアントを作成します。
// http.DefaultClient にはタイムアウトがないため、必ずこれを使うこと。
// Transport は接続の安定性とリソース管理のために明示的に設定します。
func NewHTTPClient(timeout time.Duration) *http.Client {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: t}
}
