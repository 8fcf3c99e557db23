package gateway

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

const (
	defaultFetchTimeout       = 180 * time.Second
	defaultFetchCacheTTL      = 30 * time.Minute
	defaultFetchCacheInterval = 1 * time.Hour
)

type fetchCache interface {
	Get(key string) (any, bool)
	Set(key string, value any, ttl time.Duration)
}

func newFetchCache(ttl time.Duration) fetchCache {
	return cache.New(ttl, defaultFetchCacheInterval)
}

// newHTTPClient は成果物ダウンロード用のHTTPクライアントを生成します。
// ビデオ取得は数十MB規模になるため、接続再利用とヘッダタイムアウトを調整しています。
func newHTTPClient(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{
		Timeout:   15 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   20,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   15 * time.Second,
		ResponseHeaderTimeout: 60 * time.Second,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// FetchBytes は URI から成果物を取得します。現在の資格情報をクエリに付与し、
// 成功した結果はTTL付きでキャッシュします（同じ成果物の再表示・再保存用）。
func (c *Client) FetchBytes(ctx context.Context, uri string) ([]byte, error) {
	c.mu.RLock()
	apiKey := c.apiKey
	c.mu.RUnlock()
	if apiKey == "" {
		return nil, ErrNotConfigured
	}

	if cached, ok := c.fetchCache.Get(uri); ok {
		if data, ok := cached.([]byte); ok {
			return data, nil
		}
	}

	sep := "?"
	if strings.Contains(uri, "?") {
		sep = "&"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri+sep+"key="+apiKey, nil)
	if err != nil {
		return nil, &NetworkError{URI: uri, Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{URI: uri, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &NetworkError{URI: uri, Status: resp.Status}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{URI: uri, Err: fmt.Errorf("read body: %w", err)}
	}

	c.fetchCache.Set(uri, data, cache.DefaultExpiration)
	return data, nil
}
