package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// newFetchTestClient は資格情報だけを直接差し込んだ Client を返すのだ。
// Configure は実APIへ接続するのでテストでは使わないのだ。
func newFetchTestClient(apiKey string) *Client {
	c := New(Options{HTTPClient: &http.Client{Timeout: 5 * time.Second}})
	c.apiKey = apiKey
	return c
}

func TestClient_FetchBytes(t *testing.T) {
	t.Run("APIキーをクエリに付けて取得するのだ", func(t *testing.T) {
		var gotKey string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotKey = r.URL.Query().Get("key")
			w.Write([]byte("video-bytes"))
		}))
		defer srv.Close()

		c := newFetchTestClient("secret")
		data, err := c.FetchBytes(context.Background(), srv.URL+"/v1/files/abc")
		if err != nil {
			t.Fatalf("取得に失敗したのだ: %v", err)
		}
		if string(data) != "video-bytes" {
			t.Errorf("本文が違うのだ: %q", data)
		}
		if gotKey != "secret" {
			t.Errorf("キーが付与されていないのだ: %q", gotKey)
		}
	})

	t.Run("既にクエリを持つURIには & で連結するのだ", func(t *testing.T) {
		var gotQuery string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.RawQuery
			w.Write([]byte("ok"))
		}))
		defer srv.Close()

		c := newFetchTestClient("secret")
		if _, err := c.FetchBytes(context.Background(), srv.URL+"/file?alt=media"); err != nil {
			t.Fatalf("取得に失敗したのだ: %v", err)
		}
		if !strings.Contains(gotQuery, "alt=media") || !strings.Contains(gotQuery, "key=secret") {
			t.Errorf("クエリの連結が違うのだ: %q", gotQuery)
		}
	})

	t.Run("同じURIの2回目はキャッシュから返るのだ", func(t *testing.T) {
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.Write([]byte("cached"))
		}))
		defer srv.Close()

		c := newFetchTestClient("secret")
		uri := srv.URL + "/file"
		for i := 0; i < 2; i++ {
			data, err := c.FetchBytes(context.Background(), uri)
			if err != nil {
				t.Fatalf("取得に失敗したのだ: %v", err)
			}
			if string(data) != "cached" {
				t.Errorf("本文が違うのだ: %q", data)
			}
		}
		if hits.Load() != 1 {
			t.Errorf("キャッシュが効いていないのだ: %d回", hits.Load())
		}
	})

	t.Run("非2xxは NetworkError になるのだ", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "forbidden", http.StatusForbidden)
		}))
		defer srv.Close()

		c := newFetchTestClient("secret")
		_, err := c.FetchBytes(context.Background(), srv.URL+"/file")
		var netErr *NetworkError
		if !errors.As(err, &netErr) {
			t.Fatalf("NetworkError ではないのだ: %v", err)
		}
		if !strings.Contains(netErr.Status, "403") {
			t.Errorf("ステータスが違うのだ: %q", netErr.Status)
		}
	})

	t.Run("未設定のクライアントは ErrNotConfigured なのだ", func(t *testing.T) {
		c := New(Options{})
		if _, err := c.FetchBytes(context.Background(), "http://example.invalid/file"); !errors.Is(err, ErrNotConfigured) {
			t.Errorf("ErrNotConfigured ではないのだ: %v", err)
		}
	})
}

func TestTrimJSONFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"フェンスなしはそのままなのだ", `{"a":1}`, `{"a":1}`},
		{"jsonフェンスを剥がすのだ", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"言語指定なしのフェンスも剥がすのだ", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"前後の空白を取り除くのだ", "  {\"a\":1}\n", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := trimJSONFence(tt.in); got != tt.want {
				t.Errorf("結果が違うのだ: got %q want %q", got, tt.want)
			}
		})
	}
}
