package scanner

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/linkcast/internal/httpclient"
)

func newTestClient(t *testing.T) *http.Client {
	t.Helper()

	client, err := httpclient.New(httpclient.Options{
		ConnectTimeout: time.Second,
		ReadTimeout:    time.Second,
		UserAgent:      "linkcast-test",
	})
	if err != nil {
		t.Fatalf("httpclient.New() error = %v", err)
	}
	return client
}

func TestHTTPFetcher(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			if r.Header.Get("User-Agent") != "linkcast-test" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			_, _ = w.Write([]byte("<html>ok</html>")) //nolint:errcheck // test server
		case "/redirect":
			http.Redirect(w, r, "/ok", http.StatusMovedPermanently)
		case "/big":
			_, _ = w.Write(bytes.Repeat([]byte("a"), 100)) //nolint:errcheck // test server
		case "/slow":
			time.Sleep(3 * time.Second)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	var logBuf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logBuf, nil))
	f := NewHTTPFetcher(newTestClient(t), WithMaxBodySize(10), WithFetcherLogger(logger))

	t.Run("returns body on success", func(t *testing.T) {
		f := NewHTTPFetcher(newTestClient(t))
		body, ok := f.Fetch(context.Background(), server.URL+"/ok")
		if !ok || body != "<html>ok</html>" {
			t.Errorf("Fetch() = %q, %v", body, ok)
		}
	})

	t.Run("follows redirects", func(t *testing.T) {
		f := NewHTTPFetcher(newTestClient(t))
		body, ok := f.Fetch(context.Background(), server.URL+"/redirect")
		if !ok || body != "<html>ok</html>" {
			t.Errorf("Fetch() = %q, %v", body, ok)
		}
	})

	t.Run("caps body size", func(t *testing.T) {
		body, ok := f.Fetch(context.Background(), server.URL+"/big")
		if !ok || len(body) != 10 {
			t.Errorf("Fetch() len = %d, ok = %v", len(body), ok)
		}
	})

	t.Run("non-2xx is no content", func(t *testing.T) {
		body, ok := f.Fetch(context.Background(), server.URL+"/missing")
		if ok || body != "" {
			t.Errorf("Fetch() = %q, %v; want empty, false", body, ok)
		}
		if !strings.Contains(logBuf.String(), "level=WARN") {
			t.Errorf("expected a WARN log entry, got %q", logBuf.String())
		}
	})

	t.Run("timeout is no content", func(t *testing.T) {
		body, ok := f.Fetch(context.Background(), server.URL+"/slow")
		if ok || body != "" {
			t.Errorf("Fetch() = %q, %v; want empty, false", body, ok)
		}
	})

	t.Run("unreachable host is no content", func(t *testing.T) {
		body, ok := f.Fetch(context.Background(), "http://127.0.0.1:1/")
		if ok || body != "" {
			t.Errorf("Fetch() = %q, %v; want empty, false", body, ok)
		}
	})
}
