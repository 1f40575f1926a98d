package httpclient

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("applies timeouts", func(t *testing.T) {
		t.Parallel()

		client, err := New(Options{ConnectTimeout: 5 * time.Second, ReadTimeout: 10 * time.Second})
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		if client.Timeout != 15*time.Second {
			t.Errorf("Timeout = %v, want 15s", client.Timeout)
		}
		if client.Jar == nil {
			t.Error("expected a cookie jar")
		}
		transport, ok := client.Transport.(*http.Transport)
		if !ok {
			t.Fatalf("expected *http.Transport without headers, got %T", client.Transport)
		}
		if transport.ResponseHeaderTimeout != 10*time.Second {
			t.Errorf("ResponseHeaderTimeout = %v, want 10s", transport.ResponseHeaderTimeout)
		}
		if transport.TLSHandshakeTimeout != 5*time.Second {
			t.Errorf("TLSHandshakeTimeout = %v, want 5s", transport.TLSHandshakeTimeout)
		}
	})

	t.Run("rejects invalid proxy", func(t *testing.T) {
		t.Parallel()

		_, err := New(Options{ProxyAddress: "no-port"})
		if !errors.Is(err, ErrInvalidProxyAddress) {
			t.Errorf("expected ErrInvalidProxyAddress, got %v", err)
		}
	})

	t.Run("accepts valid proxy", func(t *testing.T) {
		t.Parallel()

		client, err := New(Options{ProxyAddress: "127.0.0.1:1080", UserAgent: "test-agent"})
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		if _, ok := client.Transport.(*headerInjectingTransport); !ok {
			t.Errorf("expected header injecting transport, got %T", client.Transport)
		}
	})

	t.Run("accepts bracketed IPv6 proxy", func(t *testing.T) {
		t.Parallel()

		if _, err := New(Options{ProxyAddress: "[::1]:1080"}); err != nil {
			t.Errorf("New() error = %v", err)
		}
	})
}

func TestIsValidProxyAddress(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		address  string
		expected bool
	}{
		{"valid IPv4 with port", "127.0.0.1:9050", true},
		{"valid localhost with port", "localhost:1080", true},
		{"valid hostname with port", "proxy.example.com:1080", true},
		{"empty string", "", false},
		{"no port", "127.0.0.1", false},
		{"empty host", ":9050", false},
		{"empty port", "127.0.0.1:", false},
		{"multiple colons", "127.0.0.1:9050:extra", false},
		{"port zero", "127.0.0.1:0", false},
		{"port too large", "127.0.0.1:70000", false},
		{"non numeric port", "127.0.0.1:http", false},
		{"signed port", "127.0.0.1:+1080", false},
		{"bracketed IPv6 loopback", "[::1]:1080", true},
		{"bracketed IPv6 address", "[2001:db8::1]:9050", true},
		{"unbracketed IPv6", "::1:1080", false},
		{"empty IPv6 host", "[]:1080", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := isValidProxyAddress(tc.address); got != tc.expected {
				t.Errorf("isValidProxyAddress(%q) = %v, expected %v", tc.address, got, tc.expected)
			}
		})
	}
}

func TestHeaderInjection(t *testing.T) {
	t.Parallel()

	var gotUA, gotCustom string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/redirect" {
			http.Redirect(w, r, "/final", http.StatusFound)
			return
		}
		gotUA = r.Header.Get("User-Agent")
		gotCustom = r.Header.Get("X-Custom")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := New(Options{
		ConnectTimeout: time.Second,
		ReadTimeout:    time.Second,
		UserAgent:      "linkcast-test",
		Headers:        map[string]string{"X-Custom": "value"},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL+"/redirect", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if gotUA != "linkcast-test" {
		t.Errorf("User-Agent after redirect = %q", gotUA)
	}
	if gotCustom != "value" {
		t.Errorf("X-Custom after redirect = %q", gotCustom)
	}
}

func TestRedirectLimit(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/loop", http.StatusFound)
	}))
	defer server.Close()

	client, err := New(Options{ConnectTimeout: time.Second, ReadTimeout: time.Second})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := client.Do(req)
	if err == nil {
		resp.Body.Close()
		t.Fatal("expected redirect loop to fail")
	}
}

// serveOnce accepts one connection and answers the SOCKS5 greeting with reply.
func serveOnce(t *testing.T, reply []byte) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 3)
		if _, err := conn.Read(buf); err != nil {
			return
		}
		_, _ = conn.Write(reply) //nolint:errcheck // test server
	}()
	return ln.Addr().String()
}

func TestCheckProxy(t *testing.T) {
	t.Parallel()

	t.Run("socks5 proxy", func(t *testing.T) {
		t.Parallel()

		addr := serveOnce(t, []byte{socks5Version, socks5AuthNone})
		if err := CheckProxy(context.Background(), addr, time.Second); err != nil {
			t.Errorf("CheckProxy() error = %v", err)
		}
	})

	t.Run("auth required", func(t *testing.T) {
		t.Parallel()

		addr := serveOnce(t, []byte{socks5Version, socks5AuthNoAccept})
		if err := CheckProxy(context.Background(), addr, time.Second); !errors.Is(err, ErrProxyNotSOCKS5) {
			t.Errorf("expected ErrProxyNotSOCKS5, got %v", err)
		}
	})

	t.Run("not socks", func(t *testing.T) {
		t.Parallel()

		addr := serveOnce(t, []byte("HTTP/1.1 400 Bad Request\r\n"))
		if err := CheckProxy(context.Background(), addr, time.Second); !errors.Is(err, ErrProxyNotSOCKS5) {
			t.Errorf("expected ErrProxyNotSOCKS5, got %v", err)
		}
	})

	t.Run("invalid address", func(t *testing.T) {
		t.Parallel()

		if err := CheckProxy(context.Background(), "nope", time.Second); !errors.Is(err, ErrInvalidProxyAddress) {
			t.Errorf("expected ErrInvalidProxyAddress, got %v", err)
		}
	})
}
