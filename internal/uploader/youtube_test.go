package uploader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/nao1215/linkcast/internal/config"
	"golang.org/x/oauth2"
)

// fakeGoogle serves both the OAuth token endpoint and the video upload API.
type fakeGoogle struct {
	server      *httptest.Server
	tokenCalls  atomic.Int32
	uploadCalls atomic.Int32
	gotCode     atomic.Value
	gotAuth     atomic.Value
	gotBody     atomic.Value
	uploadCode  int
}

func newFakeGoogle(t *testing.T, uploadCode int) *fakeGoogle {
	t.Helper()
	f := &fakeGoogle{uploadCode: uploadCode}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/token":
			f.tokenCalls.Add(1)
			_ = r.ParseForm()
			f.gotCode.Store(r.PostForm.Get("code"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":"fresh-token","token_type":"Bearer","refresh_token":"r1","expires_in":3600}`))
		case strings.HasSuffix(r.URL.Path, "/videos"):
			f.uploadCalls.Add(1)
			f.gotAuth.Store(r.Header.Get("Authorization"))
			body, _ := io.ReadAll(r.Body)
			f.gotBody.Store(string(body))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(f.uploadCode)
			if f.uploadCode >= 300 {
				_, _ = w.Write([]byte(`{"error":{"code":403,"message":"quota exceeded"}}`))
				return
			}
			_, _ = w.Write([]byte(`{"id":"vid-1","kind":"youtube#video"}`))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(f.server.Close)
	return f
}

func writeClientSecrets(t *testing.T, dir, tokenURL string) string {
	t.Helper()
	secrets := fmt.Sprintf(`{"installed":{"client_id":"cid.apps.googleusercontent.com","client_secret":"csecret",`+
		`"auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":%q,"redirect_uris":["http://localhost"]}}`, tokenURL)
	path := filepath.Join(dir, "client_secret.json")
	if err := os.WriteFile(path, []byte(secrets), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeVideo(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "video.mp4")
	if err := os.WriteFile(path, []byte("not really a video"), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestYouTube_Upload_CachedToken(t *testing.T) {
	t.Parallel()

	fake := newFakeGoogle(t, http.StatusOK)
	dir := t.TempDir()
	cache := NewTokenCache(filepath.Join(dir, "token.json"))
	if err := cache.Save(&oauth2.Token{AccessToken: "cached-token", TokenType: "Bearer"}); err != nil {
		t.Fatal(err)
	}

	yt, err := NewYouTube(config.YouTubeSection{
		ClientSecretsFile: writeClientSecrets(t, dir, fake.server.URL+"/token"),
		TokenCacheFile:    cache.Path(),
		Endpoint:          fake.server.URL + "/",
	}, WithLogger(discardLogger()), WithConsole(strings.NewReader(""), io.Discard))
	if err != nil {
		t.Fatalf("NewYouTube() error = %v", err)
	}

	result, err := yt.Upload(context.Background(), writeVideo(t, dir), "my video")
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if result.RemoteID != "vid-1" {
		t.Errorf("RemoteID = %q, want vid-1", result.RemoteID)
	}
	if fake.tokenCalls.Load() != 0 {
		t.Error("cached token must not trigger a token exchange")
	}
	if got := fake.gotAuth.Load(); got != "Bearer cached-token" {
		t.Errorf("Authorization = %v", got)
	}

	body, _ := fake.gotBody.Load().(string)
	for _, want := range []string{`"title":"my video"`, `"description":"my video"`, `"categoryId":"22"`, `"privacyStatus":"public"`, `"example"`, `"upload"`, "not really a video"} {
		if !strings.Contains(body, want) {
			t.Errorf("upload body missing %s", want)
		}
	}
}

func TestYouTube_Upload_ConsoleFlow(t *testing.T) {
	t.Parallel()

	fake := newFakeGoogle(t, http.StatusOK)
	dir := t.TempDir()
	cachePath := filepath.Join(dir, "cache", "token.json")

	var out bytes.Buffer
	yt, err := NewYouTube(config.YouTubeSection{
		ClientSecretsFile: writeClientSecrets(t, dir, fake.server.URL+"/token"),
		TokenCacheFile:    cachePath,
		Endpoint:          fake.server.URL + "/",
		Tags:              []string{"demo"},
		PrivacyStatus:     "unlisted",
	}, WithLogger(discardLogger()), WithConsole(strings.NewReader("http://localhost/?code=code-123&scope=x\n"), &out))
	if err != nil {
		t.Fatalf("NewYouTube() error = %v", err)
	}

	if _, err := yt.Upload(context.Background(), writeVideo(t, dir), "clip"); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	if !strings.Contains(out.String(), "accounts.google.com") {
		t.Errorf("auth URL not printed: %q", out.String())
	}
	if got := fake.gotCode.Load(); got != "code-123" {
		t.Errorf("exchanged code = %v, want code-123", got)
	}
	if got := fake.gotAuth.Load(); got != "Bearer fresh-token" {
		t.Errorf("Authorization = %v", got)
	}

	info, err := os.Stat(cachePath)
	if err != nil {
		t.Fatalf("token cache not written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("token cache perm = %o, want 600", perm)
	}
	tok, err := NewTokenCache(cachePath).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if tok.AccessToken != "fresh-token" || tok.RefreshToken != "r1" {
		t.Errorf("cached token = %+v", tok)
	}

	body, _ := fake.gotBody.Load().(string)
	if !strings.Contains(body, `"privacyStatus":"unlisted"`) || !strings.Contains(body, `"demo"`) {
		t.Errorf("configured status and tags not sent: %s", body)
	}
}

func TestYouTube_Upload_EmptyCode(t *testing.T) {
	t.Parallel()

	fake := newFakeGoogle(t, http.StatusOK)
	dir := t.TempDir()
	yt, err := NewYouTube(config.YouTubeSection{
		ClientSecretsFile: writeClientSecrets(t, dir, fake.server.URL+"/token"),
		TokenCacheFile:    filepath.Join(dir, "token.json"),
		Endpoint:          fake.server.URL + "/",
	}, WithLogger(discardLogger()), WithConsole(strings.NewReader("\n"), io.Discard))
	if err != nil {
		t.Fatalf("NewYouTube() error = %v", err)
	}

	_, err = yt.Upload(context.Background(), writeVideo(t, dir), "clip")
	if !errors.Is(err, ErrNoAuthCode) {
		t.Errorf("Upload() error = %v, want ErrNoAuthCode", err)
	}
	if fake.uploadCalls.Load() != 0 {
		t.Error("no upload must happen without a token")
	}
}

func TestYouTube_Upload_APIError(t *testing.T) {
	t.Parallel()

	fake := newFakeGoogle(t, http.StatusForbidden)
	dir := t.TempDir()
	cache := NewTokenCache(filepath.Join(dir, "token.json"))
	if err := cache.Save(&oauth2.Token{AccessToken: "cached-token", TokenType: "Bearer"}); err != nil {
		t.Fatal(err)
	}
	yt, err := NewYouTube(config.YouTubeSection{
		ClientSecretsFile: writeClientSecrets(t, dir, fake.server.URL+"/token"),
		TokenCacheFile:    cache.Path(),
		Endpoint:          fake.server.URL + "/",
	}, WithLogger(discardLogger()))
	if err != nil {
		t.Fatalf("NewYouTube() error = %v", err)
	}

	_, err = yt.Upload(context.Background(), writeVideo(t, dir), "clip")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Upload() error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusForbidden {
		t.Errorf("StatusCode = %d, want 403", apiErr.StatusCode)
	}
	if !strings.Contains(apiErr.Body, "quota exceeded") {
		t.Errorf("Body = %q", apiErr.Body)
	}
}

func TestExtractAuthCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"4/abc\n", "4/abc"},
		{"  spaced  ", "spaced"},
		{"http://localhost/?code=xyz&scope=s", "xyz"},
		{"https://localhost/callback?state=s", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := extractAuthCode(tt.input); got != tt.want {
			t.Errorf("extractAuthCode(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestTokenCache_LoadMissing(t *testing.T) {
	t.Parallel()

	_, err := NewTokenCache(filepath.Join(t.TempDir(), "none.json")).Load()
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load() error = %v, want os.ErrNotExist", err)
	}
}
