package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

// Fixtures shaped like the credentials each platform hands out.
const (
	googleAccessToken  = "ya29.a0AfB_byC1x2y3z4-Example"
	googleRefreshToken = "1//0gExampleRefreshTokenValue12345"
	googleClientSecret = "GOCSPX-ExampleClientSecret"
	graphToken         = "EAAGm0PX4ZCpsBAExampleGraphToken"
	linkedInToken      = "AQXdSP_W41_UPs5ioT_t8HESyODB4FqbkJ8LrV_5mff4gPODzOYR"
	tikTokToken        = "act.example1234567890abcdefXYZ"
)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(NewSecureHandler(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
}

func TestSecureHandler_PlatformTokenValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value string
	}{
		{name: "youtube access token", value: googleAccessToken},
		{name: "youtube refresh token", value: googleRefreshToken},
		{name: "youtube client secret", value: googleClientSecret},
		{name: "instagram graph token", value: graphToken},
		{name: "linkedin token", value: linkedInToken},
		{name: "tiktok token", value: tikTokToken},
		{name: "authorization header value", value: "Bearer " + tikTokToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			// The key is harmless, so only the value can trigger redaction.
			newTestLogger(&buf).Info("request", "detail", tt.value)

			out := buf.String()
			if strings.Contains(out, tt.value) {
				t.Errorf("token leaked: %s", out)
			}
			if !strings.Contains(out, MaskValue) {
				t.Errorf("expected %s in output, got %s", MaskValue, out)
			}
		})
	}
}

func TestSecureHandler_KeepsPublishDetails(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	newTestLogger(&buf).Info("upload finished",
		"platform", "linkedin",
		"remote_id", "urn:li:share:6844785523593134080",
		"status_code", 201,
		"cache_key", "youtube-token",
		"content", "clip.mp4",
	)

	out := buf.String()
	for _, want := range []string{"linkedin", "urn:li:share:6844785523593134080", "status_code=201", "youtube-token", "clip.mp4"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q to survive, got %s", want, out)
		}
	}
	if strings.Contains(out, MaskValue) {
		t.Errorf("nothing should be redacted, got %s", out)
	}
}

func TestSecureHandler_CredentialKeys(t *testing.T) {
	t.Parallel()

	keys := []string{
		"access_token",
		"refresh_token",
		"client_secret",
		"clientSecret",
		"refreshToken",
		"code",
		"auth_code",
		"Authorization",
	}
	for _, key := range keys {
		t.Run(key, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			newTestLogger(&buf).Info("oauth", key, "plain-looking-value")
			if strings.Contains(buf.String(), "plain-looking-value") {
				t.Errorf("value under %q leaked: %s", key, buf.String())
			}
		})
	}
}

func TestRedactQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "graph api container request",
			in:   "https://graph.facebook.com/v19.0/1784/media?image_url=https%3A%2F%2Fcdn.example.com%2Fa.jpg&access_token=" + graphToken,
			want: "https://graph.facebook.com/v19.0/1784/media?image_url=https%3A%2F%2Fcdn.example.com%2Fa.jpg&access_token=" + MaskValue,
		},
		{
			name: "token in the middle keeps later parameters",
			in:   "https://graph.facebook.com/v19.0/1784/media_publish?access_token=" + graphToken + "&creation_id=42",
			want: "https://graph.facebook.com/v19.0/1784/media_publish?access_token=" + MaskValue + "&creation_id=42",
		},
		{
			name: "oauth redirect with code",
			in:   "http://localhost/callback?state=x&code=4/0AeaYSHExample",
			want: "http://localhost/callback?state=x&code=" + MaskValue,
		},
		{
			name: "token exchange form",
			in:   "POST /token?client_secret=" + googleClientSecret + "&refresh_token=" + googleRefreshToken,
			want: "POST /token?client_secret=" + MaskValue + "&refresh_token=" + MaskValue,
		},
		{
			name: "uppercase parameter name",
			in:   "https://example.com/?ACCESS_TOKEN=abc",
			want: "https://example.com/?ACCESS_TOKEN=" + MaskValue,
		},
		{
			name: "no credential parameters",
			in:   "https://example.com/page?id=1&sort=asc",
			want: "https://example.com/page?id=1&sort=asc",
		},
		{
			name: "parameter name inside a path is not touched",
			in:   "https://example.com/docs/access_token=explained",
			want: "https://example.com/docs/access_token=explained",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := redactQuery(tt.in); got != tt.want {
				t.Errorf("redactQuery() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSecureHandler_RedactsQueryInMessageAndAttrs(t *testing.T) {
	t.Parallel()

	target := "https://graph.facebook.com/v19.0/me/media?caption=hi&access_token=" + graphToken

	var buf bytes.Buffer
	newTestLogger(&buf).Warn("request to "+target+" failed", "url", target)

	out := buf.String()
	if strings.Contains(out, graphToken) {
		t.Errorf("token leaked: %s", out)
	}
	if strings.Count(out, "access_token="+MaskValue) != 2 {
		t.Errorf("expected message and attribute to be redacted, got %s", out)
	}
	if !strings.Contains(out, "caption=hi") {
		t.Errorf("expected the rest of the URL to survive, got %s", out)
	}
}

func TestSecureHandler_ErrorAttributes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		leak     string
		wantText string
	}{
		{
			name:     "transport error carries request url",
			err:      fmt.Errorf("Post %q: connection reset", "https://graph.facebook.com/v19.0/me/media?access_token="+graphToken),
			leak:     graphToken,
			wantText: "connection reset",
		},
		{
			name: "wrapped error is rendered in full",
			err: fmt.Errorf("instagram publish: %w",
				errors.New("GET https://graph.facebook.com/v19.0/42?fields=status_code&access_token="+graphToken)),
			leak:     graphToken,
			wantText: "instagram publish",
		},
		{
			name:     "error that is only a token",
			err:      errors.New(tikTokToken),
			leak:     tikTokToken,
			wantText: MaskValue,
		},
		{
			name:     "plain error survives",
			err:      errors.New("tiktok returned HTTP 500"),
			wantText: "tiktok returned HTTP 500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			newTestLogger(&buf).Error("upload failed", "error", tt.err)

			out := buf.String()
			if tt.leak != "" && strings.Contains(out, tt.leak) {
				t.Errorf("token leaked: %s", out)
			}
			if !strings.Contains(out, tt.wantText) {
				t.Errorf("expected %q in output, got %s", tt.wantText, out)
			}
		})
	}
}

func TestSecureHandler_NonErrorAnyValueUntouched(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	newTestLogger(&buf).Info("scan", "platforms", []string{"youtube", "tiktok"})
	if !strings.Contains(buf.String(), "[youtube tiktok]") {
		t.Errorf("expected slice to be logged as is, got %s", buf.String())
	}
}

func TestSecureHandler_WithAttrsAndGroups(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := newTestLogger(&buf).
		With("access_token", graphToken).
		WithGroup("youtube")
	logger.Info("token refreshed",
		slog.Group("oauth", "refresh_token", googleRefreshToken, "expiry", "3600s"),
		"channel", "example",
	)

	out := buf.String()
	for _, secret := range []string{graphToken, googleRefreshToken} {
		if strings.Contains(out, secret) {
			t.Errorf("secret leaked: %s", out)
		}
	}
	for _, want := range []string{"youtube.oauth.expiry=3600s", "youtube.channel=example"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output, got %s", want, out)
		}
	}
}

func TestNewSecureLogger_Level(t *testing.T) {
	t.Parallel()

	t.Run("quiet logger drops info", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		logger := NewSecureLogger(&buf, false)
		logger.Info("progress")
		logger.Warn("media has GPS")
		if strings.Contains(buf.String(), "progress") {
			t.Errorf("info should be dropped, got %s", buf.String())
		}
		if !strings.Contains(buf.String(), "media has GPS") {
			t.Errorf("warn should be kept, got %s", buf.String())
		}
	})

	t.Run("verbose logger keeps debug", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		NewSecureLogger(&buf, true).Debug("fetching page")
		if !strings.Contains(buf.String(), "fetching page") {
			t.Errorf("debug should be kept, got %s", buf.String())
		}
	})
}

func TestNewSecureJSONLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	NewSecureJSONLogger(&buf, false).Warn("upload failed",
		"platform", "tiktok",
		"access_token", tikTokToken,
	)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected one JSON line, got %q: %v", buf.String(), err)
	}
	if entry["platform"] != "tiktok" {
		t.Errorf("platform = %v", entry["platform"])
	}
	if entry["access_token"] != MaskValue {
		t.Errorf("access_token = %v, want %s", entry["access_token"], MaskValue)
	}
}

func TestNewSecureHandler_NilUsesDefault(t *testing.T) {
	t.Parallel()

	h := NewSecureHandler(nil)
	if h.handler == nil {
		t.Fatal("expected the default handler")
	}
}
