package uploader

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/oauth2"
)

// ErrNoAuthCode is returned when the console flow reads an empty code.
var ErrNoAuthCode = errors.New("no authorization code entered")

// TokenCache stores an OAuth2 token as JSON so the interactive flow runs
// only once per machine.
type TokenCache struct {
	path string
}

// NewTokenCache returns a cache backed by the file at path.
func NewTokenCache(path string) *TokenCache {
	return &TokenCache{path: path}
}

// Path returns the cache file path.
func (c *TokenCache) Path() string {
	return c.path
}

// Load reads the cached token. A missing cache returns an error that
// satisfies errors.Is(err, fs.ErrNotExist).
func (c *TokenCache) Load() (*oauth2.Token, error) {
	data, err := os.ReadFile(filepath.Clean(c.path))
	if err != nil {
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("failed to parse token cache %s: %w", c.path, err)
	}
	return &tok, nil
}

// Save writes the token with owner-only permissions.
func (c *TokenCache) Save(tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o700); err != nil {
		return fmt.Errorf("failed to create token cache directory: %w", err)
	}
	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token cache: %w", err)
	}
	return nil
}

// consoleToken runs the installed-app flow on a terminal: it prints the
// consent URL, reads the code the user pastes back and exchanges it.
// The user may paste either the bare code or the whole redirect URL.
func consoleToken(ctx context.Context, cfg *oauth2.Config, in io.Reader, out io.Writer) (*oauth2.Token, error) {
	authURL := cfg.AuthCodeURL("linkcast", oauth2.AccessTypeOffline)
	fmt.Fprintf(out, "Open the following URL in a browser and authorize linkcast:\n\n  %s\n\n", authURL)
	fmt.Fprint(out, "Paste the authorization code (or the full redirect URL): ")

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read authorization code: %w", err)
	}
	code := extractAuthCode(line)
	if code == "" {
		return nil, ErrNoAuthCode
	}

	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	return tok, nil
}

func extractAuthCode(input string) string {
	input = strings.TrimSpace(input)
	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		if u, err := url.Parse(input); err == nil {
			return u.Query().Get("code")
		}
	}
	return input
}
