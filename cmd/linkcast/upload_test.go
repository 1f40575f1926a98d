package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/linkcast/internal/config"
	"github.com/nao1215/linkcast/internal/database"
	"github.com/nao1215/linkcast/internal/model"
	"github.com/nao1215/linkcast/internal/report"
	"github.com/nao1215/linkcast/internal/uploader"
)

// TestNewUploadCmd tests the upload command creation.
func TestNewUploadCmd(t *testing.T) {
	t.Parallel()

	cmd := NewUploadCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "upload <file>" {
			t.Errorf("expected use 'upload <file>', got %q", cmd.Use)
		}
	})

	for _, name := range []string{"caption", "platform", "continue-on-error", "strict-media", "config", "json", "markdown", "output", "tee", "no-save"} {
		t.Run("has "+name+" flag", func(t *testing.T) {
			t.Parallel()
			if cmd.Flags().Lookup(name) == nil {
				t.Errorf("expected %s flag", name)
			}
		})
	}

	t.Run("requires exactly one file", func(t *testing.T) {
		t.Parallel()
		if err := cmd.Args(cmd, nil); err == nil {
			t.Error("expected error without a file argument")
		}
		if err := cmd.Args(cmd, []string{"a.mp4", "b.mp4"}); err == nil {
			t.Error("expected error with two file arguments")
		}
	})
}

func TestRunUploadCmd_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{
			name:    "no platform",
			args:    []string{"upload", "clip.mp4"},
			wantErr: config.ErrNoPlatform,
		},
		{
			name:    "unknown platform",
			args:    []string{"upload", "clip.mp4", "--platform", "myspace"},
			wantErr: model.ErrUnknownPlatform,
		},
		{
			name:    "conflicting formats",
			args:    []string{"upload", "clip.mp4", "-p", "tiktok", "--json", "--markdown"},
			wantErr: config.ErrConflictingReportFormats,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			root := NewRootCmd()
			root.SetArgs(append(tt.args, "--config", writeConfig(t, "")))
			root.SetOut(io.Discard)
			root.SetErr(io.Discard)

			err := root.Execute()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestBuildUploadConfig(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
uploaders:
  tiktok:
    accessToken: "tt-token"
`)
	cmd := NewUploadCmd()
	err := cmd.ParseFlags([]string{
		"--config", path,
		"--caption", "hello",
		"--platform", "tiktok,LinkedIn",
		"--continue-on-error",
	})
	if err != nil {
		t.Fatal(err)
	}

	cfg, err := buildUploadConfig(cmd, []string{"clip.mp4"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ContentPath != "clip.mp4" {
		t.Errorf("ContentPath = %q", cfg.ContentPath)
	}
	if cfg.Caption != "hello" {
		t.Errorf("Caption = %q", cfg.Caption)
	}
	if len(cfg.Platforms) != 2 || cfg.Platforms[1] != "LinkedIn" {
		t.Errorf("Platforms = %v", cfg.Platforms)
	}
	if !cfg.ContinueOnError {
		t.Error("expected ContinueOnError")
	}
	if cfg.File.Uploaders.TikTok.AccessToken != "tt-token" {
		t.Errorf("expected TikTok token from file, got %q", cfg.File.Uploaders.TikTok.AccessToken)
	}
}

// fakePlatforms serves the TikTok upload endpoint and the LinkedIn UGC
// endpoint. TikTok answers with tiktokStatus.
func fakePlatforms(t *testing.T, tiktokStatus int) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/tiktok/upload", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tt-token" {
			t.Errorf("Authorization = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(tiktokStatus)
		if tiktokStatus >= 300 {
			_, _ = w.Write([]byte(`{"error":{"code":"internal_error"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"data":{"publish_id":"v_pub_1"}}`))
	})
	mux.HandleFunc("/v2/ugcPosts", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("X-RestLi-Id", "urn:li:share:42")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testRegistry(t *testing.T, srvURL string) *uploader.Registry {
	t.Helper()
	r, err := uploader.BuildRegistry(config.UploadersSection{
		TikTok: config.TikTokSection{
			AccessToken: "tt-token",
			UploadURL:   srvURL + "/tiktok/upload",
		},
		LinkedIn: config.LinkedInSection{
			AccessToken: "li-token",
			AuthorURN:   "urn:li:person:abc",
			Endpoint:    srvURL,
		},
	}, uploader.WithLogger(discardLogger()))
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func writeContent(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(path, []byte("not really a video"), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunUpload_Success(t *testing.T) {
	t.Parallel()

	srv := fakePlatforms(t, http.StatusOK)

	cfg := config.NewConfig()
	cfg.ContentPath = writeContent(t)
	cfg.Caption = "launch day"
	cfg.JSONReport = true
	cfg.DBDir = t.TempDir()

	platforms := []model.Platform{model.PlatformTikTok, model.PlatformLinkedIn}

	var stdout bytes.Buffer
	err := runUpload(context.Background(), cfg, testRegistry(t, srv.URL), platforms, discardLogger(), &stdout)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got report.PublishEnvelope
	if err := json.Unmarshal(stdout.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode report: %v\n%s", err, stdout.String())
	}
	if len(got.Publish.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got.Publish.Results))
	}
	if got.Publish.Results[0].Platform != model.PlatformTikTok || got.Publish.Results[0].RemoteID != "v_pub_1" {
		t.Errorf("unexpected first result: %+v", got.Publish.Results[0])
	}
	if got.Publish.Results[1].Platform != model.PlatformLinkedIn || got.Publish.Results[1].RemoteID != "urn:li:share:42" {
		t.Errorf("unexpected second result: %+v", got.Publish.Results[1])
	}
	if !strings.Contains(got.Publish.Results[0].RawResponse, "v_pub_1") {
		t.Errorf("expected raw response to be kept, got %q", got.Publish.Results[0].RawResponse)
	}

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	uploads, err := db.ListUploads(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(uploads) != 2 {
		t.Errorf("expected 2 stored uploads, got %d", len(uploads))
	}
}

func TestRunUpload_ContinueOnError(t *testing.T) {
	t.Parallel()

	srv := fakePlatforms(t, http.StatusInternalServerError)

	cfg := config.NewConfig()
	cfg.ContentPath = writeContent(t)
	cfg.ContinueOnError = true
	cfg.DBDir = t.TempDir()

	platforms := []model.Platform{model.PlatformTikTok, model.PlatformLinkedIn}

	var stdout bytes.Buffer
	err := runUpload(context.Background(), cfg, testRegistry(t, srv.URL), platforms, discardLogger(), &stdout)
	if err == nil {
		t.Fatal("expected error when an upload fails")
	}
	if !strings.Contains(err.Error(), "tiktok") {
		t.Errorf("expected error to name tiktok, got %v", err)
	}
	if !strings.Contains(stdout.String(), "urn:li:share:42") {
		t.Errorf("expected LinkedIn result in report, got:\n%s", stdout.String())
	}

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	uploads, err := db.ListUploads(context.Background(), model.PlatformLinkedIn)
	if err != nil {
		t.Fatal(err)
	}
	if len(uploads) != 1 {
		t.Errorf("expected the LinkedIn upload to be stored, got %d", len(uploads))
	}
}

func TestRunUpload_StopsOnFirstError(t *testing.T) {
	t.Parallel()

	srv := fakePlatforms(t, http.StatusInternalServerError)

	cfg := config.NewConfig()
	cfg.ContentPath = writeContent(t)
	cfg.SaveToDB = false

	platforms := []model.Platform{model.PlatformTikTok, model.PlatformLinkedIn}

	var stdout bytes.Buffer
	err := runUpload(context.Background(), cfg, testRegistry(t, srv.URL), platforms, discardLogger(), &stdout)

	var apiErr *uploader.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *uploader.APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d", apiErr.StatusCode)
	}
	if strings.Contains(stdout.String(), "urn:li:share:42") {
		t.Error("LinkedIn must not run after TikTok failed")
	}
}

func TestRunUpload_UnconfiguredPlatform(t *testing.T) {
	t.Parallel()

	srv := fakePlatforms(t, http.StatusOK)

	cfg := config.NewConfig()
	cfg.ContentPath = writeContent(t)
	cfg.SaveToDB = false

	// YouTube has no client secrets, so nothing may be uploaded at all.
	platforms := []model.Platform{model.PlatformTikTok, model.PlatformYouTube}

	var stdout bytes.Buffer
	err := runUpload(context.Background(), cfg, testRegistry(t, srv.URL), platforms, discardLogger(), &stdout)
	if !errors.Is(err, uploader.ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
	if stdout.Len() != 0 {
		t.Errorf("expected no report, got:\n%s", stdout.String())
	}
}
