package uploader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-resty/resty/v2"
	"github.com/nao1215/linkcast/internal/config"
	"github.com/nao1215/linkcast/internal/model"
)

// DefaultTikTokUploadURL is the TikTok video upload endpoint.
const DefaultTikTokUploadURL = "https://open.tiktokapis.com/v2/video/upload/"

// TikTok uploads a video with a multipart form request.
type TikTok struct {
	cfg    config.TikTokSection
	client *resty.Client
}

// NewTikTok returns a TikTok uploader. The access token is required.
func NewTikTok(cfg config.TikTokSection, opts ...Option) (*TikTok, error) {
	if err := requireSetting(model.PlatformTikTok, "access token", cfg.AccessToken); err != nil {
		return nil, err
	}
	if cfg.UploadURL == "" {
		cfg.UploadURL = DefaultTikTokUploadURL
	}
	return &TikTok{
		cfg:    cfg,
		client: newOptions(opts).newRestClient(),
	}, nil
}

// Platform implements Uploader.
func (t *TikTok) Platform() model.Platform {
	return model.PlatformTikTok
}

// Upload implements Uploader.
func (t *TikTok) Upload(ctx context.Context, contentPath, caption string) (*model.UploadResult, error) {
	f, err := os.Open(filepath.Clean(contentPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open content file: %w", err)
	}
	defer f.Close()

	resp, err := t.client.R().
		SetContext(ctx).
		SetAuthToken(t.cfg.AccessToken).
		SetFileReader("video", filepath.Base(contentPath), f).
		SetFormData(map[string]string{"caption": caption}).
		Post(t.cfg.UploadURL)
	if err != nil {
		return nil, fmt.Errorf("failed to upload tiktok video: %w", err)
	}
	if err := checkResponse(model.PlatformTikTok, resp); err != nil {
		return nil, err
	}

	result := newResult(model.PlatformTikTok, contentPath, caption, resp)
	result.RemoteID = findID(resp.Body(),
		[]string{"data", "publish_id"},
		[]string{"data", "video_id"},
		[]string{"id"},
	)
	return result, nil
}
