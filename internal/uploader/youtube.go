package uploader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/nao1215/linkcast/internal/config"
	"github.com/nao1215/linkcast/internal/model"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// YouTube video defaults.
const (
	DefaultYouTubeCategoryID    = "22"
	DefaultYouTubePrivacyStatus = "public"
	youtubeTokenFile            = "youtube_token.json"
)

// DefaultYouTubeTags are attached to every video unless tags are configured.
var DefaultYouTubeTags = []string{"example", "upload"}

// YouTube uploads videos with the YouTube Data API v3.
type YouTube struct {
	cfg   config.YouTubeSection
	cache *TokenCache
	opts  *options
}

// NewYouTube returns a YouTube uploader. The client secrets file is required;
// the token cache defaults to the XDG cache directory.
func NewYouTube(cfg config.YouTubeSection, opts ...Option) (*YouTube, error) {
	if err := requireSetting(model.PlatformYouTube, "client secrets file", cfg.ClientSecretsFile); err != nil {
		return nil, err
	}
	if cfg.TokenCacheFile == "" {
		cfg.TokenCacheFile = filepath.Join(config.XDGCacheDir(), youtubeTokenFile)
	}
	if len(cfg.Tags) == 0 {
		cfg.Tags = DefaultYouTubeTags
	}
	if cfg.CategoryID == "" {
		cfg.CategoryID = DefaultYouTubeCategoryID
	}
	if cfg.PrivacyStatus == "" {
		cfg.PrivacyStatus = DefaultYouTubePrivacyStatus
	}
	return &YouTube{
		cfg:   cfg,
		cache: NewTokenCache(cfg.TokenCacheFile),
		opts:  newOptions(opts),
	}, nil
}

// Platform implements Uploader.
func (y *YouTube) Platform() model.Platform {
	return model.PlatformYouTube
}

// Upload implements Uploader.
func (y *YouTube) Upload(ctx context.Context, contentPath, caption string) (*model.UploadResult, error) {
	f, err := os.Open(filepath.Clean(contentPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open content file: %w", err)
	}
	defer f.Close()

	client, err := y.authorizedClient(ctx)
	if err != nil {
		return nil, err
	}

	svcOpts := []option.ClientOption{option.WithHTTPClient(client)}
	if y.cfg.Endpoint != "" {
		svcOpts = append(svcOpts, option.WithEndpoint(y.cfg.Endpoint))
	}
	svc, err := youtube.NewService(ctx, svcOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create youtube service: %w", err)
	}

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       caption,
			Description: caption,
			Tags:        y.cfg.Tags,
			CategoryId:  y.cfg.CategoryID,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus: y.cfg.PrivacyStatus,
		},
	}

	res, err := svc.Videos.Insert([]string{"snippet", "status"}, video).
		Media(f).
		Context(ctx).
		Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			return nil, &APIError{Platform: model.PlatformYouTube, StatusCode: gerr.Code, Body: gerr.Body}
		}
		return nil, fmt.Errorf("failed to upload youtube video: %w", err)
	}

	raw, err := res.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to encode youtube response: %w", err)
	}
	y.opts.logger.Debug("youtube video uploaded", "video_id", res.Id)

	return &model.UploadResult{
		Platform:    model.PlatformYouTube,
		ContentPath: contentPath,
		Caption:     caption,
		StatusCode:  res.HTTPStatusCode,
		RawResponse: string(raw),
		RemoteID:    res.Id,
		UploadedAt:  time.Now(),
	}, nil
}

// authorizedClient returns an HTTP client carrying the OAuth2 token.
// A cached token is used when present; otherwise the console flow runs and
// its token is cached for the next run.
func (y *YouTube) authorizedClient(ctx context.Context) (*http.Client, error) {
	secrets, err := os.ReadFile(filepath.Clean(y.cfg.ClientSecretsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read youtube client secrets: %w", err)
	}
	oauthCfg, err := google.ConfigFromJSON(secrets, youtube.YoutubeUploadScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse youtube client secrets: %w", err)
	}

	if y.opts.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, y.opts.httpClient)
	}

	tok, err := y.cache.Load()
	switch {
	case err == nil:
		y.opts.logger.Debug("using cached youtube token", "path", y.cache.Path())
	case errors.Is(err, fs.ErrNotExist):
		tok, err = consoleToken(ctx, oauthCfg, y.opts.in, y.opts.out)
		if err != nil {
			return nil, err
		}
		if err := y.cache.Save(tok); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	client := oauthCfg.Client(ctx, tok)
	client.Timeout = y.opts.timeout
	return client, nil
}
