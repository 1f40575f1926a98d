package uploader

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/nao1215/linkcast/internal/config"
	"github.com/nao1215/linkcast/internal/model"
)

// DefaultLinkedInEndpoint is the LinkedIn REST API base URL.
const DefaultLinkedInEndpoint = "https://api.linkedin.com"

// LinkedIn shares a text post through the UGC Post API.
// The media file is not attached; the post carries the caption only.
type LinkedIn struct {
	cfg    config.LinkedInSection
	client *resty.Client
}

// ugcPost is the request body of POST /v2/ugcPosts.
type ugcPost struct {
	Author          string             `json:"author"`
	LifecycleState  string             `json:"lifecycleState"`
	SpecificContent ugcSpecificContent `json:"specificContent"`
	Visibility      map[string]string  `json:"visibility"`
}

type ugcSpecificContent struct {
	ShareContent ugcShareContent `json:"com.linkedin.ugc.ShareContent"`
}

type ugcShareContent struct {
	ShareCommentary    ugcText `json:"shareCommentary"`
	ShareMediaCategory string  `json:"shareMediaCategory"`
}

type ugcText struct {
	Text string `json:"text"`
}

// NewLinkedIn returns a LinkedIn uploader. The access token and author URN
// are required.
func NewLinkedIn(cfg config.LinkedInSection, opts ...Option) (*LinkedIn, error) {
	if err := requireSetting(model.PlatformLinkedIn, "access token", cfg.AccessToken); err != nil {
		return nil, err
	}
	if err := requireSetting(model.PlatformLinkedIn, "author URN", cfg.AuthorURN); err != nil {
		return nil, err
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultLinkedInEndpoint
	}
	o := newOptions(opts)
	return &LinkedIn{
		cfg:    cfg,
		client: o.newRestClient().SetBaseURL(strings.TrimRight(cfg.Endpoint, "/")),
	}, nil
}

// Platform implements Uploader.
func (l *LinkedIn) Platform() model.Platform {
	return model.PlatformLinkedIn
}

// Upload implements Uploader.
func (l *LinkedIn) Upload(ctx context.Context, contentPath, caption string) (*model.UploadResult, error) {
	post := ugcPost{
		Author:         l.cfg.AuthorURN,
		LifecycleState: "PUBLISHED",
		SpecificContent: ugcSpecificContent{
			ShareContent: ugcShareContent{
				ShareCommentary:    ugcText{Text: caption},
				ShareMediaCategory: "NONE",
			},
		},
		Visibility: map[string]string{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
	}

	resp, err := l.client.R().
		SetContext(ctx).
		SetAuthToken(l.cfg.AccessToken).
		SetHeader("Content-Type", "application/json").
		SetHeader("X-Restli-Protocol-Version", "2.0.0").
		SetBody(post).
		Post("/v2/ugcPosts")
	if err != nil {
		return nil, fmt.Errorf("failed to create linkedin post: %w", err)
	}
	if err := checkResponse(model.PlatformLinkedIn, resp); err != nil {
		return nil, err
	}

	result := newResult(model.PlatformLinkedIn, contentPath, caption, resp)
	result.RemoteID = resp.Header().Get("X-RestLi-Id")
	if result.RemoteID == "" {
		result.RemoteID = findID(resp.Body(), []string{"id"})
	}
	return result, nil
}
