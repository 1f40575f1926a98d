package uploader

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/nao1215/linkcast/internal/config"
	"github.com/nao1215/linkcast/internal/model"
)

// Instagram Graph API defaults.
const (
	DefaultInstagramEndpoint     = "https://graph.facebook.com"
	DefaultInstagramGraphVersion = "v18.0"
)

// Instagram publishes an image through the Instagram Graph API.
// Publishing takes two calls: one creates a media container from a public
// image URL and the other publishes that container.
type Instagram struct {
	cfg    config.InstagramSection
	client *resty.Client
	opts   *options
}

// NewInstagram returns an Instagram uploader. The access token and user id
// are required.
func NewInstagram(cfg config.InstagramSection, opts ...Option) (*Instagram, error) {
	if err := requireSetting(model.PlatformInstagram, "access token", cfg.AccessToken); err != nil {
		return nil, err
	}
	if err := requireSetting(model.PlatformInstagram, "user id", cfg.UserID); err != nil {
		return nil, err
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultInstagramEndpoint
	}
	if cfg.GraphVersion == "" {
		cfg.GraphVersion = DefaultInstagramGraphVersion
	}
	o := newOptions(opts)
	return &Instagram{
		cfg:    cfg,
		client: o.newRestClient().SetBaseURL(strings.TrimRight(cfg.Endpoint, "/")),
		opts:   o,
	}, nil
}

// Platform implements Uploader.
func (i *Instagram) Platform() model.Platform {
	return model.PlatformInstagram
}

// Upload implements Uploader. Instagram fetches the media itself, so
// contentPath is only used as the image URL when it is an http(s) URL and
// no imageUrl is configured.
func (i *Instagram) Upload(ctx context.Context, contentPath, caption string) (*model.UploadResult, error) {
	imageURL, err := i.imageURL(contentPath)
	if err != nil {
		return nil, err
	}

	containerPath := fmt.Sprintf("/%s/%s/media", i.cfg.GraphVersion, url.PathEscape(i.cfg.UserID))
	resp, err := i.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"image_url":    imageURL,
			"caption":      caption,
			"access_token": i.cfg.AccessToken,
		}).
		Post(containerPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create instagram media container: %w", err)
	}
	if err := checkResponse(model.PlatformInstagram, resp); err != nil {
		return nil, err
	}

	containerID := findID(resp.Body(), []string{"id"})
	if containerID == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoContainerID, resp.String())
	}
	i.opts.logger.Debug("instagram media container created", "container_id", containerID)

	publishPath := fmt.Sprintf("/%s/%s/media_publish", i.cfg.GraphVersion, url.PathEscape(i.cfg.UserID))
	resp, err = i.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"creation_id":  containerID,
			"access_token": i.cfg.AccessToken,
		}).
		Post(publishPath)
	if err != nil {
		return nil, fmt.Errorf("failed to publish instagram media: %w", err)
	}
	if err := checkResponse(model.PlatformInstagram, resp); err != nil {
		return nil, err
	}

	result := newResult(model.PlatformInstagram, contentPath, caption, resp)
	result.RemoteID = findID(resp.Body(), []string{"id"})
	return result, nil
}

func (i *Instagram) imageURL(contentPath string) (string, error) {
	if i.cfg.ImageURL != "" {
		return i.cfg.ImageURL, nil
	}
	u, err := url.Parse(contentPath)
	if err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
		return contentPath, nil
	}
	return "", ErrNoImageURL
}
