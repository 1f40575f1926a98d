package uploader

import (
	"fmt"
	"strings"

	"github.com/nao1215/linkcast/internal/config"
	"github.com/nao1215/linkcast/internal/model"
)

// Registry maps each platform to its single Uploader.
type Registry struct {
	uploaders   map[model.Platform]Uploader
	unavailable map[model.Platform]error
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		uploaders:   make(map[model.Platform]Uploader),
		unavailable: make(map[model.Platform]error),
	}
}

// Register adds u to the registry. Registering a second uploader for the
// same platform returns ErrDuplicatePlatform.
func (r *Registry) Register(u Uploader) error {
	p := u.Platform()
	if !p.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownPlatform, string(p))
	}
	if _, exists := r.uploaders[p]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicatePlatform, p)
	}
	r.uploaders[p] = u
	delete(r.unavailable, p)
	return nil
}

// MarkUnavailable records why a platform could not be configured.
// Get reports the reason together with ErrNotConfigured.
func (r *Registry) MarkUnavailable(p model.Platform, reason error) {
	if _, exists := r.uploaders[p]; exists {
		return
	}
	r.unavailable[p] = reason
}

// Get returns the uploader for p.
func (r *Registry) Get(p model.Platform) (Uploader, error) {
	if !p.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlatform, string(p))
	}
	if u, ok := r.uploaders[p]; ok {
		return u, nil
	}
	if reason, ok := r.unavailable[p]; ok && reason != nil {
		return nil, fmt.Errorf("%w: %s: %w (%s)", ErrNotConfigured, p, reason, r.configuredHint())
	}
	return nil, fmt.Errorf("%w: %s (%s)", ErrNotConfigured, p, r.configuredHint())
}

// configuredHint names the platforms that are ready to use.
func (r *Registry) configuredHint() string {
	platforms := r.Platforms()
	if len(platforms) == 0 {
		return "no platform is configured"
	}
	names := make([]string, 0, len(platforms))
	for _, p := range platforms {
		names = append(names, string(p))
	}
	return "configured: " + strings.Join(names, ", ")
}

// Platforms returns the registered platforms in the canonical order.
func (r *Registry) Platforms() []model.Platform {
	platforms := make([]model.Platform, 0, len(r.uploaders))
	for _, p := range model.AllPlatforms() {
		if _, ok := r.uploaders[p]; ok {
			platforms = append(platforms, p)
		}
	}
	return platforms
}

// add registers u, or marks p unavailable when its constructor failed.
func (r *Registry) add(p model.Platform, u Uploader, constructErr error) error {
	if constructErr != nil {
		r.MarkUnavailable(p, constructErr)
		return nil
	}
	return r.Register(u)
}

// BuildRegistry constructs every uploader from the config sections.
// Platforms whose settings are incomplete are marked unavailable instead of
// failing, so a run that does not target them is unaffected.
func BuildRegistry(cfg config.UploadersSection, opts ...Option) (*Registry, error) {
	r := NewRegistry()

	yt, ytErr := NewYouTube(cfg.YouTube, opts...)
	ig, igErr := NewInstagram(cfg.Instagram, opts...)
	li, liErr := NewLinkedIn(cfg.LinkedIn, opts...)
	tt, ttErr := NewTikTok(cfg.TikTok, opts...)

	for _, e := range []struct {
		platform model.Platform
		uploader Uploader
		err      error
	}{
		{model.PlatformYouTube, yt, ytErr},
		{model.PlatformInstagram, ig, igErr},
		{model.PlatformLinkedIn, li, liErr},
		{model.PlatformTikTok, tt, ttErr},
	} {
		if err := r.add(e.platform, e.uploader, e.err); err != nil {
			return nil, err
		}
	}
	return r, nil
}
