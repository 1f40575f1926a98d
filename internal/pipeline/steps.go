package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/nao1215/linkcast/internal/model"
	"github.com/nao1215/linkcast/internal/uploader"
)

// MediaCheckStep inspects the content file for identifying EXIF metadata
// before anything is published.
//
// Design decision: this runs first so that strict mode can stop the run
// before a single platform has received the file.
type MediaCheckStep struct {
	// strict fails the step when GPS coordinates are present.
	strict bool

	// logger for structured logging.
	logger *slog.Logger
}

// MediaCheckStepOption configures a MediaCheckStep.
type MediaCheckStepOption func(*MediaCheckStep)

// WithMediaStrict makes the step fail when the file carries GPS metadata.
func WithMediaStrict(strict bool) MediaCheckStepOption {
	return func(s *MediaCheckStep) {
		s.strict = strict
	}
}

// WithMediaLogger sets a custom logger for the media check step.
func WithMediaLogger(logger *slog.Logger) MediaCheckStepOption {
	return func(s *MediaCheckStep) {
		s.logger = logger
	}
}

// NewMediaCheckStep creates a new media check step.
func NewMediaCheckStep(opts ...MediaCheckStepOption) *MediaCheckStep {
	s := &MediaCheckStep{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *MediaCheckStep) Name() string {
	return "media_check"
}

// Do executes the media check step.
// Remote content (an http(s) URL) cannot be inspected and is skipped.
// An unreadable file only fails the step in strict mode; otherwise the
// platforms that actually read the file report the problem themselves.
func (s *MediaCheckStep) Do(_ context.Context, report *model.PublishReport) error {
	if isRemote(report.ContentPath) {
		s.logger.Debug("skipping media check for remote content", "content", report.ContentPath)
		return nil
	}

	findings, err := uploader.InspectMedia(report.ContentPath)
	if err != nil {
		if s.strict {
			return err
		}
		s.logger.Warn("media check skipped", "content", report.ContentPath, "error", err)
		return nil
	}
	report.MediaFindings = append(report.MediaFindings, findings...)

	for _, f := range findings {
		if f.Severity >= model.SeverityHigh {
			s.logger.Warn("identifying metadata in media file",
				"tag", f.Tag,
				"kind", string(f.Kind),
				"severity", f.Severity.String(),
			)
		}
	}

	if s.strict && report.HasGPS() {
		return fmt.Errorf("%w: %s", uploader.ErrGPSMetadata, report.ContentPath)
	}
	return nil
}

// UploadStep publishes the content to one platform.
type UploadStep struct {
	// uploader performs the platform request flow.
	uploader uploader.Uploader

	// logger for structured logging.
	logger *slog.Logger
}

// UploadStepOption configures an UploadStep.
type UploadStepOption func(*UploadStep)

// WithUploadLogger sets a custom logger for the upload step.
func WithUploadLogger(logger *slog.Logger) UploadStepOption {
	return func(s *UploadStep) {
		s.logger = logger
	}
}

// NewUploadStep creates a step that wraps u.
func NewUploadStep(u uploader.Uploader, opts ...UploadStepOption) *UploadStep {
	s := &UploadStep{
		uploader: u,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *UploadStep) Name() string {
	return "upload_" + s.uploader.Platform().String()
}

// Do executes the upload. A failure is recorded in the report under the
// platform and also returned.
func (s *UploadStep) Do(ctx context.Context, report *model.PublishReport) error {
	platform := s.uploader.Platform()

	result, err := s.uploader.Upload(ctx, report.ContentPath, report.Caption)
	if err != nil {
		report.AddError(platform, err)
		return fmt.Errorf("%s upload failed: %w", platform.DisplayName(), err)
	}

	s.logger.Info("upload completed",
		"platform", platform.String(),
		"status", result.StatusCode,
		"remote_id", result.RemoteID,
	)
	report.AddResult(result)
	return nil
}

// Registry resolves the uploader for a platform.
type Registry interface {
	Get(p model.Platform) (uploader.Uploader, error)
}

// PublishPipeline builds the standard publish chain: a media check
// followed by one upload step per platform in the requested order.
// Every platform is resolved before anything runs, so a misconfigured
// platform fails the build instead of a half-finished publish.
func PublishPipeline(registry Registry, platforms []model.Platform, strictMedia bool, opts ...Option) (*Pipeline, error) {
	p := New(opts...)

	p.AddStep(NewMediaCheckStep(
		WithMediaStrict(strictMedia),
		WithMediaLogger(p.logger),
	))

	for _, platform := range platforms {
		u, err := registry.Get(platform)
		if err != nil {
			return nil, err
		}
		p.AddStep(NewUploadStep(u, WithUploadLogger(p.logger)))
	}

	return p, nil
}

func isRemote(path string) bool {
	u, err := url.Parse(path)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
