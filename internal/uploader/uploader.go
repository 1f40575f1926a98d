package uploader

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/nao1215/linkcast/internal/model"
)

// Uploader publishes one file to one platform.
type Uploader interface {
	// Platform returns the platform this uploader publishes to.
	Platform() model.Platform

	// Upload publishes contentPath with caption and returns the platform's
	// response. It performs a single request flow and never retries.
	Upload(ctx context.Context, contentPath, caption string) (*model.UploadResult, error)
}

// defaultTimeout bounds a whole upload request. Video uploads can be large,
// so it is generous.
const defaultTimeout = 10 * time.Minute

// options holds the settings shared by all uploaders.
type options struct {
	httpClient *http.Client
	logger     *slog.Logger
	timeout    time.Duration
	in         io.Reader
	out        io.Writer
}

// Option configures an uploader.
type Option func(*options)

// WithHTTPClient sets the base HTTP client used for API requests.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithLogger sets a custom logger for the uploader.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithTimeout sets the timeout of a single upload request.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithConsole sets where the interactive OAuth flow reads the authorization
// code from and where it prints instructions.
func WithConsole(in io.Reader, out io.Writer) Option {
	return func(o *options) {
		o.in = in
		o.out = out
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		timeout: defaultTimeout,
		in:      os.Stdin,
		out:     os.Stderr,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// newRestClient builds the resty client used by the REST based uploaders.
// Retries stay at resty's default of zero.
func (o *options) newRestClient() *resty.Client {
	var c *resty.Client
	if o.httpClient != nil {
		c = resty.NewWithClient(o.httpClient)
	} else {
		c = resty.New()
	}
	return c.
		SetTimeout(o.timeout).
		SetLogger(restyLogger{logger: o.logger})
}

// restyLogger forwards resty's internal messages to slog.
type restyLogger struct {
	logger *slog.Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, v...))
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, v...))
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, v...))
}

// checkResponse converts a non-2xx resty response into an *APIError.
func checkResponse(platform model.Platform, resp *resty.Response) error {
	if resp.IsSuccess() {
		return nil
	}
	return &APIError{
		Platform:   platform,
		StatusCode: resp.StatusCode(),
		Body:       resp.String(),
	}
}

// newResult fills the common fields of an UploadResult.
func newResult(platform model.Platform, contentPath, caption string, resp *resty.Response) *model.UploadResult {
	return &model.UploadResult{
		Platform:    platform,
		ContentPath: contentPath,
		Caption:     caption,
		StatusCode:  resp.StatusCode(),
		RawResponse: resp.String(),
		UploadedAt:  time.Now(),
	}
}

// findID returns the first non-empty id found at one of the given key paths
// in a JSON object, e.g. []string{"data", "publish_id"}.
func findID(body []byte, paths ...[]string) string {
	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil {
		return ""
	}
	for _, path := range paths {
		var cur any = doc
		for _, key := range path {
			m, ok := cur.(map[string]any)
			if !ok {
				cur = nil
				break
			}
			cur = m[key]
		}
		switch v := cur.(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return fmt.Sprintf("%.0f", v)
		}
	}
	return ""
}

// requireSetting returns ErrMissingCredential naming the setting when value is empty.
func requireSetting(platform model.Platform, name, value string) error {
	if value == "" {
		return fmt.Errorf("%w: %s %s", ErrMissingCredential, platform.DisplayName(), name)
	}
	return nil
}
