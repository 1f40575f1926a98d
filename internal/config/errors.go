package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and Config.ValidateUpload().
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoTarget is returned when the scan command has no URL to scan.
	ErrNoTarget = errors.New("no target specified: provide at least one URL")

	// ErrInvalidTimeout is returned when a timeout is not positive.
	// A timeout of zero or negative would cause immediate connection failures.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// Use 0 to use the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrNoContent is returned when the upload command has no file to publish.
	ErrNoContent = errors.New("no content specified: provide a media file to upload")

	// ErrNoPlatform is returned when the upload command has no target platform.
	ErrNoPlatform = errors.New("no platform specified: use --platform youtube,instagram,linkedin,tiktok")

	// ErrTeeWithoutOutput is returned when --tee is used without --output.
	ErrTeeWithoutOutput = errors.New("--tee requires --output")
)
