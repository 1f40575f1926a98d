package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "linkcast"

	// DefaultUserAgent identifies linkcast in HTTP requests.
	// Using a descriptive User-Agent is good practice and allows operators
	// to identify scanner traffic in their logs.
	DefaultUserAgent = "linkcast/1.0 (+https://github.com/nao1215/linkcast)"

	// DefaultConnectTimeout bounds the TCP dial and TLS handshake of a fetch.
	DefaultConnectTimeout = 5 * time.Second

	// DefaultReadTimeout bounds the wait for a response once connected.
	DefaultReadTimeout = 10 * time.Second

	// DefaultMaxBodySize limits the maximum response body size to read.
	// 5MB is sufficient for most HTML pages while preventing memory exhaustion
	// from unexpectedly large responses.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB
)

// Config holds all configuration options for linkcast.
// This struct is populated from CLI flags and the config file and passed
// through the application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// for the options that flags can set. Uploader credentials live in File
// because they are only ever read from the config file or the environment.
type Config struct {
	// UserAgent is the User-Agent header sent with every scan request.
	UserAgent string

	// ConnectTimeout is the connect (dial and TLS handshake) timeout of a fetch.
	ConnectTimeout time.Duration

	// ReadTimeout is the time allowed for the server to answer once connected.
	ReadTimeout time.Duration

	// MaxBodySize is the maximum response body size in bytes to read.
	// Responses larger than this are truncated to prevent memory exhaustion.
	// Set to 0 to use the default (5MB).
	MaxBodySize int64

	// DenyList holds host substrings whose links are excluded from scan
	// results. Nil means the built-in social media list.
	DenyList []string

	// ProxyAddress is an optional SOCKS5 proxy in "host:port" format.
	ProxyAddress string

	// Headers are extra HTTP headers sent with every scan request.
	Headers map[string]string

	// CrawlExternal enables the one-hop crawl into external links.
	CrawlExternal bool

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// LogJSON switches the log output on stderr to JSON lines.
	LogJSON bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .linkcast in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// File holds the settings loaded from the config file.
	File *File

	// JSONReport enables JSON report output instead of human-readable format.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of human-readable format.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	// Directories are created automatically if they don't exist.
	ReportFile string

	// Tee also prints the report to stdout when ReportFile is set.
	Tee bool

	// DBDir is the directory path for storing the SQLite database.
	// Defaults to XDG data directory (~/.local/share/linkcast on Linux).
	DBDir string

	// SaveToDB indicates whether to save results to the database.
	SaveToDB bool

	// Targets is the list of start URLs to scan.
	Targets []string

	// ContentPath is the media file to publish.
	ContentPath string

	// Caption is the text published with the media file.
	Caption string

	// Platforms lists the upload targets in the order they run.
	Platforms []string

	// ContinueOnError keeps publishing to the remaining platforms after one fails.
	ContinueOnError bool

	// StrictMedia refuses to publish files that carry GPS metadata.
	StrictMedia bool
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeouts).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		UserAgent:      DefaultUserAgent,
		ConnectTimeout: DefaultConnectTimeout,
		ReadTimeout:    DefaultReadTimeout,
		MaxBodySize:    DefaultMaxBodySize,
		DBDir:          XDGDataDir(),
		SaveToDB:       true,
		File:           &File{},
	}
}

// XDGDataDir returns the XDG data directory for linkcast.
// On Linux: ~/.local/share/linkcast
// On macOS: ~/Library/Application Support/linkcast
// On Windows: %LOCALAPPDATA%\linkcast
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for linkcast.
// On Linux: ~/.config/linkcast
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for linkcast.
// The YouTube token cache lives here by default.
// On Linux: ~/.cache/linkcast
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// ApplyFile copies the scanner settings of the config file into c.
// Only values that are set in the file are applied, so defaults survive.
// CLI flags are applied after this and therefore take precedence.
func (c *Config) ApplyFile(f *File) {
	if f == nil {
		return
	}
	c.File = f

	s := f.Scanner
	if s.UserAgent != "" {
		c.UserAgent = s.UserAgent
	}
	if s.ConnectTimeout != 0 {
		c.ConnectTimeout = s.ConnectTimeout
	}
	if s.ReadTimeout != 0 {
		c.ReadTimeout = s.ReadTimeout
	}
	if s.MaxBodySize != 0 {
		c.MaxBodySize = s.MaxBodySize
	}
	if s.DenyList != nil {
		c.DenyList = s.DenyList
	}
	if s.Proxy != "" {
		c.ProxyAddress = s.Proxy
	}
	if len(s.Headers) > 0 {
		c.Headers = s.Headers
	}
}

// Validate checks if the scan configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// We return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}
	if err := c.validateTransport(); err != nil {
		return err
	}
	return c.validateReport()
}

// ValidateUpload checks if the upload configuration is valid.
func (c *Config) ValidateUpload() error {
	if c.ContentPath == "" {
		return ErrNoContent
	}
	if len(c.Platforms) == 0 {
		return ErrNoPlatform
	}
	return c.validateReport()
}

func (c *Config) validateReport() error {
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.Tee && c.ReportFile == "" {
		return ErrTeeWithoutOutput
	}
	return nil
}

func (c *Config) validateTransport() error {
	// Timeouts must be positive; zero timeout would cause immediate failures
	if c.ConnectTimeout <= 0 || c.ReadTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	return nil
}
