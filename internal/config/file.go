package config

import "time"

// File represents the structure of the .linkcast configuration file.
type File struct {
	// Scanner holds the link scanner settings.
	Scanner ScannerSection `yaml:"scanner,omitempty"`

	// Uploaders holds the per-platform upload settings and credentials.
	Uploaders UploadersSection `yaml:"uploaders,omitempty"`
}

// ScannerSection configures the link scanner.
// Durations use Go syntax, e.g. "5s" or "1m30s".
type ScannerSection struct {
	UserAgent      string        `yaml:"userAgent,omitempty"`
	ConnectTimeout time.Duration `yaml:"connectTimeout,omitempty"`
	ReadTimeout    time.Duration `yaml:"readTimeout,omitempty"`

	// DenyList replaces the built-in social media list when present.
	// An explicit empty list ("denyList: []") disables the exclusion.
	DenyList []string `yaml:"denyList"`

	// Proxy is an optional SOCKS5 proxy in "host:port" format.
	Proxy string `yaml:"proxy,omitempty"`

	// MaxBodySize is the maximum number of bytes read per page.
	MaxBodySize int64 `yaml:"maxBodySize,omitempty"`

	// Headers are extra HTTP headers sent with every scan request.
	Headers map[string]string `yaml:"headers,omitempty"`
}

// UploadersSection holds one named block per platform.
type UploadersSection struct {
	YouTube   YouTubeSection   `yaml:"youtube,omitempty"`
	Instagram InstagramSection `yaml:"instagram,omitempty"`
	LinkedIn  LinkedInSection  `yaml:"linkedin,omitempty"`
	TikTok    TikTokSection    `yaml:"tiktok,omitempty"`
}

// YouTubeSection configures the YouTube uploader.
type YouTubeSection struct {
	// ClientSecretsFile is the OAuth client JSON downloaded from the Google
	// Cloud console.
	ClientSecretsFile string `yaml:"clientSecretsFile,omitempty"`

	// TokenCacheFile stores the OAuth token between runs.
	// Defaults to youtube_token.json in the XDG cache directory.
	TokenCacheFile string `yaml:"tokenCacheFile,omitempty"`

	Tags          []string `yaml:"tags,omitempty"`
	CategoryID    string   `yaml:"categoryId,omitempty"`
	PrivacyStatus string   `yaml:"privacyStatus,omitempty"`

	// Endpoint overrides the YouTube Data API base URL.
	Endpoint string `yaml:"endpoint,omitempty"`
}

// InstagramSection configures the Instagram Graph API uploader.
type InstagramSection struct {
	AccessToken string `yaml:"accessToken,omitempty"`
	UserID      string `yaml:"userId,omitempty"`

	// ImageURL is the publicly reachable URL Instagram downloads the media from.
	ImageURL string `yaml:"imageUrl,omitempty"`

	GraphVersion string `yaml:"graphVersion,omitempty"`
	Endpoint     string `yaml:"endpoint,omitempty"`
}

// LinkedInSection configures the LinkedIn UGC post uploader.
type LinkedInSection struct {
	AccessToken string `yaml:"accessToken,omitempty"`

	// AuthorURN is the person or organization URN, e.g. "urn:li:person:abc".
	AuthorURN string `yaml:"authorUrn,omitempty"`

	Endpoint string `yaml:"endpoint,omitempty"`
}

// TikTokSection configures the TikTok uploader.
type TikTokSection struct {
	AccessToken string `yaml:"accessToken,omitempty"`
	UploadURL   string `yaml:"uploadUrl,omitempty"`
}
