package model

import "time"

// MediaKind groups EXIF tags by what they reveal.
type MediaKind string

// Media finding kinds.
const (
	MediaKindGPS      MediaKind = "gps"
	MediaKindCamera   MediaKind = "camera"
	MediaKindSerial   MediaKind = "serial"
	MediaKindAuthor   MediaKind = "author"
	MediaKindSoftware MediaKind = "software"
	MediaKindDateTime MediaKind = "datetime"
)

// Severity returns the default severity for findings of this kind.
func (k MediaKind) Severity() Severity {
	switch k {
	case MediaKindGPS:
		return SeverityCritical
	case MediaKindSerial, MediaKindAuthor:
		return SeverityHigh
	case MediaKindCamera:
		return SeverityMedium
	case MediaKindSoftware, MediaKindDateTime:
		return SeverityLow
	default:
		return SeverityInfo
	}
}

// MediaFinding is one metadata tag found in a file before it is published.
type MediaFinding struct {
	Tag      string    `json:"tag"`
	Value    string    `json:"value"`
	Kind     MediaKind `json:"kind"`
	Severity Severity  `json:"severity"`
}

// UploadResult is the response of one platform upload.
type UploadResult struct {
	// ID is the database identifier, zero until the result is saved.
	ID int64 `json:"id,omitempty"`

	Platform    Platform `json:"platform"`
	ContentPath string   `json:"content_path"`
	Caption     string   `json:"caption"`

	// StatusCode is the HTTP status of the final request of the flow.
	StatusCode int `json:"status_code"`

	// RawResponse is the unmodified response body returned by the platform.
	RawResponse string `json:"raw_response"`

	// RemoteID is the identifier the platform assigned to the post, if any.
	RemoteID string `json:"remote_id,omitempty"`

	UploadedAt time.Time `json:"uploaded_at"`
}

// PublishReport collects everything that happened while publishing one file.
type PublishReport struct {
	ContentPath string `json:"content_path"`
	Caption     string `json:"caption"`

	// Results holds successful uploads in the order they were performed.
	Results []*UploadResult `json:"results"`

	// Errors maps each failed platform to its error message.
	Errors map[Platform]string `json:"errors,omitempty"`

	MediaFindings []MediaFinding `json:"media_findings,omitempty"`

	// PerformedSteps lists the names of pipeline steps that ran.
	PerformedSteps []string `json:"performed_steps"`

	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

// NewPublishReport creates an empty report for the given file and caption.
func NewPublishReport(contentPath, caption string) *PublishReport {
	return &PublishReport{
		ContentPath:    contentPath,
		Caption:        caption,
		Results:        make([]*UploadResult, 0),
		Errors:         make(map[Platform]string),
		MediaFindings:  make([]MediaFinding, 0),
		PerformedSteps: make([]string, 0),
		StartedAt:      time.Now(),
	}
}

// AddResult records a successful upload.
func (r *PublishReport) AddResult(result *UploadResult) {
	r.Results = append(r.Results, result)
}

// AddError records a failed upload for a platform.
func (r *PublishReport) AddError(p Platform, err error) {
	if err == nil {
		return
	}
	r.Errors[p] = err.Error()
}

// HasErrors reports whether any platform failed.
func (r *PublishReport) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasGPS reports whether any media finding carries location data.
func (r *PublishReport) HasGPS() bool {
	for _, f := range r.MediaFindings {
		if f.Kind == MediaKindGPS {
			return true
		}
	}
	return false
}
