package model

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestSeverityString(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		severity Severity
		expected string
	}{
		{SeverityInfo, "INFO"},
		{SeverityLow, "LOW"},
		{SeverityMedium, "MEDIUM"},
		{SeverityHigh, "HIGH"},
		{SeverityCritical, "CRITICAL"},
		{Severity(999), "UNKNOWN"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			t.Parallel()
			if tc.severity.String() != tc.expected {
				t.Errorf("got %q, expected %q", tc.severity.String(), tc.expected)
			}
		})
	}
}

func TestMediaKindSeverity(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		kind     MediaKind
		expected Severity
	}{
		{MediaKindGPS, SeverityCritical},
		{MediaKindSerial, SeverityHigh},
		{MediaKindAuthor, SeverityHigh},
		{MediaKindCamera, SeverityMedium},
		{MediaKindSoftware, SeverityLow},
		{MediaKindDateTime, SeverityLow},
		{MediaKind("other"), SeverityInfo},
	}

	for _, tc := range testCases {
		t.Run(string(tc.kind), func(t *testing.T) {
			t.Parallel()
			if got := tc.kind.Severity(); got != tc.expected {
				t.Errorf("Severity() = %v, want %v", got, tc.expected)
			}
		})
	}
}

func TestPublishReport(t *testing.T) {
	t.Parallel()

	r := NewPublishReport("clip.mp4", "hello")
	if r.HasErrors() {
		t.Error("new report should have no errors")
	}

	r.AddResult(&UploadResult{Platform: PlatformTikTok, StatusCode: 200})
	r.AddError(PlatformLinkedIn, errors.New("boom"))
	r.AddError(PlatformYouTube, nil)

	if len(r.Results) != 1 {
		t.Errorf("len(Results) = %d, want 1", len(r.Results))
	}
	if !r.HasErrors() || r.Errors[PlatformLinkedIn] != "boom" {
		t.Errorf("Errors = %v", r.Errors)
	}
	if _, ok := r.Errors[PlatformYouTube]; ok {
		t.Error("nil error should not be recorded")
	}

	if r.HasGPS() {
		t.Error("report without findings should not report GPS")
	}
	r.MediaFindings = append(r.MediaFindings, MediaFinding{Tag: "GPSLatitude", Kind: MediaKindGPS})
	if !r.HasGPS() {
		t.Error("expected HasGPS() to be true")
	}
}

func TestMediaFindingJSONUsesSeverityLabel(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(MediaFinding{Tag: "Make", Kind: MediaKindCamera, Severity: SeverityMedium})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(data), `"severity":"MEDIUM"`) {
		t.Errorf("expected severity label in %s", data)
	}
}
