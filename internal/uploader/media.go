package uploader

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	exif "github.com/dsoprea/go-exif/v3"
	"github.com/nao1215/linkcast/internal/model"
)

// maxMediaScan limits how much of a file is searched for an EXIF block.
// EXIF lives near the start of images, and videos rarely carry it at all.
const maxMediaScan = 16 * 1024 * 1024

// mediaTagKinds maps the EXIF tags worth reporting to their kind.
var mediaTagKinds = map[string]model.MediaKind{
	"GPSLatitude":        model.MediaKindGPS,
	"GPSLongitude":       model.MediaKindGPS,
	"GPSLatitudeRef":     model.MediaKindGPS,
	"GPSLongitudeRef":    model.MediaKindGPS,
	"GPSAltitude":        model.MediaKindGPS,
	"Make":               model.MediaKindCamera,
	"Model":              model.MediaKindCamera,
	"LensModel":          model.MediaKindCamera,
	"SerialNumber":       model.MediaKindSerial,
	"CameraSerialNumber": model.MediaKindSerial,
	"BodySerialNumber":   model.MediaKindSerial,
	"LensSerialNumber":   model.MediaKindSerial,
	"Artist":             model.MediaKindAuthor,
	"Author":             model.MediaKindAuthor,
	"Copyright":          model.MediaKindAuthor,
	"XPAuthor":           model.MediaKindAuthor,
	"Software":           model.MediaKindSoftware,
	"ProcessingSoftware": model.MediaKindSoftware,
	"HostComputer":       model.MediaKindSoftware,
	"DateTimeOriginal":   model.MediaKindDateTime,
	"DateTimeDigitized":  model.MediaKindDateTime,
	"DateTime":           model.MediaKindDateTime,
}

// InspectMedia reports identifying EXIF metadata in the file at path.
// Files without EXIF data, such as most videos, return no findings.
// Only a failure to read the file is returned as an error.
func InspectMedia(path string) ([]model.MediaFinding, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open media file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxMediaScan))
	if err != nil {
		return nil, fmt.Errorf("failed to read media file: %w", err)
	}
	return inspectEXIF(data), nil
}

func inspectEXIF(data []byte) []model.MediaFinding {
	findings := make([]model.MediaFinding, 0)

	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil || rawExif == nil {
		return findings
	}

	entries, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return findings
	}

	for _, entry := range entries {
		kind, ok := mediaTagKinds[entry.TagName]
		if !ok {
			continue
		}
		findings = append(findings, model.MediaFinding{
			Tag:      entry.TagName,
			Value:    entry.Formatted,
			Kind:     kind,
			Severity: kind.Severity(),
		})
	}
	return findings
}
