package model

// Severity represents how much a media finding may expose about the uploader.
//
// Design decision: iota constants keep comparisons and sorting cheap;
// String() provides the human readable label for reports.
type Severity int

const (
	// SeverityInfo indicates metadata with no identifying value.
	SeverityInfo Severity = iota

	// SeverityLow indicates metadata such as software names or timestamps.
	SeverityLow

	// SeverityMedium indicates device details such as camera make and model.
	SeverityMedium

	// SeverityHigh indicates metadata tied to a person or a single device,
	// such as author names or serial numbers.
	SeverityHigh

	// SeverityCritical indicates location data embedded in the file.
	SeverityCritical
)

// String returns a human-readable representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// MarshalText encodes the severity as its label so JSON reports stay readable.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
