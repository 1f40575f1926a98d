package scanner

import "errors"

// ErrInvalidURL is returned when a start or base URL cannot be used for a scan.
// Only absolute http and https URLs are accepted.
var ErrInvalidURL = errors.New("invalid URL: expected an absolute http or https URL")
