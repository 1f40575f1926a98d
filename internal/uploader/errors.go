package uploader

import (
	"errors"
	"fmt"

	"github.com/nao1215/linkcast/internal/model"
)

// Uploader errors.
var (
	// ErrMissingCredential is returned when a required setting such as an
	// access token is empty.
	ErrMissingCredential = errors.New("missing credential")

	// ErrNoContainerID is returned when the Instagram media container
	// response carries no id, so there is nothing to publish.
	ErrNoContainerID = errors.New("instagram response has no container id")

	// ErrNoImageURL is returned when Instagram has no public URL to fetch the
	// media from.
	ErrNoImageURL = errors.New("instagram needs a public image URL: set uploaders.instagram.imageUrl")

	// ErrDuplicatePlatform is returned when a second uploader is registered
	// for the same platform.
	ErrDuplicatePlatform = errors.New("uploader already registered for platform")

	// ErrUnknownPlatform is returned for platform names linkcast does not support.
	ErrUnknownPlatform = model.ErrUnknownPlatform

	// ErrNotConfigured is returned when a supported platform has no usable
	// configuration.
	ErrNotConfigured = errors.New("platform is not configured")

	// ErrGPSMetadata is returned by strict media checks when a file carries
	// GPS coordinates.
	ErrGPSMetadata = errors.New("media file contains GPS metadata")
)

// APIError is returned when a platform answers with a non-2xx status.
type APIError struct {
	Platform   model.Platform
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	body := e.Body
	const maxBody = 512
	if len(body) > maxBody {
		body = body[:maxBody] + "..."
	}
	return fmt.Sprintf("%s API returned status %d: %s", e.Platform.DisplayName(), e.StatusCode, body)
}
