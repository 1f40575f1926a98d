// Package uploader publishes a media file and caption to social platforms.
//
// Each platform has exactly one Uploader implementation:
//
//   - YouTube: OAuth2 installed-app flow with a cached token, then videos.insert
//   - Instagram: Graph API media container creation followed by media_publish
//   - LinkedIn: a single UGC post JSON request
//   - TikTok: a single multipart request carrying the video and caption
//
// Every uploader performs one request flow with no retry. A non-2xx answer
// is returned as an *APIError that keeps the raw response body.
//
// Credentials are never hard-coded; they come from the config file and the
// environment (see the config package). BuildRegistry constructs all
// uploaders from that configuration and records why a platform is not
// available, so a publish run can report it.
//
// InspectMedia reads EXIF metadata from a file before it is published so
// that location data or device serial numbers are not leaked by accident.
package uploader
