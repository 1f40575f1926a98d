// Package log provides secure logging functionality with automatic sanitization
// of sensitive information, built on top of the standard slog package.
//
// This package extends slog to provide:
//   - Automatic sanitization of OAuth tokens, client secrets and cookies
//   - Configurable log levels with verbose mode support
//   - Consistent log formatting across the application
//
// # Security Features
//
// The SecureHandler automatically sanitizes sensitive information in log output:
//   - HTTP headers (Authorization, Cookie, Set-Cookie, X-Api-Key)
//   - OAuth values by key name (access_token, refresh_token, client_secret, code)
//   - Token formats recognized by value (Bearer, JWT, Google ya29., Graph API EAA...)
//   - access_token and similar query parameters embedded in URLs and error text
//
// Even in verbose mode, sensitive values are masked so that logs from an
// upload run can be shared without leaking platform credentials.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, true) // verbose=true
//
//	logger.Info("container created",
//	    "access_token", token, // Will be replaced with ***REDACTED***
//	    "url", "https://graph.facebook.com/v19.0/123/media",
//	)
//
//	slog.SetDefault(logger)
package log
