// Package httpclient builds the HTTP clients used by the link scanner and
// the REST based uploaders.
//
// A client created by New carries the scanner's timeout pair, a cookie jar,
// a redirect limit and a RoundTripper that stamps the configured User-Agent
// and extra headers onto every request, including redirects. Traffic can
// optionally be routed through a SOCKS5 proxy.
package httpclient
