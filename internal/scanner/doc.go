// Package scanner fetches a single web page and classifies its links.
//
// # Architecture
//
// The package has three parts:
//
//   - Fetcher: downloads a page body, treating every failure as "no content"
//   - Parser: walks <a href> elements and sorts the resolved URLs into
//     internal, external and denied sets
//   - Scanner: combines both and optionally follows each external link
//     exactly one hop, collecting the internal links of those pages
//
// Design decision: The set of already fetched external URLs is owned by the
// caller and passed to CrawlPage explicitly. Several calls can share it, and
// no package level state exists.
//
// # Usage
//
//	client, _ := httpclient.New(httpclient.Options{ConnectTimeout: 5 * time.Second})
//	s := scanner.New(scanner.NewHTTPFetcher(client))
//	result, err := s.CrawlPage(ctx, "https://example.com/", true, model.NewVisited())
package scanner
