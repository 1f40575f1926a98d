// Package model defines the data structures shared by the link scanner,
// the uploaders, the report writers and the history database.
//
// This package contains the following main types:
//   - LinkSet: Deduplicated internal, external and denied URLs of one page
//   - Visited: The external URLs already fetched during one crawl run
//   - ScanResult: The outcome of scanning a page (plus its one-hop crawl)
//   - UploadResult: The raw response of publishing to one platform
//   - PublishReport: The accumulated outcome of a publish run
//
// Design decision: Types live in their own package so that scanner, uploader,
// report and database can all depend on them without import cycles.
// Everything here serializes to JSON for report output and database storage.
package model
