package model

import (
	"net/url"
	"strings"
	"time"
)

// ScanResult is the outcome of scanning one start page.
type ScanResult struct {
	// ID is the database identifier, zero until the result is saved.
	ID int64 `json:"id,omitempty"`

	// StartURL is the page that was scanned.
	StartURL string `json:"start_url"`

	// Host is the lowercased host (with port, if any) of StartURL.
	// Links are internal when their host equals it.
	Host string `json:"host"`

	// CrawlExternal records whether the one-hop external crawl was requested.
	CrawlExternal bool `json:"crawl_external"`

	// Reachable is false when the start page could not be fetched.
	// An unreachable page yields empty link sets, not an error.
	Reachable bool `json:"reachable"`

	// Links contains the classified anchors of the start page.
	Links LinkSet `json:"links"`

	// Hops contains one entry per external link fetched during the
	// one-hop crawl, in the order they were visited.
	Hops []HopResult `json:"hops,omitempty"`

	// StartedAt is when the scan began.
	StartedAt time.Time `json:"started_at"`

	// Duration is how long the whole scan took.
	Duration time.Duration `json:"duration"`
}

// HopResult holds the internal links found on one external page.
type HopResult struct {
	URL       string   `json:"url"`
	Reachable bool     `json:"reachable"`
	Internal  []string `json:"internal"`
}

// NewScanResult creates an empty ScanResult for the given start URL.
func NewScanResult(startURL string, crawlExternal bool) *ScanResult {
	host := ""
	if u, err := url.Parse(startURL); err == nil {
		host = strings.ToLower(u.Host)
	}
	return &ScanResult{
		StartURL:      startURL,
		Host:          host,
		CrawlExternal: crawlExternal,
		Links:         NewLinkSet(),
		Hops:          make([]HopResult, 0),
		StartedAt:     time.Now(),
	}
}

// AddHop records the result of fetching one external page.
func (r *ScanResult) AddHop(hop HopResult) {
	r.Hops = append(r.Hops, hop)
}

// TotalLinks returns the number of internal and external links on the start page.
func (r *ScanResult) TotalLinks() int {
	return r.Links.Internal.Len() + r.Links.External.Len()
}
