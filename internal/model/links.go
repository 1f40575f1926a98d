package model

import (
	"encoding/json"
	"sort"
)

// URLSet is an unordered, deduplicated set of absolute URLs.
// It serializes to JSON as a sorted array so that reports are stable.
type URLSet map[string]struct{}

// NewURLSet creates a URLSet containing the given URLs.
func NewURLSet(urls ...string) URLSet {
	s := make(URLSet, len(urls))
	for _, u := range urls {
		s.Add(u)
	}
	return s
}

// Add inserts a URL into the set.
func (s URLSet) Add(u string) {
	s[u] = struct{}{}
}

// Has reports whether the URL is in the set.
func (s URLSet) Has(u string) bool {
	_, ok := s[u]
	return ok
}

// Len returns the number of URLs in the set.
func (s URLSet) Len() int {
	return len(s)
}

// Sorted returns the URLs in lexical order.
func (s URLSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for u := range s {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

// Equal reports whether both sets contain exactly the same URLs.
func (s URLSet) Equal(other URLSet) bool {
	if len(s) != len(other) {
		return false
	}
	for u := range s {
		if !other.Has(u) {
			return false
		}
	}
	return true
}

// Diff returns the URLs present in s but missing from other, sorted.
func (s URLSet) Diff(other URLSet) []string {
	out := make([]string, 0)
	for _, u := range s.Sorted() {
		if !other.Has(u) {
			out = append(out, u)
		}
	}
	return out
}

// MarshalJSON encodes the set as a sorted JSON array.
func (s URLSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON decodes a JSON array into the set.
func (s *URLSet) UnmarshalJSON(data []byte) error {
	var urls []string
	if err := json.Unmarshal(data, &urls); err != nil {
		return err
	}
	*s = NewURLSet(urls...)
	return nil
}

// LinkSet holds the classified anchors of a single page.
//
// Internal and External are the two output sets of link extraction.
// Denied collects links whose host matched the social-media denylist;
// those never appear in Internal or External and are kept only so the
// report can say what was excluded.
type LinkSet struct {
	Internal URLSet `json:"internal"`
	External URLSet `json:"external"`
	Denied   URLSet `json:"denied"`
}

// NewLinkSet creates an empty LinkSet with all sets initialized.
func NewLinkSet() LinkSet {
	return LinkSet{
		Internal: NewURLSet(),
		External: NewURLSet(),
		Denied:   NewURLSet(),
	}
}

// Equal reports whether both link sets classify exactly the same URLs.
func (l LinkSet) Equal(other LinkSet) bool {
	return l.Internal.Equal(other.Internal) &&
		l.External.Equal(other.External) &&
		l.Denied.Equal(other.Denied)
}

// Visited tracks external URLs already fetched during one crawl run.
// It is owned by the caller and passed explicitly to the scanner so that
// several CrawlPage calls can share it without package-level state.
type Visited struct {
	urls URLSet
}

// NewVisited creates an empty visited set.
func NewVisited() *Visited {
	return &Visited{urls: NewURLSet()}
}

// Has reports whether the URL has already been fetched.
func (v *Visited) Has(u string) bool {
	return v.urls.Has(u)
}

// Add marks the URL as fetched.
func (v *Visited) Add(u string) {
	v.urls.Add(u)
}

// Len returns the number of URLs marked as fetched.
func (v *Visited) Len() int {
	return v.urls.Len()
}
