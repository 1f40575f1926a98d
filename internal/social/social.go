package social

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultDenyList is the set of host substrings excluded from scan results.
//
// Design decision: "x.com" is not listed because substring matching would
// also exclude hosts such as "netflix.com" or "box.com".
var DefaultDenyList = []string{
	"facebook.com",
	"twitter.com",
	"instagram.com",
	"linkedin.com",
	"youtube.com",
	"tiktok.com",
	"pinterest.com",
}

// Classify reports whether host contains any denylist entry and, if so,
// the display name of the matching platform. Matching ignores case.
// Entries are tried in order and the first match wins.
func Classify(host string, denyList []string) (platform string, denied bool) {
	host = strings.ToLower(host)
	for _, entry := range denyList {
		entry = strings.ToLower(strings.TrimSpace(entry))
		if entry == "" {
			continue
		}
		if strings.Contains(host, entry) {
			return titleForPlatform(platformKey(entry)), true
		}
	}
	return "", false
}

// platformKey turns a denylist entry such as "www.facebook.com" into "facebook".
func platformKey(entry string) string {
	entry = strings.TrimPrefix(entry, "www.")
	if i := strings.LastIndex(entry, "."); i > 0 {
		entry = entry[:i]
	}
	if i := strings.LastIndex(entry, "."); i >= 0 {
		entry = entry[i+1:]
	}
	return entry
}

// titleForPlatform returns a display title for a platform key.
func titleForPlatform(key string) string {
	titles := map[string]string{
		"twitter":   "Twitter/X",
		"facebook":  "Facebook",
		"instagram": "Instagram",
		"linkedin":  "LinkedIn",
		"youtube":   "YouTube",
		"tiktok":    "TikTok",
		"pinterest": "Pinterest",
	}

	if title, ok := titles[key]; ok {
		return title
	}
	return cases.Title(language.English).String(key)
}

// handlePatterns extract the account name from well known profile URLs.
// The first capture group is the handle.
var handlePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^https?://(?:www\.|m\.)?(?:twitter\.com|x\.com)/([A-Za-z0-9_]{1,15})(?:/|$|\?)`),
	regexp.MustCompile(`(?i)^https?://(?:www\.|m\.)?facebook\.com/([A-Za-z0-9.]+)(?:/|$|\?)`),
	regexp.MustCompile(`(?i)^https?://(?:www\.)?instagram\.com/([A-Za-z0-9_.]+)(?:/|$|\?)`),
	regexp.MustCompile(`(?i)^https?://(?:[a-z]{2,3}\.|www\.)?linkedin\.com/(?:in|company)/([A-Za-z0-9_-]+)(?:/|$|\?)`),
	regexp.MustCompile(`(?i)^https?://(?:www\.|m\.)?youtube\.com/(?:channel/|c/|user/|@)([A-Za-z0-9_-]+)`),
	regexp.MustCompile(`(?i)^https?://(?:www\.)?tiktok\.com/@([A-Za-z0-9_.]+)`),
	regexp.MustCompile(`(?i)^https?://(?:[a-z]{2}\.|www\.)?pinterest\.com/([A-Za-z0-9_]+)(?:/|$|\?)`),
}

// Handle returns the account name embedded in a profile link, or "" when
// the link is not a recognizable profile URL.
func Handle(link string) string {
	if !isProfileLink(link) {
		return ""
	}
	for _, pattern := range handlePatterns {
		if m := pattern.FindStringSubmatch(link); len(m) > 1 {
			return m[1]
		}
	}
	return ""
}

// isProfileLink filters out share buttons and site pages that look like profiles.
func isProfileLink(link string) bool {
	lower := strings.ToLower(link)
	invalidPaths := []string{
		"/intent/", "/share", "/sharer", "/login", "/signup", "/register",
		"/help", "/about", "/terms", "/privacy", "/settings", "/search",
		"/home", "/explore", "/watch", "/dialog/", "/pin/",
	}
	for _, invalid := range invalidPaths {
		if strings.Contains(lower, invalid) {
			return false
		}
	}
	return true
}

// Link is one excluded social link.
type Link struct {
	URL    string `json:"url"`
	Handle string `json:"handle,omitempty"`
}

// Group collects the excluded links of one platform.
type Group struct {
	Platform string `json:"platform"`
	Links    []Link `json:"links"`
}

// GroupLinks sorts links into per-platform groups using the denylist.
// Groups are ordered by platform name and links by URL. Links that do not
// match any entry are collected under "Other".
func GroupLinks(links []string, denyList []string) []Group {
	byPlatform := make(map[string][]Link)
	for _, link := range links {
		platform := "Other"
		if u, err := url.Parse(link); err == nil {
			if p, denied := Classify(u.Hostname(), denyList); denied {
				platform = p
			}
		}
		byPlatform[platform] = append(byPlatform[platform], Link{URL: link, Handle: Handle(link)})
	}

	groups := make([]Group, 0, len(byPlatform))
	for platform, links := range byPlatform {
		sort.Slice(links, func(i, j int) bool { return links[i].URL < links[j].URL })
		groups = append(groups, Group{Platform: platform, Links: links})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Platform < groups[j].Platform })
	return groups
}
