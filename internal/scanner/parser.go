package scanner

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/nao1215/linkcast/internal/model"
	"github.com/nao1215/linkcast/internal/social"
	"golang.org/x/net/html"
)

// Parser extracts and classifies the anchors of one HTML page.
//
// Design decision: We use golang.org/x/net/html for parsing rather than
// regex because:
//  1. It correctly handles malformed HTML common on the web
//  2. Attribute values are decoded the same way a browser decodes them
type Parser struct {
	// baseURL is the URL of the page being parsed, used for resolving relative URLs.
	baseURL *url.URL

	// denyList holds host substrings whose links are excluded from the result.
	denyList []string
}

// NewParser creates a parser for a page at baseURL.
// The base URL must be an absolute http or https URL.
func NewParser(baseURL string, denyList []string) (*Parser, error) {
	u, err := parseHTTPURL(baseURL)
	if err != nil {
		return nil, err
	}
	return &Parser{baseURL: u, denyList: denyList}, nil
}

// parseHTTPURL parses raw and rejects anything but absolute http(s) URLs.
func parseHTTPURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	return u, nil
}

// ExtractLinks parses htmlContent as the page at baseURL and classifies its
// links using social.DefaultDenyList. The result is deterministic: parsing
// the same input twice yields equal link sets.
func ExtractLinks(baseURL, htmlContent string) (model.LinkSet, error) {
	p, err := NewParser(baseURL, social.DefaultDenyList)
	if err != nil {
		return model.LinkSet{}, err
	}
	return p.Parse(strings.NewReader(htmlContent))
}

// Parse reads HTML content and returns its classified links.
// The HTML parser is lenient, so malformed markup still yields the anchors
// it can recover.
func (p *Parser) Parse(content io.Reader) (model.LinkSet, error) {
	links := model.NewLinkSet()

	doc, err := html.Parse(content)
	if err != nil {
		return links, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if href, ok := getAttr(n, "href"); ok {
				p.classify(href, &links)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return links, nil
}

// classify resolves one href and adds it to the matching set.
func (p *Parser) classify(href string, links *model.LinkSet) {
	resolved := p.resolveURL(href)
	if resolved == nil {
		return
	}
	link := resolved.String()

	if strings.EqualFold(resolved.Host, p.baseURL.Host) {
		links.Internal.Add(link)
		return
	}
	if _, denied := social.Classify(resolved.Hostname(), p.denyList); denied {
		links.Denied.Add(link)
		return
	}
	links.External.Add(link)
}

// resolveURL resolves an href against the base URL.
// It returns nil for empty hrefs, mailto: and tel: links, unparsable values
// and anything that does not resolve to an http(s) URL with a host.
// The host is lowercased and the fragment dropped, so "https://A.example/p#x"
// and "https://a.example/p#y" are the same link.
func (p *Parser) resolveURL(href string) *url.URL {
	href = strings.TrimSpace(href)
	if href == "" {
		return nil
	}

	lower := strings.ToLower(href)
	if strings.HasPrefix(lower, "mailto:") || strings.HasPrefix(lower, "tel:") {
		return nil
	}

	u, err := url.Parse(href)
	if err != nil {
		return nil
	}

	resolved := p.baseURL.ResolveReference(u)
	resolved.Host = strings.ToLower(resolved.Host)
	resolved.Fragment = ""
	resolved.RawFragment = ""

	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return nil
	}
	if resolved.Host == "" {
		return nil
	}
	return resolved
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) (string, bool) {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}
