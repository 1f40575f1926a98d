package scanner

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/nao1215/linkcast/internal/model"
	"github.com/nao1215/linkcast/internal/social"
)

// Scanner scans a start page and optionally its external links.
type Scanner struct {
	// fetcher downloads page bodies.
	fetcher Fetcher

	// denyList holds host substrings whose links are excluded from results.
	denyList []string

	// logger is used for progress and debug output.
	logger *slog.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithDenyList replaces the default social media denylist.
// An empty list disables the exclusion entirely.
func WithDenyList(denyList []string) Option {
	return func(s *Scanner) {
		s.denyList = denyList
	}
}

// WithLogger sets a custom logger for the scanner.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) {
		s.logger = logger
	}
}

// New creates a Scanner that downloads pages with fetcher.
func New(fetcher Fetcher, opts ...Option) *Scanner {
	s := &Scanner{
		fetcher:  fetcher,
		denyList: social.DefaultDenyList,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// CrawlPage fetches pageURL and classifies its links.
//
// An unreachable start page is not an error: the result has Reachable set
// to false and empty link sets. Only an unusable pageURL returns an error.
//
// When crawlExternal is true, every external link not yet in visited is
// marked visited, fetched once, and its internal links are recorded as a
// HopResult. The crawl stops there, exactly one hop deep. Links are visited
// in sorted order so that output is reproducible. A nil visited set is
// treated as a fresh one.
//
// Cancellation is checked before each hop; a cancelled crawl returns the
// partial result together with the context error.
func (s *Scanner) CrawlPage(ctx context.Context, pageURL string, crawlExternal bool, visited *model.Visited) (*model.ScanResult, error) {
	pageURL = strings.TrimSpace(pageURL)
	parser, err := NewParser(pageURL, s.denyList)
	if err != nil {
		return nil, err
	}
	if visited == nil {
		visited = model.NewVisited()
	}

	result := model.NewScanResult(pageURL, crawlExternal)
	defer func() {
		result.Duration = time.Since(result.StartedAt)
	}()

	if err := ctx.Err(); err != nil {
		return result, err
	}

	s.logger.Info("scanning page", "url", pageURL, "crawl_external", crawlExternal)

	body, ok := s.fetcher.Fetch(ctx, pageURL)
	result.Reachable = ok
	if ok {
		links, err := parser.Parse(strings.NewReader(body))
		if err != nil {
			s.logger.Warn("failed to parse page", "url", pageURL, "error", err)
		} else {
			result.Links = links
		}
	}

	s.logger.Debug("classified links",
		"url", pageURL,
		"internal", result.Links.Internal.Len(),
		"external", result.Links.External.Len(),
		"denied", result.Links.Denied.Len(),
	)

	if !crawlExternal {
		return result, nil
	}

	for _, link := range result.Links.External.Sorted() {
		select {
		case <-ctx.Done():
			s.logger.Warn("crawl cancelled", "url", pageURL, "reason", ctx.Err())
			return result, ctx.Err()
		default:
		}

		if visited.Has(link) {
			s.logger.Debug("skipping visited link", "url", link)
			continue
		}
		visited.Add(link)

		result.AddHop(s.crawlHop(ctx, link))
	}

	return result, nil
}

// crawlHop fetches one external page and collects its internal links.
func (s *Scanner) crawlHop(ctx context.Context, link string) model.HopResult {
	hop := model.HopResult{URL: link, Internal: make([]string, 0)}

	parser, err := NewParser(link, s.denyList)
	if err != nil {
		s.logger.Warn("skipping external link", "url", link, "error", err)
		return hop
	}

	body, ok := s.fetcher.Fetch(ctx, link)
	hop.Reachable = ok
	if !ok {
		return hop
	}

	links, err := parser.Parse(strings.NewReader(body))
	if err != nil {
		s.logger.Warn("failed to parse page", "url", link, "error", err)
		return hop
	}
	hop.Internal = links.Internal.Sorted()
	return hop
}
