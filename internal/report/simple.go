package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/linkcast/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// Link sections are printed sorted so that two runs over the same page
// produce identical output.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors because it is easier to pipe to files or other tools.
type SimpleWriter struct {
	baseWriter

	// verbose prints raw platform responses of successful uploads.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// WithDenyList sets the denylist used to group excluded social links.
func WithDenyList(denyList []string) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.denyList = denyList
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WriteScan outputs the scan result in human-readable format.
func (w *SimpleWriter) WriteScan(result *model.ScanResult) (int, error) {
	var sb strings.Builder

	status := "reachable"
	if !result.Reachable {
		status = "unreachable"
	}
	sb.WriteString(fmt.Sprintf("Scan of %s (%s)\n", result.StartURL, status))

	writeLinkSection(&sb, "Internal links", result.Links.Internal.Sorted())
	writeLinkSection(&sb, "External links", result.Links.External.Sorted())

	if groups := w.excludedGroups(result); len(groups) > 0 {
		sb.WriteString(fmt.Sprintf("Excluded social links (%d):\n", result.Links.Denied.Len()))
		for _, g := range groups {
			sb.WriteString(fmt.Sprintf("  %s:\n", g.Platform))
			for _, link := range g.Links {
				if link.Handle != "" {
					sb.WriteString(fmt.Sprintf("    %s (%s)\n", link.URL, link.Handle))
				} else {
					sb.WriteString(fmt.Sprintf("    %s\n", link.URL))
				}
			}
		}
	}

	for _, hop := range sortedHops(result.Hops) {
		writeLinkSection(&sb, "Internal links of "+hop.URL, hop.Internal)
		if !hop.Reachable {
			sb.WriteString("  (page could not be fetched)\n")
		}
	}
	sb.WriteString("\n")

	return w.output.Write([]byte(sb.String()))
}

// writeLinkSection writes a "<title> (N):" header followed by one link per line.
func writeLinkSection(sb *strings.Builder, title string, links []string) {
	sb.WriteString(fmt.Sprintf("%s (%d):\n", title, len(links)))
	for _, link := range links {
		sb.WriteString("  ")
		sb.WriteString(link)
		sb.WriteString("\n")
	}
}

// WritePublish outputs the publish report in human-readable format.
func (w *SimpleWriter) WritePublish(report *model.PublishReport) (int, error) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Publish report for %s\n", report.ContentPath))
	sb.WriteString(fmt.Sprintf("Caption: %s\n", report.Caption))

	if len(report.MediaFindings) > 0 {
		sb.WriteString(fmt.Sprintf("Media metadata (%d):\n", len(report.MediaFindings)))
		for _, f := range report.MediaFindings {
			sb.WriteString(fmt.Sprintf("  [%s] %s: %s\n", f.Severity.String(), f.Tag, f.Value))
		}
	}

	sb.WriteString(fmt.Sprintf("Uploads (%d):\n", len(report.Results)))
	for _, r := range report.Results {
		line := fmt.Sprintf("  %s: status %d", r.Platform.DisplayName(), r.StatusCode)
		if r.RemoteID != "" {
			line += ", id " + r.RemoteID
		}
		sb.WriteString(line + "\n")
		if w.verbose && r.RawResponse != "" {
			sb.WriteString("    " + r.RawResponse + "\n")
		}
	}

	if report.HasErrors() {
		sb.WriteString(fmt.Sprintf("Errors (%d):\n", len(report.Errors)))
		for _, p := range model.AllPlatforms() {
			if msg, ok := report.Errors[p]; ok {
				sb.WriteString(fmt.Sprintf("  %s: %s\n", p.DisplayName(), msg))
			}
		}
	}
	sb.WriteString("\n")

	return w.output.Write([]byte(sb.String()))
}
