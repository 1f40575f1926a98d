package report

import (
	"io"
	"sort"

	"github.com/nao1215/linkcast/internal/model"
	"github.com/nao1215/linkcast/internal/social"
)

// Writer defines the interface for report output.
// Implementations write scan and publish results in various formats.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files or stdout with the
// same API.
type Writer interface {
	// WriteScan outputs a link scan result.
	// Returns the number of bytes written and any error encountered.
	WriteScan(result *model.ScanResult) (int, error)

	// WritePublish outputs the result of a publish run.
	WritePublish(report *model.PublishReport) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
//
// Design decision: We implement this as a separate type rather than
// using io.MultiWriter because our Writer interface is different
// from io.Writer - we write reports, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// WriteScan outputs the scan result to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) WriteScan(result *model.ScanResult) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteScan(result)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WritePublish outputs the publish report to all configured Writers.
func (m *MultiWriter) WritePublish(report *model.PublishReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WritePublish(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer

	// denyList groups excluded links by platform.
	denyList []string
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{
		output:   output,
		denyList: social.DefaultDenyList,
	}
}

// excludedGroups groups the denied links of a scan by platform.
func (b baseWriter) excludedGroups(result *model.ScanResult) []social.Group {
	return social.GroupLinks(result.Links.Denied.Sorted(), b.denyList)
}

// sortedHops returns the hop results ordered by URL.
// CrawlPage already visits hops in sorted order; results loaded from
// elsewhere may not be.
func sortedHops(hops []model.HopResult) []model.HopResult {
	out := make([]model.HopResult, len(hops))
	copy(out, hops)
	sort.SliceStable(out, func(i, j int) bool { return out[i].URL < out[j].URL })
	return out
}
