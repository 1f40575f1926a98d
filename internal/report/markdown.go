package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/linkcast/internal/model"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// MarkdownWriterOption configures a MarkdownWriter.
type MarkdownWriterOption func(*MarkdownWriter)

// WithMarkdownDenyList sets the denylist used to group excluded social links.
func WithMarkdownDenyList(denyList []string) MarkdownWriterOption {
	return func(w *MarkdownWriter) {
		w.denyList = denyList
	}
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, opts ...MarkdownWriterOption) *MarkdownWriter {
	w := &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WriteScan outputs the scan result in Markdown format.
func (w *MarkdownWriter) WriteScan(result *model.ScanResult) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Link Scan Report")
	md.PlainText("")

	reachable := "✅ Yes"
	if !result.Reachable {
		reachable = "❌ No"
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Start URL", "`" + result.StartURL + "`"},
			{"Host", "`" + result.Host + "`"},
			{"Scan Date", result.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Reachable", reachable},
			{"One-hop Crawl", strconv.FormatBool(result.CrawlExternal)},
			{"Duration", result.Duration.Round(time.Millisecond).String()},
		},
	})
	md.PlainText("")

	if !result.Reachable {
		md.Warningf("The start page %s could not be fetched. No links were collected.", result.StartURL)
		md.PlainText("")
	}

	w.writeLinkChart(md, result)
	w.writeLinkList(md, "Internal links", result.Links.Internal.Sorted())
	w.writeLinkList(md, "External links", result.Links.External.Sorted())
	w.writeExcluded(md, result)
	w.writeHops(md, result)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeLinkChart writes a mermaid pie chart of the link classification.
func (w *MarkdownWriter) writeLinkChart(md *markdown.Markdown, result *model.ScanResult) {
	internal := result.Links.Internal.Len()
	external := result.Links.External.Len()
	denied := result.Links.Denied.Len()
	if internal+external+denied == 0 {
		return
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Link Classification"),
		piechart.WithShowData(true),
	)
	if internal > 0 {
		chart.LabelAndIntValue("Internal", uint64(internal))
	}
	if external > 0 {
		chart.LabelAndIntValue("External", uint64(external))
	}
	if denied > 0 {
		chart.LabelAndIntValue("Excluded social", uint64(denied))
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeLinkList(md *markdown.Markdown, title string, links []string) {
	md.H2(title + " (" + strconv.Itoa(len(links)) + ")")
	md.PlainText("")
	if len(links) == 0 {
		md.PlainText("None.")
		md.PlainText("")
		return
	}
	md.BulletList(links...)
	md.PlainText("")
}

// writeExcluded writes the excluded social links as a table.
func (w *MarkdownWriter) writeExcluded(md *markdown.Markdown, result *model.ScanResult) {
	groups := w.excludedGroups(result)
	if len(groups) == 0 {
		return
	}

	md.H2("Excluded social links (" + strconv.Itoa(result.Links.Denied.Len()) + ")")
	md.PlainText("")

	rows := make([][]string, 0, result.Links.Denied.Len())
	for _, g := range groups {
		for _, link := range g.Links {
			handle := link.Handle
			if handle == "" {
				handle = "-"
			}
			rows = append(rows, []string{g.Platform, link.URL, handle})
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Platform", "URL", "Handle"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeHops writes one section per external page of the one-hop crawl.
func (w *MarkdownWriter) writeHops(md *markdown.Markdown, result *model.ScanResult) {
	if len(result.Hops) == 0 {
		return
	}

	md.H2("One-hop crawl")
	md.PlainText("")

	for _, hop := range sortedHops(result.Hops) {
		md.H3("Internal links of " + hop.URL + " (" + strconv.Itoa(len(hop.Internal)) + ")")
		md.PlainText("")
		switch {
		case !hop.Reachable:
			md.PlainText("Page could not be fetched.")
		case len(hop.Internal) == 0:
			md.PlainText("None.")
		default:
			md.BulletList(hop.Internal...)
		}
		md.PlainText("")
	}
}

// WritePublish outputs the publish report in Markdown format.
func (w *MarkdownWriter) WritePublish(report *model.PublishReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Publish Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Content", "`" + report.ContentPath + "`"},
			{"Caption", report.Caption},
			{"Date", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", report.Duration.Round(time.Millisecond).String()},
		},
	})
	md.PlainText("")

	w.writeMediaFindings(md, report)

	md.H2("Uploads")
	md.PlainText("")
	if len(report.Results) == 0 {
		md.PlainText("No uploads completed.")
		md.PlainText("")
	} else {
		rows := make([][]string, len(report.Results))
		for i, r := range report.Results {
			remoteID := r.RemoteID
			if remoteID == "" {
				remoteID = "-"
			}
			rows[i] = []string{r.Platform.DisplayName(), strconv.Itoa(r.StatusCode), remoteID}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Platform", "Status", "Remote ID"},
			Rows:   rows,
		})
		md.PlainText("")
		for _, r := range report.Results {
			if r.RawResponse != "" {
				md.Details(r.Platform.DisplayName()+" response", r.RawResponse)
			}
		}
		md.PlainText("")
	}

	if report.HasErrors() {
		md.H2("Errors")
		md.PlainText("")
		for _, p := range model.AllPlatforms() {
			if msg, ok := report.Errors[p]; ok {
				md.Cautionf("%s: %s", p.DisplayName(), msg)
				md.PlainText("")
			}
		}
	}

	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeMediaFindings writes the EXIF metadata found in the content file.
func (w *MarkdownWriter) writeMediaFindings(md *markdown.Markdown, report *model.PublishReport) {
	md.H2("Media metadata")
	md.PlainText("")

	if len(report.MediaFindings) == 0 {
		md.Tip("No identifying metadata found in the content file.")
		md.PlainText("")
		return
	}

	if report.HasGPS() {
		md.Warningf("The content file contains GPS coordinates (%d tag(s)). Its location is published with it.",
			countKind(report.MediaFindings, model.MediaKindGPS))
		md.PlainText("")
	}

	rows := make([][]string, len(report.MediaFindings))
	for i, f := range report.MediaFindings {
		rows[i] = []string{f.Severity.String(), string(f.Kind), f.Tag, truncateString(f.Value, 50)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Severity", "Kind", "Tag", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [linkcast](https://github.com/nao1215/linkcast)*")
}

func countKind(findings []model.MediaFinding, kind model.MediaKind) int {
	n := 0
	for _, f := range findings {
		if f.Kind == kind {
			n++
		}
	}
	return n
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
