package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/linkcast/internal/config"
	"github.com/nao1215/linkcast/internal/database"
	"github.com/nao1215/linkcast/internal/model"
	"github.com/nao1215/linkcast/internal/report"
	"github.com/spf13/cobra"
)

// timestampLayout is used for dates in history listings.
const timestampLayout = "2006-01-02 15:04:05"

// NewHistoryCmd creates the history command.
// This command reads scan results and upload responses stored in the database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [url]",
		Short: "Show stored scans and uploads",
		Long: `History displays the scans and uploads stored in the local database.

Without flags it lists every stored scan, newest first. Give a URL to only
list the scans of that page.

--diff compares the latest two scans of a URL and shows which internal and
external links were added or removed in between.

--uploads lists stored upload responses. The optional argument then names
a platform to filter by (youtube, instagram, linkedin, tiktok).

Examples:
  # List all stored scans
  linkcast history

  # List the scans of one page
  linkcast history https://example.com

  # Show what changed between the latest two scans
  linkcast history --diff https://example.com

  # Show one stored scan in full
  linkcast history --show 3

  # List all pages that were ever scanned
  linkcast history --list-urls

  # List YouTube uploads as JSON
  linkcast history --uploads --json youtube`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("list-urls", "L", false,
		"List all scanned URLs in the database")
	cmd.Flags().BoolP("diff", "d", false,
		"Compare the latest two scans of the specified URL")
	cmd.Flags().Int64P("show", "s", 0,
		"Show the stored scan with this ID in full")
	cmd.Flags().BoolP("uploads", "u", false,
		"List stored upload responses")
	cmd.Flags().BoolP("json", "j", false,
		"Output in JSON format")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	listURLs, err := flags.GetBool("list-urls")
	if err != nil {
		return err
	}
	diff, err := flags.GetBool("diff")
	if err != nil {
		return err
	}
	showID, err := flags.GetInt64("show")
	if err != nil {
		return err
	}
	uploads, err := flags.GetBool("uploads")
	if err != nil {
		return err
	}
	jsonOutput, err := flags.GetBool("json")
	if err != nil {
		return err
	}

	var arg string
	if len(args) > 0 {
		arg = args[0]
	}

	// Validate arguments before opening the database.
	var platform model.Platform
	switch {
	case diff && arg == "":
		return errors.New("a URL is required for --diff (use --list-urls to see scanned URLs)")
	case uploads && arg != "":
		platform, err = model.ParsePlatform(arg)
		if err != nil {
			return err
		}
	}

	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false
	db, err := database.Open(config.XDGDataDir(), opts)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	out := cmd.OutOrStdout()

	switch {
	case listURLs:
		return listScannedURLs(ctx, db, out, jsonOutput)
	case uploads:
		return listUploadHistory(ctx, db, out, platform, jsonOutput)
	case showID > 0:
		return showScan(ctx, db, out, showID, jsonOutput)
	case diff:
		return diffLatestScans(ctx, db, out, arg, jsonOutput)
	default:
		return listScanHistory(ctx, db, out, arg, jsonOutput)
	}
}

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v interface{}) error {
	_, err := report.NewJSONWriter(w, report.WithPrettyPrint()).WriteValue(v)
	return err
}

// listScannedURLs lists all start URLs that have scan records in the database.
func listScannedURLs(ctx context.Context, db *database.HistoryDB, w io.Writer, jsonOutput bool) error {
	urls, err := db.ListScannedURLs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list scanned URLs: %w", err)
	}

	if jsonOutput {
		return writeJSON(w, urls)
	}

	if len(urls) == 0 {
		fmt.Fprintln(w, "No scanned URLs found in the database.")
		fmt.Fprintln(w, "\nUse 'linkcast scan <url>' to scan a page.")
		return nil
	}

	fmt.Fprintf(w, "Scanned URLs (%d):\n\n", len(urls))
	for _, u := range urls {
		fmt.Fprintf(w, "  • %s\n", u)
	}
	fmt.Fprintln(w, "\nUse 'linkcast history <url>' to see the scans of a page.")
	return nil
}

// listScanHistory lists stored scans, optionally only those of startURL.
func listScanHistory(ctx context.Context, db *database.HistoryDB, w io.Writer, startURL string, jsonOutput bool) error {
	scans, err := db.ListScans(ctx, startURL)
	if err != nil {
		return fmt.Errorf("failed to get scan history: %w", err)
	}

	if jsonOutput {
		return writeJSON(w, scans)
	}

	if len(scans) == 0 {
		if startURL != "" {
			fmt.Fprintf(w, "No scan history found for %s\n", startURL)
		} else {
			fmt.Fprintln(w, "No scan history found.")
		}
		fmt.Fprintln(w, "\nUse 'linkcast scan <url>' to scan a page.")
		return nil
	}

	title := "Scan history"
	if startURL != "" {
		title += " for " + startURL
	}
	fmt.Fprintf(w, "%s (%d scans):\n\n", title, len(scans))
	fmt.Fprintf(w, "  %-6s  %-20s  %-9s  %-8s  %-8s  %-8s  %s\n",
		"ID", "Date", "Reachable", "Internal", "External", "Excluded", "URL")
	fmt.Fprintln(w, "  "+strings.Repeat("-", 90))

	for _, s := range scans {
		fmt.Fprintf(w, "  %-6d  %-20s  %-9s  %-8d  %-8d  %-8d  %s\n",
			s.ID,
			s.Timestamp.Local().Format(timestampLayout),
			yesNo(s.Reachable),
			s.InternalCount,
			s.ExternalCount,
			s.DeniedCount,
			s.StartURL,
		)
	}

	fmt.Fprintln(w, "\nUse 'linkcast history --diff <url>' to compare the latest two scans.")
	fmt.Fprintln(w, "Use 'linkcast history --show <id>' to see a stored scan in full.")
	return nil
}

// showScan prints one stored scan with the regular report writers.
func showScan(ctx context.Context, db *database.HistoryDB, w io.Writer, id int64, jsonOutput bool) error {
	result, err := db.GetScan(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get scan %d: %w", id, err)
	}
	if result == nil {
		return fmt.Errorf("scan with ID %d not found", id)
	}

	var writer report.Writer = report.NewSimpleWriter(w)
	if jsonOutput {
		writer = report.NewJSONWriter(w, report.WithPrettyPrint(), report.WithVersion(getVersion()))
	}
	_, err = writer.WriteScan(result)
	return err
}

// ScanDiff holds the link changes between two scans of the same page.
type ScanDiff struct {
	// StartURL is the page both scans were taken of.
	StartURL string `json:"start_url"`

	// PreviousScan is the older of the two scans.
	PreviousScan database.ScanMetadata `json:"previous_scan"`

	// CurrentScan is the newer of the two scans.
	CurrentScan database.ScanMetadata `json:"current_scan"`

	AddedInternal   []string `json:"added_internal"`
	RemovedInternal []string `json:"removed_internal"`
	AddedExternal   []string `json:"added_external"`
	RemovedExternal []string `json:"removed_external"`
}

// HasChanges reports whether any link was added or removed.
func (d *ScanDiff) HasChanges() bool {
	return len(d.AddedInternal)+len(d.RemovedInternal)+
		len(d.AddedExternal)+len(d.RemovedExternal) > 0
}

// diffLinks compares the link sets of two scans.
func diffLinks(startURL string, previous, current database.ScanMetadata, prevLinks, curLinks model.LinkSet) *ScanDiff {
	return &ScanDiff{
		StartURL:        startURL,
		PreviousScan:    previous,
		CurrentScan:     current,
		AddedInternal:   curLinks.Internal.Diff(prevLinks.Internal),
		RemovedInternal: prevLinks.Internal.Diff(curLinks.Internal),
		AddedExternal:   curLinks.External.Diff(prevLinks.External),
		RemovedExternal: prevLinks.External.Diff(curLinks.External),
	}
}

// diffLatestScans compares the latest two scans of startURL.
func diffLatestScans(ctx context.Context, db *database.HistoryDB, w io.Writer, startURL string, jsonOutput bool) error {
	scans, err := db.LatestScans(ctx, startURL, 2)
	if err != nil {
		return fmt.Errorf("failed to get scan history: %w", err)
	}
	if len(scans) < 2 {
		return fmt.Errorf("at least 2 scans of %s are required for comparison (found %d)", startURL, len(scans))
	}

	// Scans are ordered newest first.
	current, previous := scans[0], scans[1]

	curLinks, err := db.GetScanLinks(ctx, current.ID)
	if err != nil {
		return fmt.Errorf("failed to get links of scan %d: %w", current.ID, err)
	}
	prevLinks, err := db.GetScanLinks(ctx, previous.ID)
	if err != nil {
		return fmt.Errorf("failed to get links of scan %d: %w", previous.ID, err)
	}

	d := diffLinks(startURL, previous, current, prevLinks, curLinks)

	if jsonOutput {
		return writeJSON(w, d)
	}
	writeDiffText(w, d)
	return nil
}

// writeDiffText prints a scan diff in human-readable format.
func writeDiffText(w io.Writer, d *ScanDiff) {
	fmt.Fprintf(w, "Link changes for %s\n", d.StartURL)
	fmt.Fprintf(w, "  previous: #%d  %s\n", d.PreviousScan.ID, d.PreviousScan.Timestamp.Local().Format(timestampLayout))
	fmt.Fprintf(w, "  current:  #%d  %s\n\n", d.CurrentScan.ID, d.CurrentScan.Timestamp.Local().Format(timestampLayout))

	if !d.HasChanges() {
		fmt.Fprintln(w, "No link changes.")
		return
	}

	writeChanges(w, "Added internal links", "+", d.AddedInternal)
	writeChanges(w, "Removed internal links", "-", d.RemovedInternal)
	writeChanges(w, "Added external links", "+", d.AddedExternal)
	writeChanges(w, "Removed external links", "-", d.RemovedExternal)
}

func writeChanges(w io.Writer, title, marker string, links []string) {
	if len(links) == 0 {
		return
	}
	fmt.Fprintf(w, "%s (%d):\n", title, len(links))
	for _, l := range links {
		fmt.Fprintf(w, "  %s %s\n", marker, l)
	}
	fmt.Fprintln(w)
}

// listUploadHistory lists stored uploads, optionally only those of platform.
func listUploadHistory(ctx context.Context, db *database.HistoryDB, w io.Writer, platform model.Platform, jsonOutput bool) error {
	uploads, err := db.ListUploads(ctx, platform)
	if err != nil {
		return fmt.Errorf("failed to list uploads: %w", err)
	}

	if jsonOutput {
		return writeJSON(w, uploads)
	}

	if len(uploads) == 0 {
		fmt.Fprintln(w, "No uploads found in the database.")
		fmt.Fprintln(w, "\nUse 'linkcast upload <file> --platform <name>' to publish a file.")
		return nil
	}

	fmt.Fprintf(w, "Uploads (%d):\n\n", len(uploads))
	fmt.Fprintf(w, "  %-6s  %-20s  %-10s  %-6s  %-24s  %s\n",
		"ID", "Date", "Platform", "Status", "Remote ID", "File")
	fmt.Fprintln(w, "  "+strings.Repeat("-", 90))

	for _, u := range uploads {
		remoteID := u.RemoteID
		if remoteID == "" {
			remoteID = "-"
		}
		fmt.Fprintf(w, "  %-6d  %-20s  %-10s  %-6d  %-24s  %s\n",
			u.ID,
			u.UploadedAt.Local().Format(timestampLayout),
			u.Platform.String(),
			u.StatusCode,
			remoteID,
			u.ContentPath,
		)
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
