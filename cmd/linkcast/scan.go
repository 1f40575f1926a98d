package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/nao1215/linkcast/internal/config"
	"github.com/nao1215/linkcast/internal/database"
	"github.com/nao1215/linkcast/internal/httpclient"
	"github.com/nao1215/linkcast/internal/model"
	"github.com/nao1215/linkcast/internal/scanner"
	"github.com/spf13/cobra"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [url]...",
		Short: "Scan web pages for internal and external links",
		Long: `Scan fetches each page and lists the links it contains.

Links on the same host as the page are internal, all others are external.
Links to social media sites (Facebook, Twitter, Instagram, LinkedIn,
YouTube, TikTok, Pinterest) are excluded and reported separately.
mailto:, tel:, and javascript: links are ignored.

With --external, every external link is fetched once more and the internal
links of that page are reported too. The crawl never goes deeper than one
hop, and a page is fetched at most once per invocation even when several
start pages link to it.

Pages that cannot be fetched are reported as unreachable with no links.

Examples:
  # Scan a single page
  linkcast scan https://example.com

  # Follow external links one hop
  linkcast scan -x https://example.com

  # Scan several pages and write a Markdown report
  linkcast scan -m -o report.md https://example.com https://example.org

  # Route requests through a SOCKS5 proxy
  linkcast scan --proxy 127.0.0.1:1080 https://example.com`,
		Args: cobra.ArbitraryArgs,
		RunE: runScanCmd,
	}

	// Crawl flags
	cmd.Flags().BoolP("external", "x", false,
		"Fetch every external link once and report its internal links")
	cmd.Flags().Duration("timeout-connect", config.DefaultConnectTimeout,
		"Connect timeout for each request")
	cmd.Flags().Duration("timeout-read", config.DefaultReadTimeout,
		"Read timeout for each request")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with each request")
	cmd.Flags().String("proxy", "",
		"SOCKS5 proxy address (e.g., 127.0.0.1:1080)")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .linkcast in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().Bool("tee", false,
		"With --output, also print the report to stdout")
	cmd.Flags().Bool("no-save", false,
		"Do not store the scan in the history database")

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildScanConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg)
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	return runScan(ctx, cfg, logger, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// buildScanConfig creates a Config from the config file and cobra flags.
// Flags override the config file only when they were set explicitly.
func buildScanConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)
	cfg.LogJSON = getLogJSONFlag(cmd)

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	if err := loadConfigFile(cfg); err != nil {
		return nil, err
	}

	flags := cmd.Flags()

	cfg.CrawlExternal, err = flags.GetBool("external")
	if err != nil {
		return nil, err
	}

	if flags.Changed("timeout-connect") {
		if cfg.ConnectTimeout, err = flags.GetDuration("timeout-connect"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("timeout-read") {
		if cfg.ReadTimeout, err = flags.GetDuration("timeout-read"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("user-agent") {
		if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("proxy") {
		if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
			return nil, err
		}
	}

	cfg.JSONReport, err = flags.GetBool("json")
	if err != nil {
		return nil, err
	}
	cfg.MarkdownReport, err = flags.GetBool("markdown")
	if err != nil {
		return nil, err
	}
	cfg.ReportFile, err = flags.GetString("output")
	if err != nil {
		return nil, err
	}
	cfg.Tee, err = flags.GetBool("tee")
	if err != nil {
		return nil, err
	}

	noSave, err := flags.GetBool("no-save")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noSave

	cfg.Targets = args
	return cfg, nil
}

// runScan scans every target with one shared visited set, printing each
// report as soon as its scan finishes.
func runScan(ctx context.Context, cfg *config.Config, logger *slog.Logger, stdout, stderr io.Writer) error {
	if len(cfg.Targets) == 0 {
		return errors.New("no targets provided (specify one or more URLs as arguments)")
	}

	logger.Info("starting scan",
		"targets", cfg.Targets,
		"crawlExternal", cfg.CrawlExternal,
		"saveToDB", cfg.SaveToDB,
	)

	if cfg.ProxyAddress != "" {
		if err := httpclient.CheckProxy(ctx, cfg.ProxyAddress, cfg.ConnectTimeout); err != nil {
			return fmt.Errorf("proxy check failed: %w (make sure a SOCKS5 proxy is running at %s)",
				err, cfg.ProxyAddress)
		}
		logger.Info("proxy connection verified", "address", cfg.ProxyAddress)
	}

	client, err := httpclient.New(httpclient.Options{
		ConnectTimeout: cfg.ConnectTimeout,
		ReadTimeout:    cfg.ReadTimeout,
		ProxyAddress:   cfg.ProxyAddress,
		UserAgent:      cfg.UserAgent,
		Headers:        cfg.Headers,
	})
	if err != nil {
		return fmt.Errorf("failed to create HTTP client: %w", err)
	}

	fetcher := scanner.NewHTTPFetcher(client,
		scanner.WithMaxBodySize(cfg.MaxBodySize),
		scanner.WithFetcherLogger(logger),
	)
	scanOpts := []scanner.Option{scanner.WithLogger(logger)}
	if cfg.DenyList != nil {
		scanOpts = append(scanOpts, scanner.WithDenyList(cfg.DenyList))
	}
	s := scanner.New(fetcher, scanOpts...)

	var db *database.HistoryDB
	if cfg.SaveToDB {
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "path", db.Path())
	}

	writer, closeOutput, err := openReport(cfg, stdout)
	if err != nil {
		return err
	}
	defer closeOutput() //nolint:errcheck // Write errors are reported by the writer

	visited := model.NewVisited()
	for _, target := range cfg.Targets {
		fmt.Fprintf(stderr, "Scanning %s...\n", target)

		result, scanErr := s.CrawlPage(ctx, target, cfg.CrawlExternal, visited)
		if result == nil {
			return fmt.Errorf("failed to scan %s: %w", target, scanErr)
		}
		fmt.Fprintf(stderr, "Scan completed in %s\n", result.Duration.Round(time.Millisecond))

		if _, err := writer.WriteScan(result); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}

		if err := saveScan(ctx, db, result, logger); err != nil {
			logger.Error("failed to save scan", "url", target, "error", err)
		}

		// A cancelled crawl still reports what it found before stopping.
		if scanErr != nil {
			return scanErr
		}
	}

	return nil
}

// saveScan saves the scan result to the database if enabled.
// If db is nil, this function is a no-op.
func saveScan(ctx context.Context, db *database.HistoryDB, result *model.ScanResult, logger *slog.Logger) error {
	if db == nil {
		return nil
	}

	// The scan may have been interrupted; the partial result is still worth keeping.
	id, err := db.SaveScan(context.WithoutCancel(ctx), result)
	if err != nil {
		return err
	}

	logger.Info("scan saved to database", "url", result.StartURL, "id", id)
	return nil
}
