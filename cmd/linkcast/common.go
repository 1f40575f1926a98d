package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/nao1215/linkcast/internal/config"
	"github.com/nao1215/linkcast/internal/log"
	"github.com/nao1215/linkcast/internal/report"
	"github.com/spf13/cobra"
)

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	return getPersistentBool(cmd, "verbose")
}

// getLogJSONFlag retrieves the log-json flag from the command or its parent.
func getLogJSONFlag(cmd *cobra.Command) bool {
	return getPersistentBool(cmd, "log-json")
}

func getPersistentBool(cmd *cobra.Command, name string) bool {
	value, err := cmd.Flags().GetBool(name)
	if err != nil {
		value, err = cmd.Root().PersistentFlags().GetBool(name)
		if err != nil {
			return false
		}
	}
	return value
}

// setupLogger creates a structured logger that writes to w and redacts
// tokens and other secrets.
func setupLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	if cfg.LogJSON {
		return log.NewSecureJSONLogger(w, cfg.Verbose)
	}
	return log.NewSecureLogger(w, cfg.Verbose)
}

// signalContext returns a context that is cancelled on SIGINT or SIGTERM.
// The returned cancel function must be called to release the signal handler.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigCh)
		cancel()
	}
}

// loadConfigFile applies .env and the configuration file to cfg.
// If the user explicitly specified a config file path, a missing file is
// an error. Otherwise the defaults are used silently.
func loadConfigFile(cfg *config.Config) error {
	if err := config.LoadDotEnv(); err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath == "" {
		if explicitConfigPath {
			return fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
		}
		return nil
	}

	f, err := config.LoadConfigFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}
	cfg.ApplyFile(f)
	return nil
}

// openOutput returns the destination for reports: the file at path, or
// stdout when path is empty. The returned close function is never nil.
func openOutput(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "" {
		return stdout, func() error { return nil }, nil
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// Reports may contain access tokens echoed by the platforms, so only
	// the owner may read them.
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}

// openReport returns the report writer for cfg. With --tee the report goes
// to the output file and stdout alike. The close function is never nil.
func openReport(cfg *config.Config, stdout io.Writer) (report.Writer, func() error, error) {
	output, closeOutput, err := openOutput(cfg.ReportFile, stdout)
	if err != nil {
		return nil, nil, err
	}
	writer := newReportWriter(cfg, output)
	if cfg.Tee && cfg.ReportFile != "" {
		writer = report.NewMultiWriter(writer, newReportWriter(cfg, stdout))
	}
	return writer, closeOutput, nil
}

// newReportWriter selects the report format requested in cfg.
func newReportWriter(cfg *config.Config, output io.Writer) report.Writer {
	if cfg.JSONReport {
		opts := []report.JSONWriterOption{
			report.WithPrettyPrint(),
			report.WithVersion(getVersion()),
		}
		if cfg.DenyList != nil {
			opts = append(opts, report.WithJSONDenyList(cfg.DenyList))
		}
		return report.NewJSONWriter(output, opts...)
	}

	if cfg.MarkdownReport {
		var opts []report.MarkdownWriterOption
		if cfg.DenyList != nil {
			opts = append(opts, report.WithMarkdownDenyList(cfg.DenyList))
		}
		return report.NewMarkdownWriter(output, opts...)
	}

	opts := []report.SimpleWriterOption{report.WithVerbose(cfg.Verbose)}
	if cfg.DenyList != nil {
		opts = append(opts, report.WithDenyList(cfg.DenyList))
	}
	return report.NewSimpleWriter(output, opts...)
}
