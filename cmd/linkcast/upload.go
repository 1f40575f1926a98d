package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/nao1215/linkcast/internal/config"
	"github.com/nao1215/linkcast/internal/database"
	"github.com/nao1215/linkcast/internal/model"
	"github.com/nao1215/linkcast/internal/pipeline"
	"github.com/nao1215/linkcast/internal/uploader"
	"github.com/spf13/cobra"
)

// NewUploadCmd creates the upload command.
func NewUploadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Publish a media file to social platforms",
		Long: `Upload publishes one media file with a caption to each requested platform,
in the order the platforms are given.

Supported platforms:
- youtube:   video upload through the YouTube Data API (OAuth)
- instagram: image post through the Instagram Graph API
- linkedin:  text share through the LinkedIn UGC API
- tiktok:    video upload through the TikTok API

Credentials are read from the .linkcast configuration file and the
LINKCAST_* environment variables (a .env file is loaded first). The first
YouTube upload prints an authorization URL and asks for the code shown
after consent. The token is cached for later runs.

Before uploading, local files are checked for EXIF metadata such as GPS
coordinates or camera serial numbers. Use --strict-media to refuse files
that carry a location.

Examples:
  # Publish a video to YouTube and TikTok
  linkcast upload clip.mp4 --caption "New video" --platform youtube,tiktok

  # Keep going when one platform fails
  linkcast upload photo.jpg -t "Hello" -p instagram,linkedin --continue-on-error

  # Print the full platform responses as JSON
  linkcast upload clip.mp4 -t "New video" -p tiktok --json`,
		Args: cobra.ExactArgs(1),
		RunE: runUploadCmd,
	}

	cmd.Flags().StringP("caption", "t", "",
		"Caption or description published with the file")
	cmd.Flags().StringSliceP("platform", "p", nil,
		"Comma separated platforms: youtube, instagram, linkedin, tiktok")
	cmd.Flags().Bool("continue-on-error", false,
		"Continue with the remaining platforms when an upload fails")
	cmd.Flags().Bool("strict-media", false,
		"Refuse to upload files that contain GPS metadata")

	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .linkcast in current or home directory)")

	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().Bool("tee", false,
		"With --output, also print the report to stdout")
	cmd.Flags().Bool("no-save", false,
		"Do not store the upload responses in the history database")

	return cmd
}

// runUploadCmd executes the upload command.
func runUploadCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildUploadConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.ValidateUpload(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	platforms, err := model.ParsePlatforms(cfg.Platforms)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg)
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	cfg.File.Uploaders.ApplyEnv(os.LookupEnv)
	registry, err := uploader.BuildRegistry(cfg.File.Uploaders,
		uploader.WithLogger(logger),
		uploader.WithConsole(cmd.InOrStdin(), cmd.ErrOrStderr()),
	)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	return runUpload(ctx, cfg, registry, platforms, logger, cmd.OutOrStdout())
}

// buildUploadConfig creates a Config from the config file and cobra flags.
func buildUploadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)
	cfg.LogJSON = getLogJSONFlag(cmd)

	flags := cmd.Flags()

	var err error
	cfg.ConfigFilePath, err = flags.GetString("config")
	if err != nil {
		return nil, err
	}
	if err := loadConfigFile(cfg); err != nil {
		return nil, err
	}

	if len(args) > 0 {
		cfg.ContentPath = args[0]
	}

	cfg.Caption, err = flags.GetString("caption")
	if err != nil {
		return nil, err
	}
	cfg.Platforms, err = flags.GetStringSlice("platform")
	if err != nil {
		return nil, err
	}
	cfg.ContinueOnError, err = flags.GetBool("continue-on-error")
	if err != nil {
		return nil, err
	}
	cfg.StrictMedia, err = flags.GetBool("strict-media")
	if err != nil {
		return nil, err
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

	return cfg, nil
}

// runUpload publishes cfg.ContentPath to every platform, prints the report,
// and stores each successful response.
func runUpload(ctx context.Context, cfg *config.Config, registry pipeline.Registry, platforms []model.Platform, logger *slog.Logger, stdout io.Writer) error {
	p, err := pipeline.PublishPipeline(registry, platforms, cfg.StrictMedia,
		pipeline.WithLogger(logger),
		pipeline.WithContinueOnError(cfg.ContinueOnError),
	)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger.Info("starting upload",
		"content", cfg.ContentPath,
		"platforms", p.StepNames(),
	)

	publishReport := model.NewPublishReport(cfg.ContentPath, cfg.Caption)
	execErr := p.Execute(ctx, publishReport)

	writer, closeOutput, err := openReport(cfg, stdout)
	if err != nil {
		return err
	}
	defer closeOutput() //nolint:errcheck // Write errors are reported by the writer

	if _, err := writer.WritePublish(publishReport); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if cfg.SaveToDB && len(publishReport.Results) > 0 {
		if err := saveUploads(ctx, cfg.DBDir, publishReport.Results, logger); err != nil {
			logger.Error("failed to save uploads", "error", err)
		}
	}

	if execErr != nil {
		return execErr
	}
	if publishReport.HasErrors() {
		return fmt.Errorf("upload failed for %d platform(s): %s",
			len(publishReport.Errors), failedPlatforms(publishReport))
	}
	return nil
}

// saveUploads stores upload responses in the history database.
func saveUploads(ctx context.Context, dbDir string, results []*model.UploadResult, logger *slog.Logger) error {
	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	// Uploads already happened; record them even when the run was interrupted.
	ctx = context.WithoutCancel(ctx)

	var errs []error
	for _, r := range results {
		id, err := db.SaveUpload(ctx, r)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Platform, err))
			continue
		}
		logger.Info("upload saved to database", "platform", r.Platform.String(), "id", id)
	}
	return errors.Join(errs...)
}

// failedPlatforms lists the failed platforms in canonical order.
func failedPlatforms(r *model.PublishReport) string {
	names := make([]string, 0, len(r.Errors))
	for _, p := range model.AllPlatforms() {
		if _, ok := r.Errors[p]; ok {
			names = append(names, p.String())
		}
	}
	return strings.Join(names, ", ")
}
