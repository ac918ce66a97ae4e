package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"ndarimport/internal/config"
	"ndarimport/internal/importer"
	"ndarimport/internal/journal"
	"ndarimport/internal/logging"
	"ndarimport/internal/metrics"
	"ndarimport/internal/scitran"
	"ndarimport/internal/services"
	"ndarimport/internal/tree"
)

func runImport(cmd *cobra.Command, ctx *commandContext, baseURL, user, folder string) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	cfg.ApplyRemote(baseURL, user)
	if err := cfg.ValidateRemote(); err != nil {
		return err
	}
	logger, err := ctx.logger()
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	runCtx := services.WithRunID(cmd.Context(), runID)
	logger = logging.WithContext(runCtx, logging.NewComponentLogger(logger, "cli"))

	recorder := metrics.New()
	client, err := scitran.New(cfg.Remote.BaseURL, cfg.Remote.User,
		scitran.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout()}),
		scitran.WithLogger(logger),
		scitran.WithObserver(recorder.ObserveRequest),
	)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "cli", "client", "", err)
	}

	sinks := recorders{metricsRecorder{metrics: recorder}}
	var jrnl *journal.Journal
	if cfg.Journal.Enabled {
		jrnl, err = journal.Open(runCtx, cfg.Journal.Path)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		defer jrnl.Close()
		if _, err := jrnl.BeginRun(runCtx, journal.Run{
			ID:           runID,
			Folder:       folder,
			BaseURL:      client.BaseURL(),
			User:         cfg.Remote.User,
			ProjectLabel: tree.ProjectLabel(folder),
		}); err != nil {
			return fmt.Errorf("begin journal run: %w", err)
		}
		sinks = append(sinks, journalRecorder{journal: jrnl, runID: runID})
	}

	imp := importer.New(client, importer.WithRecorder(sinks), importer.WithLogger(logger))
	started := time.Now()
	result, runErr := imp.Run(runCtx, importer.Options{
		Folder: folder,
		Group:  cfg.Remote.Group,
		Tree:   treeOptions(cfg),
	})
	recorder.RunFinished(runErr, time.Since(started).Seconds())

	if jrnl != nil {
		if err := jrnl.FinishRun(context.WithoutCancel(runCtx), runID, runErr); err != nil {
			logger.Warn("journal update failed", logging.Error(err))
		}
		if runErr != nil && result.ProjectID != "" {
			logger.Warn("import aborted after creating entities; see journal",
				logging.String("journal", jrnl.Path()),
				logging.String("project_id", result.ProjectID),
			)
		}
	}
	pushMetrics(runCtx, cfg, recorder, runID, logger)

	if runErr != nil {
		return runErr
	}
	logger.Info("import finished",
		logging.String("project_id", result.ProjectID),
		logging.Duration("elapsed", time.Since(started)),
	)
	fmt.Fprintln(cmd.OutOrStdout(), result.ProjectID)
	return nil
}

func pushMetrics(ctx context.Context, cfg *config.Config, recorder *metrics.Recorder, runID string, logger *slog.Logger) {
	if cfg.Metrics.PushgatewayURL == "" {
		return
	}
	if err := recorder.Push(context.WithoutCancel(ctx), cfg.Metrics.PushgatewayURL, cfg.Metrics.Job, runID); err != nil {
		logger.Warn("metrics push failed", logging.Error(err))
	}
}
