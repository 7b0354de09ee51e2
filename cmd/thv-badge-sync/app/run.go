package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stacklok/toolhive-badge-sync/internal/checkpoint"
	"github.com/stacklok/toolhive-badge-sync/internal/config"
	"github.com/stacklok/toolhive-badge-sync/internal/httpclient"
	"github.com/stacklok/toolhive-badge-sync/internal/registry"
	"github.com/stacklok/toolhive-badge-sync/internal/render"
	"github.com/stacklok/toolhive-badge-sync/internal/runlock"
	"github.com/stacklok/toolhive-badge-sync/internal/sync"
	"github.com/stacklok/toolhive-badge-sync/internal/telemetry"
	"github.com/stacklok/toolhive-badge-sync/internal/versions"
)

const (
	tracerName = "github.com/stacklok/toolhive-badge-sync/sync"

	// telemetryShutdownTimeout bounds the final flush or push of telemetry data
	telemetryShutdownTimeout = 10 * time.Second
)

func newRunCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(config.EnvPrefix)
	v.AutomaticEnv()

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run one badge sync pass",
		Long: `Run one sync pass: fetch recently published artifacts newest first, render a
badge and a snapshot for every artifact newer than the stored watermark, then
advance the watermark.

Works without flags. The configuration file is read from --config,
THV_BADGE_CONFIG, or $XDG_CONFIG_HOME/thv-badge-sync/config.yaml when present.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			opts := []config.Option{config.WithDiscovery()}
			if path := v.GetString("config"); path != "" {
				opts = append(opts, config.WithConfigPath(path))
			}

			return runSync(ctx, cmd.OutOrStdout(), opts...)
		},
	}

	runCmd.Flags().String("config", "", "Path to configuration file (YAML format, optional)")
	if err := v.BindPFlag("config", runCmd.Flags().Lookup("config")); err != nil {
		slog.Error("Failed to bind config flag", "error", err)
	}

	return runCmd
}

// runSync loads the configuration, wires the components and performs one
// pass. The summary is written to out even when the run aborts.
func runSync(ctx context.Context, out io.Writer, opts ...config.Option) error {
	cfg, err := config.LoadConfig(opts...)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	telemetryCfg := cfg.Telemetry
	if telemetryCfg != nil && telemetryCfg.ServiceVersion == "" {
		withVersion := *telemetryCfg
		withVersion.ServiceVersion = versions.GetVersionInfo().Version
		telemetryCfg = &withVersion
	}

	tel, err := telemetry.New(ctx, telemetry.WithTelemetryConfig(telemetryCfg))
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		// The run context may already be cancelled; flushing gets its own deadline
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), telemetryShutdownTimeout)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			slog.Error("Failed to shut down telemetry", "error", err)
		}
	}()

	baseDir := cfg.GetBaseDir()
	lock, err := runlock.Acquire(runlock.Path(baseDir))
	if errors.Is(err, runlock.ErrHeld) {
		slog.Info("Another badge sync run is in progress, nothing to do", "base_dir", baseDir)
		return nil
	}
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			slog.Warn("Failed to release run lock", "error", err)
		}
	}()

	driver, err := newDriver(cfg, tel)
	if err != nil {
		return err
	}

	result, runErr := driver.Run(ctx)
	if result != nil {
		if err := writeSummary(out, result); err != nil {
			slog.Warn("Failed to write run summary", "error", err)
		}
	}
	return runErr
}

func newDriver(cfg *config.Config, tel *telemetry.Telemetry) (*sync.Driver, error) {
	httpClient := httpclient.NewDefaultClient(cfg.Registry.GetTimeout())

	client, err := registry.NewCentralClient(httpClient, cfg.Registry.GetEndpoint())
	if err != nil {
		return nil, fmt.Errorf("failed to create registry client: %w", err)
	}

	baseDir := cfg.GetBaseDir()
	store := checkpoint.NewFileStore(filepath.Join(baseDir, render.SnapshotDir, checkpoint.IndexFileName))
	writer := render.NewWriter(baseDir)

	metrics, err := telemetry.NewSyncMetrics(tel.MeterProvider())
	if err != nil {
		return nil, fmt.Errorf("failed to create sync metrics: %w", err)
	}

	return sync.NewDriver(client, store, writer,
		sync.WithPageSize(cfg.Registry.GetPageSize()),
		sync.WithMaxPages(cfg.Sync.MaxPages),
		sync.WithTracer(tel.Tracer(tracerName)),
		sync.WithSyncMetrics(metrics),
	), nil
}
