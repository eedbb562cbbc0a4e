package commands

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/kecho/splatastic/internal/logger"
	"github.com/kecho/splatastic/internal/telemetry"
	"github.com/kecho/splatastic/pkg/asyncfile"
	"github.com/kecho/splatastic/pkg/config"
	"github.com/kecho/splatastic/pkg/metrics"
	"github.com/kecho/splatastic/pkg/scenedb"
	"github.com/kecho/splatastic/pkg/splatastic"
	"github.com/spf13/cobra"

	// Side-effect import: registers the Prometheus-backed metric
	// constructors with pkg/metrics.
	_ "github.com/kecho/splatastic/pkg/metrics/prometheus"
)

var (
	loadRoots     []string
	loadWorkers   int
	loadPollEvery time.Duration
)

var loadCmd = &cobra.Command{
	Use:   "load <file.ply> [more.ply ...]",
	Short: "Load one or more PLY scenes and print their parsed metadata",
	Long: `load opens every given path through splatastic's Runtime, polls
each scene's status until it finishes, copies the decoded payload into a
freshly allocated buffer, and prints the vertex count and stride.

Examples:
  splatload load cube.ply
  splatload load --root /assets --root s3://my-bucket/scenes a.ply b.ply`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLoad,
}

func init() {
	loadCmd.Flags().StringArrayVar(&loadRoots, "root", nil, "additional search root (local path or s3://bucket/prefix), may be repeated")
	loadCmd.Flags().IntVar(&loadWorkers, "workers", 0, "task system worker count (0 = use config default)")
	loadCmd.Flags().DurationVar(&loadPollEvery, "poll-every", 10*time.Millisecond, "status polling interval")
}

func runLoad(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return err
	}
	if err := initLogger(cfg); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	telemetryShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "splatload",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("telemetry init: %w", err)
	}
	defer func() {
		if err := telemetryShutdown(ctx); err != nil {
			logger.Error("telemetry shutdown error", logger.Err(err))
		}
	}()

	profilingShutdown, err := telemetry.InitProfiling(telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    "splatload",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
	})
	if err != nil {
		return fmt.Errorf("profiling init: %w", err)
	}
	defer func() {
		if err := profilingShutdown(); err != nil {
			logger.Error("profiling shutdown error", logger.Err(err))
		}
	}()

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		if srv := metrics.NewServer(cfg.Metrics.Port); srv != nil {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("metrics server error", logger.Err(err))
				}
			}()
			defer srv.Close()
			logger.Info("metrics enabled", "port", cfg.Metrics.Port)
		}
	}

	roots := append(append([]string(nil), cfg.Runtime.AdditionalRoots...), loadRoots...)

	rtCfg := splatastic.Config{
		WorkerCount:     loadWorkers,
		ChunkSize:       int(cfg.Runtime.ChunkSize),
		AdditionalRoots: roots,
	}
	if needsS3Client(roots, args) {
		client, err := asyncfile.NewDefaultS3Client(ctx)
		if err != nil {
			return fmt.Errorf("s3 client: %w", err)
		}
		rtCfg.S3Client = client
	}
	if rtCfg.WorkerCount <= 0 {
		rtCfg.WorkerCount = cfg.Runtime.WorkerCount
	}

	rt, err := splatastic.Init(rtCfg)
	if err != nil {
		return fmt.Errorf("splatastic init: %w", err)
	}
	defer func() {
		if err := rt.Shutdown(); err != nil {
			logger.Error("splatastic shutdown error", logger.Err(err))
		}
	}()

	failures := 0
	for _, path := range args {
		if err := loadOne(ctx, rt, path); err != nil {
			logger.Error("load failed", logger.Path(path), logger.Err(err))
			fmt.Printf("%s: FAILED: %v\n", path, err)
			failures++
			continue
		}
	}
	if failures > 0 {
		return fmt.Errorf("%d of %d scenes failed to load", failures, len(args))
	}
	return nil
}

func loadOne(ctx context.Context, rt *splatastic.Runtime, path string) error {
	req, err := rt.OpenScene(ctx, path)
	if err != nil {
		return err
	}
	defer req.Close(ctx)

	done := make(chan error, 1)
	go func() {
		done <- req.Resolve(ctx)
	}()

	ticker := time.NewTicker(loadPollEvery)
	defer ticker.Stop()
	for {
		select {
		case err := <-done:
			if err != nil {
				return err
			}
			status, errStr := req.Status()
			if status == scenedb.StatusFailed {
				return fmt.Errorf("%s", errStr)
			}
			return printScene(req, path)
		case <-ticker.C:
			br, tb := req.IOProgress()
			if tb > 0 {
				logger.Debug("loading", logger.Path(path), logger.BytesRead(br), logger.FileSize(tb))
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func printScene(req *splatastic.SceneAsyncRequest, path string) error {
	meta, err := req.Metadata()
	if err != nil {
		return err
	}
	size := req.PayloadSize()
	dest := make([]byte, size)
	if size > 0 {
		if err := req.RequestCopyPayload(dest); err != nil {
			return err
		}
		defer req.CloseCopyPayload(context.Background())
	}

	fmt.Printf("%s: vertices=%d stride=%d payload_bytes=%d\n", path, meta.VertexCount, meta.Stride, size)
	return nil
}

func needsS3Client(roots []string, paths []string) bool {
	for _, r := range roots {
		if strings.HasPrefix(r, "s3://") {
			return true
		}
	}
	for _, p := range paths {
		if strings.HasPrefix(p, "s3://") {
			return true
		}
	}
	return false
}

func initLogger(cfg *config.Config) error {
	return logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}
