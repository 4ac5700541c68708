package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"excitond/internal/common/fsutil"
	"excitond/internal/config"
	"excitond/internal/history"
	"excitond/internal/httpapi"
	"excitond/internal/manager"
	"excitond/internal/registry"
	"excitond/internal/tracing"
	"excitond/pkg/types"
)

const shutdownTimeout = 5 * time.Second

type serveFlags struct {
	configPath    string
	addr          string
	presetsDir    string
	maxConcurrent int
	maxQueueDepth int
	maxWait       time.Duration
	timeout       time.Duration
	corsOrigins   []string
	historyDB     string
	otlpEndpoint  string
}

func newServeCmd(opts *Options) *cobra.Command {
	var f serveFlags
	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Serve simulations over HTTP",
		Example: "  excitond serve --addr :8080 --presets-dir ~/.excitond/presets",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := serveConfig(cmd, f)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			ln, err := net.Listen("tcp", cfg.Addr)
			if err != nil {
				return err
			}
			return serve(ctx, newLogger(opts), cfg, f.timeout, ln)
		},
	}
	cmd.Flags().StringVar(&f.configPath, "config", "", "Server config file (.yaml, .yml, .json, .toml)")
	cmd.Flags().StringVar(&f.addr, "addr", config.DefaultAddr, "HTTP listen address, e.g. :8080")
	cmd.Flags().StringVar(&f.presetsDir, "presets-dir", "", "Directory to scan for experiment presets")
	cmd.Flags().IntVar(&f.maxConcurrent, "max-concurrent", config.DefaultMaxConcurrent, "Maximum simulations running at once")
	cmd.Flags().IntVar(&f.maxQueueDepth, "max-queue-depth", config.DefaultMaxQueueDepth, "Maximum simulations waiting for a run slot")
	cmd.Flags().DurationVar(&f.maxWait, "max-wait", config.DefaultMaxWait, "Maximum time a simulation waits for a run slot")
	cmd.Flags().DurationVar(&f.timeout, "simulate-timeout", 0, "Per-request simulation timeout (0 disables)")
	cmd.Flags().StringSliceVar(&f.corsOrigins, "cors-origins", nil, "Enable CORS for these origins")
	cmd.Flags().StringVar(&f.historyDB, "history-db", "", "SQLite file recording every run (empty disables history)")
	cmd.Flags().StringVar(&f.otlpEndpoint, "otlp-endpoint", "", "OTLP/HTTP traces endpoint, e.g. http://localhost:4318/v1/traces")
	return cmd
}

// serveConfig merges the optional config file, EXCITOND_* variables and
// explicitly set flags, in increasing precedence.
func serveConfig(cmd *cobra.Command, f serveFlags) (config.Config, error) {
	var cfg config.Config
	if f.configPath != "" {
		loaded, err := config.Load(f.configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	if err := config.ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	flags := cmd.Flags()
	if flags.Changed("addr") {
		cfg.Addr = f.addr
	}
	if flags.Changed("presets-dir") {
		cfg.PresetsDir = f.presetsDir
	}
	if flags.Changed("max-concurrent") {
		cfg.MaxConcurrent = f.maxConcurrent
	}
	if flags.Changed("max-queue-depth") {
		cfg.MaxQueueDepth = f.maxQueueDepth
	}
	if flags.Changed("max-wait") {
		cfg.MaxWait = config.Duration(f.maxWait)
	}
	if flags.Changed("cors-origins") {
		cfg.CORSOrigins = f.corsOrigins
	}
	if flags.Changed("history-db") {
		cfg.HistoryDB = f.historyDB
	}
	if flags.Changed("otlp-endpoint") {
		cfg.OTLPEndpoint = f.otlpEndpoint
	}
	return cfg.WithDefaults(), nil
}

// serve runs the HTTP server on ln until ctx is canceled, then drains the
// manager and shuts the server down.
func serve(ctx context.Context, log zerolog.Logger, cfg config.Config, timeout time.Duration, ln net.Listener) error {
	var presets []types.Preset
	if cfg.PresetsDir != "" {
		var err error
		presets, err = registry.LoadDir(cfg.PresetsDir)
		if err != nil {
			return err
		}
	}
	shutdownTracing, err := tracing.Setup(ctx, cfg.OTLPEndpoint)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Warn().Err(err).Msg("trace flush failed")
		}
	}()
	mcfg := manager.ManagerConfig{
		Presets:       presets,
		MaxConcurrent: cfg.MaxConcurrent,
		MaxQueueDepth: cfg.MaxQueueDepth,
		MaxWait:       cfg.MaxWait.Std(),
		Logger:        &log,
		Publisher:     httpapi.MetricsPublisher{},
	}
	if cfg.HistoryDB != "" {
		path, err := fsutil.ExpandHome(cfg.HistoryDB)
		if err != nil {
			return err
		}
		store, err := history.Open(path)
		if err != nil {
			return err
		}
		defer store.Close()
		mcfg.History = store
	}
	mgr := manager.NewWithConfig(mcfg)
	for _, c := range mgr.Preflight() {
		if !c.OK {
			log.Warn().Str("check", c.Name).Str("detail", c.Detail).Msg("preflight failed")
		}
	}

	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()
	httpapi.SetLogger(log)
	httpapi.SetBaseContext(baseCtx)
	httpapi.SetSimulateTimeout(timeout)
	if len(cfg.CORSOrigins) > 0 {
		httpapi.SetCORSOptions(true, cfg.CORSOrigins, []string{"GET", "POST", "OPTIONS"}, []string{"Content-Type", "X-Log-Level"})
	}
	srv := &http.Server{Handler: httpapi.NewMux(mgr), ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", ln.Addr().String()).Int("presets", len(presets)).Msg("excitond listening")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	mgr.Drain()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		// stop runs still holding connections open
		cancelBase()
		log.Warn().Err(err).Msg("graceful shutdown error")
	}
	if serveErr := <-errCh; serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
		return serveErr
	}
	log.Info().Msg("excitond stopped")
	return nil
}
