package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ecordell/optgen/helpers"
	"github.com/fatih/color"
	"github.com/gin-gonic/gin"
	"github.com/jzelinskie/cobrautil/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	v1 "github.com/tupyy/hcam-agent/api/v1"
	"github.com/tupyy/hcam-agent/internal/config"
	"github.com/tupyy/hcam-agent/internal/handlers"
	"github.com/tupyy/hcam-agent/internal/server"
	"github.com/tupyy/hcam-agent/internal/services"
	"github.com/tupyy/hcam-agent/internal/store"
	"github.com/tupyy/hcam-agent/internal/store/migrations"
	"github.com/tupyy/hcam-agent/pkg/scheduler"
)

func NewRunCommand(cfg *config.Configuration) *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the camera agent API",
		Example: `  # Serve the API for the camera on its default address
  hcam-agent run

  # Keep profiles on disk and talk to a simulated camera
  hcam-agent run --data-folder /var/lib/hcam --camera-address localhost:8081

  # Run in production mode on another port
  hcam-agent run --server-mode prod --server-http-port 9000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateConfiguration(cfg); err != nil {
				return err
			}

			zap.S().Infow("using configuration",
				"agent", helpers.Flatten(cfg.Agent.DebugMap()),
				"server", helpers.Flatten(cfg.Server.DebugMap()),
				"camera", helpers.Flatten(cfg.Camera.DebugMap()),
			)

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGQUIT)
			defer cancel()

			s, err := openStore(ctx, cfg.Agent.DataFolder)
			if err != nil {
				return err
			}
			defer s.Close()

			sched := scheduler.NewScheduler(cfg.Agent.NumWorkers)
			defer sched.Close()

			camera := newCameraAPI(cfg.Camera)

			captureSrv := services.NewCaptureService(sched, camera, s.Profiles(),
				services.WithMonitorOptions(monitorOptions(cfg.Camera)...),
				services.WithOrchestratorOptions(orchestratorOptions(cfg.Camera)...),
			)
			watcher := services.NewCameraWatcher(cfg.Agent.WatchInterval, sched, camera)
			watcher.Start()
			defer watcher.Stop()

			h := handlers.New(camera, watcher, s.Profiles(), captureSrv)
			srv := server.NewServer(cfg.Server, func(router *gin.RouterGroup) {
				v1.RegisterHandlers(router, h)
			})

			return serve(ctx, srv)
		},
	}

	registerFlags(runCmd, cfg)

	return runCmd
}

func openStore(ctx context.Context, dataFolder string) (*store.Store, error) {
	dbPath := filepath.Join(dataFolder, "hcam.duckdb")
	if dataFolder == "" {
		dbPath = ":memory:"
		zap.S().Warn("data-folder not set, profiles are kept in memory only")
	}

	db, err := store.NewDB(dbPath)
	if err != nil {
		zap.S().Errorw("failed to open profile database", "path", dbPath, "error", err)
		return nil, err
	}
	if err := migrations.Run(ctx, db); err != nil {
		_ = db.Close()
		zap.S().Errorw("failed to run migrations", "error", err)
		return nil, err
	}

	zap.S().Infow("profile database ready", "path", dbPath)
	return store.NewStore(db), nil
}

// serve runs srv until ctx is done or the server fails to start.
func serve(ctx context.Context, srv *server.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()

	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
		stopCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Stop(stopCtx)
		err = <-errCh
	}

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		zap.S().Errorw("http server failed", "error", err)
		return err
	}

	zap.S().Info("server shutdown")
	return nil
}

func registerFlags(cmd *cobra.Command, config *config.Configuration) {
	nfs := cobrautil.NewNamedFlagSets(cmd)

	serverFlagSet := nfs.FlagSet(color.New(color.FgBlue, color.Bold).Sprint("Server"))
	registerServerFlags(serverFlagSet, config)

	agentFlagSet := nfs.FlagSet(color.New(color.FgBlue, color.Bold).Sprint("Agent"))
	registerAgentFlags(agentFlagSet, config)

	cameraFlagSet := nfs.FlagSet(color.New(color.FgBlue, color.Bold).Sprint("Camera"))
	registerCameraFlags(cameraFlagSet, config)

	nfs.AddFlagSets(cmd)
}

func validateConfiguration(cfg *config.Configuration) error {
	switch config.ServerModeType(cfg.Server.ServerMode) {
	case config.ServerModeProd, config.ServerModeDev:
	default:
		return fmt.Errorf("invalid server mode %q: must be %q or %q", cfg.Server.ServerMode, config.ServerModeProd, config.ServerModeDev)
	}

	if cfg.Server.HTTPPort < 1 || cfg.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid http-port %d: must be between 1 and 65535", cfg.Server.HTTPPort)
	}

	// the watcher and a capture session each hold a worker
	if cfg.Agent.NumWorkers < 2 {
		return fmt.Errorf("invalid num-workers %d: must be at least 2", cfg.Agent.NumWorkers)
	}

	if cfg.Agent.WatchInterval <= 0 {
		return fmt.Errorf("invalid watch-interval %s: must be positive", cfg.Agent.WatchInterval)
	}

	return validateCamera(cfg.Camera)
}

func registerServerFlags(flagSet *pflag.FlagSet, config *config.Configuration) {
	flagSet.StringVar(&config.Server.ListenAddress, "server-listen-address", config.Server.ListenAddress, "Address on which the HTTP server is listening")
	flagSet.IntVar(&config.Server.HTTPPort, "server-http-port", config.Server.HTTPPort, "Port on which the HTTP server is listening")
	flagSet.StringVar(&config.Server.ServerMode, "server-mode", config.Server.ServerMode, "Server mode: either prod or dev")
	flagSet.DurationVar(&config.Server.ReadHeaderTimeout, "server-read-header-timeout", config.Server.ReadHeaderTimeout, "Time allowed to read request headers")
}

func registerAgentFlags(flagSet *pflag.FlagSet, config *config.Configuration) {
	flagSet.IntVar(&config.Agent.NumWorkers, "num-workers", config.Agent.NumWorkers, "Number of scheduler workers")
	flagSet.StringVar(&config.Agent.DataFolder, "data-folder", config.Agent.DataFolder, "Path to the persistent data folder")
	flagSet.DurationVar(&config.Agent.WatchInterval, "watch-interval", config.Agent.WatchInterval, "Interval between two camera status reads for display")
}
