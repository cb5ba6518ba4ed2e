package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/jzelinskie/cobrautil/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tupyy/hcam-agent/internal/server/middlewares"
	"github.com/tupyy/hcam-agent/internal/simulator"
)

func NewSimulateCommand() *cobra.Command {
	var (
		address   string
		port      int
		unstarted bool
	)
	opts := simulator.DefaultOptions()

	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "Serve a simulated camera",
		Example: `  # Serve a simulated camera and point the agent at it
  hcam-agent simulate --port 8081 &
  hcam-agent capture --camera-address localhost:8081`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port < 1 || port > 65535 {
				return fmt.Errorf("invalid port %d: must be between 1 and 65535", port)
			}
			opts.StartUnstarted = unstarted
			device := simulator.NewDevice(nil, opts)

			gin.SetMode(gin.ReleaseMode)
			engine := gin.New()
			engine.Use(middlewares.Logger(), ginzap.RecoveryWithZap(zap.S().Desugar(), true))
			device.Register(engine)

			srv := &http.Server{
				Addr:              fmt.Sprintf("%s:%d", address, port),
				Handler:           engine,
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			go func() {
				<-ctx.Done()
				stopCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				if err := srv.Shutdown(stopCtx); err != nil {
					zap.S().Named("simulator").Errorw("shutdown", "error", err)
				}
			}()

			zap.S().Named("simulator").Infow("simulated camera listening", "address", srv.Addr, "serial", opts.SerialNumber)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	nfs := cobrautil.NewNamedFlagSets(simulateCmd)
	fs := nfs.FlagSet(color.New(color.FgBlue, color.Bold).Sprint("Simulator"))
	fs.StringVar(&address, "address", "127.0.0.1", "Address the simulated camera listens on")
	fs.IntVar(&port, "port", 8081, "Port the simulated camera listens on")
	fs.BoolVar(&unstarted, "unstarted", false, "Start in the unconfigured state instead of calibrating")
	fs.IntVar(&opts.MaxMultishot, "max-multishot", opts.MaxMultishot, "Largest multishot count the camera allows")
	fs.StringVar(&opts.SerialNumber, "serial-number", opts.SerialNumber, "Serial number reported by the camera")
	fs.DurationVar(&opts.Timing.SavePerVideo, "save-per-video", opts.Timing.SavePerVideo, "Time spent saving one video")
	nfs.AddFlagSets(simulateCmd)

	return simulateCmd
}
