package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/jzelinskie/cobrautil/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tupyy/hcam-agent/internal/config"
	"github.com/tupyy/hcam-agent/internal/models"
	"github.com/tupyy/hcam-agent/internal/session"
	"github.com/tupyy/hcam-agent/pkg/camapi"
)

type captureFlags struct {
	mode           string
	settingsFile   string
	baseFilename   string
	shots          int
	cancelAtBuffer int
	discardAfter   int
}

func NewCaptureCommand(cfg *config.Configuration) *cobra.Command {
	flags := &captureFlags{}

	captureCmd := &cobra.Command{
		Use:   "capture",
		Short: "Configure the camera and run one capture session",
		Example: `  # Capture and save one video with the camera defaults
  hcam-agent capture

  # Capture with settings from a file and cancel before saving
  hcam-agent capture --settings-file slow-motion.yaml --mode cancel

  # Capture three shots and keep only the first one
  hcam-agent capture --mode multishot --shots 3 --discard-after 1`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateCamera(cfg.Camera); err != nil {
				return err
			}
			mode, err := models.ParseSessionMode(flags.mode)
			if err != nil {
				return err
			}
			if mode != models.SessionModeMultishot && (flags.shots != 0 || flags.cancelAtBuffer != 0 || flags.discardAfter != 0) {
				return fmt.Errorf("--shots, --cancel-at and --discard-after need --mode %s", models.SessionModeMultishot)
			}

			requested := camapi.Settings{}
			if flags.settingsFile != "" {
				requested, err = config.LoadSettingsFile(flags.settingsFile)
				if err != nil {
					return err
				}
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			camera := newCameraAPI(cfg.Camera)
			monitor := session.NewMonitor(camera, monitorOptions(cfg.Camera)...)
			opts := append(orchestratorOptions(cfg.Camera), session.WithProgress(func(p session.Progress) {
				zap.S().Named("capture").Infow("progress", "phase", p.Phase, "shot", p.Shot, "state", p.State, "level", p.Level)
			}))
			orchestrator := session.NewOrchestrator(camera, monitor, opts...)

			result, err := runCapture(ctx, orchestrator, mode, requested, flags)
			if err != nil {
				return fmt.Errorf("capture failed: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s: captured %d, saved %d\n",
				color.New(color.FgGreen, color.Bold).Sprint("done"), result.Outcome, result.Captured, result.Saved)
			if result.Final != nil {
				if text, err := camera.StatusString(ctx); err == nil {
					fmt.Fprintln(out, text)
				}
			}
			return nil
		},
	}

	nfs := cobrautil.NewNamedFlagSets(captureCmd)

	captureFlagSet := nfs.FlagSet(color.New(color.FgBlue, color.Bold).Sprint("Capture"))
	captureFlagSet.StringVar(&flags.mode, "mode", string(models.SessionModeSingle), "Capture mode: single, cancel, truncate or multishot")
	captureFlagSet.StringVar(&flags.settingsFile, "settings-file", "", "YAML file with the requested settings")
	captureFlagSet.StringVar(&flags.baseFilename, "base-filename", "", "Base filename of the saved videos")
	captureFlagSet.IntVar(&flags.shots, "shots", 0, "Number of shots in multishot mode, defaults to the allowed multishot count")
	captureFlagSet.IntVar(&flags.cancelAtBuffer, "cancel-at", 0, "Cancel the shot captured into this buffer in multishot mode")
	captureFlagSet.IntVar(&flags.discardAfter, "discard-after", 0, "Discard the remaining videos once this many are saved in multishot mode")

	cameraFlagSet := nfs.FlagSet(color.New(color.FgBlue, color.Bold).Sprint("Camera"))
	registerCameraFlags(cameraFlagSet, cfg)

	nfs.AddFlagSets(captureCmd)

	return captureCmd
}

func runCapture(ctx context.Context, o *session.Orchestrator, mode models.SessionMode, requested camapi.Settings, flags *captureFlags) (*session.Result, error) {
	allowed, err := o.Configure(ctx, requested)
	if err != nil {
		return nil, err
	}

	if mode == models.SessionModeMultishot {
		return o.Multishot(ctx, allowed, session.MultishotOptions{
			BaseFilename:   flags.baseFilename,
			Shots:          flags.shots,
			CancelAtBuffer: flags.cancelAtBuffer,
			DiscardAfter:   flags.discardAfter,
		})
	}

	return o.Capture(ctx, allowed, session.CaptureOptions{
		BaseFilename: flags.baseFilename,
		Cancel:       mode == models.SessionModeCancel,
		Truncate:     mode == models.SessionModeTruncate,
	})
}
