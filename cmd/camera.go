package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/tupyy/hcam-agent/internal/config"
	"github.com/tupyy/hcam-agent/internal/session"
	"github.com/tupyy/hcam-agent/pkg/camapi"
)

func newCameraAPI(cfg config.Camera) *camapi.API {
	return camapi.NewAPI(camapi.NewClient(cfg.Address, cfg.RequestTimeout))
}

func monitorOptions(cfg config.Camera) []session.MonitorOption {
	return []session.MonitorOption{
		session.WithPollInterval(cfg.PollInterval),
		session.WithCalibrationPolls(cfg.CalibrationPolls),
	}
}

func orchestratorOptions(cfg config.Camera) []session.OrchestratorOption {
	return []session.OrchestratorOption{
		session.WithSettleDelay(cfg.SettleDelay),
		session.WithTimeouts(session.Timeouts{
			Pretrigger:  cfg.PretriggerTimeout,
			PostTrigger: cfg.PostTriggerTimeout,
			Cancel:      cfg.CancelTimeout,
			Save:        cfg.SaveTimeout,
			Truncate:    cfg.TruncateTimeout,
			Discard:     cfg.DiscardTimeout,
		}),
	}
}

func validateCamera(cfg config.Camera) error {
	if cfg.Address == "" {
		return errors.New("camera-address cannot be empty")
	}
	if cfg.PollInterval <= 0 {
		return fmt.Errorf("invalid camera-poll-interval %s: must be positive", cfg.PollInterval)
	}
	if cfg.CalibrationPolls < 1 {
		return fmt.Errorf("invalid camera-calibration-polls %d: must be at least 1", cfg.CalibrationPolls)
	}
	if cfg.RequestTimeout <= 0 {
		return fmt.Errorf("invalid camera-request-timeout %s: must be positive", cfg.RequestTimeout)
	}
	return nil
}

func registerCameraFlags(flagSet *pflag.FlagSet, config *config.Configuration) {
	flagSet.StringVar(&config.Camera.Address, "camera-address", config.Camera.Address, "Address of the camera: host[:port] or http(s) URL")
	flagSet.DurationVar(&config.Camera.RequestTimeout, "camera-request-timeout", config.Camera.RequestTimeout, "Timeout of a single camera request")
	flagSet.DurationVar(&config.Camera.PollInterval, "camera-poll-interval", config.Camera.PollInterval, "Interval between two status polls while waiting for a transition")
	flagSet.IntVar(&config.Camera.CalibrationPolls, "camera-calibration-polls", config.Camera.CalibrationPolls, "Maximum number of polls spent waiting for calibration to end")
	flagSet.DurationVar(&config.Camera.SettleDelay, "camera-settle-delay", config.Camera.SettleDelay, "Delay after running the camera and after the pretrigger buffer is full")
	flagSet.DurationVar(&config.Camera.PretriggerTimeout, "camera-pretrigger-timeout", config.Camera.PretriggerTimeout, "Time allowed for the pretrigger buffer to fill")
	flagSet.DurationVar(&config.Camera.PostTriggerTimeout, "camera-post-trigger-timeout", config.Camera.PostTriggerTimeout, "Time allowed for the post trigger buffer to fill")
	flagSet.DurationVar(&config.Camera.CancelTimeout, "camera-cancel-timeout", config.Camera.CancelTimeout, "Time allowed for a canceled capture to return to running")
	flagSet.DurationVar(&config.Camera.SaveTimeout, "camera-save-timeout", config.Camera.SaveTimeout, "Time allowed for one video to be saved")
	flagSet.DurationVar(&config.Camera.TruncateTimeout, "camera-truncate-timeout", config.Camera.TruncateTimeout, "Time allowed for a truncated save to finish")
	flagSet.DurationVar(&config.Camera.DiscardTimeout, "camera-discard-timeout", config.Camera.DiscardTimeout, "Time allowed for a discard to finish")
}
