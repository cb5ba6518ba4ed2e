package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tupyy/hcam-agent/cmd"
	"github.com/tupyy/hcam-agent/internal/config"
	"github.com/tupyy/hcam-agent/pkg/logger"
)

func main() {
	if err := config.LoadEnvFile(".env"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// default configuration, overridden by HCAM_* variables and then by flags
	cfg := config.NewConfigurationWithOptionsAndDefaults()
	if err := config.ApplyEnv(cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var undo func()
	rootCmd := &cobra.Command{
		Use:   "hcam-agent",
		Short: "High speed camera agent",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := logger.Validate(cfg.LogFormat, cfg.LogLevel); err != nil {
				return err
			}
			undo = zap.ReplaceGlobals(logger.Init(cfg.LogFormat, cfg.LogLevel))
			return nil
		},
	}
	registerLoggingFlags(rootCmd, cfg)

	rootCmd.AddCommand(
		cmd.NewRunCommand(cfg),
		cmd.NewCaptureCommand(cfg),
		cmd.NewStatusCommand(cfg),
		cmd.NewSimulateCommand(),
	)

	err := rootCmd.Execute()
	if undo != nil {
		_ = zap.L().Sync()
		undo()
	}
	if err != nil {
		os.Exit(1)
	}
}

func registerLoggingFlags(cmd *cobra.Command, config *config.Configuration) {
	cmd.PersistentFlags().StringVar(&config.LogFormat, "log-format", config.LogFormat, "format of the logs: console or json")
	cmd.PersistentFlags().StringVar(&config.LogLevel, "log-level", config.LogLevel, "log level")
}
