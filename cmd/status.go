package cmd

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jzelinskie/cobrautil/v2"
	"github.com/spf13/cobra"

	"github.com/tupyy/hcam-agent/internal/config"
)

func NewStatusCommand(cfg *config.Configuration) *cobra.Command {
	statusCmd := &cobra.Command{
		Use:          "status",
		Short:        "Print the camera status, identity and storage",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateCamera(cfg.Camera); err != nil {
				return err
			}

			ctx := cmd.Context()
			camera := newCameraAPI(cfg.Camera)
			out := cmd.OutOrStdout()
			title := color.New(color.Bold)

			status, err := camera.StatusString(ctx)
			if err != nil {
				return fmt.Errorf("reading camera status: %w", err)
			}
			title.Fprintln(out, "Status")
			fmt.Fprintf(out, "  %s\n", status)

			info, err := camera.InfoString(ctx, "  ")
			if err != nil {
				return fmt.Errorf("reading camera info: %w", err)
			}
			title.Fprintln(out, "Camera")
			fmt.Fprint(out, info)

			title.Fprintln(out, "Storage")
			dir, err := camera.GetStorageDir(ctx)
			if err != nil {
				return fmt.Errorf("reading storage dir: %w", err)
			}
			if dir == "" {
				fmt.Fprintln(out, "  no storage device")
				return nil
			}
			storage, err := camera.GetStorageInfo(ctx, "")
			if err != nil {
				return fmt.Errorf("reading storage info: %w", err)
			}
			fmt.Fprintf(out, "  Mount point: %s\n", dir)
			fmt.Fprintf(out, "  Available: %s of %s\n", bytesString(storage["available_space"]), bytesString(storage["storage_size"]))
			return nil
		},
	}

	nfs := cobrautil.NewNamedFlagSets(statusCmd)
	registerCameraFlags(nfs.FlagSet(color.New(color.FgBlue, color.Bold).Sprint("Camera")), cfg)
	nfs.AddFlagSets(statusCmd)

	return statusCmd
}

func bytesString(v any) string {
	n, err := strconv.ParseUint(fmt.Sprint(v), 10, 64)
	if err != nil {
		return "unknown"
	}
	return humanize.IBytes(n)
}
