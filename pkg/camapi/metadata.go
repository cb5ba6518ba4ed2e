package camapi

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// metadataKeys maps the labels of a saved video's metadata file onto setting keys.
var metadataKeys = map[string]string{
	"Camera time:":                     "camera_time",
	"Model:":                           "model_string",
	"Sensitivity:":                     "iso",
	"Shutter:":                         "exposure",
	"Frame Rate:":                      "frame_rate",
	"Horizontal:":                      "horizontal",
	"Vertical:":                        "vertical",
	"Sub-sampling:":                    "subsample",
	"Duration:":                        "duration",
	"Pre-trigger:":                     "pretrigger",
	"Overclock:":                       "overclock",
	"Extended Dynamic Range:":          "edr",
	"Genlock:":                         "genlock",
	"Force monochrome:":                "force_monochrome",
	"Multishot Buffers:":               "multishot_count",
	"External trigger debounce:":       "trigger_debounce",
	"Gamma correction:":                "gamma_correction",
	"Review before save:":              "review",
	"Overlay notes:":                   "overlay_notes",
	"Overlay logo:":                    "overlay_logo",
	"Overlay settings:":                "overlay_settings",
	"Overlay frame number:":            "overlay_frame_number",
	"Active pipeline:":                 "pipeline",
	"Pipeline description:":            "pipeline_description",
	"Multishot buffer:":                "multishot_buffer",
	"Frame count:":                     "captured_frames",
	"Pre-trigger frames:":              "pretrigger_frames",
	"Trigger time:":                    "trigger_time",
	"Trigger delay:":                   "trigger_to_exposure_delay",
	"First saved frame:":               "first_saved_frame",
	"Last saved frame:":                "last_saved_frame",
	"Genlock locked:":                  "genlock_locked",
	"DACVREFADC:":                      "dacvrefadc",
	"FPGA temp:":                       "fpga_temp",
	"FPGA temp at last calibration:":   "calibration_fpga_temp",
	"Sensor temp:":                     "is_temp",
	"Sensor temp at last calibration:": "calibration_is_temp",
	"DDR3 temp:":                       "ddr3_temp",
	"DDR3 temp at last calibration:":   "calibration_ddr3_temp",
	"Time since dark frame:":           "time_since_dark_frame",
	"Time since power on:":             "uptime",
	"Model number:":                    "model_number",
	"Serial number:":                   "serial_number",
	"Hardware revision:":               "hardware_revision",
	"Hardware configuration:":          "hardware_configuration",
	"Build date:":                      "build_date",
	"IR filter:":                       "ir_filter_installed",
	"Sensor type:":                     "sensor_type",
	"DDR3 memory size:":                "memory_size",
	"Ethernet MAC address:":            "ethernet_mac_address",
	"FPGA version:":                    "fpga_verson",
	"Software build date:":             "software_build_date",
	"Software version:":                "software_version",
}

var metadataStringKeys = map[string]bool{
	"camera_time":           true,
	"model_string":          true,
	"pipeline_description":  true,
	"time_since_dark_frame": true,
	"uptime":                true,
	"software_version":      true,
	"ethernet_mac_address":  true,
}

var metadataOnOffKeys = map[string]bool{
	"subsample":            true,
	"force_monochrome":     true,
	"overlay_notes":        true,
	"overlay_logo":         true,
	"overlay_settings":     true,
	"overlay_frame_number": true,
	"trigger_debounce":     true,
	"gamma_correction":     true,
	"review":               true,
}

// MetadataKey returns the setting key for a metadata label such as "Shutter:".
func MetadataKey(label string) (string, bool) {
	k, ok := metadataKeys[label]
	return k, ok
}

// ParseMetadata reads the "Label: value" text file the camera writes next to every
// saved video. Unknown labels are skipped. On/off keys decode to bool, numeric
// values to int64 or float64, everything else stays a string.
func ParseMetadata(r io.Reader) (map[string]any, error) {
	out := map[string]any{}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		idx := strings.Index(line, ":")
		if idx < 0 {
			continue
		}

		key, ok := metadataKeys[line[:idx+1]]
		if !ok {
			continue
		}
		out[key] = metadataValue(key, strings.TrimSpace(line[idx+1:]))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading metadata: %w", err)
	}

	return out, nil
}

func metadataValue(key, value string) any {
	if metadataStringKeys[key] {
		return value
	}
	if metadataOnOffKeys[key] {
		return strings.EqualFold(value, "on")
	}
	if i, err := strconv.ParseInt(value, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}
	return value
}
