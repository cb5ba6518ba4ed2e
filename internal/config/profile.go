package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tupyy/hcam-agent/pkg/camapi"
)

// LoadSettingsFile reads requested settings from a YAML mapping. Keys without
// the requested_ prefix get it, and a null value asks the camera for its default:
//
//	frame_rate: 1000
//	duration: 5
//	multishot_count: null
func LoadSettingsFile(path string) (camapi.Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSettings(data)
}

func ParseSettings(data []byte) (camapi.Settings, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing settings: %w", err)
	}

	settings := make(camapi.Settings, len(raw))
	for k, v := range raw {
		switch v.(type) {
		case nil, int, float64, string, bool:
		default:
			return nil, fmt.Errorf("parsing settings: %q must be a scalar, got %T", k, v)
		}
		if !strings.HasPrefix(k, camapi.RequestedPrefix) {
			k = camapi.RequestedPrefix + k
		}
		settings[k] = v
	}
	return settings, nil
}
