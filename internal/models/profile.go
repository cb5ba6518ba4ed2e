package models

import (
	"time"

	"github.com/tupyy/hcam-agent/pkg/camapi"
)

// Profile is a named set of requested settings.
type Profile struct {
	Name      string
	Settings  camapi.Settings
	CreatedAt time.Time
	UpdatedAt time.Time
}
