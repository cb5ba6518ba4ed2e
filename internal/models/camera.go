package models

import (
	"time"

	"github.com/tupyy/hcam-agent/pkg/camapi"
)

// CameraStatus is a status snapshot observed by the watcher.
type CameraStatus struct {
	Status     *camapi.CamStatus
	Text       string
	ObservedAt time.Time
	Error      error
}
