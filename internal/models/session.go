package models

import (
	"fmt"
	"time"

	"github.com/tupyy/hcam-agent/pkg/camapi"
)

// SessionMode selects which capture sequence a session runs.
type SessionMode string

const (
	SessionModeSingle    SessionMode = "single"
	SessionModeCancel    SessionMode = "cancel"
	SessionModeTruncate  SessionMode = "truncate"
	SessionModeMultishot SessionMode = "multishot"
)

func ParseSessionMode(s string) (SessionMode, error) {
	switch SessionMode(s) {
	case SessionModeSingle, SessionModeCancel, SessionModeTruncate, SessionModeMultishot:
		return SessionMode(s), nil
	case "":
		return SessionModeSingle, nil
	default:
		return "", fmt.Errorf("invalid session mode: %s", s)
	}
}

// SessionState represents where a capture session is in its lifecycle.
type SessionState string

const (
	// SessionStatePending - queued on the scheduler
	SessionStatePending SessionState = "pending"
	// SessionStateConfiguring - configure_camera sent, settings being verified
	SessionStateConfiguring SessionState = "configuring"
	// SessionStateCapturing - orchestrator running
	SessionStateCapturing SessionState = "capturing"
	// SessionStateCompleted - orchestrator returned a result
	SessionStateCompleted SessionState = "completed"
	// SessionStateFailed - orchestrator returned an error
	SessionStateFailed SessionState = "failed"
	// SessionStateStopped - stopped by the user
	SessionStateStopped SessionState = "stopped"
)

func (s SessionState) IsFinal() bool {
	switch s {
	case SessionStateCompleted, SessionStateFailed, SessionStateStopped:
		return true
	}
	return false
}

// CaptureRequest describes the session a user asked for. Settings are requested
// settings; when Profile is set they are read from the profile store instead.
type CaptureRequest struct {
	Mode           SessionMode
	Profile        string
	Settings       camapi.Settings
	BaseFilename   string
	Shots          int
	CancelAtBuffer int
	DiscardAfter   int
}

// SessionProgress is the last progress reported by the orchestrator.
type SessionProgress struct {
	Phase           string
	Shot            int
	State           camapi.CameraState
	Level           int
	ActiveBuffer    *int
	CapturedBuffers *int
	UpdatedAt       time.Time
}

// SessionResult is the outcome of a finished session.
type SessionResult struct {
	Outcome    string
	Captured   int
	Saved      int
	FinalState camapi.CameraState
}

type CaptureSession struct {
	ID         string
	Request    CaptureRequest
	State      SessionState
	Progress   *SessionProgress
	Result     *SessionResult
	Error      string
	StartedAt  time.Time
	FinishedAt *time.Time
}
