package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tupyy/hcam-agent/pkg/camapi"
)

var (
	// ErrProtocolViolation means the camera is not where the session expects it to be.
	// Sessions are not resumable past this point.
	ErrProtocolViolation = errors.New("camera protocol violation")
	// ErrOperationRejected means a mutating call did not return okay.
	ErrOperationRejected = errors.New("camera operation rejected")
	ErrInvalidOptions    = errors.New("invalid session options")
)

// StateError is returned when an assertion on the camera state fails.
type StateError struct {
	Step     string
	Expected []camapi.CameraState
	Actual   camapi.CameraState
}

func (e *StateError) Error() string {
	expected := make([]string, 0, len(e.Expected))
	for _, s := range e.Expected {
		expected = append(expected, s.String())
	}
	return fmt.Sprintf("%s: expected state %s, camera is %s", e.Step, strings.Join(expected, " or "), e.Actual)
}

func (e *StateError) Unwrap() error {
	return ErrProtocolViolation
}

// OperationError is returned when a mutating call returns anything but okay.
type OperationError struct {
	Operation string
	Status    camapi.OperationStatus
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s returned %q", e.Operation, e.Status)
}

func (e *OperationError) Unwrap() error {
	return ErrOperationRejected
}

// BufferCountError is returned when the camera reports a captured buffer count
// other than the number of buffers the session filled.
type BufferCountError struct {
	Expected int
	Actual   int
}

func (e *BufferCountError) Error() string {
	return fmt.Sprintf("captured buffer count mismatch: camera reports %d, expected %d", e.Actual, e.Expected)
}

func (e *BufferCountError) Unwrap() error {
	return ErrProtocolViolation
}

// SettingsMismatchError is returned when the current settings do not reflect an
// allowed value returned by configure_camera.
type SettingsMismatchError struct {
	Key     string
	Allowed any
	Current any
	Missing bool
}

func (e *SettingsMismatchError) Error() string {
	if e.Missing {
		return fmt.Sprintf("current settings are missing allowed key %q", e.Key)
	}
	return fmt.Sprintf("current setting %q is %v, configured %v", e.Key, e.Current, e.Allowed)
}

func (e *SettingsMismatchError) Unwrap() error {
	return ErrProtocolViolation
}
