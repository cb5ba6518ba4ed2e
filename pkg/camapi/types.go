package camapi

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

var (
	ErrMissingState    = errors.New("camera status has no state field")
	ErrUnknownState    = errors.New("unknown camera state")
	ErrUnknownStatus   = errors.New("unknown operation status")
	ErrUnexpectedValue = errors.New("unexpected value in camera response")
)

// CameraState is the discrete state reported by get_camstatus.
// The numeric values are pinned to one firmware protocol revision.
type CameraState int

const (
	StateUnconfigured          CameraState = 1
	StateCalibrating           CameraState = 2
	StateRunning               CameraState = 3
	StateTriggered             CameraState = 4
	StateSaving                CameraState = 5
	StateRunningPretriggerFull CameraState = 6
	StateTriggerCanceled       CameraState = 7
	StateSaveCanceled          CameraState = 8
	StateSaveInterrupted       CameraState = 9
	StateSaveTruncating        CameraState = 10
	StateReviewing             CameraState = 11
	StateSelectiveSaving       CameraState = 12
)

var stateLabels = map[CameraState]string{
	StateUnconfigured:          "Unconfigured",
	StateCalibrating:           "Calibrating",
	StateRunning:               "Running",
	StateRunningPretriggerFull: "Running pretrigger buffer full",
	StateTriggered:             "Triggered",
	StateSaving:                "Saving",
	StateTriggerCanceled:       "Trigger canceled",
	StateSaveCanceled:          "Save canceled",
	StateSaveInterrupted:       "Save interrupted",
	StateSaveTruncating:        "Save truncating",
	StateReviewing:             "Reviewing",
	StateSelectiveSaving:       "Selective saving",
}

// ParseCameraState converts a protocol integer into a CameraState.
func ParseCameraState(v int64) (CameraState, error) {
	s := CameraState(v)
	if _, ok := stateLabels[s]; !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnknownState, v)
	}
	return s, nil
}

func (s CameraState) String() string {
	if l, ok := stateLabels[s]; ok {
		return l
	}
	return fmt.Sprintf("Unknown state (%d)", int(s))
}

// IsRunning reports whether the camera is idle and filling its pretrigger buffer.
func (s CameraState) IsRunning() bool {
	return s == StateRunning || s == StateRunningPretriggerFull
}

func (s CameraState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// OperationStatus is the result of a mutating call.
type OperationStatus int

const (
	StatusOkay             OperationStatus = 1
	StatusInvalidState     OperationStatus = 2
	StatusStorageError     OperationStatus = 3
	StatusCodeOutOfDate    OperationStatus = 4
	StatusInvalidParameter OperationStatus = 5
)

var statusLabels = map[OperationStatus]string{
	StatusOkay:             "okay",
	StatusInvalidState:     "invalid state",
	StatusStorageError:     "storage error",
	StatusCodeOutOfDate:    "code out of date",
	StatusInvalidParameter: "invalid parameter",
}

func ParseOperationStatus(v int64) (OperationStatus, error) {
	s := OperationStatus(v)
	if _, ok := statusLabels[s]; !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnknownStatus, v)
	}
	return s, nil
}

func (s OperationStatus) String() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return fmt.Sprintf("unknown status (%d)", int(s))
}

// Flags is the bitset carried in the flags field of a camera status.
type Flags uint64

const (
	FlagStorageFull               Flags = 0x1
	FlagStorageMissingOrUnmounted Flags = 0x2
	FlagUSBStorageInstalled       Flags = 0x4
	FlagSDCardStorageInstalled    Flags = 0x8
	FlagUSBStorageFull            Flags = 0x10
	FlagSDCardStorageFull         Flags = 0x20
	FlagStorageBad                Flags = 0x40
	FlagSDCardStorageUnmounted    Flags = 0x80
	FlagUSBStorageUnmounted       Flags = 0x100
	FlagNetConfigured             Flags = 0x200
	FlagNetNotMountable           Flags = 0x400
	FlagNetFull                   Flags = 0x800
	FlagGenlockNoSignal           Flags = 0x400000
	FlagGenlockConfigError        Flags = 0x800000
)

func (f Flags) Has(flag Flags) bool {
	return f&flag != 0
}

func (f Flags) String() string {
	return FormatFlags(f)
}

// CamStatus is a single snapshot of get_camstatus.
type CamStatus struct {
	State           CameraState
	Level           int
	Flags           Flags
	AvailableSpace  uint64
	ActiveBuffer    *int
	CapturedBuffers *int
	Raw             map[string]any
}

// DecodeCamStatus builds a CamStatus out of a decoded get_camstatus response.
func DecodeCamStatus(v any) (*CamStatus, error) {
	raw, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: camera status is %T", ErrUnexpectedValue, v)
	}

	rawState, ok := raw["state"]
	if !ok || rawState == nil {
		return nil, ErrMissingState
	}
	n, ok := toExactInt64(rawState)
	if !ok {
		return nil, fmt.Errorf("%w: state %v", ErrUnexpectedValue, rawState)
	}
	state, err := ParseCameraState(n)
	if err != nil {
		return nil, err
	}

	st := &CamStatus{State: state, Raw: raw}
	if n, ok := toInt64(raw["level"]); ok {
		st.Level = int(n)
	}
	if n, ok := toInt64(raw["flags"]); ok {
		st.Flags = Flags(n)
	}
	if n, ok := toInt64(raw["available_space"]); ok && n > 0 {
		st.AvailableSpace = uint64(n)
	}
	if n, ok := toInt64(raw["active_buffer"]); ok {
		b := int(n)
		st.ActiveBuffer = &b
	}
	if n, ok := toInt64(raw["captured_buffers"]); ok {
		b := int(n)
		st.CapturedBuffers = &b
	}

	return st, nil
}

// Settings is a flat mapping of requested and allowed camera settings.
// Requested keys carry the "requested_" prefix.
type Settings map[string]any

const RequestedPrefix = "requested_"

// Int returns the numeric value stored under key.
func (s Settings) Int(key string) (int, bool) {
	n, ok := toInt64(s[key])
	return int(n), ok
}

// MultishotCount returns the allowed multishot buffer count.
func (s Settings) MultishotCount() (int, bool) {
	return s.Int("multishot_count")
}

// Allowed returns the keys the device computed, without the requested ones.
func (s Settings) Allowed() Settings {
	out := Settings{}
	for k, v := range s {
		if strings.HasPrefix(k, RequestedPrefix) {
			continue
		}
		out[k] = v
	}
	return out
}

// Requested returns only the requested_ keys.
func (s Settings) Requested() Settings {
	out := Settings{}
	for k, v := range s {
		if strings.HasPrefix(k, RequestedPrefix) {
			out[k] = v
		}
	}
	return out
}

// toExactInt64 accepts integral numbers only. Enumerated protocol values go
// through it so that 3.5 is not read as 3.
func toExactInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int64(n), true
	case int:
		return int64(n), true
	case int64:
		return n, true
	}
	return 0, false
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		if f, err := n.Float64(); err == nil {
			return int64(f), true
		}
	case float64:
		return int64(n), true
	case int:
		return int64(n), true
	case int64:
		return n, true
	case string:
		if i, err := strconv.ParseInt(n, 10, 64); err == nil {
			return i, true
		}
	}
	return 0, false
}
