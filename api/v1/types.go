package v1

import "time"

// Error is returned by every failing endpoint.
type Error struct {
	Error string `json:"error"`
}

// Settings is a flat map of camera settings. Requested keys carry the
// "requested_" prefix.
type Settings map[string]any

type CameraStatus struct {
	State           string     `json:"state"`
	StateCode       int        `json:"state_code"`
	Level           int        `json:"level"`
	Flags           []string   `json:"flags"`
	AvailableSpace  uint64     `json:"available_space"`
	ActiveBuffer    *int       `json:"active_buffer,omitempty"`
	CapturedBuffers *int       `json:"captured_buffers,omitempty"`
	Text            string     `json:"text"`
	ObservedAt      *time.Time `json:"observed_at,omitempty"`
	Error           *string    `json:"error,omitempty"`
}

type Profile struct {
	Name      string    `json:"name"`
	Settings  Settings  `json:"settings"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ProfileList struct {
	Profiles []Profile `json:"profiles"`
}

// ProfileRequest is the body of PUT /profiles/{name}.
type ProfileRequest struct {
	Settings Settings `json:"settings" binding:"required"`
}

type SessionMode string

const (
	SessionModeSingle    SessionMode = "single"
	SessionModeCancel    SessionMode = "cancel"
	SessionModeTruncate  SessionMode = "truncate"
	SessionModeMultishot SessionMode = "multishot"
)

// SessionRequest is the body of POST /sessions. Profile and Settings are
// mutually exclusive.
type SessionRequest struct {
	Mode           *SessionMode `json:"mode,omitempty"`
	Profile        *string      `json:"profile,omitempty"`
	Settings       Settings     `json:"settings,omitempty"`
	BaseFilename   *string      `json:"base_filename,omitempty"`
	Shots          *int         `json:"shots,omitempty"`
	CancelAtBuffer *int         `json:"cancel_at_buffer,omitempty"`
	DiscardAfter   *int         `json:"discard_after,omitempty"`
}

type SessionProgress struct {
	Phase           string    `json:"phase"`
	Shot            int       `json:"shot"`
	State           string    `json:"state"`
	Level           int       `json:"level"`
	ActiveBuffer    *int      `json:"active_buffer,omitempty"`
	CapturedBuffers *int      `json:"captured_buffers,omitempty"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type SessionResult struct {
	Outcome    string `json:"outcome"`
	Captured   int    `json:"captured"`
	Saved      int    `json:"saved"`
	FinalState string `json:"final_state"`
}

type Session struct {
	ID         string           `json:"id"`
	Mode       SessionMode      `json:"mode"`
	Profile    *string          `json:"profile,omitempty"`
	State      string           `json:"state"`
	Progress   *SessionProgress `json:"progress,omitempty"`
	Result     *SessionResult   `json:"result,omitempty"`
	Error      *string          `json:"error,omitempty"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt *time.Time       `json:"finished_at,omitempty"`
}
