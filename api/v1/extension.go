package v1

import (
	"strings"

	"github.com/tupyy/hcam-agent/internal/models"
	"github.com/tupyy/hcam-agent/pkg/camapi"
)

func (s *CameraStatus) FromModel(m models.CameraStatus) {
	if m.Status != nil {
		s.FromCamStatus(m.Status, m.Text)
	}
	if !m.ObservedAt.IsZero() {
		t := m.ObservedAt
		s.ObservedAt = &t
	}
	if m.Error != nil {
		e := m.Error.Error()
		s.Error = &e
	}
}

func (s *CameraStatus) FromCamStatus(st *camapi.CamStatus, text string) {
	s.State = st.State.String()
	s.StateCode = int(st.State)
	s.Level = st.Level
	s.Flags = []string{}
	if st.Flags != 0 {
		s.Flags = strings.Split(camapi.FormatFlags(st.Flags), " | ")
	}
	s.AvailableSpace = st.AvailableSpace
	s.ActiveBuffer = st.ActiveBuffer
	s.CapturedBuffers = st.CapturedBuffers
	s.Text = text
}

func (p *Profile) FromModel(m models.Profile) {
	p.Name = m.Name
	p.Settings = Settings(m.Settings)
	if p.Settings == nil {
		p.Settings = Settings{}
	}
	p.CreatedAt = m.CreatedAt
	p.UpdatedAt = m.UpdatedAt
}

func (r SessionRequest) ToModel() models.CaptureRequest {
	req := models.CaptureRequest{Settings: camapi.Settings(r.Settings)}
	if r.Mode != nil {
		req.Mode = models.SessionMode(*r.Mode)
	}
	if r.Profile != nil {
		req.Profile = *r.Profile
	}
	if r.BaseFilename != nil {
		req.BaseFilename = *r.BaseFilename
	}
	if r.Shots != nil {
		req.Shots = *r.Shots
	}
	if r.CancelAtBuffer != nil {
		req.CancelAtBuffer = *r.CancelAtBuffer
	}
	if r.DiscardAfter != nil {
		req.DiscardAfter = *r.DiscardAfter
	}
	return req
}

func (s *Session) FromModel(m models.CaptureSession) {
	s.ID = m.ID
	s.Mode = SessionMode(m.Request.Mode)
	if m.Request.Profile != "" {
		profile := m.Request.Profile
		s.Profile = &profile
	}
	s.State = string(m.State)
	s.StartedAt = m.StartedAt
	s.FinishedAt = m.FinishedAt
	if m.Error != "" {
		e := m.Error
		s.Error = &e
	}

	if p := m.Progress; p != nil {
		s.Progress = &SessionProgress{
			Phase:           p.Phase,
			Shot:            p.Shot,
			State:           p.State.String(),
			Level:           p.Level,
			ActiveBuffer:    p.ActiveBuffer,
			CapturedBuffers: p.CapturedBuffers,
			UpdatedAt:       p.UpdatedAt,
		}
	}
	if r := m.Result; r != nil {
		s.Result = &SessionResult{
			Outcome:    r.Outcome,
			Captured:   r.Captured,
			Saved:      r.Saved,
			FinalState: r.FinalState.String(),
		}
	}
}
