package session

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tupyy/hcam-agent/pkg/camapi"
)

const (
	DefaultPollInterval     = time.Second
	DefaultCalibrationPolls = 4
)

// StatusReader reads a fresh status snapshot from the camera.
type StatusReader interface {
	GetCamStatus(ctx context.Context) (*camapi.CamStatus, error)
}

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the wall clock SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Monitor observes the camera state by polling. It never caches a snapshot:
// every decision is taken on a fresh read.
type Monitor struct {
	camera           StatusReader
	interval         time.Duration
	calibrationPolls int
	sleep            SleepFunc
}

type MonitorOption func(*Monitor)

func WithPollInterval(d time.Duration) MonitorOption {
	return func(m *Monitor) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithCalibrationPolls sets how many polls ExpectRunningState tolerates the camera
// in the Calibrating state.
func WithCalibrationPolls(n int) MonitorOption {
	return func(m *Monitor) {
		if n >= 0 {
			m.calibrationPolls = n
		}
	}
}

func WithSleep(fn SleepFunc) MonitorOption {
	return func(m *Monitor) {
		if fn != nil {
			m.sleep = fn
		}
	}
}

func NewMonitor(camera StatusReader, opts ...MonitorOption) *Monitor {
	m := &Monitor{
		camera:           camera,
		interval:         DefaultPollInterval,
		calibrationPolls: DefaultCalibrationPolls,
		sleep:            Sleep,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Monitor) PollInterval() time.Duration {
	return m.interval
}

// GetStatus fetches one status snapshot.
func (m *Monitor) GetStatus(ctx context.Context) (*camapi.CamStatus, error) {
	return m.camera.GetCamStatus(ctx)
}

// CheckState reports whether the camera is currently in the expected state.
func (m *Monitor) CheckState(ctx context.Context, expected camapi.CameraState) (bool, error) {
	st, err := m.GetStatus(ctx)
	if err != nil {
		return false, err
	}
	return st.State == expected, nil
}

// WaitForTransition polls once per interval while the camera stays in current and
// the timeout is not exhausted, then returns one final snapshot. A timeout is not an
// error: the caller decides whether the returned state is acceptable.
func (m *Monitor) WaitForTransition(ctx context.Context, label string, current camapi.CameraState, timeout time.Duration) (*camapi.CamStatus, error) {
	log := zap.S().Named("monitor")
	log.Debugw(label, "state", current, "timeout", timeout)

	remaining := timeout
	for remaining > 0 {
		same, err := m.CheckState(ctx, current)
		if err != nil {
			return nil, err
		}
		if !same {
			break
		}

		remaining -= m.interval
		if err := m.sleep(ctx, m.interval); err != nil {
			return nil, err
		}
	}

	st, err := m.GetStatus(ctx)
	if err != nil {
		return nil, err
	}

	log.Debugw("wait finished", "label", label, "from", current, "state", st.State, "waited", timeout-max(remaining, 0))
	return st, nil
}

// ExpectState reads the status once and fails if the camera is not in anticipated.
func (m *Monitor) ExpectState(ctx context.Context, anticipated camapi.CameraState) (*camapi.CamStatus, error) {
	st, err := m.GetStatus(ctx)
	if err != nil {
		return nil, err
	}
	if st.State != anticipated {
		return st, &StateError{
			Step:     "expect state",
			Expected: []camapi.CameraState{anticipated},
			Actual:   st.State,
		}
	}
	return st, nil
}

// ExpectRunningState waits through a bounded calibration and then requires
// Running or RunningPretriggerFull.
func (m *Monitor) ExpectRunningState(ctx context.Context) (*camapi.CamStatus, error) {
	st, err := m.GetStatus(ctx)
	if err != nil {
		return nil, err
	}

	for i := 0; st.State == camapi.StateCalibrating && i < m.calibrationPolls; i++ {
		zap.S().Named("monitor").Debugw("camera calibrating", "poll", i+1)
		if err := m.sleep(ctx, m.interval); err != nil {
			return nil, err
		}
		if st, err = m.GetStatus(ctx); err != nil {
			return nil, err
		}
	}

	if !st.State.IsRunning() {
		return st, &StateError{
			Step:     "expect running state",
			Expected: []camapi.CameraState{camapi.StateRunning, camapi.StateRunningPretriggerFull},
			Actual:   st.State,
		}
	}
	return st, nil
}
