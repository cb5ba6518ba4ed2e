package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tupyy/hcam-agent/internal/models"
	"github.com/tupyy/hcam-agent/internal/session"
	"github.com/tupyy/hcam-agent/pkg/camapi"
	"github.com/tupyy/hcam-agent/pkg/scheduler"
)

var (
	ErrSessionInProgress = errors.New("capture session already in progress")
	ErrNoSession         = errors.New("no capture session")
)

// ProfileReader resolves named requested settings.
type ProfileReader interface {
	Get(ctx context.Context, name string) (*models.Profile, error)
}

type CaptureService struct {
	scheduler        *scheduler.Scheduler
	camera           session.Camera
	profiles         ProfileReader
	monitorOpts      []session.MonitorOption
	orchestratorOpts []session.OrchestratorOption

	mu      sync.RWMutex
	current *models.CaptureSession
	future  *models.Future[models.Result[any]]
}

type CaptureOption func(*CaptureService)

// WithMonitorOptions sets the options of the monitor built for every session.
func WithMonitorOptions(opts ...session.MonitorOption) CaptureOption {
	return func(c *CaptureService) {
		c.monitorOpts = opts
	}
}

// WithOrchestratorOptions sets the options of the orchestrator built for every session.
func WithOrchestratorOptions(opts ...session.OrchestratorOption) CaptureOption {
	return func(c *CaptureService) {
		c.orchestratorOpts = opts
	}
}

func NewCaptureService(s *scheduler.Scheduler, camera session.Camera, profiles ProfileReader, opts ...CaptureOption) *CaptureService {
	c := &CaptureService{
		scheduler: s,
		camera:    camera,
		profiles:  profiles,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Current returns the running session or the last finished one.
func (c *CaptureService) Current() (*models.CaptureSession, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.current == nil {
		return nil, ErrNoSession
	}
	return copySession(c.current), nil
}

// Start resolves the requested settings and runs the session in the background.
// Only one session runs at a time.
func (c *CaptureService) Start(ctx context.Context, req models.CaptureRequest) (*models.CaptureSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.future != nil && !c.future.IsResolved() {
		return nil, ErrSessionInProgress
	}

	mode, err := models.ParseSessionMode(string(req.Mode))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", session.ErrInvalidOptions, err)
	}
	req.Mode = mode
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	settings := req.Settings
	if req.Profile != "" {
		p, err := c.profiles.Get(ctx, req.Profile)
		if err != nil {
			return nil, fmt.Errorf("profile %q: %w", req.Profile, err)
		}
		settings = p.Settings
	}
	if settings == nil {
		settings = camapi.Settings{}
	}

	s := &models.CaptureSession{
		ID:        uuid.New().String(),
		Request:   req,
		State:     models.SessionStatePending,
		StartedAt: time.Now(),
	}
	c.current = s

	id := s.ID
	c.future = c.scheduler.AddWork(func(ctx context.Context) (any, error) {
		return c.run(ctx, id, settings, req)
	})

	zap.S().Named("capture").Infow("capture session queued", "id", id, "mode", req.Mode, "profile", req.Profile)
	return copySession(s), nil
}

// Stop cancels the running session. Stopping a finished session is a no-op.
func (c *CaptureService) Stop(ctx context.Context) (*models.CaptureSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return nil, ErrNoSession
	}

	if c.future != nil && !c.future.IsResolved() {
		c.future.Stop()
		c.setState(c.current.ID, models.SessionStateStopped)
		now := time.Now()
		c.current.FinishedAt = &now
		zap.S().Named("capture").Infow("capture session stopped", "id", c.current.ID)
	}

	return copySession(c.current), nil
}

// Configure sends requested settings and verifies them outside of a session. It
// is refused while a session runs.
func (c *CaptureService) Configure(ctx context.Context, requested camapi.Settings) (camapi.Settings, error) {
	c.mu.RLock()
	busy := c.future != nil && !c.future.IsResolved()
	c.mu.RUnlock()
	if busy {
		return nil, ErrSessionInProgress
	}

	monitor := session.NewMonitor(c.camera, c.monitorOpts...)
	return session.NewOrchestrator(c.camera, monitor, c.orchestratorOpts...).Configure(ctx, requested)
}

func (c *CaptureService) run(ctx context.Context, id string, settings camapi.Settings, req models.CaptureRequest) (*session.Result, error) {
	log := zap.S().Named("capture")

	monitor := session.NewMonitor(c.camera, c.monitorOpts...)
	opts := append([]session.OrchestratorOption{}, c.orchestratorOpts...)
	opts = append(opts, session.WithProgress(func(p session.Progress) {
		c.report(id, p)
	}))
	orchestrator := session.NewOrchestrator(c.camera, monitor, opts...)

	c.mu.Lock()
	c.setState(id, models.SessionStateConfiguring)
	c.mu.Unlock()

	allowed, err := orchestrator.Configure(ctx, settings)
	if err != nil {
		log.Errorw("failed to configure camera", "id", id, "error", err)
		c.finish(id, nil, err)
		return nil, err
	}

	c.mu.Lock()
	c.setState(id, models.SessionStateCapturing)
	c.mu.Unlock()

	var result *session.Result
	switch req.Mode {
	case models.SessionModeMultishot:
		result, err = orchestrator.Multishot(ctx, allowed, session.MultishotOptions{
			BaseFilename:   req.BaseFilename,
			Shots:          req.Shots,
			CancelAtBuffer: req.CancelAtBuffer,
			DiscardAfter:   req.DiscardAfter,
		})
	default:
		result, err = orchestrator.Capture(ctx, allowed, session.CaptureOptions{
			BaseFilename: req.BaseFilename,
			Cancel:       req.Mode == models.SessionModeCancel,
			Truncate:     req.Mode == models.SessionModeTruncate,
		})
	}

	if err != nil {
		log.Errorw("capture session failed", "id", id, "error", err)
	} else {
		log.Infow("capture session finished", "id", id, "outcome", result.Outcome, "saved", result.Saved)
	}
	c.finish(id, result, err)
	return result, err
}

func (c *CaptureService) report(id string, p session.Progress) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil || c.current.ID != id {
		return
	}
	c.current.Progress = &models.SessionProgress{
		Phase:           p.Phase,
		Shot:            p.Shot,
		State:           p.State,
		Level:           p.Level,
		ActiveBuffer:    p.ActiveBuffer,
		CapturedBuffers: p.CapturedBuffers,
		UpdatedAt:       time.Now(),
	}
}

func (c *CaptureService) finish(id string, result *session.Result, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil || c.current.ID != id {
		return
	}
	if c.current.State == models.SessionStateStopped {
		return
	}

	now := time.Now()
	c.current.FinishedAt = &now

	if err != nil {
		c.current.State = models.SessionStateFailed
		c.current.Error = err.Error()
		return
	}

	c.setState(id, models.SessionStateCompleted)
	c.current.Result = &models.SessionResult{
		Outcome:  string(result.Outcome),
		Captured: result.Captured,
		Saved:    result.Saved,
	}
	if result.Final != nil {
		c.current.Result.FinalState = result.Final.State
	}
}

// setState must be called with mu held.
func (c *CaptureService) setState(id string, state models.SessionState) {
	if c.current == nil || c.current.ID != id || c.current.State.IsFinal() {
		return
	}
	zap.S().Named("capture").Debugw("capture session state transition", "id", id, "from", c.current.State, "to", state)
	c.current.State = state
}

func validateRequest(req models.CaptureRequest) error {
	if req.Profile != "" && len(req.Settings) > 0 {
		return fmt.Errorf("%w: profile and settings are mutually exclusive", session.ErrInvalidOptions)
	}
	if req.Mode != models.SessionModeMultishot && (req.Shots != 0 || req.CancelAtBuffer != 0 || req.DiscardAfter != 0) {
		return fmt.Errorf("%w: shots, cancel at buffer and discard after need multishot mode", session.ErrInvalidOptions)
	}
	return nil
}

func copySession(s *models.CaptureSession) *models.CaptureSession {
	out := *s
	if s.Progress != nil {
		p := *s.Progress
		out.Progress = &p
	}
	if s.Result != nil {
		r := *s.Result
		out.Result = &r
	}
	if s.FinishedAt != nil {
		t := *s.FinishedAt
		out.FinishedAt = &t
	}
	return &out
}
