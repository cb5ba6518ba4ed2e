package session

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"go.uber.org/zap"

	"github.com/tupyy/hcam-agent/pkg/camapi"
)

// Camera is the part of the camera API the orchestrator drives.
type Camera interface {
	StatusReader
	ConfigureCamera(ctx context.Context, requested camapi.Settings) (camapi.Settings, error)
	GetCurrentSettings(ctx context.Context) (camapi.Settings, error)
	Run(ctx context.Context, settings camapi.Settings) (camapi.OperationStatus, error)
	Trigger(ctx context.Context, baseFilename string) (camapi.OperationStatus, error)
	Cancel(ctx context.Context) (camapi.OperationStatus, error)
	Save(ctx context.Context) (camapi.OperationStatus, error)
	SaveStop(ctx context.Context, discardUnsaved bool) (camapi.OperationStatus, error)
	PretriggerFillLevel(ctx context.Context) (int, error)
}

// Timeouts bounds every transition wait of a session.
type Timeouts struct {
	Pretrigger  time.Duration
	PostTrigger time.Duration
	Cancel      time.Duration
	Save        time.Duration
	Truncate    time.Duration
	Discard     time.Duration
}

func DefaultTimeouts() Timeouts {
	return Timeouts{
		Pretrigger:  10 * time.Second,
		PostTrigger: 10 * time.Second,
		Cancel:      10 * time.Second,
		Save:        30 * time.Second,
		Truncate:    10 * time.Second,
		Discard:     5 * time.Second,
	}
}

type Outcome string

const (
	OutcomeSaved     Outcome = "saved"
	OutcomeCanceled  Outcome = "canceled"
	OutcomeTruncated Outcome = "truncated"
	OutcomeDiscarded Outcome = "discarded"
)

// Result summarizes a finished session.
type Result struct {
	Outcome  Outcome
	Captured int
	Saved    int
	Final    *camapi.CamStatus
}

// Progress is reported while a session runs.
type Progress struct {
	Phase           string
	Shot            int
	State           camapi.CameraState
	Level           int
	ActiveBuffer    *int
	CapturedBuffers *int
}

type ProgressFunc func(Progress)

// CaptureOptions selects how a single shot capture ends.
type CaptureOptions struct {
	BaseFilename string
	// Cancel cancels the capture while the post-trigger buffer fills.
	Cancel bool
	// Truncate stops the save before it completes.
	Truncate bool
}

type MultishotOptions struct {
	BaseFilename string
	// Shots defaults to the allowed multishot_count.
	Shots int
	// CancelAtBuffer cancels the shot captured into that buffer. Zero disables it.
	CancelAtBuffer int
	// DiscardAfter stops the aggregate save once that many videos are saved and
	// drops the rest. Zero saves everything.
	DiscardAfter int
}

type Orchestrator struct {
	camera      Camera
	monitor     *Monitor
	timeouts    Timeouts
	settleDelay time.Duration
	sleep       SleepFunc
	progress    ProgressFunc
}

type OrchestratorOption func(*Orchestrator)

func WithTimeouts(t Timeouts) OrchestratorOption {
	return func(o *Orchestrator) {
		o.timeouts = t
	}
}

// WithSettleDelay sets the pause between a command and the first status read that
// can reflect it.
func WithSettleDelay(d time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		o.settleDelay = d
	}
}

func WithProgress(fn ProgressFunc) OrchestratorOption {
	return func(o *Orchestrator) {
		o.progress = fn
	}
}

// WithOrchestratorSleep replaces the settle sleep. The monitor keeps its own.
func WithOrchestratorSleep(fn SleepFunc) OrchestratorOption {
	return func(o *Orchestrator) {
		if fn != nil {
			o.sleep = fn
		}
	}
}

func NewOrchestrator(camera Camera, monitor *Monitor, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		camera:      camera,
		monitor:     monitor,
		timeouts:    DefaultTimeouts(),
		settleDelay: time.Second,
		sleep:       Sleep,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Configure sends the requested settings and verifies that the current settings
// reflect every allowed value the camera computed.
func (o *Orchestrator) Configure(ctx context.Context, requested camapi.Settings) (camapi.Settings, error) {
	allowed, err := o.camera.ConfigureCamera(ctx, requested)
	if err != nil {
		return nil, fmt.Errorf("configure camera: %w", err)
	}

	current, err := o.camera.GetCurrentSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("get current settings: %w", err)
	}

	for key, value := range allowed.Allowed() {
		cur, ok := current[key]
		if !ok {
			return allowed, &SettingsMismatchError{Key: key, Allowed: value, Missing: true}
		}
		if !reflect.DeepEqual(cur, value) {
			return allowed, &SettingsMismatchError{Key: key, Allowed: value, Current: cur}
		}
	}

	zap.S().Named("session").Infow("camera configured", "settings", len(allowed))
	return allowed, nil
}

// Capture drives one single shot capture from run to save, cancel or truncation.
func (o *Orchestrator) Capture(ctx context.Context, settings camapi.Settings, opts CaptureOptions) (*Result, error) {
	log := zap.S().Named("session")
	log.Infow("starting capture", "cancel", opts.Cancel, "truncate", opts.Truncate, "base_filename", opts.BaseFilename)

	if err := o.RunCamera(ctx, settings); err != nil {
		return nil, err
	}

	if err := o.fillPretrigger(ctx, 1); err != nil {
		return nil, err
	}

	if err := o.TriggerCamera(ctx, opts.BaseFilename); err != nil {
		return nil, err
	}
	o.logFillLevel(ctx)

	if opts.Cancel {
		if err := o.operation(ctx, "cancel", o.camera.Cancel); err != nil {
			return nil, err
		}
		if _, err := o.monitor.WaitForTransition(ctx, "waiting for cancel to be processed", camapi.StateTriggered, o.timeouts.Cancel); err != nil {
			return nil, err
		}
		final, err := o.expectRunning(ctx, "after cancel")
		if err != nil {
			return nil, err
		}
		log.Info("capture canceled during post-trigger fill")
		return &Result{Outcome: OutcomeCanceled, Final: final}, nil
	}

	if _, err := o.monitor.WaitForTransition(ctx, "waiting for post-trigger buffer to fill", camapi.StateTriggered, o.timeouts.PostTrigger); err != nil {
		return nil, err
	}
	saving, err := o.expect(ctx, "post-trigger fill", camapi.StateSaving)
	if err != nil {
		return nil, err
	}
	if err := checkCaptured(saving, 1); err != nil {
		return nil, err
	}
	o.report(Progress{Phase: "saving", Shot: 1, State: saving.State, Level: saving.Level, ActiveBuffer: saving.ActiveBuffer, CapturedBuffers: saving.CapturedBuffers})

	if opts.Truncate {
		if err := o.operation(ctx, "save stop", func(ctx context.Context) (camapi.OperationStatus, error) {
			return o.camera.SaveStop(ctx, false)
		}); err != nil {
			return nil, err
		}
		final, err := o.waitTruncation(ctx, o.timeouts.Truncate)
		if err != nil {
			return nil, err
		}
		log.Info("save truncated")
		return &Result{Outcome: OutcomeTruncated, Captured: 1, Saved: 1, Final: final}, nil
	}

	if _, err := o.monitor.WaitForTransition(ctx, "waiting for save to complete", camapi.StateSaving, o.timeouts.Save); err != nil {
		return nil, err
	}
	final, err := o.expectRunning(ctx, "after save")
	if err != nil {
		return nil, err
	}
	if err := checkCaptured(final, 1); err != nil {
		return nil, err
	}

	log.Info("capture saved")
	return &Result{Outcome: OutcomeSaved, Captured: 1, Saved: 1, Final: final}, nil
}

// RunCamera requires an idle camera, issues run and checks the camera is running.
func (o *Orchestrator) RunCamera(ctx context.Context, settings camapi.Settings) error {
	if _, err := o.expectRunning(ctx, "before run"); err != nil {
		return err
	}

	if err := o.operation(ctx, "run", func(ctx context.Context) (camapi.OperationStatus, error) {
		return o.camera.Run(ctx, settings)
	}); err != nil {
		return err
	}

	_, err := o.expect(ctx, "after run", camapi.StateRunning)
	return err
}

// TriggerCamera triggers, lets the camera settle and checks it is triggered.
func (o *Orchestrator) TriggerCamera(ctx context.Context, baseFilename string) error {
	if err := o.operation(ctx, "trigger", func(ctx context.Context) (camapi.OperationStatus, error) {
		return o.camera.Trigger(ctx, baseFilename)
	}); err != nil {
		return err
	}

	if err := o.settle(ctx); err != nil {
		return err
	}

	_, err := o.expect(ctx, "after trigger", camapi.StateTriggered)
	return err
}

func (o *Orchestrator) fillPretrigger(ctx context.Context, shot int) error {
	st, err := o.monitor.WaitForTransition(ctx, "waiting for pretrigger buffer to fill", camapi.StateRunning, o.timeouts.Pretrigger)
	if err != nil {
		return err
	}
	o.report(Progress{Phase: "pretrigger", Shot: shot, State: st.State, Level: st.Level, ActiveBuffer: st.ActiveBuffer})

	_, err = o.expect(ctx, "pretrigger fill", camapi.StateRunningPretriggerFull)
	return err
}

// waitTruncation waits through Saving and SaveTruncating and requires a running
// camera afterwards.
func (o *Orchestrator) waitTruncation(ctx context.Context, timeout time.Duration) (*camapi.CamStatus, error) {
	if _, err := o.monitor.WaitForTransition(ctx, "waiting for save to stop", camapi.StateSaving, timeout); err != nil {
		return nil, err
	}
	if _, err := o.monitor.WaitForTransition(ctx, "waiting for truncation to finish", camapi.StateSaveTruncating, timeout); err != nil {
		return nil, err
	}
	return o.expectRunning(ctx, "after truncation")
}

func (o *Orchestrator) operation(ctx context.Context, name string, fn func(context.Context) (camapi.OperationStatus, error)) error {
	status, err := fn(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if status != camapi.StatusOkay {
		return &OperationError{Operation: name, Status: status}
	}
	zap.S().Named("session").Debugw("operation accepted", "operation", name)
	return nil
}

func (o *Orchestrator) expect(ctx context.Context, step string, state camapi.CameraState) (*camapi.CamStatus, error) {
	st, err := o.monitor.ExpectState(ctx, state)
	if err != nil {
		return nil, stepError(step, err)
	}
	return st, nil
}

func (o *Orchestrator) expectRunning(ctx context.Context, step string) (*camapi.CamStatus, error) {
	st, err := o.monitor.ExpectRunningState(ctx)
	if err != nil {
		return nil, stepError(step, err)
	}
	return st, nil
}

func (o *Orchestrator) settle(ctx context.Context) error {
	if o.settleDelay <= 0 {
		return nil
	}
	return o.sleep(ctx, o.settleDelay)
}

func (o *Orchestrator) logFillLevel(ctx context.Context) {
	level, err := o.camera.PretriggerFillLevel(ctx)
	if err != nil {
		zap.S().Named("session").Debugw("failed to read pretrigger fill level", "error", err)
		return
	}
	zap.S().Named("session").Infow("camera triggered", "pretrigger_fill_level", level)
}

func (o *Orchestrator) report(p Progress) {
	if o.progress != nil {
		o.progress(p)
	}
}

func stepError(step string, err error) error {
	if se, ok := err.(*StateError); ok {
		se.Step = step
		return se
	}
	return fmt.Errorf("%s: %w", step, err)
}

func checkCaptured(st *camapi.CamStatus, expected int) error {
	if st.CapturedBuffers != nil && *st.CapturedBuffers != expected {
		return &BufferCountError{Expected: expected, Actual: *st.CapturedBuffers}
	}
	return nil
}
