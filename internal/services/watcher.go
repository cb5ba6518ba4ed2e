package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tupyy/hcam-agent/internal/models"
	"github.com/tupyy/hcam-agent/pkg/camapi"
	"github.com/tupyy/hcam-agent/pkg/scheduler"
)

// StatusDescriber reads and renders the camera status.
type StatusDescriber interface {
	DescribeStatus(ctx context.Context) (*camapi.CamStatus, string, error)
}

// CameraWatcher polls the camera status on a ticker for display. It never takes
// part in a capture session's decisions.
type CameraWatcher struct {
	interval  time.Duration
	camera    StatusDescriber
	scheduler *scheduler.Scheduler

	mu      sync.Mutex
	last    *models.CameraStatus
	running bool
	close   chan any
}

func NewCameraWatcher(interval time.Duration, s *scheduler.Scheduler, camera StatusDescriber) *CameraWatcher {
	return &CameraWatcher{
		interval:  interval,
		camera:    camera,
		scheduler: s,
		close:     make(chan any),
	}
}

// Start launches the run loop. Calling Start on a running watcher is a no-op.
func (w *CameraWatcher) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return
	}
	w.running = true
	zap.S().Named("watcher").Debugw("starting camera watcher", "interval", w.interval)
	go w.run()
}

func (w *CameraWatcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	w.close <- struct{}{}
}

// Last returns the last observed status, or nil before the first poll completes.
func (w *CameraWatcher) Last() *models.CameraStatus {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.last == nil {
		return nil
	}
	last := *w.last
	return &last
}

func (w *CameraWatcher) run() {
	tick := time.NewTicker(w.interval)
	defer func() {
		tick.Stop()
		zap.S().Named("watcher").Debugw("run loop stopped")
	}()

	f := w.dispatchPoll()
	for {
		select {
		case <-tick.C:
		case <-w.close:
			zap.S().Named("watcher").Debugw("close signal received, exiting run loop")
			f.Stop()
			return
		}

		result, isResolved := f.Poll()
		if isResolved {
			w.record(result)
			f = w.dispatchPoll()
		}
	}
}

func (w *CameraWatcher) dispatchPoll() *models.Future[models.Result[any]] {
	return w.scheduler.AddWork(func(ctx context.Context) (any, error) {
		ctx, cancel := context.WithTimeout(ctx, w.interval)
		defer cancel()

		st, text, err := w.camera.DescribeStatus(ctx)
		if err != nil {
			return nil, err
		}
		return &models.CameraStatus{Status: st, Text: text}, nil
	})
}

func (w *CameraWatcher) record(result models.Result[any]) {
	log := zap.S().Named("watcher")
	now := time.Now()

	w.mu.Lock()
	defer w.mu.Unlock()

	if result.Err != nil {
		log.Debugw("camera status poll failed", "error", result.Err)
		w.last = &models.CameraStatus{ObservedAt: now, Error: result.Err}
		return
	}

	observed := result.Data.(*models.CameraStatus)
	observed.ObservedAt = now

	if w.last == nil || w.last.Status == nil || w.last.Status.State != observed.Status.State {
		log.Infow("camera state changed", "status", observed.Text)
	}
	w.last = observed
}
