package session

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/tupyy/hcam-agent/pkg/camapi"
)

// Multishot fills a sequence of multishot buffers and saves them with one
// aggregate save. The buffer count comes from the allowed settings.
func (o *Orchestrator) Multishot(ctx context.Context, settings camapi.Settings, opts MultishotOptions) (*Result, error) {
	log := zap.S().Named("session")

	count, ok := settings.MultishotCount()
	if !ok || count < 1 {
		return nil, fmt.Errorf("%w: settings carry no multishot_count", ErrInvalidOptions)
	}
	shots := opts.Shots
	if shots == 0 {
		shots = count
	}
	if shots < 0 || shots > count {
		return nil, fmt.Errorf("%w: %d shots requested, camera has %d multishot buffers", ErrInvalidOptions, shots, count)
	}
	if opts.CancelAtBuffer < 0 || opts.DiscardAfter < 0 {
		return nil, fmt.Errorf("%w: negative buffer index", ErrInvalidOptions)
	}

	log.Infow("starting multishot capture", "buffers", count, "shots", shots,
		"cancel_at_buffer", opts.CancelAtBuffer, "discard_after", opts.DiscardAfter)

	if err := o.RunCamera(ctx, settings); err != nil {
		return nil, err
	}

	filled := 0
	canceled := false
	for shot := 1; shot <= shots; shot++ {
		st, err := o.monitor.GetStatus(ctx)
		if err != nil {
			return nil, fmt.Errorf("shot %d: %w", shot, err)
		}
		active := 0
		if st.ActiveBuffer != nil {
			active = *st.ActiveBuffer
		}
		log.Debugw("multishot buffer in use", "shot", shot, "active_buffer", active)

		cancel := !canceled && opts.CancelAtBuffer > 0 && active == opts.CancelAtBuffer
		if err := o.captureBuffer(ctx, shot, opts.BaseFilename, cancel); err != nil {
			return nil, err
		}

		if cancel {
			// the camera drops every unsaved buffer on cancel
			canceled = true
			filled = 0
			continue
		}
		filled++
	}

	if filled == 0 {
		final, err := o.expectRunning(ctx, "after multishot capture")
		if err != nil {
			return nil, err
		}
		log.Info("multishot capture ended without filled buffers")
		return &Result{Outcome: OutcomeCanceled, Final: final}, nil
	}

	return o.saveBuffers(ctx, filled, opts.DiscardAfter)
}

// captureBuffer runs pretrigger fill, trigger and post-trigger fill for one buffer,
// or cancels during the post-trigger fill.
func (o *Orchestrator) captureBuffer(ctx context.Context, shot int, baseFilename string, cancel bool) error {
	if _, err := o.expectRunning(ctx, fmt.Sprintf("shot %d", shot)); err != nil {
		return err
	}

	if err := o.fillPretrigger(ctx, shot); err != nil {
		return err
	}

	if err := o.TriggerCamera(ctx, baseFilename); err != nil {
		return err
	}
	o.logFillLevel(ctx)

	if cancel {
		if err := o.operation(ctx, "cancel", o.camera.Cancel); err != nil {
			return err
		}
		if err := o.settle(ctx); err != nil {
			return err
		}
		if _, err := o.expectRunning(ctx, fmt.Sprintf("shot %d canceled", shot)); err != nil {
			return err
		}
		zap.S().Named("session").Infow("multishot capture canceled during post-trigger fill", "shot", shot)
		return nil
	}

	if _, err := o.monitor.WaitForTransition(ctx, "waiting for post-trigger buffer to fill", camapi.StateTriggered, o.timeouts.PostTrigger); err != nil {
		return err
	}
	st, err := o.expect(ctx, fmt.Sprintf("shot %d filled", shot), camapi.StateRunning)
	if err != nil {
		return err
	}
	o.report(Progress{Phase: "captured", Shot: shot, State: st.State, Level: st.Level, ActiveBuffer: st.ActiveBuffer})
	return nil
}

// saveBuffers issues the aggregate save and follows it buffer by buffer.
func (o *Orchestrator) saveBuffers(ctx context.Context, expected, discardAfter int) (*Result, error) {
	log := zap.S().Named("session")

	if _, err := o.expect(ctx, "before save", camapi.StateRunning); err != nil {
		return nil, err
	}
	if err := o.operation(ctx, "save", o.camera.Save); err != nil {
		return nil, err
	}
	if err := o.settle(ctx); err != nil {
		return nil, err
	}

	interval := o.monitor.PollInterval()
videos:
	for video := 1; video <= expected; video++ {
		st, err := o.expect(ctx, fmt.Sprintf("saving video %d", video), camapi.StateSaving)
		if err != nil {
			return nil, err
		}
		if st.CapturedBuffers == nil {
			return nil, fmt.Errorf("%w: saving status carries no captured_buffers", ErrProtocolViolation)
		}
		if err := checkCaptured(st, expected); err != nil {
			return nil, err
		}

		for remaining := o.timeouts.Save; remaining > 0; remaining -= interval {
			st, err = o.monitor.GetStatus(ctx)
			if err != nil {
				return nil, err
			}
			if st.State != camapi.StateSaving {
				log.Debugw("camera left saving", "state", st.State, "video", video)
				break videos
			}

			active := 0
			if st.ActiveBuffer != nil {
				active = *st.ActiveBuffer
			}
			o.report(Progress{Phase: "saving", Shot: video, State: st.State, Level: st.Level, ActiveBuffer: st.ActiveBuffer, CapturedBuffers: st.CapturedBuffers})
			log.Debugw("saving multishot buffer", "buffer", active, "of", expected, "level", st.Level)

			// short videos may finish between two polls, so the buffer can move
			// more than one step at a time
			if discardAfter > 0 && active > discardAfter {
				return o.discard(ctx, expected, active-1)
			}
			if active > video {
				video = active - 1
				break
			}

			if err := o.sleep(ctx, interval); err != nil {
				return nil, err
			}
		}
	}

	final, err := o.expectRunning(ctx, "after save")
	if err != nil {
		return nil, err
	}
	log.Infow("multishot videos saved", "videos", expected)
	return &Result{Outcome: OutcomeSaved, Captured: expected, Saved: expected, Final: final}, nil
}

func (o *Orchestrator) discard(ctx context.Context, captured, saved int) (*Result, error) {
	zap.S().Named("session").Infow("discarding unsaved multishot buffers", "saved", saved, "captured", captured)

	if err := o.operation(ctx, "save stop", func(ctx context.Context) (camapi.OperationStatus, error) {
		return o.camera.SaveStop(ctx, true)
	}); err != nil {
		return nil, err
	}

	final, err := o.waitTruncation(ctx, o.timeouts.Discard)
	if err != nil {
		return nil, err
	}
	return &Result{Outcome: OutcomeDiscarded, Captured: captured, Saved: saved, Final: final}, nil
}
