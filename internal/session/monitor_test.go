package session_test

import (
	"context"
	"errors"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tupyy/hcam-agent/internal/session"
	"github.com/tupyy/hcam-agent/pkg/camapi"
)

// scriptedReader returns the scripted states in order and repeats the last one.
type scriptedReader struct {
	mu     sync.Mutex
	states []camapi.CameraState
	reads  int
	err    error
}

func (r *scriptedReader) GetCamStatus(ctx context.Context) (*camapi.CamStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return nil, r.err
	}
	idx := min(r.reads, len(r.states)-1)
	r.reads++
	return &camapi.CamStatus{State: r.states[idx]}, nil
}

func (r *scriptedReader) Reads() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reads
}

type sleepRecorder struct {
	mu    sync.Mutex
	total time.Duration
	count int
}

func (s *sleepRecorder) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total += d
	s.count++
	return nil
}

var _ = Describe("Monitor", func() {
	var (
		ctx     context.Context
		reader  *scriptedReader
		sleeper *sleepRecorder
		monitor *session.Monitor
	)

	newMonitor := func(states ...camapi.CameraState) {
		reader = &scriptedReader{states: states}
		monitor = session.NewMonitor(reader, session.WithSleep(sleeper.Sleep))
	}

	BeforeEach(func() {
		ctx = context.Background()
		sleeper = &sleepRecorder{}
	})

	Describe("CheckState", func() {
		It("should compare the fresh state", func() {
			newMonitor(camapi.StateRunning, camapi.StateTriggered)

			ok, err := monitor.CheckState(ctx, camapi.StateRunning)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())

			ok, err = monitor.CheckState(ctx, camapi.StateRunning)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		})
	})

	Describe("WaitForTransition", func() {
		It("should stop after the timeout and report the current state", func() {
			newMonitor(camapi.StateRunning)

			st, err := monitor.WaitForTransition(ctx, "waiting", camapi.StateRunning, 5*time.Second)
			Expect(err).NotTo(HaveOccurred())
			Expect(st.State).To(Equal(camapi.StateRunning))
			Expect(reader.Reads()).To(Equal(6))
			Expect(sleeper.total).To(Equal(5 * time.Second))
		})

		It("should not poll with a zero timeout", func() {
			newMonitor(camapi.StateRunning)

			st, err := monitor.WaitForTransition(ctx, "waiting", camapi.StateRunning, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(st.State).To(Equal(camapi.StateRunning))
			Expect(reader.Reads()).To(Equal(1))
			Expect(sleeper.count).To(BeZero())
		})

		It("should return as soon as the state changes", func() {
			newMonitor(camapi.StateRunning, camapi.StateRunning, camapi.StateRunningPretriggerFull)

			st, err := monitor.WaitForTransition(ctx, "waiting", camapi.StateRunning, 10*time.Second)
			Expect(err).NotTo(HaveOccurred())
			Expect(st.State).To(Equal(camapi.StateRunningPretriggerFull))
			Expect(reader.Reads()).To(Equal(4))
			Expect(sleeper.count).To(Equal(2))
		})

		It("should report a state reached after the last check", func() {
			newMonitor(camapi.StateSaving, camapi.StateSaving, camapi.StateRunning)

			st, err := monitor.WaitForTransition(ctx, "waiting", camapi.StateSaving, 2*time.Second)
			Expect(err).NotTo(HaveOccurred())
			Expect(st.State).To(Equal(camapi.StateRunning))
			Expect(reader.Reads()).To(Equal(3))
		})

		It("should stay within timeout+1 polls for any timeout", func() {
			for _, seconds := range []int{1, 3, 10, 30} {
				newMonitor(camapi.StateTriggered)
				_, err := monitor.WaitForTransition(ctx, "waiting", camapi.StateTriggered, time.Duration(seconds)*time.Second)
				Expect(err).NotTo(HaveOccurred())
				Expect(reader.Reads()).To(BeNumerically("<=", seconds+1))
			}
		})

		It("should propagate read failures", func() {
			newMonitor(camapi.StateRunning)
			reader.err = errors.New("connection refused")

			_, err := monitor.WaitForTransition(ctx, "waiting", camapi.StateRunning, 3*time.Second)
			Expect(err).To(MatchError("connection refused"))
		})

		It("should stop when the context is cancelled", func() {
			newMonitor(camapi.StateRunning)
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			_, err := monitor.WaitForTransition(cctx, "waiting", camapi.StateRunning, 3*time.Second)
			Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		})
	})

	Describe("ExpectState", func() {
		It("should accept the anticipated state", func() {
			newMonitor(camapi.StateTriggered)

			st, err := monitor.ExpectState(ctx, camapi.StateTriggered)
			Expect(err).NotTo(HaveOccurred())
			Expect(st.State).To(Equal(camapi.StateTriggered))
		})

		It("should fail on the first mismatching read without retrying", func() {
			newMonitor(camapi.StateRunning, camapi.StateTriggered)

			_, err := monitor.ExpectState(ctx, camapi.StateTriggered)
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, session.ErrProtocolViolation)).To(BeTrue())

			var stateErr *session.StateError
			Expect(errors.As(err, &stateErr)).To(BeTrue())
			Expect(stateErr.Actual).To(Equal(camapi.StateRunning))
			Expect(reader.Reads()).To(Equal(1))
			Expect(sleeper.count).To(BeZero())
		})
	})

	Describe("ExpectRunningState", func() {
		It("should accept both running variants", func() {
			newMonitor(camapi.StateRunning)
			_, err := monitor.ExpectRunningState(ctx)
			Expect(err).NotTo(HaveOccurred())

			newMonitor(camapi.StateRunningPretriggerFull)
			_, err = monitor.ExpectRunningState(ctx)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should tolerate four polls of calibration", func() {
			newMonitor(camapi.StateCalibrating, camapi.StateCalibrating, camapi.StateCalibrating, camapi.StateCalibrating, camapi.StateRunning)

			st, err := monitor.ExpectRunningState(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(st.State).To(Equal(camapi.StateRunning))
			Expect(sleeper.total).To(Equal(4 * time.Second))
		})

		It("should fail when calibration lasts longer", func() {
			newMonitor(camapi.StateCalibrating, camapi.StateCalibrating, camapi.StateCalibrating, camapi.StateCalibrating, camapi.StateCalibrating, camapi.StateRunning)

			_, err := monitor.ExpectRunningState(ctx)
			var stateErr *session.StateError
			Expect(errors.As(err, &stateErr)).To(BeTrue())
			Expect(stateErr.Actual).To(Equal(camapi.StateCalibrating))
			Expect(reader.Reads()).To(Equal(5))
		})

		It("should fail immediately on other states", func() {
			newMonitor(camapi.StateSaving)

			_, err := monitor.ExpectRunningState(ctx)
			Expect(errors.Is(err, session.ErrProtocolViolation)).To(BeTrue())
			Expect(reader.Reads()).To(Equal(1))
		})
	})
})
