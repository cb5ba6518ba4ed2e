package services_test

import (
	"context"
	"errors"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tupyy/hcam-agent/internal/services"
	"github.com/tupyy/hcam-agent/pkg/camapi"
	"github.com/tupyy/hcam-agent/pkg/scheduler"
)

type fakeDescriber struct {
	mu    sync.Mutex
	state camapi.CameraState
	err   error
	calls int
}

func (f *fakeDescriber) DescribeStatus(ctx context.Context) (*camapi.CamStatus, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.err != nil {
		return nil, "", f.err
	}
	st := &camapi.CamStatus{State: f.state}
	return st, camapi.FormatStatus(st, 0), nil
}

func (f *fakeDescriber) set(state camapi.CameraState, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = state
	f.err = err
}

func (f *fakeDescriber) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

var _ = Describe("Camera Watcher", func() {
	var (
		sched     *scheduler.Scheduler
		describer *fakeDescriber
		watcher   *services.CameraWatcher
	)

	BeforeEach(func() {
		sched = scheduler.NewScheduler(1)
		describer = &fakeDescriber{state: camapi.StateCalibrating}
		watcher = services.NewCameraWatcher(20*time.Millisecond, sched, describer)
	})

	AfterEach(func() {
		watcher.Stop()
		sched.Close()
	})

	It("should have no status before it is started", func() {
		Consistently(watcher.Last, 60*time.Millisecond).Should(BeNil())
		Expect(describer.Calls()).To(BeZero())
	})

	It("should record the last status", func() {
		watcher.Start()

		Eventually(func() camapi.CameraState {
			last := watcher.Last()
			if last == nil || last.Status == nil {
				return 0
			}
			return last.Status.State
		}).Should(Equal(camapi.StateCalibrating))

		describer.set(camapi.StateRunning, nil)
		Eventually(func() string {
			last := watcher.Last()
			if last == nil {
				return ""
			}
			return last.Text
		}).Should(HavePrefix("State: Running;"))
	})

	It("should record poll failures", func() {
		describer.set(0, errors.New("connection refused"))
		watcher.Start()

		Eventually(func() error {
			last := watcher.Last()
			if last == nil {
				return nil
			}
			return last.Error
		}).Should(MatchError("connection refused"))
	})

	It("should stop polling once stopped", func() {
		watcher.Start()
		Eventually(describer.Calls).Should(BeNumerically(">=", 2))

		watcher.Stop()
		calls := describer.Calls()
		Consistently(describer.Calls, 100*time.Millisecond).Should(BeNumerically("<=", calls+1))
	})

	It("should ignore a second start", func() {
		watcher.Start()
		watcher.Start()
		Eventually(watcher.Last).ShouldNot(BeNil())
	})
})
