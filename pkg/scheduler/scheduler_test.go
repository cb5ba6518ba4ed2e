package scheduler_test

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tupyy/hcam-agent/pkg/scheduler"
)

var _ = Describe("Scheduler", func() {
	var sched *scheduler.Scheduler

	BeforeEach(func() {
		sched = scheduler.NewScheduler(2)
	})

	AfterEach(func() {
		sched.Close()
	})

	It("should resolve the future with the work result", func() {
		f := sched.AddWork(func(ctx context.Context) (any, error) {
			return "done", nil
		})

		Eventually(f.IsResolved).Should(BeTrue())
		result, ok := f.Poll()
		Expect(ok).To(BeTrue())
		Expect(result.Err).NotTo(HaveOccurred())
		Expect(result.Data).To(Equal("done"))
	})

	It("should carry the work error", func() {
		f := sched.AddWork(func(ctx context.Context) (any, error) {
			return nil, errors.New("boom")
		})

		result, err := f.Wait(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Err).To(MatchError("boom"))
	})

	It("should cancel the work context when the future is stopped", func() {
		started := make(chan struct{})
		f := sched.AddWork(func(ctx context.Context) (any, error) {
			close(started)
			<-ctx.Done()
			return nil, ctx.Err()
		})

		Eventually(started).Should(BeClosed())
		f.Stop()

		Eventually(f.Done()).Should(BeClosed())
		result, _ := f.Poll()
		Expect(errors.Is(result.Err, context.Canceled)).To(BeTrue())
	})

	It("should run queued work once a worker is free", func() {
		var count atomic.Int32
		block := make(chan struct{})
		for i := 0; i < 2; i++ {
			sched.AddWork(func(ctx context.Context) (any, error) {
				<-block
				count.Add(1)
				return nil, nil
			})
		}
		f := sched.AddWork(func(ctx context.Context) (any, error) {
			count.Add(1)
			return nil, nil
		})

		Consistently(f.IsResolved, 50*time.Millisecond).Should(BeFalse())
		close(block)
		Eventually(f.IsResolved).Should(BeTrue())
		Eventually(count.Load).Should(Equal(int32(3)))
	})

	It("should recover from panicking work", func() {
		f := sched.AddWork(func(ctx context.Context) (any, error) {
			panic("bad work")
		})

		result, err := f.Wait(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Err).To(MatchError(ContainSubstring("bad work")))
	})

	It("should resolve work added after close as canceled", func() {
		sched.Close()

		f := sched.AddWork(func(ctx context.Context) (any, error) {
			return "never", nil
		})
		Expect(f.IsResolved()).To(BeTrue())
		result, _ := f.Poll()
		Expect(errors.Is(result.Err, context.Canceled)).To(BeTrue())
	})
})
