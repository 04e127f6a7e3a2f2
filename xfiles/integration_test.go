package xfiles

import (
	"context"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/xfiles/accel"
	"github.com/sarchlab/xfiles/accel/dana"
	"github.com/sarchlab/xfiles/ant"
)

var _ = Describe("Manager with DANA", func() {
	var (
		table  *ant.Table
		device *dana.Comp
		m      *Manager
		ctx    context.Context
		cancel context.CancelFunc

		cacheEntries int
	)

	build := func(latency int, tickInterval time.Duration) {
		device = dana.MakeBuilder().
			WithNumTIDs(4).
			WithNumPEs(2).
			WithCacheEntries(cacheEntries).
			WithLatency(latency).
			WithTickInterval(tickInterval).
			Build("DANA")
		m = MakeBuilder().WithAccelerator(device).Build("XFiles")

		Expect(m.SetANTP(table)).To(Succeed())
		Expect(m.SetASID(0)).To(Succeed())

		device.Start(ctx)
		DeferCleanup(device.Stop)
	}

	BeforeEach(func() {
		cacheEntries = 4

		var err error
		table, err = ant.NewTable(2, 4)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(table.Destroy)

		ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
		DeferCleanup(cancel)
	})

	Context("with a fast device", func() {
		BeforeEach(func() {
			build(2, 0)
		})

		It("should run a feed-forward transaction", func() {
			nnid, err := table.AttachArray(0,
				[]ant.Word{1, 2, 3, 4, 5, 6, 7, 8})
			Expect(err).NotTo(HaveOccurred())

			tid, err := m.NewWriteRequest(nnid, accel.FeedForward, 0)
			Expect(err).NotTo(HaveOccurred())

			Expect(m.WriteData(tid, []accel.Element{1, 1, 1, 1})).To(Succeed())

			out := make([]accel.Element, 4)
			Expect(m.ReadData(ctx, tid, out)).To(Succeed())
			Expect(out).To(Equal([]accel.Element{10, 26, 10, 26}))
			Expect(m.Transactions()).To(BeEmpty())
		})

		It("should reject a fifth attachment", func() {
			for i := 0; i < 4; i++ {
				_, err := table.AttachArray(0, []ant.Word{ant.Word(i)})
				Expect(err).NotTo(HaveOccurred())
			}

			_, err := table.AttachArray(0, []ant.Word{5})
			Expect(err).To(MatchError(ant.ErrCapacity))

			n, _ := table.NumConfigurations(0)
			Expect(n).To(Equal(4))
		})

		It("should fail to kill a TID never issued", func() {
			Expect(m.KillTransaction(0)).To(MatchError(ErrInvalidTID))
		})

		It("should fail on a garbage configuration", func() {
			nnid, err := table.AttachGarbage(0)
			Expect(err).NotTo(HaveOccurred())

			tid, err := m.NewWriteRequest(nnid, accel.FeedForward, 0)
			Expect(err).NotTo(HaveOccurred())

			err = m.WriteData(tid, []accel.Element{1})
			Expect(err).To(MatchError(ant.ErrInvalidConfiguration))
			Expect(err).To(MatchError(ErrFailed))

			err = m.ReadData(ctx, tid, make([]accel.Element, 1))
			Expect(err).To(MatchError(ErrFailed))
		})

		It("should fail to resolve an NNID never attached", func() {
			_, err := m.NewWriteRequest(2, accel.FeedForward, 0)

			Expect(err).To(MatchError(ErrResolution))
		})

		It("should start staged transactions only with their last element", func() {
			nnid, err := table.AttachArray(0, []ant.Word{1, 2, 3, 4})
			Expect(err).NotTo(HaveOccurred())

			var tids []accel.TID
			for i := 0; i < 3; i++ {
				tid, err := m.NewWriteRequest(nnid, accel.FeedForward, 0)
				Expect(err).NotTo(HaveOccurred())
				Expect(m.WriteDataExceptLast(tid,
					[]accel.Element{1, 1, 1, 1})).To(Succeed())

				tids = append(tids, tid)
			}

			Consistently(device.NumRunning).Should(BeZero())
			for _, tid := range tids {
				Expect(m.State(tid)).To(Equal(StateRequested))
			}

			for _, tid := range tids {
				Expect(m.WriteDataLast(tid,
					[]accel.Element{1, 1, 1, 1})).To(Succeed())
			}

			for _, tid := range tids {
				out := make([]accel.Element, 4)
				Expect(m.ReadData(ctx, tid, out)).To(Succeed())
				Expect(out).To(Equal([]accel.Element{10, 10, 10, 10}))
			}
		})

		It("should hand out unique TIDs to concurrent requests", func() {
			nnid, err := table.AttachArray(0, []ant.Word{1})
			Expect(err).NotTo(HaveOccurred())

			var (
				wg        sync.WaitGroup
				mu        sync.Mutex
				tids      = map[accel.TID]int{}
				exhausted int
			)

			for i := 0; i < 16; i++ {
				wg.Add(1)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()

					tid, err := m.NewWriteRequest(nnid, accel.FeedForward, 0)

					mu.Lock()
					defer mu.Unlock()

					if err != nil {
						Expect(err).To(MatchError(ErrResourceExhausted))
						exhausted++
						return
					}

					tids[tid]++
				}()
			}

			wg.Wait()

			Expect(tids).To(HaveLen(4))
			for _, n := range tids {
				Expect(n).To(Equal(1))
			}
			Expect(exhausted).To(Equal(12))
		})

		It("should learn incrementally", func() {
			nnid, err := table.AttachArray(0, []ant.Word{1})
			Expect(err).NotTo(HaveOccurred())

			tid, err := m.NewWriteRequest(nnid, accel.TrainIncremental, 1)
			Expect(err).NotTo(HaveOccurred())

			Expect(m.WriteRegister(tid, accel.RegLearningRate, 0x8000)).
				To(Succeed())
			Expect(m.WriteDataTrainIncremental(tid,
				[]accel.Element{2}, []accel.Element{10})).To(Succeed())

			out := make([]accel.Element, 1)
			Expect(m.ReadData(ctx, tid, out)).To(Succeed())
			Expect(out).To(Equal([]accel.Element{2}))

			weights, ok := device.CachedWeights(0, nnid)
			Expect(ok).To(BeTrue())
			Expect(weights).To(Equal([]int32{9}))
		})
	})

	Context("with fewer cache entries than TIDs", func() {
		BeforeEach(func() {
			cacheEntries = 1
			build(2, 0)
		})

		It("should run transactions of different NNIDs concurrently", func() {
			first, err := table.AttachArray(0, []ant.Word{1, 2, 3, 4})
			Expect(err).NotTo(HaveOccurred())
			second, err := table.AttachArray(0, []ant.Word{1, 1, 1, 1})
			Expect(err).NotTo(HaveOccurred())

			t1, err := m.NewWriteRequest(first, accel.FeedForward, 0)
			Expect(err).NotTo(HaveOccurred())
			t2, err := m.NewWriteRequest(second, accel.FeedForward, 0)
			Expect(err).NotTo(HaveOccurred())

			Expect(m.WriteData(t1, []accel.Element{1, 1, 1, 1})).To(Succeed())
			Expect(m.WriteData(t2, []accel.Element{1, 1, 1, 1})).To(Succeed())

			out1 := make([]accel.Element, 4)
			out2 := make([]accel.Element, 4)
			Expect(m.ReadData(ctx, t2, out2)).To(Succeed())
			Expect(m.ReadData(ctx, t1, out1)).To(Succeed())

			Expect(out1).To(Equal([]accel.Element{10, 10, 10, 10}))
			Expect(out2).To(Equal([]accel.Element{4, 4, 4, 4}))
		})
	})

	Context("with a slow device", func() {
		BeforeEach(func() {
			build(1<<30, time.Millisecond)
		})

		It("should unblock a reader when the transaction is killed", func() {
			nnid, err := table.AttachArray(0, []ant.Word{1, 2})
			Expect(err).NotTo(HaveOccurred())

			tid, err := m.NewWriteRequest(nnid, accel.FeedForward, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(m.WriteData(tid, []accel.Element{1, 2})).To(Succeed())

			result := make(chan error, 1)
			go func() {
				result <- m.ReadData(ctx, tid, make([]accel.Element, 2))
			}()

			Consistently(result).ShouldNot(Receive())
			Expect(m.State(tid)).To(Equal(StateRunning))

			Expect(m.KillTransaction(tid)).To(Succeed())

			var readErr error
			Eventually(result).Should(Receive(&readErr))
			Expect(readErr).To(MatchError(ErrKilled))
			Expect(device.NumRunning()).To(BeZero())

			_, err = m.State(tid)
			Expect(err).To(MatchError(ErrInvalidTID))
		})

		It("should stop waiting at the deadline", func() {
			nnid, err := table.AttachArray(0, []ant.Word{1})
			Expect(err).NotTo(HaveOccurred())

			tid, err := m.NewWriteRequest(nnid, accel.FeedForward, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(m.WriteData(tid, []accel.Element{1})).To(Succeed())

			short, stop := context.WithTimeout(ctx, 20*time.Millisecond)
			defer stop()

			err = m.ReadData(short, tid, make([]accel.Element, 1))

			Expect(err).To(MatchError(context.DeadlineExceeded))
			Expect(m.State(tid)).To(Equal(StateRunning))
		})
	})
})
