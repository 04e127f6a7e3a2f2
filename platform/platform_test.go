package platform_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/xfiles/accel"
	"github.com/sarchlab/xfiles/ant"
	"github.com/sarchlab/xfiles/config"

	"github.com/sarchlab/xfiles/platform"
	"github.com/sarchlab/xfiles/tracing"
	"github.com/sarchlab/xfiles/xfiles"
)

var _ = Describe("Platform", func() {
	var (
		ctx context.Context
	)

	BeforeEach(func() {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
		DeferCleanup(cancel)
	})

	runOne := func(p *platform.Platform) []accel.Element {
		nnid, err := p.Table().AttachArray(0, []ant.Word{1, 2, 3, 4, 5, 6, 7, 8})
		Expect(err).NotTo(HaveOccurred())

		m := p.Manager()
		tid, err := m.NewWriteRequest(nnid, accel.FeedForward, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(m.WriteData(tid, []accel.Element{1, 1, 1, 1})).To(Succeed())

		out := make([]accel.Element, 4)
		Expect(m.ReadData(ctx, tid, out)).To(Succeed())

		return out
	}

	It("should reject an invalid configuration", func() {
		cfg := config.Default()
		cfg.NumTIDs = 0

		_, err := platform.MakeBuilder().WithConfig(cfg).Build()

		Expect(err).To(MatchError(config.ErrInvalid))
	})

	It("should run a transaction end to end", func() {
		p, err := platform.MakeBuilder().WithoutMonitoring().Build()
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(p.Terminate)

		p.Start(ctx)

		Expect(runOne(p)).To(Equal([]accel.Element{10, 26, 10, 26}))

		_, count := p.AverageLatency()
		Expect(count).To(Equal(uint64(1)))

		names, counts := p.StepCounts()
		Expect(names).To(ContainElement("done"))
		Expect(counts).To(HaveLen(len(names)))
		Expect(p.DataRecorder()).To(BeNil())
		Expect(p.Monitor()).To(BeNil())
	})

	It("should record the trace", func() {
		path := filepath.Join(GinkgoT().TempDir(), "trace")

		p, err := platform.MakeBuilder().
			WithoutMonitoring().
			WithRecording(path).
			Build()
		Expect(err).NotTo(HaveOccurred())

		p.Start(ctx)
		runOne(p)
		p.Terminate()
		p.Terminate()

		reader, err := tracing.OpenTrace(path + ".sqlite3")
		Expect(err).NotTo(HaveOccurred())
		defer reader.Close()

		tasks, total, err := reader.ListTasks(ctx,
			tracing.TaskQuery{Kind: xfiles.TaskKind})
		Expect(err).NotTo(HaveOccurred())
		Expect(total).To(Equal(1))
		Expect(tasks[0].Result).To(Equal("COMPLETE"))
		Expect(tasks[0].Location).To(Equal("XFiles"))

		attachments, err := reader.ListAttachments(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(attachments).To(HaveLen(1))
	})

	It("should serve the monitor", func() {
		cfg := config.Default()
		cfg.Monitor = true

		p, err := platform.MakeBuilder().WithConfig(cfg).Build()
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(p.Terminate)

		Expect(p.MonitorPort()).NotTo(BeZero())

		rsp, err := http.Get(fmt.Sprintf("http://localhost:%d/api/id", p.MonitorPort()))
		Expect(err).NotTo(HaveOccurred())
		defer rsp.Body.Close()

		Expect(rsp.StatusCode).To(Equal(http.StatusOK))
	})

	It("should serve the recorded trace on the monitor", func() {
		cfg := config.Default()
		cfg.Monitor = true
		cfg.Record = filepath.Join(GinkgoT().TempDir(), "trace")

		p, err := platform.MakeBuilder().WithConfig(cfg).Build()
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(p.Terminate)

		p.Start(ctx)
		runOne(p)

		rsp, err := http.Get(fmt.Sprintf(
			"http://localhost:%d/api/trace?kind=%s", p.MonitorPort(), xfiles.TaskKind))
		Expect(err).NotTo(HaveOccurred())
		defer rsp.Body.Close()

		Expect(rsp.StatusCode).To(Equal(http.StatusOK))

		var page struct {
			Total int `json:"total"`
		}
		Expect(json.NewDecoder(rsp.Body).Decode(&page)).To(Succeed())
		Expect(page.Total).To(Equal(1))
	})
})
