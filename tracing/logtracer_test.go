package tracing

import (
	"bytes"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LogTracer", func() {
	var (
		buf    *bytes.Buffer
		domain *namedDomain
	)

	BeforeEach(func() {
		buf = new(bytes.Buffer)
		domain = &namedDomain{name: "manager"}
	})

	It("should log the life of a task at debug level", func() {
		logger := slog.New(slog.NewTextHandler(buf,
			&slog.HandlerOptions{Level: slog.LevelDebug}))
		CollectTrace(domain, NewLogTracer(logger))

		StartTask("1", "", domain, "transaction", "feed_forward", nil)
		AddTaskStep("1", domain, "start")
		EndTask("1", domain, "COMPLETE")

		Expect(buf.String()).To(ContainSubstring(`msg="task started" id=1`))
		Expect(buf.String()).To(ContainSubstring("where=manager"))
		Expect(buf.String()).To(ContainSubstring(`msg="task step" id=1 step=start`))
		Expect(buf.String()).To(ContainSubstring("detail=COMPLETE"))
	})

	It("should stay quiet above debug level", func() {
		logger := slog.New(slog.NewTextHandler(buf, nil))
		CollectTrace(domain, NewLogTracer(logger))

		StartTask("1", "", domain, "transaction", "feed_forward", nil)
		EndTask("1", domain, nil)

		Expect(buf.String()).To(BeEmpty())
	})
})
