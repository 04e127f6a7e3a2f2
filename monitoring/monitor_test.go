package monitoring

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/xfiles/accel"
	"github.com/sarchlab/xfiles/accel/dana"
	"github.com/sarchlab/xfiles/ant"
	"github.com/sarchlab/xfiles/xfiles"
)

var _ = Describe("Monitor", func() {
	var (
		table   *ant.Table
		device  *dana.Comp
		manager *xfiles.Manager
		m       *Monitor
		router  http.Handler
	)

	get := func(method, url string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(method, url, nil))

		return rec
	}

	BeforeEach(func() {
		var err error
		table, err = ant.NewTable(2, 4)
		Expect(err).NotTo(HaveOccurred())

		device = dana.MakeBuilder().WithNumTIDs(2).Build("DANA")
		manager = xfiles.MakeBuilder().WithAccelerator(device).Build("XFiles")
		Expect(manager.SetANTP(table)).To(Succeed())
		Expect(manager.SetASID(0)).To(Succeed())

		m = NewMonitor().WithPortNumber(0)
		m.RegisterManager(manager)
		m.RegisterComponent(device)
		router = m.Router()
	})

	It("should list the components", func() {
		rec := get(http.MethodGet, "/api/list_components")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(MatchJSON(`["XFiles","DANA"]`))
	})

	It("should report 404 for unknown components", func() {
		rec := get(http.MethodGet, "/api/component/GPU")

		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})

	It("should dump the table", func() {
		_, err := table.AttachArray(1, []ant.Word{1, 2, 3})
		Expect(err).NotTo(HaveOccurred())

		rec := get(http.MethodGet, "/api/ant")
		Expect(rec.Code).To(Equal(http.StatusOK))

		var snapshot ant.TableSnapshot
		Expect(json.Unmarshal(rec.Body.Bytes(), &snapshot)).To(Succeed())
		Expect(snapshot.Queues).To(HaveLen(2))
		Expect(snapshot.Queues[1].Entries).To(HaveLen(1))
	})

	It("should list and kill transactions", func() {
		nnid, err := table.AttachArray(0, []ant.Word{1})
		Expect(err).NotTo(HaveOccurred())

		tid, err := manager.NewWriteRequest(nnid, accel.FeedForward, 0)
		Expect(err).NotTo(HaveOccurred())

		rec := get(http.MethodGet, "/api/transactions")
		Expect(rec.Code).To(Equal(http.StatusOK))

		var txns []xfiles.TransactionInfo
		Expect(json.Unmarshal(rec.Body.Bytes(), &txns)).To(Succeed())
		Expect(txns).To(HaveLen(1))
		Expect(txns[0].State).To(Equal(xfiles.StateRequested))
		Expect(rec.Body.String()).To(ContainSubstring(`"state":"REQUESTED"`))

		rec = get(http.MethodPost, "/api/transaction/0/kill")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(manager.State(tid)).To(Equal(xfiles.StateKilled))

		rec = get(http.MethodPost, "/api/transaction/0/kill")
		Expect(rec.Code).To(Equal(http.StatusNotFound))

		rec = get(http.MethodPost, "/api/transaction/0/retire")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(get(http.MethodGet, "/api/transactions").Body.String()).
			To(MatchJSON(`[]`))
	})

	It("should reject malformed TIDs", func() {
		rec := get(http.MethodPost, "/api/transaction/abc/kill")

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("should echo through the accelerator", func() {
		rec := get(http.MethodGet, "/api/echo/0x2a")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(MatchJSON(`{"sent":42,"received":42}`))
	})

	It("should report the accelerator ID", func() {
		rec := get(http.MethodGet, "/api/id")

		Expect(rec.Code).To(Equal(http.StatusOK))

		var rsp idRsp
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp.NumTIDs).To(Equal(2))
		Expect(rsp.Version).To(Equal(dana.Version))
	})

	It("should track progress bars", func() {
		bar := m.CreateProgressBar("batch", 3)
		bar.IncrementInProgress(2)
		bar.MoveInProgressToFinished(1)

		finished, inProgress := bar.Snapshot()
		Expect(finished).To(Equal(uint64(1)))
		Expect(inProgress).To(Equal(uint64(1)))

		rec := get(http.MethodGet, "/api/progress")
		Expect(rec.Body.String()).To(ContainSubstring(`"name":"batch"`))

		m.CompleteProgressBar(bar)
		rec = get(http.MethodGet, "/api/progress")
		Expect(rec.Body.String()).To(MatchJSON(`[]`))
	})

	It("should serve the page", func() {
		rec := get(http.MethodGet, "/")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(HavePrefix("<!DOCTYPE html>"))
	})
})
