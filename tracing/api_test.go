package tracing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/xfiles/hooking"
	"go.uber.org/mock/gomock"
)

var _ = Describe("Api", func() {
	var (
		mockCtrl *gomock.Controller
		domain   *MockNamedHookable
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		domain = NewMockNamedHookable(mockCtrl)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	Context("with hooks", func() {
		BeforeEach(func() {
			domain.EXPECT().NumHooks().Return(1).AnyTimes()
		})

		It("should panic if ID is not given", func() {
			domain.EXPECT().Name().Return("domain").AnyTimes()
			Expect(func() {
				StartTask("", "123", domain, "kind", "what", nil)
			}).Should(Panic())
		})

		It("should panic if domain is nil", func() {
			Expect(func() {
				StartTask("id", "123", nil, "kind", "what", nil)
			}).Should(Panic())
		})

		It("should panic if domain's name is empty", func() {
			domain.EXPECT().Name().Return("").AnyTimes()
			Expect(func() {
				StartTask("id", "123", domain, "kind", "what", nil)
			}).Should(Panic())
		})

		It("should panic if kind is empty", func() {
			domain.EXPECT().Name().Return("domain").AnyTimes()
			Expect(func() {
				StartTask("id", "123", domain, "", "what", nil)
			}).Should(Panic())
		})

		It("should panic if what is empty", func() {
			domain.EXPECT().Name().Return("domain").AnyTimes()
			Expect(func() {
				StartTask("id", "123", domain, "kind", "", nil)
			}).Should(Panic())
		})

		It("should invoke the start hook with the task", func() {
			domain.EXPECT().Name().Return("domain").AnyTimes()
			domain.EXPECT().
				InvokeHook(gomock.Any()).
				Do(func(ctx hooking.HookCtx) {
					Expect(ctx.Pos).To(BeIdenticalTo(HookPosTaskStart))

					task := ctx.Item.(Task)
					Expect(task.ID).To(Equal("id"))
					Expect(task.ParentID).To(Equal("123"))
					Expect(task.Where).To(Equal("domain"))
					Expect(task.Detail).To(Equal(7))
				})

			StartTask("id", "123", domain, "kind", "what", 7)
		})

		It("should invoke the step hook", func() {
			domain.EXPECT().
				InvokeHook(gomock.Any()).
				Do(func(ctx hooking.HookCtx) {
					Expect(ctx.Pos).To(BeIdenticalTo(HookPosTaskStep))
					Expect(ctx.Item.(Task).Steps).To(HaveLen(1))
					Expect(ctx.Item.(Task).Steps[0].What).To(Equal("configured"))
				})

			AddTaskStep("id", domain, "configured")
		})

		It("should invoke the end hook with the detail", func() {
			domain.EXPECT().
				InvokeHook(gomock.Any()).
				Do(func(ctx hooking.HookCtx) {
					Expect(ctx.Pos).To(BeIdenticalTo(HookPosTaskEnd))
					Expect(ctx.Item.(Task).Detail).To(Equal("COMPLETE"))
				})

			EndTask("id", domain, "COMPLETE")
		})
	})

	Context("without hooks", func() {
		BeforeEach(func() {
			domain.EXPECT().NumHooks().Return(0).AnyTimes()
		})

		It("should not invoke anything", func() {
			StartTask("", "", domain, "", "", nil)
			AddTaskStep("id", domain, "step")
			EndTask("id", domain, nil)
		})
	})

	It("should not collect the same tracer twice", func() {
		base := &namedDomain{name: "domain"}
		tracer := NewAverageTimeTracer(WallClock{}, AllTasks)

		CollectTrace(base, tracer)
		Expect(base.NumHooks()).To(Equal(1))

		Expect(func() { CollectTrace(base, tracer) }).To(Panic())
	})
})

type namedDomain struct {
	hooking.HookableBase
	name string
}

func (d *namedDomain) Name() string {
	return d.name
}
