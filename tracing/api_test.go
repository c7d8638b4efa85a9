package tracing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/satacmd/sim"
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

	Context("when the domain is hooked", func() {
		BeforeEach(func() {
			domain.EXPECT().NumHooks().Return(1).AnyTimes()
		})

		It("should panic if ID is not given", func() {
			domain.EXPECT().Name().Return("Domain").AnyTimes()
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
			domain.EXPECT().Name().Return("Domain").AnyTimes()
			Expect(func() {
				StartTask("id", "123", domain, "", "what", nil)
			}).Should(Panic())
		})

		It("should panic if what is empty", func() {
			domain.EXPECT().Name().Return("Domain").AnyTimes()
			Expect(func() {
				StartTask("id", "123", domain, "kind", "", nil)
			}).Should(Panic())
		})

		It("should invoke the start hook with the domain as location", func() {
			domain.EXPECT().Name().Return("Domain").AnyTimes()
			domain.EXPECT().
				InvokeHook(gomock.Any()).
				Do(func(ctx sim.HookCtx) {
					Expect(ctx.Pos).To(BeIdenticalTo(HookPosTaskStart))
					task := ctx.Item.(Task)
					Expect(task.ID).To(Equal("id"))
					Expect(task.Location).To(Equal("Domain"))
					Expect(task.What).To(Equal("read"))
				})

			StartTask("id", "", domain, "command", "read", nil)
		})

		It("should invoke the step hook", func() {
			domain.EXPECT().
				InvokeHook(gomock.Any()).
				Do(func(ctx sim.HookCtx) {
					Expect(ctx.Pos).To(BeIdenticalTo(HookPosTaskStep))
					task := ctx.Item.(Task)
					Expect(task.Steps).To(HaveLen(1))
					Expect(task.Steps[0].What).To(Equal("AwaitStatus"))
				})

			AddTaskStep("id", domain, "AwaitStatus")
		})

		It("should invoke the end hook", func() {
			domain.EXPECT().
				InvokeHook(gomock.Any()).
				Do(func(ctx sim.HookCtx) {
					Expect(ctx.Pos).To(BeIdenticalTo(HookPosTaskEnd))
					Expect(ctx.Item.(Task).ID).To(Equal("id"))
				})

			EndTask("id", domain)
		})
	})

	It("should not invoke hooks if nothing is hooked", func() {
		domain.EXPECT().NumHooks().Return(0).AnyTimes()

		StartTask("id", "", domain, "command", "read", nil)
		AddTaskStep("id", domain, "IssueRead")
		EndTask("id", domain)
	})
})
