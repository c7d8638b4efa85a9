package tracing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/satacmd/sim"
)

type hookedDomain struct {
	*sim.ComponentBase
}

var _ = Describe("CollectTrace", func() {
	var (
		domain *hookedDomain
		tracer *StepCountTracer
	)

	BeforeEach(func() {
		domain = &hookedDomain{ComponentBase: sim.NewComponentBase("Domain")}
		tracer = NewStepCountTracer(KindIs("command"))
	})

	It("should route task events to the tracer", func() {
		CollectTrace(domain, tracer)

		StartTask("1", "", domain, "command", "write", nil)
		AddTaskStep("1", domain, "IssueWrite")
		AddTaskStep("1", domain, "AwaitActivate")
		EndTask("1", domain)

		Expect(tracer.GetStepNames()).To(
			Equal([]string{"IssueWrite", "AwaitActivate"}))
		Expect(tracer.GetStepCount("IssueWrite")).To(Equal(uint64(1)))
	})

	It("should not attach the same tracer twice", func() {
		CollectTrace(domain, tracer)

		Expect(func() { CollectTrace(domain, tracer) }).To(Panic())
	})
})
