package tracing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("StepCountTracer", func() {
	var tracer *StepCountTracer

	BeforeEach(func() {
		tracer = NewStepCountTracer(KindIs("command"))
	})

	step := func(id, what string) Task {
		return Task{ID: id, Steps: []TaskStep{{What: what}}}
	}

	It("should count steps and tasks", func() {
		tracer.StartTask(Task{ID: "1", Kind: "command"})
		tracer.StartTask(Task{ID: "2", Kind: "command"})

		tracer.StepTask(step("1", "AwaitDataDone"))
		tracer.StepTask(step("1", "AwaitDataDone"))
		tracer.StepTask(step("2", "AwaitDataDone"))

		Expect(tracer.GetStepCount("AwaitDataDone")).To(Equal(uint64(3)))
		Expect(tracer.GetTaskCount("AwaitDataDone")).To(Equal(uint64(2)))
	})

	It("should not count steps after the task ends", func() {
		tracer.StartTask(Task{ID: "1", Kind: "command"})
		tracer.EndTask(Task{ID: "1"})

		tracer.StepTask(step("1", "Idle"))

		Expect(tracer.GetStepNames()).To(BeEmpty())
	})
})
