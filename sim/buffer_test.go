package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"
)

var _ = Describe("Queue", func() {
	var q *Queue[int]

	BeforeEach(func() {
		q = NewQueue[int]("Buf", 2)
	})

	It("should push and pop in order", func() {
		Expect(q.Capacity()).To(Equal(2))
		Expect(q.CanPush()).To(BeTrue())

		q.Push(1)
		Expect(q.CanPush()).To(BeTrue())
		Expect(q.Size()).To(Equal(1))

		q.Push(2)
		Expect(q.CanPush()).To(BeFalse())
		Expect(q.Size()).To(Equal(2))
		Expect(func() { q.Push(3) }).To(Panic())

		e, ok := q.Peek()
		Expect(ok).To(BeTrue())
		Expect(e).To(Equal(1))

		e, _ = q.Pop()
		Expect(e).To(Equal(1))
		e, _ = q.Pop()
		Expect(e).To(Equal(2))

		_, ok = q.Pop()
		Expect(ok).To(BeFalse())
		Expect(q.Size()).To(Equal(0))
	})

	It("should keep order across the end of the ring", func() {
		var got []int

		for i := 0; i < 7; i++ {
			q.Push(i)
			if q.Size() == 2 {
				e, _ := q.Pop()
				got = append(got, e)
			}
		}

		for {
			e, ok := q.Pop()
			if !ok {
				break
			}
			got = append(got, e)
		}

		Expect(got).To(Equal([]int{0, 1, 2, 3, 4, 5, 6}))
	})

	It("should be observable as a Buffer", func() {
		var b Buffer = q
		q.Push(5)

		Expect(b.Name()).To(Equal("Buf"))
		Expect(b.Size()).To(Equal(1))
	})

	It("should invoke hooks on push and pop", func() {
		mockCtrl := gomock.NewController(GinkgoT())
		hook := NewMockHook(mockCtrl)
		q.AcceptHook(hook)

		var positions []*HookPos
		var items []interface{}
		hook.EXPECT().Func(gomock.Any()).Do(func(ctx HookCtx) {
			positions = append(positions, ctx.Pos)
			items = append(items, ctx.Item)
		}).Times(2)

		q.Push(7)
		q.Pop()
		q.Pop()

		Expect(positions).To(Equal([]*HookPos{HookPosBufPush, HookPosBufPop}))
		Expect(items).To(Equal([]interface{}{7, 7}))
	})

	It("should reject invalid names and capacities", func() {
		Expect(func() { NewQueue[int]("bad_name", 1) }).To(Panic())
		Expect(func() { NewQueue[int]("Good.", 1) }).To(Panic())
		Expect(func() { NewQueue[int]("Buf", 0) }).To(Panic())
	})
})
