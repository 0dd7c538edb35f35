package receipt

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Notifier", func() {
	var notifier *Notifier

	BeforeEach(func() {
		notifier = NewNotifier()
	})

	It("delivers one signal per publish to every current subscriber", func() {
		a, b := 0, 0
		subA := notifier.Subscribe(func() { a++ })
		subB := notifier.Subscribe(func() { b++ })
		defer subA.Cancel()
		defer subB.Cancel()

		notifier.Publish()
		notifier.Publish()

		Expect(a).To(Equal(2))
		Expect(b).To(Equal(2))
	})

	It("delivers in subscription order", func() {
		var order []string
		subA := notifier.Subscribe(func() { order = append(order, "a") })
		subB := notifier.Subscribe(func() { order = append(order, "b") })
		subC := notifier.Subscribe(func() { order = append(order, "c") })
		defer subA.Cancel()
		defer subB.Cancel()
		defer subC.Cancel()

		notifier.Publish()

		Expect(order).To(Equal([]string{"a", "b", "c"}))
	})

	It("does not deliver to a subscriber added after the publish", func() {
		notifier.Publish()

		called := false
		sub := notifier.Subscribe(func() { called = true })
		defer sub.Cancel()

		Expect(called).To(BeFalse())
	})

	It("does not deliver to a cancelled subscriber", func() {
		called := false
		sub := notifier.Subscribe(func() { called = true })
		sub.Cancel()

		notifier.Publish()

		Expect(called).To(BeFalse())
	})

	It("lets a handler subscribe during a publish without joining it", func() {
		lateCalled := 0
		sub := notifier.Subscribe(func() {
			late := notifier.Subscribe(func() { lateCalled++ })
			DeferCleanup(func() { late.Cancel() })
		})
		defer sub.Cancel()

		notifier.Publish()

		// The handler added mid-publish must not see the in-flight signal.
		Expect(lateCalled).To(BeZero())
	})

	It("keeps an in-flight publish intact when a handler cancels another", func() {
		var subB *Subscription
		bCalled := 0
		subA := notifier.Subscribe(func() { subB.Cancel() })
		subB = notifier.Subscribe(func() { bCalled++ })
		defer subA.Cancel()

		notifier.Publish()

		// B was subscribed at the moment Publish ran, so it still fires.
		Expect(bCalled).To(Equal(1))

		notifier.Publish()
		Expect(bCalled).To(Equal(1))
	})

	It("tolerates double cancellation", func() {
		sub := notifier.Subscribe(func() {})
		sub.Cancel()
		Expect(func() { sub.Cancel() }).NotTo(Panic())
	})
})
