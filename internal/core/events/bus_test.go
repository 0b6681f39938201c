package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

func TestEvents(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Event Bus Suite")
}

var _ = ginkgo.Describe("EventBus", func() {
	var bus *EventBus

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ginkgo.BeforeEach(func() {
		bus = NewEventBus(logger)
	})

	ginkgo.It("runs sync handlers before PublishSync returns", func() {
		var calls int32
		bus.Subscribe(TenantDeactivatedEvent, func(_ context.Context, _ Event) error {
			atomic.AddInt32(&calls, 1)
			return nil
		})
		bus.Subscribe(TenantDeactivatedEvent, func(_ context.Context, _ Event) error {
			atomic.AddInt32(&calls, 1)
			return nil
		})

		err := bus.PublishSync(context.Background(), NewTenantDeactivatedEvent("t-1"))

		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(atomic.LoadInt32(&calls)).To(gomega.Equal(int32(2)))
	})

	ginkgo.It("surfaces the first sync handler failure", func() {
		boom := errors.New("evict failed")
		bus.Subscribe(TenantCredentialsRotatedEvent, func(_ context.Context, _ Event) error {
			return boom
		})

		err := bus.PublishSync(context.Background(), NewTenantCredentialsRotatedEvent("t-1"))

		gomega.Expect(err).To(gomega.MatchError(boom))
	})

	ginkgo.It("eventually delivers async events", func() {
		done := make(chan Event, 1)
		bus.Subscribe(TenantCreatedEvent, func(_ context.Context, e Event) error {
			done <- e
			return nil
		})

		err := bus.Publish(context.Background(), NewTenantCreatedEvent("t-1", "greenvalley"))
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		var received Event
		gomega.Eventually(done).Should(gomega.Receive(&received))
		id, ok := TenantID(received)
		gomega.Expect(ok).To(gomega.BeTrue())
		gomega.Expect(id).To(gomega.Equal("t-1"))
	})

	ginkgo.It("accepts events with no subscribers", func() {
		gomega.Expect(bus.Publish(context.Background(), NewTenantCreatedEvent("t-1", "s"))).To(gomega.Succeed())
		gomega.Expect(bus.PublishSync(context.Background(), NewTenantDeactivatedEvent("t-1"))).To(gomega.Succeed())
	})
})
