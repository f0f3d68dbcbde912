package outbox

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	domoutbox "github.com/mercato/shopcore/internal/domain/outbox"
)

type stubEvent struct{ name string }

func (e stubEvent) EventName() string { return e.name }

func TestBusDeliversToSubscriber(t *testing.T) {
	ctx := context.Background()
	b := NewBus(zap.NewNop())

	got := make(chan domoutbox.Event, 1)
	b.Subscribe("order.created", func(_ context.Context, e domoutbox.Event) error {
		got <- e
		return nil
	})

	b.Start(ctx)
	defer b.Stop()

	if err := b.Publish(ctx, stubEvent{name: "order.created"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	select {
	case e := <-got:
		if e.EventName() != "order.created" {
			t.Errorf("event = %s, want order.created", e.EventName())
		}
	case <-time.After(2 * time.Second):
		t.Fatal("handler never received the event")
	}
}

func TestBusPublishAfterStopDoesNotPanic(t *testing.T) {
	ctx := context.Background()
	b := NewBus(zap.NewNop())
	b.Start(ctx)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = b.Publish(ctx, stubEvent{name: "payment.settled"})
			}
		}()
	}
	b.Stop()
	wg.Wait()

	// Stop is idempotent and late publishes are accepted silently.
	b.Stop()
	if err := b.Publish(ctx, stubEvent{name: "payment.settled"}); err != nil {
		t.Fatalf("Publish after Stop: %v", err)
	}
}

func TestBusPublishNilEventIsNoop(t *testing.T) {
	b := NewBus(zap.NewNop())
	if err := b.Publish(context.Background(), nil); err != nil {
		t.Fatalf("Publish(nil): %v", err)
	}
}
