// Package outbox provides an in-memory event bus. It is not durable; a
// production deployment points the publisher at Kafka instead and keeps
// this bus for single-process setups and tests.
package outbox

import (
	"context"
	"runtime/debug"
	"sync"
	"time"

	"go.uber.org/zap"

	domoutbox "github.com/mercato/shopcore/internal/domain/outbox"
	"github.com/mercato/shopcore/internal/pkg/logging"
)

const handlerTimeout = 30 * time.Second

// Bus fans events out to subscribed handlers from a single dispatch
// goroutine. Publish never blocks longer than the caller's context allows.
type Bus struct {
	mu        sync.RWMutex
	subs      map[string][]domoutbox.Handler
	queue     chan domoutbox.Event
	startOnce sync.Once
	stopOnce  sync.Once
	cancel    context.CancelFunc
	logger    *zap.Logger
}

func NewBus(logger *zap.Logger) *Bus {
	return &Bus{
		subs:   make(map[string][]domoutbox.Handler),
		queue:  make(chan domoutbox.Event, 1024),
		logger: logger.With(zap.String("component", "outbox")),
	}
}

func (b *Bus) Subscribe(eventName string, h domoutbox.Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[eventName] = append(b.subs[eventName], h)
}

func (b *Bus) Start(ctx context.Context) {
	b.startOnce.Do(func() {
		bg, cancel := context.WithCancel(context.WithoutCancel(ctx))
		b.cancel = cancel
		go b.dispatchLoop(bg)
		b.logger.Info("event bus started")
	})
}

// Stop halts dispatching. The queue channel stays open so a concurrent
// Publish can never hit a closed channel; events enqueued after Stop are
// simply never dispatched.
func (b *Bus) Stop() {
	b.stopOnce.Do(func() {
		if b.cancel != nil {
			b.cancel()
		}
		b.logger.Info("event bus stopped")
	})
}

func (b *Bus) Publish(ctx context.Context, e domoutbox.Event) error {
	if e == nil {
		return nil
	}
	select {
	case b.queue <- e:
		logging.FromContext(ctx).Debug("event enqueued",
			zap.String("event", e.EventName()))
		return nil
	case <-ctx.Done():
		logging.FromContext(ctx).Warn("event enqueue aborted",
			zap.String("event", e.EventName()),
			zap.Error(ctx.Err()))
		return ctx.Err()
	}
}

func (b *Bus) dispatchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-b.queue:
			b.fanout(ctx, e)
		}
	}
}

func (b *Bus) fanout(ctx context.Context, e domoutbox.Event) {
	name := e.EventName()

	b.mu.RLock()
	handlers := append([]domoutbox.Handler(nil), b.subs[name]...)
	b.mu.RUnlock()

	if len(handlers) == 0 {
		b.logger.Debug("event dropped, no subscriber", zap.String("event", name))
		return
	}

	var wg sync.WaitGroup
	for _, h := range handlers {
		wg.Add(1)
		go func() {
			defer func() {
				if r := recover(); r != nil {
					b.logger.Error("event handler panic",
						zap.String("event", name),
						zap.Any("panic", r),
						zap.ByteString("stack", debug.Stack()))
				}
				wg.Done()
			}()

			hctx, cancel := context.WithTimeout(ctx, handlerTimeout)
			defer cancel()
			if err := h(hctx, e); err != nil {
				b.logger.Warn("event handler error",
					zap.String("event", name),
					zap.Error(err))
			}
		}()
	}
	wg.Wait()
}
