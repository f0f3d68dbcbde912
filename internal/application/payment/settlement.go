package payment

import (
	"context"
	"math/rand"
	"sync"
	"time"

	domorder "github.com/mercato/shopcore/internal/domain/order"
	dompayment "github.com/mercato/shopcore/internal/domain/payment"
)

// Decider decides whether a settlement attempt is approved. The simulated
// gateway is one implementation; tests inject deterministic ones.
type Decider interface {
	Decide(ctx context.Context, o *domorder.Order, method dompayment.Method) (approved bool, err error)
}

// RandomDecider approves with a fixed probability, simulating a gateway.
type RandomDecider struct {
	mu          sync.Mutex
	random      *rand.Rand
	approveRate float64
}

func NewRandomDecider(approveRate float64) *RandomDecider {
	if approveRate < 0 || approveRate > 1 {
		approveRate = 0.9
	}
	return &RandomDecider{
		random:      rand.New(rand.NewSource(time.Now().UnixNano())),
		approveRate: approveRate,
	}
}

func (d *RandomDecider) Decide(ctx context.Context, _ *domorder.Order, _ dompayment.Method) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.random.Float64() < d.approveRate, nil
}

func (d *RandomDecider) ApproveRate() float64 { return d.approveRate }

// DeciderFunc adapts a function to the Decider interface.
type DeciderFunc func(ctx context.Context, o *domorder.Order, method dompayment.Method) (bool, error)

func (f DeciderFunc) Decide(ctx context.Context, o *domorder.Order, method dompayment.Method) (bool, error) {
	return f(ctx, o, method)
}
