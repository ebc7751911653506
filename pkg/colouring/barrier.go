package colouring

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrBarrierStall indicates a round task failed to pass the barrier before
// the round deadline. This is surfaced as a fatal round failure: a stalled
// task means a design bug (such as an unhandled negotiation cycle), not a
// recoverable condition.
var ErrBarrierStall = errors.New("round barrier stalled")

// RoundBarrier is the single binary gate that synchronizes one concurrent
// decision round. A barrier is constructed closed, every round task registers
// to wait on it, and Open releases all waiters at once - equivalent to a
// classic cyclic barrier with a phase count of one. A new barrier is
// constructed for each round rather than reset, which keeps it free of hidden
// process-wide state and trivially testable in isolation.
type RoundBarrier struct {
	gate chan struct{}
	once sync.Once
}

// NewRoundBarrier returns a closed barrier.
func NewRoundBarrier() *RoundBarrier {
	return &RoundBarrier{gate: make(chan struct{})}
}

// Open releases every waiter at once. Safe to call more than once; calls
// after the first are no-ops.
func (b *RoundBarrier) Open() {
	b.once.Do(func() { close(b.gate) })
}

// Wait blocks until the barrier opens or the context expires. The context
// deadline is the hardening the baseline design lacks: without it a
// permanently blocked task would stall the whole round indefinitely.
func (b *RoundBarrier) Wait(ctx context.Context) error {
	// An expired deadline always stalls, even if the gate is already open:
	// the round is over either way.
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrBarrierStall, ctx.Err())
	default:
	}

	select {
	case <-b.gate:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrBarrierStall, ctx.Err())
	}
}
