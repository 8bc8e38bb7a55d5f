package controller

import (
	"context"
	"sync"
)

// Strategy decides where a device operation runs once the controller has
// dispatched it.
type Strategy interface {
	Dispatch(ctx context.Context, op func(context.Context))
}

// Async runs every operation on its own goroutine and returns immediately.
// It is the default.
type Async struct{}

// Dispatch implements Strategy.
func (Async) Dispatch(ctx context.Context, op func(context.Context)) {
	go op(ctx)
}

// Blocking is the fallback for runtimes that cannot afford a goroutine per
// request. Dispatch runs the operation on the caller's goroutine and does not
// return until the device answered or the transport gave up, and operations
// dispatched through the same Blocking never overlap. Everything the caller
// would do next waits for the full request.
type Blocking struct {
	mu sync.Mutex
}

// Dispatch implements Strategy.
func (b *Blocking) Dispatch(ctx context.Context, op func(context.Context)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	op(ctx)
}
