// Package controller drives the session and directory services on behalf of
// a front end (the console API or the CLI) and turns every outcome into
// notifications.
package controller

import (
	"context"
	"sync"
	"sync/atomic"
)

// Scope tracks the calls a controller has in flight. Each call acquires a
// context with Track and releases it when done; Close cancels whatever is
// still running and waits for it to release.
type Scope struct {
	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed bool
	active atomic.Int64
}

func NewScope() *Scope {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scope{ctx: ctx, cancel: cancel}
}

// Track derives a context from parent that is also cancelled when the scope
// closes. The returned release func is safe to call more than once. After
// Close, Track hands out contexts that are already cancelled.
func (s *Scope) Track(parent context.Context) (context.Context, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithCancel(parent)
	if s.closed {
		cancel()
		return ctx, func() {}
	}

	s.wg.Add(1)
	s.active.Add(1)
	stop := context.AfterFunc(s.ctx, cancel)

	var once sync.Once
	return ctx, func() {
		once.Do(func() {
			stop()
			cancel()
			s.active.Add(-1)
			s.wg.Done()
		})
	}
}

// Active reports how many calls are in flight.
func (s *Scope) Active() int {
	return int(s.active.Load())
}

// Close cancels in-flight calls and waits for them to release. Idempotent.
func (s *Scope) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}
