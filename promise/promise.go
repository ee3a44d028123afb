// Package promise provides a single-assignment result cell with blocking
// waiters, completion listeners, and cancellation.
//
// A Promise is created in an idle state, travels to done (via Set) or
// cancelled (via Cancel) exactly once, and stays there. Any number of
// goroutines may block on it (Wait, WaitFor, Get), or register a listener
// (IfDone) that fires once the terminal state is reached - immediately, and
// synchronously, if it already has been.
//
// Promise is the foundational primitive of this module: every async path
// (dials, closes, requests, timers) hands callers a Promise rather than a
// raw channel, so that cancellation, late registration, and ordered listener
// dispatch are all handled the same way everywhere.
package promise

import (
	"sync"
	"sync/atomic"
	"time"
)

type state uint32

const (
	stateIdle state = iota
	stateDone
	stateCancelled
)

// Promise is a single-assignment result cell. See the package doc for the
// full contract.
type Promise[V any] interface {
	// Set stores v and transitions this Promise to done, waking any blocked
	// waiters and invoking any registered listeners with v, in registration
	// order. It panics if called more than once (including after Cancel).
	Set(v V)

	// Cancel transitions this Promise to cancelled, waking any blocked
	// waiters and invoking any registered listeners with the zero V.
	// Returns true if this call performed the transition, false if the
	// Promise was already done or cancelled.
	Cancel() (ok bool)

	// Get blocks until this Promise is done or cancelled, then returns the
	// value (the zero V if cancelled).
	Get() V

	// GetTimeout blocks until this Promise is done or cancelled, or until d
	// elapses, whichever is first. The returned value is only meaningful if
	// IsDone or IsCancelled is true; on timeout it returns the zero V.
	GetTimeout(d time.Duration) V

	// Wait blocks until this Promise is done or cancelled.
	Wait()

	// WaitFor blocks until this Promise is done or cancelled, or until d
	// elapses. The deadline is fixed at entry and is not extended by
	// spurious wakes.
	WaitFor(d time.Duration)

	// IfDone registers cb to be invoked with the eventual value. If this
	// Promise is already terminal, cb runs synchronously before IfDone
	// returns. Otherwise cb runs later, under the lock that Set/Cancel
	// holds while draining listeners - so it must be fast and
	// non-blocking, or must hand off to an executor (see package
	// eventloop).
	IfDone(cb func(V))

	// IsIdle reports whether this Promise has not yet reached a terminal
	// state.
	IsIdle() bool

	// IsDone reports whether Set won the race to a terminal state.
	IsDone() bool

	// IsCancelled reports whether Cancel won the race to a terminal state.
	IsCancelled() bool
}

// promiseImpl is the concrete implementation of Promise[V].
//
// state is read with Load (acquire) and written with CompareAndSwap
// (sequentially consistent, the strongest ordering sync/atomic offers, which
// satisfies the acquire-release pairing this design needs). value is only
// written once, before state is published as done/cancelled; any goroutine
// that observes state != stateIdle via Load may read value without further
// synchronization.
type promiseImpl[V any] struct {
	st    atomic.Uint32
	value V

	mu       sync.Mutex
	cond     *sync.Cond
	waiters  int
	listener listenerList[V]
}

// New creates a new idle Promise.
func New[V any]() Promise[V] {
	p := &promiseImpl[V]{}
	p.cond = sync.NewCond(&p.mu)
	return p
}

func (p *promiseImpl[V]) state() state {
	return state(p.st.Load())
}

func (p *promiseImpl[V]) Set(v V) {
	if !p.st.CompareAndSwap(uint32(stateIdle), uint32(stateDone)) {
		panic("promise: set called twice")
	}

	p.value = v

	p.mu.Lock()
	p.listener.invoke(v)
	if p.waiters > 0 {
		p.cond.Broadcast()
	}
	p.mu.Unlock()
}

func (p *promiseImpl[V]) Cancel() (ok bool) {
	if !p.st.CompareAndSwap(uint32(stateIdle), uint32(stateCancelled)) {
		return false
	}

	var zero V

	p.mu.Lock()
	p.listener.invoke(zero)
	if p.waiters > 0 {
		p.cond.Broadcast()
	}
	p.mu.Unlock()

	return true
}

func (p *promiseImpl[V]) Get() V {
	p.Wait()
	return p.value
}

func (p *promiseImpl[V]) GetTimeout(d time.Duration) V {
	p.WaitFor(d)
	return p.value
}

func (p *promiseImpl[V]) Wait() {
	for p.state() == stateIdle {
		p.mu.Lock()
		if p.state() == stateIdle {
			p.waiters++
			p.cond.Wait()
			p.waiters--
		}
		p.mu.Unlock()
	}
}

func (p *promiseImpl[V]) WaitFor(d time.Duration) {
	if p.state() != stateIdle {
		return
	}

	deadline := time.Now().Add(d)

	p.mu.Lock()
	defer p.mu.Unlock()

	for p.state() == stateIdle {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return
		}

		// sync.Cond has no timed wait; a timer broadcasts this Promise's
		// own cond once remaining has elapsed, waking this (and any other)
		// waiter so the deadline can be rechecked. The timer takes mu so
		// its broadcast cannot land before this waiter is parked in Wait.
		t := time.AfterFunc(remaining, func() {
			p.mu.Lock()
			p.cond.Broadcast()
			p.mu.Unlock()
		})

		p.waiters++
		p.cond.Wait()
		p.waiters--

		t.Stop()
	}
}

func (p *promiseImpl[V]) IfDone(cb func(V)) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.listener.bind(cb)
	if p.state() != stateIdle {
		p.listener.invoke(p.value)
	}
}

func (p *promiseImpl[V]) IsIdle() bool {
	return p.state() == stateIdle
}

func (p *promiseImpl[V]) IsDone() bool {
	return p.state() == stateDone
}

func (p *promiseImpl[V]) IsCancelled() bool {
	return p.state() == stateCancelled
}
