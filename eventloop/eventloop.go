// Package eventloop provides a minimal serializing executor that Promise
// consumers can hand listener work off to, replacing an explicit memory
// fence at the call site with the executor's own happens-before guarantee.
package eventloop

import (
	"sync"

	"github.com/sentven/netplus/promise"
)

// Loop serializes submitted tasks onto a single worker goroutine. Promise has
// no dependency on Loop; it is Promise's consumers who route IfDone
// callbacks through Execute when they need listener work to run on a
// specific goroutine rather than on whichever goroutine happens to call Set.
type Loop interface {
	// Execute submits fn to run on this Loop's worker goroutine, in order
	// relative to other Execute calls on the same Loop. Execute itself
	// never blocks and never runs fn synchronously.
	Execute(fn func())

	// Close stops accepting new work and returns a Promise that resolves
	// once every previously-submitted task has run and the worker
	// goroutine has exited. Calling Execute after Close is a no-op.
	Close() promise.Promise[struct{}]
}

type loopImpl struct {
	mu     sync.Mutex
	queue  []func()
	cond   *sync.Cond
	closed bool
	done   promise.Promise[struct{}]
}

// New starts a Loop's worker goroutine and returns it.
func New() Loop {
	l := &loopImpl{
		done: promise.New[struct{}](),
	}
	l.cond = sync.NewCond(&l.mu)

	go l.run()

	return l
}

func (l *loopImpl) Execute(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	l.queue = append(l.queue, fn)
	l.cond.Signal()
}

func (l *loopImpl) Close() promise.Promise[struct{}] {
	l.mu.Lock()
	l.closed = true
	l.cond.Signal()
	l.mu.Unlock()

	return l.done
}

func (l *loopImpl) run() {
	for {
		l.mu.Lock()
		for len(l.queue) == 0 && !l.closed {
			l.cond.Wait()
		}

		if len(l.queue) == 0 {
			// closed, and drained
			l.mu.Unlock()
			l.done.Set(struct{}{})
			return
		}

		fn := l.queue[0]
		l.queue = l.queue[1:]
		l.mu.Unlock()

		runTask(fn)
	}
}

func runTask(fn func()) {
	defer func() {
		recover() // isolate a panicking task the same way Promise isolates listeners
	}()
	fn()
}
