package netconn

import (
	"container/list"
	"sync"

	"github.com/sentven/netplus/promise"
)

// InFlight tracks requests sent on a connection that haven't yet received a
// response, strictly FIFO: Push enqueues at the back, Resolve always
// completes the oldest outstanding entry.
//
// This resolves the Open Question in promise.hpp's collaborator (see
// SPEC_FULL.md section 9): an implementation that pops from the back of
// this kind of queue only works because, historically, at most one request
// was ever in flight at a time. Building it on container/list with strict
// front-removal from the start means enabling pipelining (more than one
// outstanding request) is never a silent correctness regression here.
type InFlight[V any] struct {
	mu      sync.Mutex
	pending *list.List
}

// NewInFlight creates an empty InFlight tracker.
func NewInFlight[V any]() *InFlight[V] {
	return &InFlight[V]{pending: list.New()}
}

// Push enqueues a new outstanding request and returns the Promise that will
// resolve when the matching response is handed to Resolve.
func (f *InFlight[V]) Push() promise.Promise[V] {
	p := promise.New[V]()

	f.mu.Lock()
	f.pending.PushBack(p)
	f.mu.Unlock()

	return p
}

// Resolve completes the oldest outstanding Promise with v. Returns false if
// there was nothing outstanding.
func (f *InFlight[V]) Resolve(v V) (ok bool) {
	f.mu.Lock()
	front := f.pending.Front()
	if front == nil {
		f.mu.Unlock()
		return false
	}
	f.pending.Remove(front)
	f.mu.Unlock()

	front.Value.(promise.Promise[V]).Set(v)
	return true
}

// CancelAll cancels every outstanding Promise, e.g. when the underlying
// connection has failed and no further responses will ever arrive.
func (f *InFlight[V]) CancelAll() {
	f.mu.Lock()
	pending := f.pending
	f.pending = list.New()
	f.mu.Unlock()

	for e := pending.Front(); e != nil; e = e.Next() {
		e.Value.(promise.Promise[V]).Cancel()
	}
}

// Len reports the number of outstanding requests.
func (f *InFlight[V]) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending.Len()
}
