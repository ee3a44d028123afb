// Package future provides a context-aware single-assignment result,
// built on top of promise.Promise. Where promise.Promise blocks
// unconditionally (Wait/WaitFor), Future additionally races against a
// context, which is the shape most of this module's ctx-first call sites
// actually want.
package future

import (
	"context"
	"sync"

	"github.com/sentven/netplus/promise"
)

// Future represents some future result.
type Future[T any] interface {
	// Wait for the future to resolve. Returns the context cause if it's canceled.
	Wait(ctx context.Context) (T, error)

	// Sync checks the future's result immediately, returning false if not yet available.
	Sync() (T, error, bool)
}

type result[T any] struct {
	v   T
	err error
}

type futureImpl[T any] struct {
	p promise.Promise[result[T]]
}

func (f *futureImpl[T]) Wait(ctx context.Context) (res T, err error) {
	err = context.Cause(ctx)
	if err != nil {
		// reminder to self: select {} chooses a random choice, have to do this first
		return
	}

	done := make(chan struct{})
	f.p.IfDone(func(result[T]) { close(done) })

	select {
	case <-ctx.Done():
		return res, context.Cause(ctx)
	case <-done:
	}

	r := f.p.Get()
	return r.v, r.err
}

func (f *futureImpl[T]) Sync() (res T, err error, ok bool) {
	if !f.p.IsDone() {
		return
	}
	r := f.p.Get()
	return r.v, r.err, true
}

// New creates a new resolvable future. Additional calls to resolve after the
// first are ignored - unlike promise.Promise.Set, resolve does not panic on
// a second call, since Future predates that stricter rule and callers still
// rely on the quieter behavior here.
func New[T any]() (Future[T], func(result T, err error)) {
	p := promise.New[result[T]]()

	f := &futureImpl[T]{p: p}

	var once sync.Once
	resolve := func(v T, err error) {
		once.Do(func() {
			p.Set(result[T]{v: v, err: err})
		})
	}

	return f, resolve
}
