// Package pipeline composes promise-returning handler stages. This is the
// "composition combinator" the promise package itself deliberately omits
// (see its package doc) - pipeline is where that user concern lives instead.
package pipeline

import (
	"context"

	"github.com/sentven/netplus/promise"
)

// Stage transforms an In into an Out, asynchronously. Grounded on the
// teacher's transport.CallServer/call.activeSession handler-chaining shape,
// adapted from a multi-shot queue handoff to a single-shot promise handoff.
type Stage[In, Out any] func(ctx context.Context, in In) promise.Promise[Out]

// Chain composes two stages into one: the composed Promise resolves once
// second has resolved on first's output. If first's Promise is cancelled,
// the composed Promise is cancelled too, and second is never invoked.
func Chain[A, B, C any](first Stage[A, B], second Stage[B, C]) Stage[A, C] {
	return func(ctx context.Context, in A) promise.Promise[C] {
		out := promise.New[C]()

		firstPromise := first(ctx, in)
		firstPromise.IfDone(func(b B) {
			if firstPromise.IsCancelled() {
				out.Cancel()
				return
			}

			secondPromise := second(ctx, b)
			secondPromise.IfDone(func(c C) {
				if secondPromise.IsCancelled() {
					out.Cancel()
					return
				}
				out.Set(c)
			})
		})

		return out
	}
}
