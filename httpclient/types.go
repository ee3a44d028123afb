// Package httpclient issues HTTP requests over a netconn.Dialer, resolving
// each as a promise.Promise[Result] rather than a blocking Do call - the
// same convention promise-returning operations use throughout this module.
package httpclient

import (
	"context"
	"net/http"

	"github.com/sentven/netplus/promise"
)

// Result carries the outcome of a single request. As with netconn.Result,
// a transport-level failure is reported through Result.Err, not through
// Promise cancellation; cancellation is reserved for ctx expiring before
// any response could ever arrive.
type Result struct {
	Resp *http.Response
	Err  error
}

// Client issues HTTP requests over h2c (plaintext HTTP/2).
type Client interface {
	// Do issues req and resolves the returned Promise with the response
	// (or error) once the response headers have arrived. If ctx is done
	// first, the Promise is cancelled instead.
	Do(ctx context.Context, req *http.Request) promise.Promise[Result]

	// Close releases resources (idle connections, background workers)
	// held by this Client.
	Close() error
}
