// Package netconn dials and accepts TCP/TLS connections, resolving the
// outcome of each as a promise.Promise rather than a blocking call plus
// error return - matching the contract the rest of this module expects from
// network operations (see the promise package doc comment).
package netconn

import (
	"context"
	"crypto/tls"
	"net"

	"github.com/sentven/netplus/promise"
)

// Dialer dials connections, optionally over TLS.
type Dialer interface {
	// Dial dials network/addr in a background goroutine and returns
	// immediately. If tlsConf is non-nil, the dial includes a TLS
	// handshake. The returned Promise resolves with the established
	// net.Conn, or is cancelled if ctx is done before the dial
	// (including handshake) completes.
	Dial(ctx context.Context, network, addr string, tlsConf *tls.Config) promise.Promise[Result]
}

// Result carries a dial or accept outcome. Exactly one of Conn/Err is
// meaningful once the owning Promise is done: a network or TLS error is
// reported through Result.Err, not through Promise cancellation -
// cancellation is reserved for "the caller gave up before any producer
// would ever set this", matching the promise package's error-handling
// guidance.
type Result struct {
	Conn net.Conn
	Err  error
}
