package netconn

import (
	"context"
	"crypto/tls"
	"iter"
	"net"

	"github.com/sentven/netplus/lifecycle"
	"github.com/sentven/netplus/promise"
)

type dialerImpl struct {
	nd net.Dialer
}

// NewDialer returns a Dialer using the zero-value net.Dialer's defaults.
func NewDialer() Dialer {
	return &dialerImpl{}
}

func (d *dialerImpl) Dial(ctx context.Context, network, addr string, tlsConf *tls.Config) promise.Promise[Result] {
	p := promise.New[Result]()

	stop := context.AfterFunc(ctx, func() {
		// races harmlessly with the dial goroutine below: it calls stop
		// before Set, so Set only runs if this Cancel never will, and is
		// skipped once this Cancel has started.
		p.Cancel()
	})

	go func() {
		conn, err := d.nd.DialContext(ctx, network, addr)
		if err != nil {
			if !stop() {
				return
			}
			p.Set(Result{Err: err})
			return
		}

		if tlsConf != nil {
			tlsConn := tls.Client(conn, tlsConf)
			if err := tlsConn.HandshakeContext(ctx); err != nil {
				conn.Close()
				if !stop() {
					return
				}
				p.Set(Result{Err: err})
				return
			}
			conn = tlsConn
		}

		if !stop() {
			// caller gave up while we were dialing/handshaking: we own
			// the only reference to conn, so it's on us to close it.
			conn.Close()
			return
		}
		p.Set(Result{Conn: conn})
	}()

	return p
}

// Close wraps conn.Close, resolving the returned Promise with its error (or
// nil) exactly once. It never blocks the caller.
func Close(conn net.Conn) promise.Promise[error] {
	p := promise.New[error]()
	go func() {
		p.Set(conn.Close())
	}()
	return p
}

// AcceptLoop repeatedly accepts connections from ln and invokes handle for
// each, until ctx is done or Accept returns an error. It blocks
// until one of those happens.
//
// The accept goroutine and the dispatch goroutine are split across a
// channel and a lifecycle.Worker, the same "drain a channel until ctx says
// stop" shape lifecycle.Worker runs for any event source - here the channel
// is fed by net.Listener.Accept instead of an application event source.
func AcceptLoop(ctx context.Context, ln net.Listener, handle func(net.Conn)) error {
	context.AfterFunc(ctx, func() { ln.Close() })

	connCh := make(chan net.Conn)
	acceptErr := make(chan error, 1)

	go func() {
		defer close(connCh)
		for {
			conn, err := ln.Accept()
			if err != nil {
				acceptErr <- err
				return
			}
			select {
			case connCh <- conn:
			case <-ctx.Done():
				conn.Close()
				return
			}
		}
	}()

	st := lifecycle.Worker(ctx, connCh, func(ctx context.Context, conns iter.Seq[net.Conn]) error {
		for conn := range conns {
			go handle(conn)
		}
		return nil
	})

	if err := <-st.Done(); err != nil {
		return err
	}

	select {
	case err := <-acceptErr:
		return err
	default:
		return context.Cause(ctx)
	}
}
