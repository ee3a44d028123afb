package httpclient

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"

	"golang.org/x/net/http2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/sentven/netplus/eventloop"
	"github.com/sentven/netplus/netconn"
	"github.com/sentven/netplus/promise"
)

const (
	// DefaultRateLimit is the number of requests per second a Client allows
	// by default.
	DefaultRateLimit = 32

	// DefaultRateBurst is the maximum request burst a Client allows by
	// default.
	DefaultRateBurst = 64
)

// Opts configures a Client.
type Opts struct {
	// Dialer is used for every connection this Client opens. Defaults to
	// netconn.NewDialer() if nil.
	Dialer netconn.Dialer

	// RateLimit is the number of requests per second this Client allows.
	// Defaults to DefaultRateLimit if zero.
	RateLimit float64

	// RateBurst is the maximum request burst this Client allows. Defaults
	// to DefaultRateBurst if zero.
	RateBurst int
}

func (o *Opts) setDefaults() {
	if o.Dialer == nil {
		o.Dialer = netconn.NewDialer()
	}
	if o.RateLimit == 0 {
		o.RateLimit = DefaultRateLimit
	}
	if o.RateBurst == 0 {
		o.RateBurst = DefaultRateBurst
	}
}

type clientImpl struct {
	dialer    netconn.Dialer
	transport *http2.Transport
	limiter   *rate.Limiter
	loop      eventloop.Loop
}

// New creates a Client that dials through opts.Dialer and always speaks
// plaintext HTTP/2 (h2c with prior knowledge, no HTTP/1.1 upgrade and no
// TLS), the client-side mirror of this module's h2.H2CHandler on the server
// side.
func New(opts Opts) Client {
	opts.setDefaults()

	c := &clientImpl{
		dialer:  opts.Dialer,
		limiter: rate.NewLimiter(rate.Limit(opts.RateLimit), opts.RateBurst),
		loop:    eventloop.New(),
	}

	c.transport = &http2.Transport{
		AllowHTTP: true,
		DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
			res := c.dialer.Dial(ctx, network, addr, nil).Get()
			if res.Err != nil {
				return nil, res.Err
			}
			return res.Conn, nil
		},
	}

	return c
}

func (c *clientImpl) Do(ctx context.Context, req *http.Request) promise.Promise[Result] {
	p := promise.New[Result]()

	stop := context.AfterFunc(ctx, func() { p.Cancel() })

	c.loop.Execute(func() {
		if p.IsCancelled() {
			return
		}

		// Race the rate limiter against the request itself, the same
		// shape as runSocket's hello-read-vs-Init race: whichever setup
		// step fails first (context done, limiter denied) cancels the
		// other via the shared errgroup context.
		eg, egCtx := errgroup.WithContext(ctx)

		var resp *http.Response
		eg.Go(func() error {
			return c.limiter.Wait(egCtx)
		})
		eg.Go(func() error {
			var err error
			resp, err = c.transport.RoundTrip(req.WithContext(egCtx))
			return err
		})

		err := eg.Wait()

		// stop reports false once the cancel above has started, in which
		// case Set must not run.
		if !stop() {
			if resp != nil {
				resp.Body.Close()
			}
			return
		}
		p.Set(Result{Resp: resp, Err: err})
	})

	return p
}

func (c *clientImpl) Close() error {
	c.loop.Close().Wait()
	c.transport.CloseIdleConnections()
	return nil
}
