package phttp

import (
	"net/http"
	"os"
	"strconv"

	"github.com/sentven/netplus/h2"
	"github.com/sentven/netplus/shutdown"
)

// ListenAndServe serves HTTP traffic in a sensibly default way.
//
// By default, it serves on the env PORT or port 8080 and supports H2C.
// It can also be configured with self-signed SSL, useful for some providers.
func ListenAndServe(opts *ListenAndServeOpts) error {
	if opts == nil {
		opts = &ListenAndServeOpts{}
	}

	addr := opts.Addr
	if addr == "" {
		port, _ := strconv.Atoi(os.Getenv("PORT"))
		if port <= 0 {
			port = 8080
		}

		host := "localhost"
		if opts.ServeAll {
			host = ""
		}

		addr = host + ":" + strconv.Itoa(port)
	}

	handler := h2.H2CHandler(opts.Handler)

	if opts.Shutdown != nil {
		if opts.FakeSSL {
			return opts.Shutdown.ServeTLS(addr, handler, buildSelfSignedTLSConfig())
		}
		return opts.Shutdown.ServeWrap(addr, handler)
	}

	s := http.Server{Addr: addr, Handler: handler}
	if opts.FakeSSL {
		s.TLSConfig = buildSelfSignedTLSConfig()
		return s.ListenAndServeTLS("", "")
	}
	return s.ListenAndServe()
}

// ListenAndServeOpts configures ListenAndServe.
type ListenAndServeOpts struct {
	// Addr is the address to listen on.
	// If not passed, looks for the PORT env var or defaults to port 8080,
	// on "localhost" unless ServeAll is set.
	Addr string

	// ServeAll hosts the server on all addresses (vs localhost) if Addr is unspecified.
	ServeAll bool

	// Handler is the handler to serve.
	// If nil, uses [http.DefaultServeMux].
	Handler http.Handler

	// FakeSSL runs the handler with self-signed TLS.
	// As of July 2025, this is useful for Cloudflare, which allows HTTP/2 over "bad" SSL (rather than h2c).
	FakeSSL bool

	// Shutdown, if set, ties the server's lifetime to a LazyShutdown instead
	// of running forever.
	Shutdown *shutdown.LazyShutdown
}
