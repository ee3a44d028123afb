// Command netplusd is a small daemon wiring the promise-based networking
// stack together: an h2c front door proxies requests through httpclient to
// an upstream, and a raw TCP side-channel demonstrates netconn.AcceptLoop
// paired with netconn.InFlight for FIFO request/response matching.
package main

import (
	"bufio"
	"context"
	"flag"
	"io"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sentven/netplus/eventloop"
	"github.com/sentven/netplus/httpclient"
	"github.com/sentven/netplus/netconn"
	"github.com/sentven/netplus/phttp"
	"github.com/sentven/netplus/pipeline"
	"github.com/sentven/netplus/promise"
	"github.com/sentven/netplus/shutdown"
)

func main() {
	addr := flag.String("addr", ":8080", "address for the h2c front door")
	echoAddr := flag.String("echo-addr", ":8081", "address for the raw TCP echo side-channel")
	upstream := flag.String("upstream", "http://localhost:8080/", "base URL proxied requests are rewritten to")
	idle := flag.Duration("idle", 10*time.Minute, "shut down after this much inactivity")
	flag.Parse()

	ls := shutdown.New(*idle)

	client := httpclient.New(httpclient.Opts{Dialer: netconn.NewDialer()})
	defer client.Close()

	fetch := pipeline.Stage[*http.Request, httpclient.Result](func(ctx context.Context, req *http.Request) promise.Promise[httpclient.Result] {
		return client.Do(ctx, req)
	})
	readBody := pipeline.Stage[httpclient.Result, []byte](func(ctx context.Context, res httpclient.Result) promise.Promise[[]byte] {
		p := promise.New[[]byte]()
		go func() {
			if res.Err != nil {
				p.Set(nil)
				return
			}
			defer res.Resp.Body.Close()
			body, _ := io.ReadAll(res.Resp.Body)
			p.Set(body)
		}()
		return p
	})
	relay := pipeline.Chain(fetch, readBody)

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		outReq, err := http.NewRequestWithContext(r.Context(), r.Method, *upstream, r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		outReq.Header = r.Header.Clone()

		body := relay(r.Context(), outReq).Get()
		w.Write(body)
	})

	go func() {
		if err := netconn.AcceptLoop(context.Background(), mustListen(*echoAddr), handleEchoConn); err != nil {
			log.Printf("netplusd: echo side-channel stopped: %v", err)
		}
	}()

	log.Printf("netplusd: listening on %s (h2c), %s (echo)", *addr, *echoAddr)
	phttp.Run(&phttp.ListenAndServeOpts{
		Addr:     *addr,
		Handler:  ls.WrapFunc(mux.ServeHTTP),
		Shutdown: ls,
	})
}

func mustListen(addr string) net.Listener {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatalf("netplusd: %v", err)
	}
	return ln
}

// handleEchoConn reads newline-delimited lines from conn and writes each
// back uppercased, tracking each outstanding line through an InFlight so
// replies are matched to requests strictly in arrival order even if the
// eventloop used to produce a reply reorders completion internally.
func handleEchoConn(conn net.Conn) {
	defer conn.Close()

	inflight := netconn.NewInFlight[string]()
	defer inflight.CancelAll()

	loop := eventloop.New()
	defer loop.Close().Wait()

	writer := make(chan promise.Promise[string])
	go func() {
		for p := range writer {
			reply := p.Get()
			if p.IsCancelled() {
				return
			}
			if _, err := conn.Write([]byte(reply + "\n")); err != nil {
				return
			}
		}
	}()
	defer close(writer)

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := scanner.Text()
		p := inflight.Push()
		writer <- p

		loop.Execute(func() {
			inflight.Resolve(strings.ToUpper(line))
		})
	}
}
