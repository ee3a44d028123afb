package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

func newH2CServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	h2s := &http2.Server{}
	srv := httptest.NewServer(h2c.NewHandler(handler, h2s))
	t.Cleanup(srv.Close)
	return srv
}

func TestDoResolvesResponse(t *testing.T) {
	srv := newH2CServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello"))
	})

	c := New(Opts{})
	defer c.Close()

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	p := c.Do(t.Context(), req)

	res := p.Get()
	if res.Err != nil {
		t.Fatalf("expected no err, was: %v", res.Err)
	}
	defer res.Resp.Body.Close()

	body, _ := io.ReadAll(res.Resp.Body)
	if string(body) != "hello" {
		t.Errorf("expected hello, was: %v", string(body))
	}
}

func TestDoCancelledByContext(t *testing.T) {
	srv := newH2CServer(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
	})

	c := New(Opts{})
	defer c.Close()

	ctx, cancel := context.WithTimeout(t.Context(), time.Millisecond*20)
	defer cancel()

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	p := c.Do(ctx, req)

	p.Wait()
	if !p.IsCancelled() {
		t.Errorf("expected Do's promise to be cancelled by context expiry")
	}
}
