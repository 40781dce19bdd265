package main

import (
	"context"
	"net"
	"net/http"
	"time"
)

// newHTTPServer builds the HTTP server. Every request context derives from
// ctx, so cancelling it ends long-lived streams that Shutdown would wait on.
func newHTTPServer(ctx context.Context, addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}
