// Package httpserver builds the http.Server that fronts the webhook and
// admin endpoints.
package httpserver

import (
	"net/http"
	"time"
)

// New returns a server for the given listen address and handler. The header
// timeout bounds slow clients; gateway webhook deliveries finish well inside
// it.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
