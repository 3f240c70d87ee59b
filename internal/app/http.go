package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/rbright/livescribe/internal/metrics"
	"github.com/rbright/livescribe/internal/output"
)

// startHTTP serves /metrics and the /live websocket on addr and returns the
// bound address. The returned func closes live clients and shuts down.
func startHTTP(addr string, m *metrics.Metrics, hub *output.Hub, logger *slog.Logger) (string, func(), error) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.Handle("/live", hub)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err.Error())
		}
	}()
	logger.Info("http listening", "addr", ln.Addr().String())

	return ln.Addr().String(), func() {
		hub.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
