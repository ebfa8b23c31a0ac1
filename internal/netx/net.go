// Package netx serves auxiliary HTTP endpoints next to the interactive
// client.
package netx

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/dealwatch/internal/logging"
)

const shutdownTimeout = 5 * time.Second

// Serve answers HTTP requests on ln with handler until ctx is done, then
// shuts the server down gracefully. It returns early if the server fails.
func Serve(ctx context.Context, ln net.Listener, handler http.Handler, log logging.Logger) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Info(ctx, "starting http server", "address", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info(ctx, "stopping http server", "address", ln.Addr().String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ListenAndServe is Serve on a new TCP listener bound to addr.
func ListenAndServe(ctx context.Context, addr string, handler http.Handler, log logging.Logger) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return Serve(ctx, ln, handler, log)
}
