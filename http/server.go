package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/awantoch/formrelay/config"
	"github.com/awantoch/formrelay/constants"
	"github.com/awantoch/formrelay/core"
	"github.com/awantoch/formrelay/logger"
	"github.com/awantoch/formrelay/telemetry"
)

// NewMux registers every route on a fresh ServeMux.
func NewMux(svc *core.Services) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle(constants.RouteIPN, telemetry.WrapHandler("ipn", formEndpoint(ipnHandler(svc))))
	mux.Handle(constants.RouteSubscribe, telemetry.WrapHandler("subscribe", formEndpoint(subscribeHandler(svc))))
	mux.Handle(constants.RouteUnsubscribe, telemetry.WrapHandler("unsubscribe", formEndpoint(unsubscribeHandler(svc))))
	mux.HandleFunc(constants.RouteHealth, healthHandler)
	mux.Handle(constants.RouteMetrics, telemetry.MetricsHandler())
	return mux
}

// StartServer serves until ctx is cancelled, then shuts down gracefully.
func StartServer(ctx context.Context, cfg *config.Config) error {
	shutdownTracing, err := telemetry.Init(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Error("Failed to shut down tracing: %v", err)
		}
	}()

	svc, cleanup, err := core.InitializeDependencies(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	defer cleanup()

	addr := net.JoinHostPort(cfg.HTTP.Host, strconv.Itoa(cfg.HTTP.Port))
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewMux(svc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("formrelay listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
