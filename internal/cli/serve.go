package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cognicore/habitual/internal/api"
	"github.com/cognicore/habitual/internal/logging"
)

func newServeCmd(opts *globalOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP recommendation service",
		Long: `Start the HTTP server.

Endpoints:
  POST /recommend             {"habits": [...]} -> {"suggestion": "..."}
  POST /api/v1/recommend      same, ?explain=true adds the decision details
  GET  /api/v1/catalog        the loaded habit catalog
  GET  /api/v1/stats          aggregated suggestion history
  GET  /api/v1/suggestions    recent suggestions
  GET  /health                liveness
  GET  /metrics               Prometheus metrics

SIGINT or SIGTERM drains in-flight requests before exiting.`,
		Example: `  habitual serve
  habitual serve --addr 127.0.0.1:8080
  HABITUAL_STORE_DRIVER=sqlite HABITUAL_STORE_PATH=habitual.db habitual serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd, opts, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.host and server.port)")
	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command, opts *globalOptions, addr string) error {
	rt, err := openSession(ctx, cmd, opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	sc := rt.cfg.Server
	if addr == "" {
		addr = sc.Addr()
	}

	routerOpts := api.RouterOptions{
		CORSOrigins: sc.CORSOrigins,
		RateLimit:   sc.RateLimit,
	}
	if sc.Redis.Addr != "" {
		rdb, err := api.NewRedisClient(ctx, sc.Redis.Addr, sc.Redis.Password, sc.Redis.DB)
		if err != nil {
			return err
		}
		defer rdb.Close()
		routerOpts.Redis = rdb
		logging.Info().Str("redis", sc.Redis.Addr).Msg("rate limits shared through redis")
	}

	handler := api.NewHandler(rt.engine, rt.comp.Store, rt.comp.Tokenizer)
	srv := &http.Server{
		Addr:         addr,
		Handler:      api.NewRouter(handler, routerOpts),
		ReadTimeout:  sc.ReadTimeout,
		WriteTimeout: sc.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().
			Str("addr", addr).
			Int("categories", rt.engine.Catalog().Len()).
			Str("store", rt.cfg.Store.Driver).
			Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen on %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	logging.Info().Dur("timeout", sc.ShutdownTimeout).Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), sc.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
