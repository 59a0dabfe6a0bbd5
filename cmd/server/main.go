package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/magna-galactica/api/internal/http/health"
	"github.com/magna-galactica/api/internal/http/routes"
	"github.com/magna-galactica/api/internal/platform/config"
	applog "github.com/magna-galactica/api/internal/platform/logging"
	appmiddleware "github.com/magna-galactica/api/internal/platform/middleware"
	"github.com/magna-galactica/api/internal/platform/respond"
)

// Version can be overridden at build time: -ldflags "-X main.Version=1.2.3"
var Version = "dev"

const (
	apiTitle = "Magna Galactica API"
	docsPath = "/docs"
)

func main() {
	defer func() {
		if err := applog.Sync(); err != nil {
			applog.LogError(context.Background(), "logger sync error", err)
		}
	}()
	if err := applog.Err(); err != nil {
		applog.LogError(context.Background(), "logger init error", err)
	}

	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var envFile string
	cmd := &cobra.Command{
		Use:           "magna-galactica",
		Short:         "Serve the Magna Galactica API",
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(envFile)
			if err != nil {
				applog.LogError(cmd.Context(), "config load failed", err)
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			if err := run(ctx, cfg); err != nil {
				applog.LogError(ctx, "server failed", err)
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&envFile, "env-file", "", "dotenv file to load before reading the environment (default .env when present)")
	return cmd
}

// run serves cfg until ctx is cancelled.
func run(ctx context.Context, cfg *config.Config) error {
	if err := applog.SetLevel(cfg.LogLevel); err != nil {
		return err
	}
	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Addr(), err)
	}
	srv := newServer(cfg, newRouter(cfg, prometheus.NewRegistry()))
	return serve(ctx, srv, ln, cfg.HTTP.ShutdownTimeout)
}

// newRouter assembles middleware, the health probe, the huma API and,
// when enabled, the metrics endpoint.
func newRouter(cfg *config.Config, reg *prometheus.Registry) chi.Router {
	router := chi.NewRouter()
	router.NotFound(respond.NotFoundHandler())
	router.MethodNotAllowed(respond.MethodNotAllowedHandler())

	middlewares := []func(http.Handler) http.Handler{
		appmiddleware.Security(docsPath),
		appmiddleware.Vary(),
		appmiddleware.CORS(cfg.CORS.AllowedOrigins, cfg.CORS.MaxAge),
		appmiddleware.RequestID(),
		// RealIP trusts X-Forwarded-For / X-Real-IP; run behind a trusted proxy only.
		chimiddleware.RealIP,
		chimiddleware.RequestSize(cfg.HTTP.MaxBodyBytes),
	}
	if cfg.Metrics.Enabled {
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		middlewares = append(middlewares, appmiddleware.Metrics(reg))
	}
	middlewares = append(middlewares,
		applog.RequestLogger(cfg.ProjectID),
		applog.AccessLogger(),
		respond.Recoverer(),
	)
	router.Use(middlewares...)

	router.Get("/health", health.Handler)
	if cfg.Metrics.Enabled {
		router.Handle(cfg.Metrics.Path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	}

	routes.Register(humachi.New(router, newAPIConfig()))
	return router
}

// newAPIConfig returns the huma configuration. The schema link transformer is
// dropped so bodies carry only their documented keys, with no $schema field.
func newAPIConfig() huma.Config {
	cfg := huma.DefaultConfig(apiTitle, Version)
	cfg.CreateHooks = nil
	cfg.DocsPath = docsPath
	cfg.Info.Description = "Backend for the Magna Galactica web frontend."
	cfg.OnAddOperation = append(cfg.OnAddOperation, addCBORContentTypes)
	return cfg
}

// addCBORContentTypes documents application/cbor next to every JSON body.
func addCBORContentTypes(_ *huma.OpenAPI, op *huma.Operation) {
	if op.RequestBody != nil && op.RequestBody.Content != nil {
		if jsonContent, ok := op.RequestBody.Content["application/json"]; ok {
			op.RequestBody.Content["application/cbor"] = jsonContent
		}
	}
	for _, resp := range op.Responses {
		if resp.Content == nil {
			continue
		}
		if jsonContent, ok := resp.Content["application/json"]; ok {
			resp.Content["application/cbor"] = jsonContent
		}
	}
}

func newServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		MaxHeaderBytes:    cfg.HTTP.MaxHeaderBytes,
	}
}

// serve runs srv on ln until ctx is done or the listener fails, then shuts
// down gracefully within shutdownTimeout.
func serve(ctx context.Context, srv *http.Server, ln net.Listener, shutdownTimeout time.Duration) error {
	listenErr := make(chan error, 1)
	go func() {
		applog.LogInfo(ctx, "server listening", zap.String("addr", ln.Addr().String()), zap.String("version", Version))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErr <- err
		}
	}()

	select {
	case err := <-listenErr:
		return fmt.Errorf("serve on %s: %w", ln.Addr(), err)
	case <-ctx.Done():
		applog.LogInfo(context.Background(), "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	applog.LogInfo(context.Background(), "server exited")
	return nil
}
