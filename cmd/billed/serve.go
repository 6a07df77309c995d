package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/billed/internal/auth"
	"github.com/mmynk/billed/internal/client"
	"github.com/mmynk/billed/internal/config"
	"github.com/mmynk/billed/internal/metrics"
	"github.com/mmynk/billed/internal/middleware"
	"github.com/mmynk/billed/internal/receipts"
	"github.com/mmynk/billed/internal/service"
	"github.com/mmynk/billed/internal/storage/sqlite"
	"github.com/mmynk/billed/internal/ui"
	"github.com/mmynk/billed/pkg/api/apiconnect"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web UI, the bill API and /metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides := map[string]any{}
			if addr != "" {
				overrides["server.addr"] = addr
			}
			cfg, err := opts.load(overrides)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}

// app is the assembled server: bill API, receipts, metrics and UI on one mux.
type app struct {
	handler http.Handler
	store   *sqlite.SQLiteStore
}

func (a *app) Close() error {
	return a.store.Close()
}

func newApp(cfg config.Config) (*app, error) {
	store, err := sqlite.New(cfg.Storage.DBPath)
	if err != nil {
		return nil, fmt.Errorf("initialize storage: %w", err)
	}
	slog.Info("Storage initialized", "database", cfg.Storage.DBPath)

	blobs, err := receipts.NewBlobs(cfg.Storage.ReceiptsDir)
	if err != nil {
		store.Close()
		return nil, err
	}

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authenticator := auth.NewPasswordAuthenticator(store)
	m := metrics.New()

	mux := http.NewServeMux()

	billPath, billHandler := apiconnect.NewBillServiceHandler(
		service.NewBillService(store, blobs, m, cfg.Storage.MaxUploadBytes),
		connect.WithInterceptors(middleware.RequireAuth(jwtManager), middleware.LoggingInterceptor(m)),
	)
	mux.Handle(billPath, billHandler)

	authPath, authHandler := apiconnect.NewAuthServiceHandler(
		service.NewAuthService(authenticator, jwtManager, slog.Default()),
		connect.WithInterceptors(middleware.LoggingInterceptor(m)),
	)
	mux.Handle(authPath, authHandler)

	mux.Handle("/metrics", m.Handler())

	remote := client.NewRemote(&http.Client{Timeout: 30 * time.Second}, apiBaseURL(cfg.Server))
	router, err := ui.NewRouter(ui.Config{
		Store:          remote,
		Authenticator:  remote,
		JWT:            jwtManager,
		Metrics:        m,
		Receipts:       blobs.Handler(),
		MaxUploadBytes: cfg.Storage.MaxUploadBytes,
		SecureCookies:  cfg.Server.SecureCookies,
	})
	if err != nil {
		store.Close()
		return nil, err
	}
	mux.Handle("/", router.Handler())

	handler := middleware.Logging(middleware.CORS(m.Instrument(mux)))
	return &app{handler: handler, store: store}, nil
}

// apiBaseURL is where the UI calls the bill API. Without an explicit URL the
// UI calls back into this process.
func apiBaseURL(cfg config.ServerConfig) string {
	if cfg.APIURL != "" {
		return strings.TrimRight(cfg.APIURL, "/")
	}
	addr := cfg.Addr
	if strings.HasPrefix(addr, ":") {
		addr = "127.0.0.1" + addr
	}
	return "http://" + addr
}

func runServe(ctx context.Context, cfg config.Config) error {
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           h2c.NewHandler(a.handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "address", cfg.Server.Addr, "api", apiBaseURL(cfg.Server))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
