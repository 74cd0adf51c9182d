package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	gs1resolver "github.com/gs1resolver/resolver"
	"github.com/gs1resolver/resolver/docstore"
)

func newServeCmd() *cobra.Command {
	var configPath string
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the data-entry write-path HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := gs1resolver.DefaultConfig()
			if configPath != "" {
				loaded, err := gs1resolver.LoadConfigFile(configPath)
				if err != nil {
					slog.Error("loading config", "error", err)
					os.Exit(1)
				}
				cfg = loaded
			}
			if addr != "" {
				cfg.Addr = addr
			}

			// Override from environment variables, exactly as the
			// single-binary predecessor of this command did.
			if v := os.Getenv("GS1RESOLVER_DB_PATH"); v != "" {
				cfg.DBPath = v
			}
			apiKey := os.Getenv("GS1RESOLVER_API_KEY")
			if apiKey == "" {
				apiKey = cfg.APIKey
			}
			corsOrigins := os.Getenv("GS1RESOLVER_CORS_ORIGINS")
			if corsOrigins == "" {
				corsOrigins = cfg.CORSOrigins
			}

			store, err := docstore.New(cfg.ResolveDBPath())
			if err != nil {
				slog.Error("opening document store", "error", err)
				os.Exit(1)
			}
			defer store.Close()

			h := newHandler(store)
			mux := http.NewServeMux()

			mux.HandleFunc("GET /healthz", h.handleHealth)
			mux.HandleFunc("POST /api/new", h.handleNew)
			mux.HandleFunc("POST /api/new/single", h.handleNewSingle)
			mux.HandleFunc("PUT /api/{ai}/{value}", h.handlePut)
			mux.HandleFunc("GET /api/{ai}/{value}", h.handleGet)
			mux.HandleFunc("GET /api/{ai}/{value}/{qualifiers...}", h.handleGet)
			mux.HandleFunc("GET /api/index", h.handleIndex)
			mux.HandleFunc("DELETE /api/{ai}/{value}", h.handleDelete)
			mux.HandleFunc("POST /api/migrate-v2", h.handleMigrateV2)

			var handler http.Handler = mux
			handler = logMiddleware(handler)
			handler = authMiddleware(apiKey, handler)
			handler = corsMiddleware(corsOrigins, handler)
			handler = recoveryMiddleware(handler)

			srv := &http.Server{
				Addr:         cfg.Addr,
				Handler:      handler,
				ReadTimeout:  30 * time.Second,
				WriteTimeout: 30 * time.Second,
				IdleTimeout:  120 * time.Second,
			}

			done := make(chan os.Signal, 1)
			signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)

			go func() {
				slog.Info("data-entry starting", "addr", cfg.Addr)
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					slog.Error("server error", "error", err)
					os.Exit(1)
				}
			}()

			<-done
			slog.Info("shutting down data-entry...")

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				slog.Error("server shutdown error", "error", err)
			}

			slog.Info("data-entry stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to config file (JSON or YAML)")
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")
	return cmd
}
