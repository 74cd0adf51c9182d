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
	"github.com/gs1resolver/resolver/resolver"
	"github.com/gs1resolver/resolver/toolkit"
)

func newServeCmd() *cobra.Command {
	var configPath string
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the resolver's read-path HTTP server",
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
			if v := os.Getenv("GS1RESOLVER_FQDN"); v != "" {
				cfg.FQDN = v
			}
			if v := os.Getenv("GS1RESOLVER_DB_PATH"); v != "" {
				cfg.DBPath = v
			}
			if v := os.Getenv("GS1RESOLVER_TOOLKIT_BACKEND"); v != "" {
				cfg.Toolkit.Backend = v
			}
			if v := os.Getenv("GS1RESOLVER_TOOLKIT_SUBPROCESS_PATH"); v != "" {
				cfg.Toolkit.SubprocessPath = v
			}

			store, err := docstore.New(cfg.ResolveDBPath())
			if err != nil {
				slog.Error("opening document store", "error", err)
				os.Exit(1)
			}
			defer store.Close()

			pipeline := resolver.New(store, buildToolkit(cfg.Toolkit), cfg.FQDN, cfg.LinktypeFallback)

			h := newHandler(pipeline)
			mux := http.NewServeMux()

			mux.HandleFunc("GET /.well-known/gs1resolver", h.handleWellKnown)
			mux.HandleFunc("GET /healthz", h.handleHealth)
			mux.HandleFunc("GET /{ai}/{value}", h.handleResolve)
			mux.HandleFunc("HEAD /{ai}/{value}", h.handleResolve)
			mux.HandleFunc("OPTIONS /{ai}/{value}", h.handleResolve)
			mux.HandleFunc("GET /{ai}/{value}/{qualifiers...}", h.handleResolve)
			mux.HandleFunc("HEAD /{ai}/{value}/{qualifiers...}", h.handleResolve)
			mux.HandleFunc("OPTIONS /{ai}/{value}/{qualifiers...}", h.handleResolve)
			mux.HandleFunc("GET /{segment}", h.handleCompressedOrReject)

			var handler http.Handler = mux
			handler = logMiddleware(handler)
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
				slog.Info("resolver starting", "addr", cfg.Addr, "fqdn", cfg.FQDN)
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					slog.Error("server error", "error", err)
					os.Exit(1)
				}
			}()

			<-done
			slog.Info("shutting down resolver...")

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				slog.Error("server shutdown error", "error", err)
			}

			slog.Info("resolver stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to config file (JSON or YAML)")
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")
	return cmd
}

// buildToolkit selects the toolkit.Adapter backend named by cfg.Backend,
// defaulting to the in-process Pure implementation.
func buildToolkit(cfg gs1resolver.ToolkitConfig) toolkit.Adapter {
	switch cfg.Backend {
	case "subprocess":
		return &toolkit.Subprocess{Path: cfg.SubprocessPath, Timeout: cfg.SubprocessTimeout()}
	default:
		return toolkit.NewPure()
	}
}
