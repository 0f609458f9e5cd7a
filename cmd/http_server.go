package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/attendance-management/internal/transport/rest"
	"github.com/frahmantamala/attendance-management/internal/transport/swagger"

	"github.com/go-chi/chi"
	"github.com/spf13/cobra"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}
	cfg := deps.Config
	log := deps.Logger

	openAPIPath := cfg.Server.OpenAPIPath
	if _, err := swagger.LoadSpec(context.Background(), openAPIPath); err != nil {
		log.Warn("openapi document unavailable, swagger ui disabled", "error", err)
		openAPIPath = ""
	}

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, deps.DB.DB, deps.redisCmdable(), deps.Handlers, rest.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		OpenAPIPath:    openAPIPath,
		RequestLogging: cfg.Env != "production",
	}, log)

	if cfg.Scheduler.Enabled {
		if err := deps.Scheduler.Start(); err != nil {
			log.Error("failed to start scheduler", "error", err)
			deps.Close()
			os.Exit(1)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	exitCode := 0
	select {
	case sig := <-sigChan:
		log.Info("Received signal, shutting down...", "signal", sig)
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed to start", "error", err)
			exitCode = 1
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server shutdown error", "error", err)
	}
	if cfg.Scheduler.Enabled {
		deps.Scheduler.Stop(ctx)
	}
	deps.Close()

	log.Info("Server stopped")
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
