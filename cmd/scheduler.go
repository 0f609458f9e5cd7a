package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run the leave sweep and timer finalizer without the HTTP server",
	Run: func(cmd *cobra.Command, args []string) {
		startScheduler()
	},
}

func startScheduler() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}
	log := deps.Logger

	if err := deps.Scheduler.Start(); err != nil {
		log.Error("failed to start scheduler", "error", err)
		deps.Close()
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	log.Info("scheduler is running. Press Ctrl+C to stop.")
	sig := <-sigChan
	log.Info("received signal, shutting down scheduler", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	deps.Scheduler.Stop(ctx)
	deps.Close()

	log.Info("scheduler shutdown complete")
}
