package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/iudanet/contactbook/internal/logging"
	"github.com/iudanet/contactbook/internal/server"
	"github.com/iudanet/contactbook/internal/server/config"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(".env", os.Args[1:])
	if err != nil {
		return err
	}

	if cfg.ShowVersion {
		printVersion()
		return nil
	}

	logger, err := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, cfg, logger, server.WithVersion(Version))
	if err != nil {
		return fmt.Errorf("failed to init server: %w", err)
	}

	logger.Info("Contacts server starting", "addr", cfg.Addr, "version", Version, "driver", cfg.Driver)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	logger.Info("Server stopped")
	return nil
}

func printVersion() {
	fmt.Printf("Contacts Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
