package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/iudanet/contactbook/internal/client/api"
	"github.com/iudanet/contactbook/internal/client/auth"
	"github.com/iudanet/contactbook/internal/client/cli"
	"github.com/iudanet/contactbook/internal/client/iocli"
	"github.com/iudanet/contactbook/internal/client/storage/boltdb"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	serverURL := flag.String("server", "http://localhost:8000", "Server URL")
	dbPath := flag.String("db", "contacts-client.db", "Path to local session database")
	verbose := flag.Bool("v", false, "Verbose logging")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	stdio := iocli.NewStdio()

	args := flag.Args()
	if len(args) == 0 {
		cli.New(stdio, nil, nil).PrintUsage()
		os.Exit(1)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	boltStorage, err := boltdb.New(ctx, *dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}

	apiClient := api.NewClient(*serverURL)
	session := auth.NewSession(apiClient, boltStorage, logger)

	runErr := cli.New(stdio, apiClient, session).Run(ctx, args[0], args[1:])

	if err := boltStorage.Close(); err != nil {
		logger.Error("failed to close database", "error", err)
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		os.Exit(1)
	}
}

func printVersion() {
	fmt.Printf("Contacts Client\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
