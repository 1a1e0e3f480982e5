package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/iudanet/campkeeper/internal/client/api"
	"github.com/iudanet/campkeeper/internal/client/cli"
	"github.com/iudanet/campkeeper/internal/client/data"
	"github.com/iudanet/campkeeper/internal/client/storage"
	"github.com/iudanet/campkeeper/internal/client/storage/boltdb"
	"github.com/iudanet/campkeeper/internal/client/sync"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	serverURL := flag.String("server", "http://localhost:8080", "Server URL")
	campaign := flag.String("campaign", "default", "Campaign to operate on")
	dataDir := flag.String("data-dir", ".", "Directory for local campaign databases")
	token := flag.String("token", "", "Access token (or CAMPKEEPER_TOKEN env var)")
	verbose := flag.Bool("verbose", false, "Verbose logging")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		cli.PrintUsage()
		os.Exit(1)
	}

	logger := newLogger(*verbose)

	accessToken := *token
	if accessToken == "" {
		accessToken = os.Getenv("CAMPKEEPER_TOKEN")
	}

	registry := storage.NewRegistry(*dataDir, boltdb.Open)
	defer func() {
		if err := registry.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close local databases: %v\n", err)
		}
	}()

	apiClient := api.NewClient(*serverURL, cli.NewAuthTransport(accessToken))
	dataService := data.NewService(registry, logger)
	syncService := sync.NewService(apiClient, registry, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := cli.New(*campaign, dataService, syncService, registry)
	c.Run(ctx, args[0], args[1:])
}

func newLogger(verbose bool) *slog.Logger {
	if verbose {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func printVersion() {
	fmt.Printf("CampKeeper Client\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
