package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mrlokans/crudgate/internal/cli"
	"github.com/mrlokans/crudgate/internal/config"
	"github.com/mrlokans/crudgate/internal/entrypoint"
	"github.com/mrlokans/crudgate/internal/logging"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

type command interface {
	ParseFlags(args []string) error
	Run(ctx context.Context) error
}

func main() {
	cfg := config.NewConfig()
	log := logging.Must(cfg.Log.Level, cfg.Log.Development)
	defer func() { _ = log.Sync() }()

	// If no arguments or "serve" command, run the HTTP server
	if len(os.Args) < 2 || os.Args[1] == "serve" {
		if err := entrypoint.Run(cfg, log, Version); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	name := os.Args[1]
	args := os.Args[2:]

	var cmd command
	switch name {
	case "create-user":
		cmd = cli.NewCreateUserCommand(cfg, log)
	case "purge-sessions":
		cmd = cli.NewPurgeSessionsCommand(cfg, log)
	case "-h", "--help", "help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", name)
		printUsage()
		os.Exit(1)
	}

	if err := cmd.ParseFlags(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := cmd.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  serve           Start the HTTP server (default if no command given)\n")
	fmt.Fprintf(os.Stderr, "  create-user     Create a user account\n")
	fmt.Fprintf(os.Stderr, "  purge-sessions  Delete expired login sessions\n")
	fmt.Fprintf(os.Stderr, "\nUse '%s <command> -h' for help on a specific command.\n", os.Args[0])
}
