package main

import (
	"fmt"
	"os"

	_ "go.uber.org/automaxprocs"

	"github.com/mrlokans/kindle-notebook/internal/cli"
	"github.com/mrlokans/kindle-notebook/internal/config"
	"github.com/mrlokans/kindle-notebook/internal/entrypoint"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

type command interface {
	ParseFlags(args []string) error
	Run() error
}

func main() {
	// If no arguments or "serve" command, run the HTTP server
	if len(os.Args) < 2 || os.Args[1] == "serve" {
		cfg := config.NewConfig()
		entrypoint.Run(cfg, Version)
		return
	}

	name := os.Args[1]
	args := os.Args[2:]

	var cmd command
	switch name {
	case "notebook-sync":
		cmd = cli.NewNotebookSyncCommand(config.NewConfig())
	case "notebook-parse":
		cmd = cli.NewNotebookParseCommand()
	case "session-import":
		cmd = cli.NewSessionImportCommand(config.NewConfig())
	case "session-list":
		cmd = cli.NewSessionListCommand(config.NewConfig())
	case "session-clear":
		cmd = cli.NewSessionClearCommand(config.NewConfig())

	case "auth-hash-password":
		cmd = cli.NewHashPasswordCommand()

	case "regions":
		if err := cli.NewRegionsCommand().Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return

	case "version", "--version":
		fmt.Printf("kindle-notebook %s (%s)\n", Version, Commit)
		return

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
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  serve            Start the HTTP server and scheduler (default if no command given)\n")
	fmt.Fprintf(os.Stderr, "  notebook-sync    Fetch all Kindle highlights once and write markdown notes\n")
	fmt.Fprintf(os.Stderr, "  notebook-parse   Parse notebook pages saved from the browser\n")
	fmt.Fprintf(os.Stderr, "  session-import   Store Amazon cookies for a region\n")
	fmt.Fprintf(os.Stderr, "  session-list     List stored sessions\n")
	fmt.Fprintf(os.Stderr, "  session-clear    Delete a region's session\n")
	fmt.Fprintf(os.Stderr, "  regions          List supported Amazon regions\n")
	fmt.Fprintf(os.Stderr, "  auth-hash-password  Print a bcrypt hash for AUTH_PASSWORD_HASH\n")
	fmt.Fprintf(os.Stderr, "  version          Print the version\n")
	fmt.Fprintf(os.Stderr, "\nUse '%s <command> -h' for help on a specific command.\n", os.Args[0])
}
