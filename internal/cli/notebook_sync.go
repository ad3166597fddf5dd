package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	"github.com/mrlokans/kindle-notebook/internal/config"
	"github.com/mrlokans/kindle-notebook/internal/entities"
	"github.com/mrlokans/kindle-notebook/internal/entrypoint"
	"github.com/mrlokans/kindle-notebook/internal/services"
)

// NotebookSyncCommand fetches the notebook once, writes the notes and exits.
type NotebookSyncCommand struct {
	Region       string
	OutputDir    string
	DatabasePath string
	Fetcher      string
	NoMetadata   bool
	Verbose      bool

	cfg *config.Config
}

func NewNotebookSyncCommand(cfg *config.Config) *NotebookSyncCommand {
	return &NotebookSyncCommand{cfg: cfg}
}

func (cmd *NotebookSyncCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("notebook-sync", flag.ContinueOnError)

	fs.StringVarP(&cmd.Region, "region", "r", cmd.cfg.Kindle.Region, "Amazon region code, e.g. com, co.uk, co.jp")
	fs.StringVarP(&cmd.OutputDir, "output", "o", cmd.cfg.Output.Dir, "Directory for the markdown notes")
	fs.StringVar(&cmd.DatabasePath, "db", cmd.cfg.Database.Path, "Path to the database holding sessions and run history")
	fs.StringVar(&cmd.Fetcher, "fetcher", cmd.cfg.Kindle.Fetcher, "Page fetcher: http or browser")
	fs.BoolVar(&cmd.NoMetadata, "no-metadata", !cmd.cfg.Metadata.Download, "Skip OpenLibrary metadata lookups")
	fs.BoolVarP(&cmd.Verbose, "verbose", "v", false, "List every book in the summary")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s notebook-sync [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Fetch every highlight from the Kindle notebook and write one note per book.\n")
		fmt.Fprintf(os.Stderr, "Requires a session imported with 'session-import'.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	cmd.cfg.Kindle.Region = cmd.Region
	cmd.cfg.Output.Dir = cmd.OutputDir
	cmd.cfg.Database.Path = cmd.DatabasePath
	cmd.cfg.Kindle.Fetcher = cmd.Fetcher
	cmd.cfg.Metadata.Download = !cmd.NoMetadata
	return cmd.cfg.Validate()
}

func (cmd *NotebookSyncCommand) Run() error {
	fmt.Println("Kindle Notebook Sync")
	fmt.Println("====================")
	fmt.Printf("Region: %s\n", cmd.Region)
	fmt.Printf("Output: %s\n\n", cmd.OutputDir)

	app, err := entrypoint.NewApp(cmd.cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := app.Service.Run(ctx, services.RunOptions{
		Region:    cmd.Region,
		OutputDir: cmd.OutputDir,
		Trigger:   entities.RunTriggerCLI,
	})
	if report != nil && report.Result != nil {
		printResult(report.Result, cmd.Verbose)
	}
	if err != nil {
		return err
	}

	run := report.Run
	fmt.Println("\n=== Run Summary ===")
	fmt.Printf("Run: #%d (%s)\n", run.ID, run.Status)
	fmt.Printf("Notes written: %d\n", run.NotesWritten)
	if p := report.Process; p != nil {
		if p.Enrichment.Enriched+p.Enrichment.Failed > 0 {
			fmt.Printf("Metadata: %d found, %d not found\n", p.Enrichment.Enriched, p.Enrichment.Failed)
		}
		for _, f := range p.RenderFailures {
			fmt.Printf("  [ERROR] render %q: %v\n", f.Title, f.Err)
		}
	}
	return nil
}
