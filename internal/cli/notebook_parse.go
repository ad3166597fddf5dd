package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/mrlokans/kindle-notebook/internal/exporters"
	"github.com/mrlokans/kindle-notebook/internal/fetch"
	"github.com/mrlokans/kindle-notebook/internal/kindle"
	"github.com/mrlokans/kindle-notebook/internal/render"
	"github.com/mrlokans/kindle-notebook/internal/services"
	"github.com/mrlokans/kindle-notebook/internal/session"
)

// NotebookParseCommand runs the parser over pages saved from the browser.
// No session, network or database is involved.
type NotebookParseCommand struct {
	Dir          string
	Region       string
	OutputDir    string
	TemplatePath string
	JSON         bool
	Verbose      bool
}

func NewNotebookParseCommand() *NotebookParseCommand {
	return &NotebookParseCommand{}
}

func (cmd *NotebookParseCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("notebook-parse", flag.ContinueOnError)

	fs.StringVarP(&cmd.Dir, "dir", "d", "", "Directory with library.html and <ASIN>[.N].html pages (required)")
	fs.StringVarP(&cmd.Region, "region", "r", "com", "Region the pages were saved from")
	fs.StringVarP(&cmd.OutputDir, "output", "o", "", "Write markdown notes into this directory")
	fs.StringVar(&cmd.TemplatePath, "template", "", "Note template file (default: built-in)")
	fs.BoolVar(&cmd.JSON, "json", false, "Print the parsed result as JSON")
	fs.BoolVarP(&cmd.Verbose, "verbose", "v", false, "List every book")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s notebook-parse --dir <path> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Parse saved notebook pages and optionally render them to markdown.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Dir == "" {
		fs.Usage()
		return fmt.Errorf("--dir is required")
	}
	if _, err := kindle.LookupRegion(cmd.Region); err != nil {
		return err
	}
	return nil
}

func (cmd *NotebookParseCommand) Run() error {
	result, err := cmd.parse(context.Background())
	if err != nil {
		return err
	}

	if cmd.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	} else {
		fmt.Println("Kindle Notebook Parse")
		fmt.Println("=====================")
		fmt.Printf("Pages: %s\n\n", cmd.Dir)
		printResult(result, cmd.Verbose)
	}

	if cmd.OutputDir == "" {
		return nil
	}
	processed, err := cmd.export(context.Background(), result)
	if err != nil {
		return err
	}
	if !cmd.JSON {
		fmt.Printf("\nWrote %d notes to %s\n", processed.Export.NotesWritten, cmd.OutputDir)
	}
	return nil
}

func (cmd *NotebookParseCommand) parse(ctx context.Context) (*kindle.Result, error) {
	fetcher, err := fetch.NewFileFetcher(cmd.Dir)
	if err != nil {
		return nil, err
	}
	syncer := kindle.NewSyncer(fetcher, session.Offline(cmd.Region))
	return syncer.FetchHighlights(ctx, cmd.Region)
}

func (cmd *NotebookParseCommand) export(ctx context.Context, result *kindle.Result) (*services.ProcessResult, error) {
	renderer, err := render.NewRendererFromFile(cmd.TemplatePath)
	if err != nil {
		return nil, err
	}
	pipeline := services.NewPipeline(nil, renderer)
	return pipeline.Process(ctx, &result.NotebookResult, exporters.NewMarkdownExporter(cmd.OutputDir))
}
