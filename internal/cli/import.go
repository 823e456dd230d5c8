package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/RaulAraujoSilva/SEI-sub000/internal/config"
	"github.com/RaulAraujoSilva/SEI-sub000/internal/entities"
	"github.com/RaulAraujoSilva/SEI-sub000/internal/importsession"
	"github.com/RaulAraujoSilva/SEI-sub000/internal/orchestrator"
	"github.com/RaulAraujoSilva/SEI-sub000/internal/portal"
	"github.com/RaulAraujoSilva/SEI-sub000/internal/review"
	"github.com/RaulAraujoSilva/SEI-sub000/internal/workspace"
)

// ImportCommand fetches a case preview, prints every review page and optionally saves it.
type ImportCommand struct {
	URL        string
	BackendURL string
	Domain     string
	PageSize   int
	Timeout    time.Duration
	Yes        bool
	Verbose    bool

	// Portal overrides the HTTP backend client.
	Portal orchestrator.Portal
	Out    io.Writer
}

func NewImportCommand() *ImportCommand {
	return &ImportCommand{Out: os.Stdout}
}

func (cmd *ImportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)

	fs.StringVar(&cmd.URL, "url", "", "SEI case url to import (required)")
	fs.StringVar(&cmd.BackendURL, "backend", config.DefaultBackendURL, "Backend base url")
	fs.StringVar(&cmd.Domain, "domain", config.DefaultSourceDomain, "Host fragment the case url must contain")
	fs.IntVar(&cmd.PageSize, "page-size", 10, "Items per review page")
	fs.DurationVar(&cmd.Timeout, "timeout", 2*time.Minute, "Backend request timeout")
	fs.BoolVar(&cmd.Yes, "yes", false, "Save the case after printing the review")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s import -url <sei url> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Fetch a case preview from the backend, print the review and optionally save it.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Review only:\n")
		fmt.Fprintf(os.Stderr, "  %s import -url \"https://sei.example.gov.br/...\"\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  # Review and save:\n")
		fmt.Fprintf(os.Stderr, "  %s import -url \"https://sei.example.gov.br/...\" -yes\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.URL == "" {
		return fmt.Errorf("required flag -url not provided")
	}
	if cmd.PageSize < 1 {
		return fmt.Errorf("-page-size must be positive")
	}
	return nil
}

func (cmd *ImportCommand) Run(ctx context.Context) error {
	out := cmd.Out
	if out == nil {
		out = os.Stdout
	}

	backend := cmd.Portal
	if backend == nil {
		backend = portal.NewClient(cmd.BackendURL, cmd.Timeout)
	}

	registry := workspace.NewRegistry(workspace.Options{
		Portal:    backend,
		Validator: importsession.NewDomainValidator(cmd.Domain),
		PageSize:  cmd.PageSize,
		Listener: func(_ string, ev orchestrator.Event) {
			if cmd.Verbose {
				fmt.Fprintf(out, "  [%s] %s in %s\n", ev.Operation, ev.Outcome, ev.Duration.Round(time.Millisecond))
			}
		},
	})
	ws := registry.Mount()
	defer registry.Unmount(ws.ID)

	fmt.Fprintln(out, "SEI Import")
	fmt.Fprintln(out, "==========")
	fmt.Fprintf(out, "URL: %s\n", cmd.URL)
	if cmd.Verbose && cmd.Portal == nil {
		fmt.Fprintf(out, "Backend: %s\n", cmd.BackendURL)
	}

	fmt.Fprintln(out, "\nFetching preview...")
	bundle, err := ws.Orchestrator.RunFetch(ctx, cmd.URL)
	if err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}

	printSummary(out, *bundle)

	for _, category := range []review.Category{review.CategoryDocuments, review.CategoryEvents} {
		if err := printCategory(out, ws.Review, category); err != nil {
			return err
		}
	}

	if !cmd.Yes {
		fmt.Fprintln(out, "\nReview complete. Use -yes to save.")
		return nil
	}

	fmt.Fprintln(out, "\nSaving...")
	outcome, err := ws.Commit.Commit(ctx)
	if err != nil {
		return fmt.Errorf("commit failed: %w", err)
	}

	fmt.Fprintln(out, "\n=== Save Summary ===")
	fmt.Fprintf(out, "Case id: %d\n", outcome.Result.CaseID)
	fmt.Fprintf(out, "Documents saved: %d\n", outcome.Result.DocumentsSaved)
	fmt.Fprintf(out, "Events saved: %d\n", outcome.Result.EventsSaved)
	if outcome.Result.Message != "" {
		fmt.Fprintf(out, "Message: %s\n", outcome.Result.Message)
	}
	return nil
}

func printSummary(out io.Writer, b entities.Bundle) {
	fmt.Fprintln(out, "\n=== Case ===")
	fmt.Fprintf(out, "Number: %s\n", b.Summary.Number)
	fmt.Fprintf(out, "Type: %s\n", b.Summary.Type)
	fmt.Fprintf(out, "Filed: %s\n", b.Summary.FiledAt)
	if b.Summary.Requester != "" {
		fmt.Fprintf(out, "Requester: %s\n", b.Summary.Requester)
	}
	fmt.Fprintf(out, "Documents: %d\n", len(b.SubDocuments))
	fmt.Fprintf(out, "Events: %d\n", len(b.Events))
	if n := len(b.Events); n > 0 {
		last := b.Events[n-1]
		fmt.Fprintf(out, "Current location: %s (%s)\n", last.Unit, last.OccurredAt)
	}
}

func printCategory(out io.Writer, surface *review.Surface, category review.Category) error {
	if _, err := surface.Select(category); err != nil {
		return err
	}
	fmt.Fprintf(out, "\n=== %s ===\n", category)

	for page := 0; ; page++ {
		view, err := surface.View(category, page)
		if err != nil {
			return err
		}
		if view.Total == 0 {
			fmt.Fprintln(out, "(none)")
			return nil
		}

		fmt.Fprintf(out, "-- page %d/%d --\n", view.Page+1, view.TotalPages)
		for i, d := range view.Documents {
			fmt.Fprintf(out, "%3d. %s  %s  %s  %s\n", page*view.PageSize+i+1, d.Number, d.Type, d.Date, d.Unit)
		}
		for i, e := range view.Events {
			fmt.Fprintf(out, "%3d. %s  %s  %s\n", page*view.PageSize+i+1, e.OccurredAt, e.Unit, e.Description)
		}

		if !view.HasNext {
			return nil
		}
	}
}
