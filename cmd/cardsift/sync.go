package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ksutton/cardsift/internal/extract"
	"github.com/ksutton/cardsift/internal/runlog"
	"github.com/ksutton/cardsift/internal/store"
	"github.com/ksutton/cardsift/internal/sync"
	"github.com/ksutton/cardsift/internal/trello"
	"github.com/ksutton/cardsift/internal/ui"
)

var syncCmd = &cobra.Command{
	Use:   "sync [board]",
	Short: "Synchronize a board and extract contacts",
	Long: `Synchronize a Trello board into the local database and run contact
extraction over every card.

The board may be given by ID or by name (case-insensitive). With no
argument and an interactive terminal, a picker is shown.

Recoverable failures (skipped cards, unparsable extraction responses,
rejected or duplicate contacts, rolled-back batches) are written to the
run log, which is truncated at the start of each run.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.RequireTrello(); err != nil {
			return err
		}
		if err := cfg.RequireAnthropic(); err != nil {
			return err
		}

		ctx := cmd.Context()
		client := trello.NewClient(cfg.TrelloKey, cfg.TrelloToken)

		ref, err := resolveRef(ctx, client, args)
		if err != nil {
			return err
		}

		st, err := store.Open(cfg.DBPath())
		if err != nil {
			return err
		}
		defer st.Close()

		rl, err := runlog.Open(cfg.RunLogPath())
		if err != nil {
			return err
		}
		defer rl.Close()

		syncer := sync.New(st, client, extract.NewClient(cfg.AnthropicAPIKey, cfg.Model), &sync.Config{
			MarkerPath: cfg.MarkerPath(),
			Logger:     rl.Logger,
		})

		fmt.Printf("%s Syncing board %q...\n", ui.RenderAccent("»"), ref)
		report, err := syncer.Synchronize(ctx, ref)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s Sync failed: %v\n", ui.RenderErr("✗"), err)
			return err
		}

		printReport(report)
		return nil
	},
}

// resolveRef returns the board reference from args, or prompts for one
// when running interactively.
func resolveRef(ctx context.Context, client *trello.Client, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", fmt.Errorf("board reference required (non-interactive session)")
	}

	boards, err := client.Boards(ctx)
	if err != nil {
		return "", err
	}
	if len(boards) == 0 {
		return "", fmt.Errorf("no boards visible to this account")
	}

	options := make([]huh.Option[string], 0, len(boards))
	for _, b := range boards {
		options = append(options, huh.NewOption(b.Name, b.ID))
	}

	var ref string
	form := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Select a board to synchronize").
			Options(options...).
			Value(&ref),
	))
	if err := form.Run(); err != nil {
		return "", fmt.Errorf("board selection cancelled: %w", err)
	}
	return ref, nil
}

func printReport(r *sync.Report) {
	mode := "incremental"
	if r.FullResync {
		mode = "full resync"
	}

	fmt.Printf("%s Sync complete in %v (%s)\n",
		ui.RenderPass("✓"), r.Elapsed.Round(time.Millisecond), mode)
	fmt.Printf("   Board:    %s (%s)\n", r.Board.Name, r.Board.ID)
	fmt.Printf("   Inserted: %d lists, %d cards, %d comments\n",
		r.ListsInserted, r.CardsInserted, r.CommentsInserted)
	fmt.Printf("   Contacts: %d committed from %d text units\n",
		r.ContactsCommitted, r.TextUnits)
	fmt.Printf("   Skipped:  %d duplicates, %d rejected, %d unparsable\n",
		r.Duplicates, r.Rejected, r.ParseFailures)

	if r.CardFailures > 0 || r.ExtractionFailures > 0 || r.CommitFailures > 0 || r.StoreFailures > 0 {
		fmt.Printf("%s Failures: %d cards, %d extraction calls, %d batch commits, %d store queries (see run log)\n",
			ui.RenderWarn("⚠"), r.CardFailures, r.ExtractionFailures, r.CommitFailures, r.StoreFailures)
	}
}
