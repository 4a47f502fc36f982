package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ksutton/cardsift/internal/trello"
	"github.com/ksutton/cardsift/internal/ui"
)

var boardsCmd = &cobra.Command{
	Use:   "boards",
	Short: "List boards visible to the configured account",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.RequireTrello(); err != nil {
			return err
		}

		client := trello.NewClient(cfg.TrelloKey, cfg.TrelloToken)
		boards, err := client.Boards(cmd.Context())
		if err != nil {
			return err
		}

		if len(boards) == 0 {
			fmt.Println("No boards found.")
			return nil
		}
		for _, b := range boards {
			fmt.Printf("  %s %s\n", b.Name, ui.RenderDim("("+b.ID+")"))
		}
		return nil
	},
}
