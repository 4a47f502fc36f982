package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ksutton/cardsift/internal/store"
	"github.com/ksutton/cardsift/internal/sync"
	"github.com/ksutton/cardsift/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show local database status",
	Long: `Display the state of the local database: file location and size,
row counts per table, schema version, and the last synchronized board.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath := cfg.DBPath()

		info, err := os.Stat(dbPath)
		if os.IsNotExist(err) {
			fmt.Printf("\n%s Database not initialized\n", ui.RenderWarn("⚠"))
			fmt.Printf("   Run 'cardsift sync <board>' to create it\n\n")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to stat database: %w", err)
		}

		st, err := store.Open(dbPath)
		if err != nil {
			return err
		}
		defer st.Close()

		counts, err := st.RowCounts(cmd.Context())
		if err != nil {
			return err
		}
		version, err := st.SchemaVersion(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("\n%s Database: %s (%d KB, schema v%d)\n",
			ui.RenderAccent("●"), st.Path(), info.Size()/1024, version)
		fmt.Printf("   Lists:    %d\n", counts.Lists)
		fmt.Printf("   Cards:    %d\n", counts.Cards)
		fmt.Printf("   Comments: %d\n", counts.Comments)
		fmt.Printf("   Contacts: %d\n", counts.Contacts)

		marker, err := sync.ReadMarker(cfg.MarkerPath())
		if err != nil {
			return err
		}
		if marker.BoardID == "" {
			fmt.Printf("   Board:    %s\n\n", ui.RenderDim("none synced yet"))
			return nil
		}
		fmt.Printf("   Board:    %s (%s), last synced %s\n\n",
			marker.BoardName, marker.BoardID,
			marker.SyncedAt.Local().Format("2006-01-02 15:04:05"))
		return nil
	},
}
