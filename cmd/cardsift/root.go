package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ksutton/cardsift/internal/config"
)

var (
	cfg         *config.Config
	dataDirFlag string
)

var rootCmd = &cobra.Command{
	Use:   "cardsift",
	Short: "Sync a Trello board and extract contacts from its cards",
	Long: `cardsift pulls a Trello board (lists, cards, comments) into a local
SQLite database, then runs contact extraction over each card's text,
validating and deduplicating the results before committing them.

Selecting a different board than last time triggers a full resync;
re-running against the same board is incremental and idempotent.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		if dataDirFlag != "" {
			cfg.DataDir = dataDirFlag
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}

		// Application log rotates; the per-run failure log is separate
		// and truncated by each sync run.
		log.SetOutput(&lumberjack.Logger{
			Filename:   cfg.AppLogPath(),
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		})
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "",
		"data directory for the database, marker and logs (default ~/.cardsift)")

	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(boardsCmd)
	rootCmd.AddCommand(statusCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
