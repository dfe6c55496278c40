package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/botdesk/botusage/internal/config"
	"github.com/botdesk/botusage/internal/history"
)

func NewHistoryCommand() *cobra.Command {
	var (
		format  string
		noColor bool
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Recorded platform snapshots",
		Long:  `List global-stats snapshots recorded with 'global --record' or the monitor.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			store, err := history.Open(cfg.DatabasePath)
			if err != nil {
				return fmt.Errorf("failed to open history store: %w", err)
			}
			defer store.Close()

			snapshots, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out, err := newFormatter(format, noColor).FormatSnapshots(snapshots)
			if err != nil {
				return fmt.Errorf("failed to format report: %w", err)
			}
			fmt.Print(out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format (table, json, csv)")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum snapshots to show")

	return cmd
}
