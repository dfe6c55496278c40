package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/botdesk/botusage/internal/config"
	"github.com/botdesk/botusage/internal/history"
	"github.com/botdesk/botusage/internal/logger"
)

func NewGlobalCommand() *cobra.Command {
	var (
		format  string
		noColor bool
		record  bool
	)

	cmd := &cobra.Command{
		Use:   "global",
		Short: "Platform-wide totals",
		Long:  `Compute platform totals from the quota and license listings.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			apiClient, err := newClient(cfg)
			if err != nil {
				return err
			}
			calc, err := newCalculator(cfg)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			quotas, err := apiClient.QuotasList(ctx)
			if err != nil {
				return fmt.Errorf("failed to fetch quotas: %w", err)
			}
			licenses, err := apiClient.ExportLicenses(ctx)
			if err != nil {
				return fmt.Errorf("failed to fetch licenses: %w", err)
			}

			stats := calc.GlobalStats(quotas, licenses)

			if record {
				store, err := history.Open(cfg.DatabasePath)
				if err != nil {
					return fmt.Errorf("failed to open history store: %w", err)
				}
				defer store.Close()
				if _, err := store.Save(ctx, stats); err != nil {
					return err
				}
				logger.Info("snapshot recorded", "path", store.Path())
			}

			out, err := newFormatter(format, noColor).FormatGlobalStats(stats)
			if err != nil {
				return fmt.Errorf("failed to format report: %w", err)
			}
			fmt.Print(out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format (table, json, csv)")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	cmd.Flags().BoolVar(&record, "record", false, "Append a snapshot to the local history database")

	return cmd
}
