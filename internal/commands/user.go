package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/botdesk/botusage/internal/config"
)

func NewUserCommand() *cobra.Command {
	var (
		format  string
		noColor bool
	)

	cmd := &cobra.Command{
		Use:   "user <user-id>",
		Short: "Per-bot drill-down for one user",
		Long:  `Aggregate a single user's raw usage rows per bot.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID := args[0]

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
			records, err := apiClient.UserTokens(ctx, userID)
			if err != nil {
				return fmt.Errorf("failed to fetch user tokens: %w", err)
			}
			names, err := apiClient.Bots(ctx)
			if err != nil {
				return fmt.Errorf("failed to fetch bot directory: %w", err)
			}

			summaries := calc.AggregateByBot(records, names)

			out, err := newFormatter(format, noColor).FormatBotSummaries(summaries)
			if err != nil {
				return fmt.Errorf("failed to format report: %w", err)
			}
			fmt.Print(out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format (table, json, csv)")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	return cmd
}
