package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/botdesk/botusage/internal/calculator"
	"github.com/botdesk/botusage/internal/config"
	"github.com/botdesk/botusage/internal/types"
)

func NewDailyCommand() *cobra.Command {
	var (
		window  string
		botID   string
		userID  string
		format  string
		noColor bool
	)

	cmd := &cobra.Command{
		Use:   "daily",
		Short: "Daily usage time series",
		Long: `Bucket raw usage records into a contiguous, gap-filled daily series
for a bot or a user. Days with no activity appear with zero values.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (botID == "") == (userID == "") {
				return fmt.Errorf("exactly one of --bot or --user is required")
			}

			win, err := calculator.ParseWindow(window)
			if err != nil {
				return err
			}

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
			var records []types.UsageRecord
			if botID != "" {
				records, err = apiClient.BotHistory(ctx, botID)
				if err != nil {
					return fmt.Errorf("failed to fetch bot history: %w", err)
				}
			} else {
				records, err = apiClient.UserTokens(ctx, userID)
				if err != nil {
					return fmt.Errorf("failed to fetch user tokens: %w", err)
				}
			}

			series := calc.BucketDaily(records, win, time.Now())

			out, err := newFormatter(format, noColor).FormatDailySeries(series)
			if err != nil {
				return fmt.Errorf("failed to format report: %w", err)
			}
			fmt.Print(out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&window, "window", "w", "all", "Time window (1d, 7d, 30d, all)")
	cmd.Flags().StringVar(&botID, "bot", "", "Bot id to chart")
	cmd.Flags().StringVar(&userID, "user", "", "User id to chart")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format (table, json, csv)")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	return cmd
}
