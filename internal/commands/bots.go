package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/botdesk/botusage/internal/config"
	"github.com/botdesk/botusage/internal/types"
)

func NewBotsCommand() *cobra.Command {
	var (
		format     string
		noColor    bool
		serverSide bool
	)

	cmd := &cobra.Command{
		Use:   "bots",
		Short: "Per-bot usage report",
		Long:  `Aggregate token usage, request counts and estimated cost per bot.`,
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
			var summaries []types.BotUsageSummary

			if serverSide {
				stats, err := apiClient.BotStats(ctx)
				if err != nil {
					return fmt.Errorf("failed to fetch bot stats: %w", err)
				}
				for _, bot := range stats.BotPerformance {
					summaries = append(summaries, types.BotUsageSummary{
						BotID:            bot.BotID,
						BotName:          bot.BotName,
						InputTokens:      bot.InputTokens,
						OutputTokens:     bot.OutputTokens,
						TotalTokens:      bot.TotalTokens,
						RequestsCount:    bot.Requests,
						EstimatedCostEUR: bot.CostEUR,
						ActiveUsers:      bot.UsersCount,
						CompaniesUsing:   bot.CompaniesCount,
					})
				}
			} else {
				quotas, err := apiClient.QuotasList(ctx)
				if err != nil {
					return fmt.Errorf("failed to fetch quotas: %w", err)
				}
				licenses, err := apiClient.ExportLicenses(ctx)
				if err != nil {
					return fmt.Errorf("failed to fetch licenses: %w", err)
				}
				names, err := apiClient.Bots(ctx)
				if err != nil {
					return fmt.Errorf("failed to fetch bot directory: %w", err)
				}
				summaries = calc.AggregateBotsFromQuotas(quotas, licenses, names)
			}

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
	cmd.Flags().BoolVar(&serverSide, "server", false, "Use the backend's precomputed dashboard aggregates")

	return cmd
}
