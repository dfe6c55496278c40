package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/botdesk/botusage/internal/config"
	"github.com/botdesk/botusage/internal/types"
)

func NewCompaniesCommand() *cobra.Command {
	var (
		format     string
		noColor    bool
		serverSide bool
		usersOf    string
	)

	cmd := &cobra.Command{
		Use:   "companies",
		Short: "Per-company usage report",
		Long: `Aggregate usage per company, including distinct-user headcount and
monthly quota utilization. Companies without a configured quota are
flagged rather than shown with a fabricated percentage.`,
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

			if usersOf != "" {
				users, err := apiClient.CompanyUsers(ctx, usersOf)
				if err != nil {
					return fmt.Errorf("failed to fetch company users: %w", err)
				}
				out, err := newFormatter(format, noColor).FormatCompanyUsers(users)
				if err != nil {
					return fmt.Errorf("failed to format report: %w", err)
				}
				fmt.Print(out)
				return nil
			}

			var summaries []types.CompanyUsageSummary

			if serverSide {
				companies, err := apiClient.CompaniesWithStats(ctx)
				if err != nil {
					return fmt.Errorf("failed to fetch company stats: %w", err)
				}
				for _, company := range companies {
					summaries = append(summaries, types.CompanyUsageSummary{
						CompanyID:       company.ID,
						Name:            company.Name,
						Siren:           company.Siren,
						TotalTokens:     company.TotalUsage,
						UsersCount:      company.UsersCount,
						UtilizationRate: company.UtilizationRate,
						QuotaConfigured: company.TotalQuota > 0,
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
				summaries = calc.AggregateByCompany(quotas, licenses)
			}

			out, err := newFormatter(format, noColor).FormatCompanySummaries(summaries)
			if err != nil {
				return fmt.Errorf("failed to format report: %w", err)
			}
			fmt.Print(out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format (table, json, csv)")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	cmd.Flags().BoolVar(&serverSide, "server", false, "Use the backend's precomputed company stats")
	cmd.Flags().StringVar(&usersOf, "users", "", "List the user roster of one company id instead of the report")

	return cmd
}
