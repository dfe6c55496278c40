package output

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/botdesk/botusage/internal/calculator"
	"github.com/botdesk/botusage/internal/client"
	"github.com/botdesk/botusage/internal/history"
	"github.com/botdesk/botusage/internal/types"
)

type Formatter struct {
	options FormatterOptions
}

type FormatterOptions struct {
	Format  string // "table", "json", "csv"
	NoColor bool
}

func NewFormatter(opts FormatterOptions) *Formatter {
	if opts.Format == "" {
		opts.Format = "table"
	}
	if !opts.NoColor && !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		opts.NoColor = true
	}
	return &Formatter{options: opts}
}

func (f *Formatter) FormatBotSummaries(summaries []types.BotUsageSummary) (string, error) {
	switch f.options.Format {
	case "json":
		return f.formatJSON(summaries)
	case "csv":
		return f.formatBotCSV(summaries), nil
	default:
		return NewTableFormatter(f.options.NoColor).FormatBotSummaries(summaries), nil
	}
}

func (f *Formatter) FormatCompanySummaries(summaries []types.CompanyUsageSummary) (string, error) {
	switch f.options.Format {
	case "json":
		return f.formatJSON(summaries)
	case "csv":
		return f.formatCompanyCSV(summaries), nil
	default:
		return NewTableFormatter(f.options.NoColor).FormatCompanySummaries(summaries), nil
	}
}

func (f *Formatter) FormatGlobalStats(stats types.GlobalStats) (string, error) {
	switch f.options.Format {
	case "json":
		return f.formatJSON(stats)
	case "csv":
		return f.formatGlobalCSV(stats), nil
	default:
		return NewTableFormatter(f.options.NoColor).FormatGlobalStats(stats), nil
	}
}

func (f *Formatter) FormatDailySeries(series calculator.Series) (string, error) {
	switch f.options.Format {
	case "json":
		return f.formatJSON(series)
	case "csv":
		return f.formatSeriesCSV(series), nil
	default:
		return NewTableFormatter(f.options.NoColor).FormatDailySeries(series), nil
	}
}

func (f *Formatter) FormatCompanyUsers(users []client.CompanyUser) (string, error) {
	switch f.options.Format {
	case "json":
		return f.formatJSON(users)
	case "csv":
		return f.formatCompanyUserCSV(users), nil
	default:
		return NewTableFormatter(f.options.NoColor).FormatCompanyUsers(users), nil
	}
}

func (f *Formatter) FormatSnapshots(snapshots []history.Snapshot) (string, error) {
	switch f.options.Format {
	case "json":
		return f.formatJSON(snapshots)
	case "csv":
		return f.formatSnapshotCSV(snapshots), nil
	default:
		return NewTableFormatter(f.options.NoColor).FormatSnapshots(snapshots), nil
	}
}

func (f *Formatter) formatJSON(data interface{}) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData) + "\n", nil
}

func (f *Formatter) formatBotCSV(summaries []types.BotUsageSummary) string {
	var output strings.Builder
	output.WriteString("bot_id,bot_name,input_tokens,output_tokens,total_tokens,requests_count,estimated_cost_eur,active_users,companies_using\n")
	for _, s := range summaries {
		output.WriteString(fmt.Sprintf("%s,%s,%d,%d,%d,%d,%.4f,%d,%d\n",
			csvEscape(s.BotID), csvEscape(s.BotName),
			s.InputTokens, s.OutputTokens, s.TotalTokens,
			s.RequestsCount, s.EstimatedCostEUR,
			s.ActiveUsers, s.CompaniesUsing,
		))
	}
	return output.String()
}

func (f *Formatter) formatCompanyCSV(summaries []types.CompanyUsageSummary) string {
	var output strings.Builder
	output.WriteString("company_id,company_name,siren,total_tokens,total_requests,estimated_cost_eur,users_count,utilization_rate,quota_configured\n")
	for _, s := range summaries {
		output.WriteString(fmt.Sprintf("%s,%s,%s,%d,%d,%.4f,%d,%d,%t\n",
			csvEscape(s.CompanyID), csvEscape(s.Name), csvEscape(s.Siren),
			s.TotalTokens, s.TotalRequests, s.EstimatedCostEUR,
			s.UsersCount, s.UtilizationRate, s.QuotaConfigured,
		))
	}
	return output.String()
}

func (f *Formatter) formatGlobalCSV(stats types.GlobalStats) string {
	var output strings.Builder
	output.WriteString("generated_at,total_users,total_companies,total_licenses,active_licenses,total_tokens,total_requests,total_cost_eur\n")
	output.WriteString(fmt.Sprintf("%s,%d,%d,%d,%d,%d,%d,%.4f\n",
		stats.GeneratedAt.Format(time.RFC3339),
		stats.TotalUsers, stats.TotalCompanies,
		stats.TotalLicenses, stats.ActiveLicenses,
		stats.TotalTokens, stats.TotalRequests, stats.TotalCostEUR,
	))
	return output.String()
}

func (f *Formatter) formatSeriesCSV(series calculator.Series) string {
	var output strings.Builder
	output.WriteString("date,input_tokens,output_tokens,requests\n")
	for _, bucket := range series.Buckets {
		output.WriteString(fmt.Sprintf("%s,%d,%d,%d\n",
			bucket.Date().Format("2006-01-02"),
			bucket.InputTokens, bucket.OutputTokens, bucket.Requests,
		))
	}
	return output.String()
}

func (f *Formatter) formatCompanyUserCSV(users []client.CompanyUser) string {
	var output strings.Builder
	output.WriteString("user_id,email,first_name,last_name,role,licenses_count,total_usage,total_quota\n")
	for _, u := range users {
		output.WriteString(fmt.Sprintf("%s,%s,%s,%s,%s,%d,%d,%d\n",
			csvEscape(u.ID), csvEscape(u.Email),
			csvEscape(u.FirstName), csvEscape(u.LastName), csvEscape(u.Role),
			u.LicensesCount, u.TotalUsage, u.TotalQuota,
		))
	}
	return output.String()
}

func (f *Formatter) formatSnapshotCSV(snapshots []history.Snapshot) string {
	var output strings.Builder
	output.WriteString("recorded_at,total_users,total_companies,total_licenses,active_licenses,total_tokens,total_requests,total_cost_eur\n")
	for _, snap := range snapshots {
		output.WriteString(fmt.Sprintf("%s,%d,%d,%d,%d,%d,%d,%.4f\n",
			snap.RecordedAt.Format(time.RFC3339),
			snap.Stats.TotalUsers, snap.Stats.TotalCompanies,
			snap.Stats.TotalLicenses, snap.Stats.ActiveLicenses,
			snap.Stats.TotalTokens, snap.Stats.TotalRequests,
			snap.Stats.TotalCostEUR,
		))
	}
	return output.String()
}

func csvEscape(cell string) string {
	if strings.ContainsAny(cell, "\",\n") {
		return "\"" + strings.ReplaceAll(cell, "\"", "\"\"") + "\""
	}
	return cell
}

// FormatNumber renders an integer with thousands separators.
func FormatNumber(n int) string {
	str := strconv.Itoa(n)
	negative := strings.HasPrefix(str, "-")
	if negative {
		str = str[1:]
	}
	if len(str) <= 3 {
		if negative {
			return "-" + str
		}
		return str
	}

	var result strings.Builder
	if negative {
		result.WriteRune('-')
	}
	for i, digit := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(digit)
	}
	return result.String()
}

// FormatEUR renders cost amounts: 4 decimals below one euro keeps the
// small per-request estimates readable, 2 decimals above.
func FormatEUR(amount float64) string {
	if amount != 0 && amount < 1 {
		return fmt.Sprintf("%.4f€", amount)
	}
	return fmt.Sprintf("%.2f€", amount)
}
