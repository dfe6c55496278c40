package output

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/botdesk/botusage/internal/calculator"
	"github.com/botdesk/botusage/internal/client"
	"github.com/botdesk/botusage/internal/history"
	"github.com/botdesk/botusage/internal/types"
)

// TableFormatter renders the aggregated structures with tablewriter.
type TableFormatter struct {
	noColor bool
}

func NewTableFormatter(noColor bool) *TableFormatter {
	return &TableFormatter{noColor: noColor}
}

func (f *TableFormatter) FormatBotSummaries(summaries []types.BotUsageSummary) string {
	if len(summaries) == 0 {
		return f.emptyReport("No bot usage data available")
	}

	var output strings.Builder
	output.WriteString(f.title("Bot Usage"))

	var buf bytes.Buffer
	table := f.newTable(&buf)
	table.Header([]string{"Bot", "Input", "Output", "Total\nTokens", "Requests", "Cost\n(EUR)"})

	var totalTokens, totalRequests int
	var totalCost float64
	for _, s := range summaries {
		totalTokens += s.TotalTokens
		totalRequests += s.RequestsCount
		totalCost += s.EstimatedCostEUR
		table.Append([]string{
			s.BotName,
			FormatNumber(s.InputTokens),
			FormatNumber(s.OutputTokens),
			FormatNumber(s.TotalTokens),
			FormatNumber(s.RequestsCount),
			FormatEUR(s.EstimatedCostEUR),
		})
	}
	table.Footer([]string{
		"Total", "", "",
		FormatNumber(totalTokens),
		FormatNumber(totalRequests),
		FormatEUR(totalCost),
	})
	table.Render()

	output.Write(buf.Bytes())
	return output.String()
}

func (f *TableFormatter) FormatCompanySummaries(summaries []types.CompanyUsageSummary) string {
	if len(summaries) == 0 {
		return f.emptyReport("No company usage data available")
	}

	var output strings.Builder
	output.WriteString(f.title("Company Usage"))

	var buf bytes.Buffer
	table := f.newTable(&buf)
	table.Header([]string{"Company", "Tokens", "Requests", "Cost\n(EUR)", "Users", "Quota\nUsed"})

	for _, s := range summaries {
		utilization := fmt.Sprintf("%d%%", s.UtilizationRate)
		if !s.QuotaConfigured {
			utilization = "no quota"
		}
		table.Append([]string{
			s.Name,
			FormatNumber(s.TotalTokens),
			FormatNumber(s.TotalRequests),
			FormatEUR(s.EstimatedCostEUR),
			FormatNumber(s.UsersCount),
			utilization,
		})
	}
	table.Render()

	output.Write(buf.Bytes())
	return output.String()
}

func (f *TableFormatter) FormatGlobalStats(stats types.GlobalStats) string {
	summaryStyle := lipgloss.NewStyle().Padding(1)
	if !f.noColor {
		summaryStyle = summaryStyle.
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240"))
	}

	summary := fmt.Sprintf(
		"Users: %s across %s companies\nLicenses: %s (%s active)\nTokens: %s\nRequests: %s\nEstimated Cost: %s",
		FormatNumber(stats.TotalUsers),
		FormatNumber(stats.TotalCompanies),
		FormatNumber(stats.TotalLicenses),
		FormatNumber(stats.ActiveLicenses),
		FormatNumber(stats.TotalTokens),
		FormatNumber(stats.TotalRequests),
		FormatEUR(stats.TotalCostEUR),
	)

	return f.title("Platform Totals") + summaryStyle.Render(summary) + "\n"
}

func (f *TableFormatter) FormatDailySeries(series calculator.Series) string {
	if len(series.Buckets) == 0 {
		return f.emptyReport("No usage data in the selected window")
	}

	var output strings.Builder
	label := fmt.Sprintf("Daily Usage (%s)", series.Effective)
	if series.Fallback {
		label += " — window widened to cover available data"
	}
	output.WriteString(f.title(label))

	var buf bytes.Buffer
	table := f.newTable(&buf)
	table.Header([]string{"Date", "Input", "Output", "Requests"})

	var totalInput, totalOutput, totalRequests int
	for _, bucket := range series.Buckets {
		totalInput += bucket.InputTokens
		totalOutput += bucket.OutputTokens
		totalRequests += bucket.Requests
		table.Append([]string{
			bucket.Date().Format("2006-01-02"),
			FormatNumber(bucket.InputTokens),
			FormatNumber(bucket.OutputTokens),
			FormatNumber(bucket.Requests),
		})
	}
	table.Footer([]string{
		"Total",
		FormatNumber(totalInput),
		FormatNumber(totalOutput),
		FormatNumber(totalRequests),
	})
	table.Render()

	output.Write(buf.Bytes())
	return output.String()
}

func (f *TableFormatter) FormatCompanyUsers(users []client.CompanyUser) string {
	if len(users) == 0 {
		return f.emptyReport("No users found for this company")
	}

	var output strings.Builder
	output.WriteString(f.title("Company Users"))

	var buf bytes.Buffer
	table := f.newTable(&buf)
	table.Header([]string{"Email", "Name", "Role", "Licenses", "Usage", "Quota"})

	for _, u := range users {
		name := strings.TrimSpace(u.FirstName + " " + u.LastName)
		table.Append([]string{
			u.Email,
			name,
			u.Role,
			FormatNumber(u.LicensesCount),
			FormatNumber(u.TotalUsage),
			FormatNumber(u.TotalQuota),
		})
	}
	table.Render()

	output.Write(buf.Bytes())
	return output.String()
}

func (f *TableFormatter) FormatSnapshots(snapshots []history.Snapshot) string {
	if len(snapshots) == 0 {
		return f.emptyReport("No snapshots recorded yet")
	}

	var output strings.Builder
	output.WriteString(f.title("Recorded Snapshots"))

	var buf bytes.Buffer
	table := f.newTable(&buf)
	table.Header([]string{"Recorded", "Tokens", "Requests", "Users", "Cost\n(EUR)"})

	for _, snap := range snapshots {
		table.Append([]string{
			snap.RecordedAt.Local().Format(time.DateTime),
			FormatNumber(snap.Stats.TotalTokens),
			FormatNumber(snap.Stats.TotalRequests),
			FormatNumber(snap.Stats.TotalUsers),
			FormatEUR(snap.Stats.TotalCostEUR),
		})
	}
	table.Render()

	output.Write(buf.Bytes())
	return output.String()
}

func (f *TableFormatter) newTable(buf *bytes.Buffer) *tablewriter.Table {
	return tablewriter.NewTable(buf,
		tablewriter.WithRenderer(renderer.NewBlueprint(tw.Rendition{
			Settings: tw.Settings{Separators: tw.Separators{BetweenRows: tw.On}},
		})),
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignRight},
			},
		}),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)
}

func (f *TableFormatter) title(text string) string {
	style := lipgloss.NewStyle().Bold(true)
	if !f.noColor {
		style = style.Foreground(lipgloss.Color("205"))
	}
	return "\n" + style.Render(text) + "\n\n"
}

func (f *TableFormatter) emptyReport(message string) string {
	style := lipgloss.NewStyle().Faint(true)
	return "\n" + style.Render(message) + "\n"
}
