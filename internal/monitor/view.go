package monitor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/botdesk/botusage/internal/output"
)

const (
	chartWidth  = 64
	chartHeight = 8
	maxRows     = 6
)

func (m model) View() string {
	var content strings.Builder

	headerStyle := lipgloss.NewStyle().Bold(true).MarginBottom(1)
	if !m.options.NoColor {
		headerStyle = headerStyle.Foreground(lipgloss.Color("205"))
	}
	content.WriteString(headerStyle.Render("Bot Usage Monitor"))
	content.WriteString("\n\n")

	if m.err != nil {
		// Never render invented numbers: a failed fetch is a visible
		// banner, not silently substituted data.
		banner := lipgloss.NewStyle().Bold(true)
		if !m.options.NoColor {
			banner = banner.Foreground(lipgloss.Color("196"))
		}
		content.WriteString(banner.Render("DATA UNAVAILABLE"))
		content.WriteString(fmt.Sprintf("\n%v\n", m.err))
		content.WriteString("\nPress 'r' to retry, 'q' to quit\n")
		return content.String()
	}

	if m.loading && m.lastUpdate.IsZero() {
		content.WriteString("Loading…\n")
		return content.String()
	}

	content.WriteString(m.summaryView())
	content.WriteString("\n")
	content.WriteString(m.chartView())
	content.WriteString("\n")
	content.WriteString(m.companiesView())

	help := "1/7/3/a window · r refresh · q quit"
	if m.loading {
		help = "refreshing… · " + help
	}
	content.WriteString("\n" + lipgloss.NewStyle().Faint(true).Render(help) + "\n")

	return content.String()
}

func (m model) summaryView() string {
	summaryStyle := lipgloss.NewStyle().Padding(0, 1)
	if !m.options.NoColor {
		summaryStyle = summaryStyle.
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240"))
	}

	summary := fmt.Sprintf(
		"Tokens: %s   Requests: %s   Cost: %s\nUsers: %s   Companies: %s   Active licenses: %s/%s",
		output.FormatNumber(m.stats.TotalTokens),
		output.FormatNumber(m.stats.TotalRequests),
		output.FormatEUR(m.stats.TotalCostEUR),
		output.FormatNumber(m.stats.TotalUsers),
		output.FormatNumber(m.stats.TotalCompanies),
		output.FormatNumber(m.stats.ActiveLicenses),
		output.FormatNumber(m.stats.TotalLicenses),
	)
	return summaryStyle.Render(summary) + "\n"
}

func (m model) chartView() string {
	if len(m.series.Buckets) == 0 {
		return lipgloss.NewStyle().Faint(true).Render("No activity to chart") + "\n"
	}

	data := make([]float64, len(m.series.Buckets))
	for i, bucket := range m.series.Buckets {
		data[i] = float64(bucket.InputTokens + bucket.OutputTokens)
	}

	botName := m.chartBot
	for _, bot := range m.bots {
		if bot.BotID == m.chartBot {
			botName = bot.BotName
			break
		}
	}

	first := m.series.Buckets[0].Date().Format("Jan 02")
	last := m.series.Buckets[len(m.series.Buckets)-1].Date().Format("Jan 02")
	caption := fmt.Sprintf("%s tokens/day · %s – %s", botName, first, last)
	if m.series.Fallback {
		caption += " (widened)"
	}

	return asciigraph.Plot(data,
		asciigraph.Height(chartHeight),
		asciigraph.Width(chartWidth),
		asciigraph.Caption(caption),
	) + "\n"
}

func (m model) companiesView() string {
	if len(m.companies) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Companies by usage:\n")
	for i, company := range m.companies {
		if i >= maxRows {
			b.WriteString(fmt.Sprintf("…and %d more\n", len(m.companies)-maxRows))
			break
		}
		quota := "no quota"
		if company.QuotaConfigured {
			quota = fmt.Sprintf("%3d%%", company.UtilizationRate)
			if !m.options.NoColor {
				quota = lipgloss.NewStyle().
					Foreground(lipgloss.Color(utilizationColor(company.UtilizationRate))).
					Render(quota)
			}
		}
		b.WriteString(fmt.Sprintf("  %-24s %10s tok  %6s req  %s\n",
			truncate(company.Name, 24),
			output.FormatNumber(company.TotalTokens),
			output.FormatNumber(company.TotalRequests),
			quota,
		))
	}
	return b.String()
}

// utilizationColor blends green through red as a company approaches
// (or blows past) its monthly quota.
func utilizationColor(rate int) string {
	t := float64(rate) / 100
	if t > 1 {
		t = 1
	}
	green, _ := colorful.Hex("#55cc55")
	red, _ := colorful.Hex("#cc5555")
	return green.BlendHcl(red, t).Clamped().Hex()
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-1]) + "…"
}
