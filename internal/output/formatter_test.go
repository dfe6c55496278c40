package output

import (
	"strings"
	"testing"

	"github.com/botdesk/botusage/internal/calculator"
	"github.com/botdesk/botusage/internal/client"
	"github.com/botdesk/botusage/internal/types"
)

func TestFormatNumber(t *testing.T) {
	testCases := []struct {
		input    int
		expected string
	}{
		{0, "0"},
		{7, "7"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-1234, "-1,234"},
	}

	for _, tc := range testCases {
		if got := FormatNumber(tc.input); got != tc.expected {
			t.Errorf("FormatNumber(%d) = %q, want %q", tc.input, got, tc.expected)
		}
	}
}

func TestFormatEUR(t *testing.T) {
	testCases := []struct {
		input    float64
		expected string
	}{
		{0, "0.00€"},
		{0.0217, "0.0217€"},
		{1.5, "1.50€"},
		{123.456, "123.46€"},
	}

	for _, tc := range testCases {
		if got := FormatEUR(tc.input); got != tc.expected {
			t.Errorf("FormatEUR(%v) = %q, want %q", tc.input, got, tc.expected)
		}
	}
}

func TestFormatBotSummariesCSV(t *testing.T) {
	f := NewFormatter(FormatterOptions{Format: "csv"})

	out, err := f.FormatBotSummaries([]types.BotUsageSummary{
		{BotID: "a", BotName: "Alpha, the first", TotalTokens: 150, RequestsCount: 2, EstimatedCostEUR: 0.0007},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus one row, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "bot_id,bot_name,") {
		t.Errorf("unexpected header: %q", lines[0])
	}
	if !strings.Contains(lines[1], `"Alpha, the first"`) {
		t.Errorf("comma in name must be quoted: %q", lines[1])
	}
}

func TestFormatCompanyUsers(t *testing.T) {
	users := []client.CompanyUser{
		{ID: "u1", Email: "jo@acme.test", FirstName: "Jo", LastName: "Martin", Role: "admin", LicensesCount: 2, TotalUsage: 1500},
	}

	f := NewFormatter(FormatterOptions{Format: "csv"})
	out, err := f.FormatCompanyUsers(users)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus one row, got %d lines", len(lines))
	}
	if !strings.Contains(lines[1], "jo@acme.test") {
		t.Errorf("roster row missing email: %q", lines[1])
	}

	table := NewTableFormatter(true).FormatCompanyUsers(users)
	if !strings.Contains(table, "Jo Martin") {
		t.Errorf("roster table missing user name:\n%s", table)
	}

	empty := NewTableFormatter(true).FormatCompanyUsers(nil)
	if !strings.Contains(empty, "No users found") {
		t.Errorf("empty roster must be labeled:\n%s", empty)
	}
}

func TestFormatDailySeriesJSON(t *testing.T) {
	f := NewFormatter(FormatterOptions{Format: "json"})

	series := calculator.Series{
		Window:    calculator.Window7D,
		Effective: calculator.WindowAll,
		Fallback:  true,
		Buckets:   []types.DailyBucket{{Day: 19723, InputTokens: 10, OutputTokens: 5, Requests: 1}},
	}

	out, err := f.FormatDailySeries(series)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{`"effective_window": "all"`, `"fallback": true`, `"input_tokens": 10`} {
		if !strings.Contains(out, want) {
			t.Errorf("JSON output missing %s:\n%s", want, out)
		}
	}
}

func TestFormatCompanySummariesTableShowsNoQuota(t *testing.T) {
	f := NewTableFormatter(true)

	out := f.FormatCompanySummaries([]types.CompanyUsageSummary{
		{CompanyID: "c1", Name: "Acme", TotalRequests: 42, UtilizationRate: 4200, QuotaConfigured: false},
		{CompanyID: "c2", Name: "Globex", TotalRequests: 50, UtilizationRate: 50, QuotaConfigured: true},
	})

	if !strings.Contains(out, "no quota") {
		t.Errorf("unconfigured quota must be labeled, got:\n%s", out)
	}
	if strings.Contains(out, "4200") {
		t.Errorf("fabricated percentage must not be rendered:\n%s", out)
	}
	if !strings.Contains(out, "50%") {
		t.Errorf("configured quota percentage missing:\n%s", out)
	}
}

func TestFormatDailySeriesTableLabelsFallback(t *testing.T) {
	f := NewTableFormatter(true)

	series := calculator.Series{
		Window:    calculator.Window7D,
		Effective: calculator.WindowAll,
		Fallback:  true,
		Buckets:   []types.DailyBucket{{Day: 19723, InputTokens: 10, OutputTokens: 5, Requests: 1}},
	}

	out := f.FormatDailySeries(series)
	if !strings.Contains(out, "widened") {
		t.Errorf("fallback series must be labeled honestly:\n%s", out)
	}
	if !strings.Contains(out, "2024-01-01") {
		t.Errorf("day key 19723 should render as 2024-01-01:\n%s", out)
	}
}
