package calculator

import (
	"sort"
	"time"

	"github.com/botdesk/botusage/internal/pricing"
	"github.com/botdesk/botusage/internal/types"
)

// FallbackBotName is used for bot ids with no directory entry. The
// record is still aggregated under its id; nothing is dropped.
const FallbackBotName = "Unknown bot"

type Calculator struct {
	table *pricing.Table
}

// BotDirectory maps bot ids to display names.
type BotDirectory map[string]string

func New(table *pricing.Table) *Calculator {
	if table == nil {
		table = pricing.Default()
	}
	return &Calculator{table: table}
}

// Table exposes the injected pricing table.
func (c *Calculator) Table() *pricing.Table {
	return c.table
}

// AggregateByBot groups raw usage records by bot id in a single pass.
// Totals and cost are recomputed at the end of the pass, and the
// result is sorted descending by total tokens.
func (c *Calculator) AggregateByBot(records []types.UsageRecord, names BotDirectory) []types.BotUsageSummary {
	byBot := make(map[string]*types.BotUsageSummary)

	for _, rec := range records {
		summary, ok := byBot[rec.BotID]
		if !ok {
			name, known := names[rec.BotID]
			if !known {
				name = FallbackBotName
			}
			summary = &types.BotUsageSummary{BotID: rec.BotID, BotName: name}
			byBot[rec.BotID] = summary
		}
		summary.InputTokens += rec.InputTokens
		summary.OutputTokens += rec.OutputTokens
		summary.RequestsCount++
	}

	summaries := make([]types.BotUsageSummary, 0, len(byBot))
	for _, summary := range byBot {
		summary.TotalTokens = summary.InputTokens + summary.OutputTokens
		summary.EstimatedCostEUR = c.table.CostEUR(pricing.DefaultModel, summary.InputTokens, summary.OutputTokens).TotalEUR
		summaries = append(summaries, *summary)
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].TotalTokens != summaries[j].TotalTokens {
			return summaries[i].TotalTokens > summaries[j].TotalTokens
		}
		return summaries[i].BotID < summaries[j].BotID
	})

	return summaries
}

// AggregateBotsFromQuotas builds per-bot summaries from the quota
// listing, then cross-references licenses to count distinct users and
// companies per bot.
func (c *Calculator) AggregateBotsFromQuotas(quotas []types.QuotaRecord, licenses []types.LicenseRecord, names BotDirectory) []types.BotUsageSummary {
	byBot := make(map[string]*types.BotUsageSummary)

	for _, q := range quotas {
		botID := q.BotID
		if botID == "" {
			botID = "unknown"
		}
		summary, ok := byBot[botID]
		if !ok {
			name, known := names[botID]
			if !known {
				name = FallbackBotName
			}
			summary = &types.BotUsageSummary{BotID: botID, BotName: name}
			byBot[botID] = summary
		}
		summary.TotalTokens += q.CurrentUsage
		summary.RequestsCount += q.RequestsCount
		summary.EstimatedCostEUR += q.EstimatedCost
	}

	users := make(map[string]map[string]struct{})
	companies := make(map[string]map[string]struct{})
	for _, lic := range licenses {
		if _, ok := byBot[lic.BotID]; !ok {
			continue
		}
		if users[lic.BotID] == nil {
			users[lic.BotID] = make(map[string]struct{})
			companies[lic.BotID] = make(map[string]struct{})
		}
		users[lic.BotID][lic.UserID] = struct{}{}
		companies[lic.BotID][lic.CompanyID] = struct{}{}
	}

	summaries := make([]types.BotUsageSummary, 0, len(byBot))
	for botID, summary := range byBot {
		summary.ActiveUsers = len(users[botID])
		summary.CompaniesUsing = len(companies[botID])
		summaries = append(summaries, *summary)
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].TotalTokens != summaries[j].TotalTokens {
			return summaries[i].TotalTokens > summaries[j].TotalTokens
		}
		return summaries[i].BotID < summaries[j].BotID
	})

	return summaries
}

// AggregateByCompany groups quota records by company id and
// cross-references licenses for the distinct-user headcount.
//
// The utilization divisor is the last quota value seen for the
// company, zero included; a non-positive final value gets a divisor
// of 1 and QuotaConfigured=false so callers can surface "no quota"
// instead of the resulting percentage.
func (c *Calculator) AggregateByCompany(quotas []types.QuotaRecord, licenses []types.LicenseRecord) []types.CompanyUsageSummary {
	type companyAcc struct {
		summary  types.CompanyUsageSummary
		maxQuota int
	}
	byCompany := make(map[string]*companyAcc)

	for _, q := range quotas {
		acc, ok := byCompany[q.CompanyID]
		if !ok {
			acc = &companyAcc{summary: types.CompanyUsageSummary{
				CompanyID: q.CompanyID,
				Name:      q.Company,
				Siren:     q.Siren,
			}}
			byCompany[q.CompanyID] = acc
		}
		acc.summary.TotalTokens += q.CurrentUsage
		acc.summary.TotalRequests += q.RequestsCount
		acc.summary.EstimatedCostEUR += q.EstimatedCost
		acc.maxQuota = q.MaxRequestsPerMonth
	}

	usersByCompany := make(map[string]map[string]struct{})
	for _, lic := range licenses {
		if _, ok := byCompany[lic.CompanyID]; !ok {
			continue
		}
		if usersByCompany[lic.CompanyID] == nil {
			usersByCompany[lic.CompanyID] = make(map[string]struct{})
		}
		usersByCompany[lic.CompanyID][lic.UserID] = struct{}{}
	}

	summaries := make([]types.CompanyUsageSummary, 0, len(byCompany))
	for companyID, acc := range byCompany {
		divisor := acc.maxQuota
		acc.summary.QuotaConfigured = divisor > 0
		if divisor <= 0 {
			divisor = 1
		}
		acc.summary.UtilizationRate = int(float64(acc.summary.TotalRequests)/float64(divisor)*100 + 0.5)
		acc.summary.UsersCount = len(usersByCompany[companyID])
		summaries = append(summaries, acc.summary)
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].TotalTokens != summaries[j].TotalTokens {
			return summaries[i].TotalTokens > summaries[j].TotalTokens
		}
		return summaries[i].CompanyID < summaries[j].CompanyID
	})

	return summaries
}

// GlobalStats computes platform totals from quota and license
// listings.
func (c *Calculator) GlobalStats(quotas []types.QuotaRecord, licenses []types.LicenseRecord) types.GlobalStats {
	stats := types.GlobalStats{GeneratedAt: time.Now().UTC()}

	for _, q := range quotas {
		stats.TotalTokens += q.CurrentUsage
		stats.TotalRequests += q.RequestsCount
		stats.TotalCostEUR += q.EstimatedCost
	}

	users := make(map[string]struct{})
	companies := make(map[string]struct{})
	for _, lic := range licenses {
		users[lic.UserID] = struct{}{}
		companies[lic.CompanyID] = struct{}{}
		stats.TotalLicenses++
		if lic.Active() {
			stats.ActiveLicenses++
		}
	}
	stats.TotalUsers = len(users)
	stats.TotalCompanies = len(companies)

	return stats
}
