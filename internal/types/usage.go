package types

import (
	"time"
)

// UsageRecord is a single raw usage row as returned by the assistant
// backend. It is never mutated after it is fetched.
type UsageRecord struct {
	BotID        string    `json:"bot_id"`
	UserID       string    `json:"user_id,omitempty"`
	CompanyID    string    `json:"company_id,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
	InputTokens  int       `json:"input_tokens"`
	OutputTokens int       `json:"output_tokens"`
}

// TotalTokens returns input plus output tokens for the record.
func (r UsageRecord) TotalTokens() int {
	return r.InputTokens + r.OutputTokens
}

// QuotaRecord is one row of the admin quota listing. One record exists
// per (company, bot) pair; current_usage is a token count already
// accumulated server-side.
type QuotaRecord struct {
	CompanyID           string  `json:"company_id"`
	Company             string  `json:"company"`
	Siren               string  `json:"siren,omitempty"`
	BotID               string  `json:"bot_id"`
	CurrentUsage        int     `json:"current_usage"`
	RequestsCount       int     `json:"requests_count"`
	EstimatedCost       float64 `json:"estimated_cost"`
	MaxRequestsPerMonth int     `json:"max_requests_per_month"`
}

// LicenseRecord is one row of the license export. Licenses tie a user
// to a bot within a company.
type LicenseRecord struct {
	UserID    string `json:"user_id"`
	CompanyID string `json:"company_id"`
	Company   string `json:"company"`
	BotID     string `json:"bot_id"`
	Status    string `json:"status"`
}

// Active reports whether the license is currently usable.
func (l LicenseRecord) Active() bool {
	return l.Status == "active"
}

// BotUsageSummary aggregates usage for one bot across all records.
type BotUsageSummary struct {
	BotID            string  `json:"bot_id"`
	BotName          string  `json:"bot_name"`
	InputTokens      int     `json:"input_tokens"`
	OutputTokens     int     `json:"output_tokens"`
	TotalTokens      int     `json:"total_tokens"`
	RequestsCount    int     `json:"requests_count"`
	EstimatedCostEUR float64 `json:"estimated_cost_eur"`
	ActiveUsers      int     `json:"active_users,omitempty"`
	CompaniesUsing   int     `json:"companies_using,omitempty"`
}

// CompanyUsageSummary aggregates usage for one company. Grouping is
// always done on CompanyID; Name is a display attribute only.
type CompanyUsageSummary struct {
	CompanyID        string  `json:"company_id"`
	Name             string  `json:"company_name"`
	Siren            string  `json:"siren,omitempty"`
	TotalTokens      int     `json:"total_tokens"`
	TotalRequests    int     `json:"total_requests"`
	EstimatedCostEUR float64 `json:"estimated_cost_eur"`
	UsersCount       int     `json:"users_count"`
	// UtilizationRate is an unclamped integer percentage of the
	// monthly request quota; values above 100 are meaningful.
	UtilizationRate int `json:"utilization_rate"`
	// QuotaConfigured is false when no positive quota was found for
	// the company. UtilizationRate is then computed against a divisor
	// of 1 and should be presented as "no quota".
	QuotaConfigured bool `json:"quota_configured"`
}

// GlobalStats summarizes the whole platform from quota and license
// listings.
type GlobalStats struct {
	TotalUsers     int       `json:"total_users"`
	TotalCompanies int       `json:"total_companies"`
	TotalLicenses  int       `json:"total_licenses"`
	ActiveLicenses int       `json:"active_licenses"`
	TotalTokens    int       `json:"total_tokens_consumed"`
	TotalRequests  int       `json:"total_requests"`
	TotalCostEUR   float64   `json:"total_cost_eur"`
	GeneratedAt    time.Time `json:"generated_at"`
}

// DailyBucket is one day of the charted time series. Day is the
// canonical key (days since the Unix epoch, UTC); the display string
// is derived at render time, never used for grouping.
type DailyBucket struct {
	Day          int `json:"day"`
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	Requests     int `json:"requests"`
}

// Date returns the bucket's calendar day at midnight UTC.
func (b DailyBucket) Date() time.Time {
	return time.Unix(int64(b.Day)*86400, 0).UTC()
}

// Empty reports whether the bucket recorded no activity.
func (b DailyBucket) Empty() bool {
	return b.InputTokens == 0 && b.OutputTokens == 0 && b.Requests == 0
}

// DayOf converts a timestamp to its days-since-epoch key in UTC.
func DayOf(t time.Time) int {
	return int(t.UTC().Unix() / 86400)
}
