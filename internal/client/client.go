// Package client implements the read-only REST client for the
// assistant backend. Every call attaches the injected session's
// bearer token and honors its context; failures surface as errors,
// never as substituted data.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/botdesk/botusage/internal/session"
	"github.com/botdesk/botusage/internal/types"
)

const maxErrorBody = 256

type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *session.Session
}

// Bot is one entry of the available-bots directory.
type Bot struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// GlobalMetrics is the server-computed headline block of the bot
// stats endpoint.
type GlobalMetrics struct {
	TotalTokens   int     `json:"total_tokens"`
	TotalRequests int     `json:"total_requests"`
	TotalCostEUR  float64 `json:"total_cost_eur"`
	ActiveUsers   int     `json:"active_users"`
}

// BotPerformance is one row of the bot stats endpoint.
type BotPerformance struct {
	BotID                 string  `json:"bot_id"`
	BotName               string  `json:"bot_name"`
	InputTokens           int     `json:"input_tokens"`
	OutputTokens          int     `json:"output_tokens"`
	TotalTokens           int     `json:"total_tokens"`
	Requests              int     `json:"requests"`
	CostEUR               float64 `json:"cost_eur"`
	UsersCount            int     `json:"users_count"`
	CompaniesCount        int     `json:"companies_count"`
	AverageResponseTimeMS float64 `json:"average_response_time_ms"`
}

// BotStats is the decoded payload of /admin/dashboard/bot-stats.
type BotStats struct {
	GlobalMetrics  GlobalMetrics    `json:"global_metrics"`
	BotPerformance []BotPerformance `json:"bot_performance"`
}

// CompanyWithStats is one row of /companies/with-stats.
type CompanyWithStats struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Siren           string `json:"siren,omitempty"`
	UsersCount      int    `json:"users_count"`
	TotalLicenses   int    `json:"total_licenses"`
	ActiveLicenses  int    `json:"active_licenses"`
	ExpiredLicenses int    `json:"expired_licenses"`
	TotalUsage      int    `json:"total_usage"`
	TotalQuota      int    `json:"total_quota"`
	UtilizationRate int    `json:"utilization_rate"`
}

// CompanyUser is one row of a company's user roster.
type CompanyUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	JobTitle      string `json:"job_title,omitempty"`
	Role          string `json:"role"`
	CreatedAt     string `json:"created_at,omitempty"`
	LicensesCount int    `json:"licenses_count"`
	TotalUsage    int    `json:"total_usage"`
	TotalQuota    int    `json:"total_quota"`
	LastActivity  string `json:"last_activity,omitempty"`
}

func New(baseURL string, sess *session.Session, timeout time.Duration) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("%w: BACKEND_URL is not set", types.ErrInvalidConfig)
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("%w: invalid BACKEND_URL: %v", types.ErrInvalidConfig, err)
	}
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		session:    sess,
	}, nil
}

// Bots returns the available-bots directory keyed by id.
func (c *Client) Bots(ctx context.Context) (map[string]string, error) {
	var payload struct {
		Bots []Bot `json:"bots"`
	}
	if err := c.get(ctx, "/admin/user-management/bots/available", &payload); err != nil {
		return nil, err
	}
	directory := make(map[string]string, len(payload.Bots))
	for _, bot := range payload.Bots {
		directory[bot.ID] = bot.Name
	}
	return directory, nil
}

// BotStats fetches the server-side dashboard aggregates.
func (c *Client) BotStats(ctx context.Context) (*BotStats, error) {
	var payload struct {
		Success bool     `json:"success"`
		Data    BotStats `json:"data"`
	}
	if err := c.get(ctx, "/admin/dashboard/bot-stats", &payload); err != nil {
		return nil, err
	}
	if !payload.Success {
		return nil, fmt.Errorf("bot-stats request was not successful")
	}
	return &payload.Data, nil
}

// BotHistory fetches the raw usage rows for one bot.
func (c *Client) BotHistory(ctx context.Context, botID string) ([]types.UsageRecord, error) {
	var payload struct {
		Data struct {
			Tokens []types.UsageRecord `json:"tokens"`
		} `json:"data"`
	}
	endpoint := "/admin/dashboard/bot-history/" + url.PathEscape(botID)
	if err := c.get(ctx, endpoint, &payload); err != nil {
		return nil, err
	}
	return payload.Data.Tokens, nil
}

// UserTokens fetches the raw usage rows for one user across bots.
func (c *Client) UserTokens(ctx context.Context, userID string) ([]types.UsageRecord, error) {
	var payload struct {
		Data struct {
			Tokens []types.UsageRecord `json:"tokens"`
		} `json:"data"`
	}
	endpoint := "/user/" + url.PathEscape(userID) + "/tokens"
	if err := c.get(ctx, endpoint, &payload); err != nil {
		return nil, err
	}
	return payload.Data.Tokens, nil
}

// CompaniesWithStats fetches the per-company stats listing.
func (c *Client) CompaniesWithStats(ctx context.Context) ([]CompanyWithStats, error) {
	var payload struct {
		Companies []CompanyWithStats `json:"companies"`
	}
	if err := c.get(ctx, "/companies/with-stats", &payload); err != nil {
		return nil, err
	}
	return payload.Companies, nil
}

// CompanyUsers fetches one company's user roster.
func (c *Client) CompanyUsers(ctx context.Context, companyID string) ([]CompanyUser, error) {
	var payload struct {
		Users []CompanyUser `json:"users"`
	}
	endpoint := "/companies/" + url.PathEscape(companyID) + "/users"
	if err := c.get(ctx, endpoint, &payload); err != nil {
		return nil, err
	}
	return payload.Users, nil
}

// QuotasList fetches the admin quota listing.
func (c *Client) QuotasList(ctx context.Context) ([]types.QuotaRecord, error) {
	var payload struct {
		Quotas []types.QuotaRecord `json:"quotas"`
	}
	if err := c.get(ctx, "/admin/quotas/list", &payload); err != nil {
		return nil, err
	}
	return payload.Quotas, nil
}

// ExportLicenses fetches the license export.
func (c *Client) ExportLicenses(ctx context.Context) ([]types.LicenseRecord, error) {
	var payload struct {
		Licenses []types.LicenseRecord `json:"licenses"`
	}
	if err := c.get(ctx, "/admin/export/licenses", &payload); err != nil {
		return nil, err
	}
	return payload.Licenses, nil
}

func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	token, err := c.session.Token()
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", endpoint, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return types.APIError{
			Endpoint: endpoint,
			Status:   resp.StatusCode,
			Body:     strings.TrimSpace(string(body)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", endpoint, err)
	}
	return nil
}
