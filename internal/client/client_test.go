package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/botdesk/botusage/internal/session"
	"github.com/botdesk/botusage/internal/types"
)

func testSession() *session.Session {
	return session.New("test-token", time.Time{})
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := New(server.URL, testSession(), 5*time.Second)
	require.NoError(t, err)
	return c, server
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New("", testSession(), 0)
	assert.ErrorIs(t, err, types.ErrInvalidConfig)
}

func TestQuotasListSendsBearerToken(t *testing.T) {
	var gotAuth, gotPath string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"quotas":[
			{"company_id":"c1","company":"Acme","bot_id":"a","current_usage":500,"requests_count":5,"estimated_cost":1.25,"max_requests_per_month":100}
		]}`))
	}))

	quotas, err := c.QuotasList(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, "/admin/quotas/list", gotPath)
	require.Len(t, quotas, 1)
	assert.Equal(t, "c1", quotas[0].CompanyID)
	assert.Equal(t, 500, quotas[0].CurrentUsage)
	assert.Equal(t, 100, quotas[0].MaxRequestsPerMonth)
}

func TestUserTokensDecodesEnvelope(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user/u-42/tokens", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":{"tokens":[
			{"bot_id":"a","input_tokens":100,"output_tokens":50,"timestamp":"2024-01-01T10:00:00Z"}
		]}}`))
	}))

	records, err := c.UserTokens(context.Background(), "u-42")
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, "a", records[0].BotID)
	assert.Equal(t, 150, records[0].TotalTokens())
	assert.Equal(t, 2024, records[0].Timestamp.Year())
}

func TestCompanyUsersDecodesRoster(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/companies/c-7/users", r.URL.Path)
		_, _ = w.Write([]byte(`{"users":[
			{"id":"u1","email":"jo@acme.test","first_name":"Jo","last_name":"Martin","role":"admin","licenses_count":2,"total_usage":1500,"total_quota":5000}
		]}`))
	}))

	users, err := c.CompanyUsers(context.Background(), "c-7")
	require.NoError(t, err)

	require.Len(t, users, 1)
	assert.Equal(t, "jo@acme.test", users[0].Email)
	assert.Equal(t, 2, users[0].LicensesCount)
	assert.Equal(t, 1500, users[0].TotalUsage)
}

func TestBotStatsRejectsUnsuccessfulPayload(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"data":{}}`))
	}))

	_, err := c.BotStats(context.Background())
	assert.Error(t, err)
}

func TestBotStatsDecodesPerformance(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/dashboard/bot-stats", r.URL.Path)
		_, _ = w.Write([]byte(`{"success":true,"data":{
			"global_metrics":{"total_tokens":1500,"total_requests":15},
			"bot_performance":[{"bot_id":"a","bot_name":"Alpha","total_tokens":1500,"requests":15,"cost_eur":3.2}]
		}}`))
	}))

	stats, err := c.BotStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1500, stats.GlobalMetrics.TotalTokens)
	require.Len(t, stats.BotPerformance, 1)
	assert.Equal(t, "Alpha", stats.BotPerformance[0].BotName)
}

func TestUnauthorizedMapsToSentinel(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "token expired", http.StatusUnauthorized)
	}))

	_, err := c.QuotasList(context.Background())
	require.Error(t, err)

	assert.ErrorIs(t, err, types.ErrUnauthorized)
	var apiErr types.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Contains(t, apiErr.Body, "token expired")
}

func TestNotFoundMapsToSentinel(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	_, err := c.BotHistory(context.Background(), "ghost")
	assert.ErrorIs(t, err, types.ErrDataNotFound)
}

func TestMissingSessionShortCircuits(t *testing.T) {
	requests := 0
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	c.session = session.New("", time.Time{})

	_, err := c.QuotasList(context.Background())

	assert.ErrorIs(t, err, types.ErrNoSession)
	assert.Zero(t, requests, "no network call without a session")
}

func TestExpiredSessionShortCircuits(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	c.session = session.New("stale", time.Now().Add(-time.Minute))

	_, err := c.ExportLicenses(context.Background())
	assert.ErrorIs(t, err, types.ErrNoSession)
}

func TestContextCancellation(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.QuotasList(ctx)
	assert.Error(t, err)
}
