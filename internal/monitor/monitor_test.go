package monitor

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/botdesk/botusage/internal/calculator"
	"github.com/botdesk/botusage/internal/history"
	"github.com/botdesk/botusage/internal/types"
)

func newTestModel() model {
	return initialModel(Options{NoColor: true, Window: calculator.WindowAll}, nil, calculator.New(nil), nil)
}

func update(t *testing.T, m model, msg tea.Msg) model {
	t.Helper()
	next, _ := m.Update(msg)
	result, ok := next.(model)
	require.True(t, ok)
	return result
}

func TestCurrentGenerationIsApplied(t *testing.T) {
	m := newTestModel()

	m = update(t, m, dataMsg{
		seq:   0,
		stats: types.GlobalStats{TotalTokens: 1000},
	})

	assert.False(t, m.loading)
	assert.Equal(t, 1000, m.stats.TotalTokens)
	assert.NoError(t, m.err)
}

func TestStaleGenerationIsDropped(t *testing.T) {
	m := newTestModel()
	m = update(t, m, dataMsg{seq: 0, stats: types.GlobalStats{TotalTokens: 1000}})

	// A refresh bumps the generation before the slow response lands.
	m, _ = m.refetch()
	require.Equal(t, 1, m.seq)

	// The stale response from generation 0 arrives late: ignored.
	m = update(t, m, dataMsg{seq: 0, stats: types.GlobalStats{TotalTokens: 9999}})
	assert.Equal(t, 1000, m.stats.TotalTokens, "stale response must not overwrite state")
	assert.True(t, m.loading, "still waiting for the current generation")

	// The current response wins.
	m = update(t, m, dataMsg{seq: 1, stats: types.GlobalStats{TotalTokens: 2000}})
	assert.Equal(t, 2000, m.stats.TotalTokens)
	assert.False(t, m.loading)
}

func TestWindowSwitchBumpsGeneration(t *testing.T) {
	m := newTestModel()
	require.Equal(t, 0, m.seq)

	m, cmd := m.switchWindow(calculator.Window7D)
	assert.Equal(t, calculator.Window7D, m.window)
	assert.Equal(t, 1, m.seq)
	assert.NotNil(t, cmd)

	// Switching to the same window is a no-op.
	m, cmd = m.switchWindow(calculator.Window7D)
	assert.Equal(t, 1, m.seq)
	assert.Nil(t, cmd)
}

func TestFetchErrorRendersBanner(t *testing.T) {
	m := newTestModel()
	m = update(t, m, dataMsg{seq: 0, err: errors.New("connection refused")})

	view := m.View()
	assert.Contains(t, view, "DATA UNAVAILABLE")
	assert.Contains(t, view, "connection refused")
	assert.NotContains(t, view, "Tokens:", "no numbers are rendered on error")
}

func TestErrorDoesNotClobberLastGoodDataInternally(t *testing.T) {
	m := newTestModel()
	m = update(t, m, dataMsg{seq: 0, stats: types.GlobalStats{TotalTokens: 1000}})

	m, _ = m.refetch()
	m = update(t, m, dataMsg{seq: 1, err: errors.New("boom")})

	// The banner is shown, but the last snapshot survives for the
	// next successful refresh cycle.
	assert.Error(t, m.err)
	assert.Equal(t, 1000, m.stats.TotalTokens)
}

func TestViewShowsSummaryAfterData(t *testing.T) {
	m := newTestModel()
	m = update(t, m, dataMsg{
		seq:   0,
		stats: types.GlobalStats{TotalTokens: 1234, TotalRequests: 56},
		companies: []types.CompanyUsageSummary{
			{CompanyID: "c1", Name: "Acme", TotalTokens: 1234, TotalRequests: 56, UtilizationRate: 40, QuotaConfigured: true},
		},
	})

	view := m.View()
	assert.Contains(t, view, "1,234")
	assert.Contains(t, view, "Acme")
	assert.True(t, strings.Contains(view, "40%"))
}

func TestOnlyAppliedGenerationsAreRecorded(t *testing.T) {
	store, err := history.Open(filepath.Join(t.TempDir(), "monitor.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	m := initialModel(Options{NoColor: true, Window: calculator.WindowAll}, nil, calculator.New(nil), store)
	m, _ = m.refetch()
	require.Equal(t, 1, m.seq)

	// A stale response is dropped without touching the store.
	next, cmd := m.Update(dataMsg{seq: 0, stats: types.GlobalStats{TotalTokens: 9999}})
	m = next.(model)
	assert.Nil(t, cmd)

	snapshots, err := store.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, snapshots)

	// The current generation is applied and recorded.
	next, cmd = m.Update(dataMsg{seq: 1, stats: types.GlobalStats{TotalTokens: 2000}})
	m = next.(model)
	require.NotNil(t, cmd)
	assert.Nil(t, cmd())

	snapshots, err = store.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	assert.Equal(t, 2000, snapshots[0].Stats.TotalTokens)
	assert.Equal(t, 2000, m.stats.TotalTokens)
}

func TestTruncateKeepsValidUTF8(t *testing.T) {
	got := truncate("Société Générale Équipement", 10)

	assert.True(t, utf8.ValidString(got))
	assert.Len(t, []rune(got), 10)
	assert.Equal(t, "Société Générale", truncate("Société Générale", 24))
}

func TestQuitKeys(t *testing.T) {
	m := newTestModel()

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
