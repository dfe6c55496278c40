package pricing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCostEURZeroTokens(t *testing.T) {
	table := Default()
	cost := table.CostEUR(DefaultModel, 0, 0)

	assert.Zero(t, cost.InputEUR)
	assert.Zero(t, cost.OutputEUR)
	assert.Zero(t, cost.TotalEUR)
}

func TestCostEURMillionTokens(t *testing.T) {
	table := Default()

	input := table.CostEUR(DefaultModel, 1_000_000, 0)
	assert.InDelta(t, 2.00/0.92, input.TotalEUR, 0.0001)

	output := table.CostEUR(DefaultModel, 0, 1_000_000)
	assert.InDelta(t, 8.00/0.92, output.TotalEUR, 0.0001)

	both := table.CostEUR(DefaultModel, 1_000_000, 1_000_000)
	assert.InDelta(t, 10.00/0.92, both.TotalEUR, 0.0001)
}

func TestCostEURMonotonic(t *testing.T) {
	table := Default()

	prev := 0.0
	for _, tokens := range []int{0, 100, 10_000, 1_000_000, 50_000_000} {
		cost := table.CostEUR(DefaultModel, tokens, tokens)
		assert.GreaterOrEqual(t, cost.TotalEUR, prev, "cost must not decrease with token count")
		prev = cost.TotalEUR
	}
}

func TestCostEURRounding(t *testing.T) {
	table := Default()

	// 100 input tokens: 100/1e6*2/0.92 = 0.000217..., rounds to 0.0002.
	cost := table.CostEUR(DefaultModel, 100, 0)
	assert.Equal(t, 0.0002, cost.TotalEUR)
}

func TestRateFallsBackForUnknownModel(t *testing.T) {
	table := Default()

	assert.Equal(t, table.Rate(DefaultModel), table.Rate("no-such-model"))
	assert.Equal(t, table.Rate(DefaultModel), table.Rate(""))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pricing.json")
	content := `{
		"version": "2025-01",
		"eur_usd_rate": 1.0,
		"models": {"gpt-4.1": {"input_usd_per_million": 1.0, "output_usd_per_million": 4.0}}
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	table, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "2025-01", table.Version)

	cost := table.CostEUR(DefaultModel, 1_000_000, 1_000_000)
	assert.InDelta(t, 5.0, cost.TotalEUR, 0.0001)
}

func TestLoadFileRejectsInvalidTables(t *testing.T) {
	dir := t.TempDir()

	cases := []struct {
		name    string
		content string
	}{
		{"missing version", `{"eur_usd_rate": 0.92, "models": {"gpt-4.1": {}}}`},
		{"zero rate", `{"version": "x", "eur_usd_rate": 0, "models": {"gpt-4.1": {}}}`},
		{"no models", `{"version": "x", "eur_usd_rate": 0.92, "models": {}}`},
		{"not json", `nope`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, "bad.json")
			require.NoError(t, os.WriteFile(path, []byte(tc.content), 0o600))

			_, err := LoadFile(path)
			assert.Error(t, err)
		})
	}
}
