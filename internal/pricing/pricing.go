// Package pricing holds the per-model token rates used for cost
// estimation. A single versioned table is built once and injected
// into every call site; nothing else in the module hard-codes rates.
package pricing

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/botdesk/botusage/internal/types"
)

// DefaultModel is the rate entry applied when a record does not name
// a model, which is the common case for the assistant backend.
const DefaultModel = "gpt-4.1"

// ModelRate is the USD price per one million tokens.
type ModelRate struct {
	InputUSDPerM  float64 `json:"input_usd_per_million"`
	OutputUSDPerM float64 `json:"output_usd_per_million"`
}

// Table is a versioned pricing table. Rates are USD per million
// tokens; EURToUSD converts the USD total to EUR.
type Table struct {
	Version  string               `json:"version"`
	EURToUSD float64              `json:"eur_usd_rate"`
	Models   map[string]ModelRate `json:"models"`
}

// Cost is the EUR breakdown for one input/output token pair. All
// amounts are rounded to 4 decimal places.
type Cost struct {
	InputEUR  float64 `json:"input_eur"`
	OutputEUR float64 `json:"output_eur"`
	TotalEUR  float64 `json:"total_eur"`
}

// Default returns the embedded pricing table.
func Default() *Table {
	return &Table{
		Version:  "2024-06",
		EURToUSD: 0.92,
		Models: map[string]ModelRate{
			"gpt-4.1":      {InputUSDPerM: 2.00, OutputUSDPerM: 8.00},
			"gpt-4.1-mini": {InputUSDPerM: 0.40, OutputUSDPerM: 1.60},
			"gpt-4o":       {InputUSDPerM: 5.00, OutputUSDPerM: 15.00},
		},
	}
}

// LoadFile reads a pricing table override from a JSON file. The file
// must carry a version and a positive EUR/USD rate.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pricing table: %w", err)
	}

	var t Table
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse pricing table %s: %w", path, err)
	}
	if t.Version == "" {
		return nil, types.ValidationError{Field: "version", Message: "pricing table has no version"}
	}
	if t.EURToUSD <= 0 {
		return nil, types.ValidationError{Field: "eur_usd_rate", Message: fmt.Sprintf("invalid rate %v", t.EURToUSD)}
	}
	if len(t.Models) == 0 {
		return nil, types.ValidationError{Field: "models", Message: "pricing table has no model rates"}
	}
	return &t, nil
}

// Rate returns the rate entry for a model, falling back to the
// default model entry for unknown or empty names.
func (t *Table) Rate(model string) ModelRate {
	if model == "" {
		model = DefaultModel
	}
	if r, ok := t.Models[model]; ok {
		return r
	}
	return t.Models[DefaultModel]
}

// CostEUR estimates the EUR cost of a token pair for a model.
func (t *Table) CostEUR(model string, inputTokens, outputTokens int) Cost {
	rate := t.Rate(model)

	inputUSD := float64(inputTokens) / 1_000_000 * rate.InputUSDPerM
	outputUSD := float64(outputTokens) / 1_000_000 * rate.OutputUSDPerM

	return Cost{
		InputEUR:  round4(inputUSD / t.EURToUSD),
		OutputEUR: round4(outputUSD / t.EURToUSD),
		TotalEUR:  round4((inputUSD + outputUSD) / t.EURToUSD),
	}
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
