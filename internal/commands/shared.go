package commands

import (
	"fmt"

	"github.com/botdesk/botusage/internal/calculator"
	"github.com/botdesk/botusage/internal/client"
	"github.com/botdesk/botusage/internal/config"
	"github.com/botdesk/botusage/internal/output"
	"github.com/botdesk/botusage/internal/pricing"
)

// newClient builds the backend client from config.
func newClient(cfg *config.Config) (*client.Client, error) {
	return client.New(cfg.BackendURL, cfg.Session, cfg.HTTPTimeout)
}

// newCalculator builds the calculator with the configured pricing
// table, or the embedded default when none is configured.
func newCalculator(cfg *config.Config) (*calculator.Calculator, error) {
	table := pricing.Default()
	if cfg.PricingPath != "" {
		loaded, err := pricing.LoadFile(cfg.PricingPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load pricing table: %w", err)
		}
		table = loaded
	}
	return calculator.New(table), nil
}

func newFormatter(format string, noColor bool) *output.Formatter {
	return output.NewFormatter(output.FormatterOptions{
		Format:  format,
		NoColor: noColor,
	})
}
