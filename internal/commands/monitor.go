package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/botdesk/botusage/internal/calculator"
	"github.com/botdesk/botusage/internal/config"
	"github.com/botdesk/botusage/internal/history"
	"github.com/botdesk/botusage/internal/monitor"
)

func NewMonitorCommand() *cobra.Command {
	var (
		interval int
		window   string
		botID    string
		noColor  bool
		record   bool
	)

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Live usage dashboard",
		Long:  `Poll the backend and render a live dashboard of platform usage.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			win, err := calculator.ParseWindow(window)
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			apiClient, err := newClient(cfg)
			if err != nil {
				return err
			}
			calc, err := newCalculator(cfg)
			if err != nil {
				return err
			}

			var store *history.Store
			if record {
				store, err = history.Open(cfg.DatabasePath)
				if err != nil {
					return fmt.Errorf("failed to open history store: %w", err)
				}
				defer store.Close()
			}

			mon := monitor.New(monitor.Options{
				Interval: time.Duration(interval) * time.Second,
				NoColor:  noColor,
				Window:   win,
				BotID:    botID,
			}, apiClient, calc, store)

			if err := mon.Start(cmd.Context()); err != nil {
				return fmt.Errorf("failed to start monitor: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&interval, "interval", 30, "Update interval in seconds")
	cmd.Flags().StringVarP(&window, "window", "w", "all", "Chart window (1d, 7d, 30d, all)")
	cmd.Flags().StringVar(&botID, "bot", "", "Bot id to chart (defaults to the busiest bot)")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	cmd.Flags().BoolVar(&record, "record", false, "Record a history snapshot on every refresh")

	return cmd
}
