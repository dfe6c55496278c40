// Package monitor renders a live terminal dashboard over the
// assistant backend's usage data.
package monitor

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/botdesk/botusage/internal/calculator"
	"github.com/botdesk/botusage/internal/client"
	"github.com/botdesk/botusage/internal/history"
	"github.com/botdesk/botusage/internal/types"
)

type Monitor struct {
	options Options
	client  *client.Client
	calc    *calculator.Calculator
	store   *history.Store
}

type Options struct {
	Interval time.Duration
	NoColor  bool
	Window   calculator.Window
	BotID    string
}

func New(opts Options, apiClient *client.Client, calc *calculator.Calculator, store *history.Store) *Monitor {
	if opts.Interval == 0 {
		opts.Interval = 30 * time.Second
	}
	if opts.Window == "" {
		opts.Window = calculator.WindowAll
	}
	return &Monitor{options: opts, client: apiClient, calc: calc, store: store}
}

func (m *Monitor) Start(ctx context.Context) error {
	p := tea.NewProgram(
		initialModel(m.options, m.client, m.calc, m.store),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	return err
}

type model struct {
	options Options
	client  *client.Client
	calc    *calculator.Calculator
	store   *history.Store

	// seq is the generation of the most recently issued fetch. A
	// response is applied only when its generation matches, so a slow
	// stale response can never overwrite a newer one.
	seq int

	window     calculator.Window
	lastUpdate time.Time
	stats      types.GlobalStats
	companies  []types.CompanyUsageSummary
	bots       []types.BotUsageSummary
	series     calculator.Series
	chartBot   string
	loading    bool
	err        error
}

type tickMsg time.Time

type dataMsg struct {
	seq       int
	stats     types.GlobalStats
	companies []types.CompanyUsageSummary
	bots      []types.BotUsageSummary
	series    calculator.Series
	chartBot  string
	err       error
}

func initialModel(opts Options, apiClient *client.Client, calc *calculator.Calculator, store *history.Store) model {
	return model{
		options: opts,
		client:  apiClient,
		calc:    calc,
		store:   store,
		window:  opts.Window,
		loading: true,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(m.options.Interval),
		m.fetch(m.seq),
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			return m.refetch()
		case "1":
			return m.switchWindow(calculator.Window1D)
		case "7":
			return m.switchWindow(calculator.Window7D)
		case "3":
			return m.switchWindow(calculator.Window30D)
		case "a":
			return m.switchWindow(calculator.WindowAll)
		}

	case tickMsg:
		m.lastUpdate = time.Time(msg)
		next, cmd := m.refetch()
		return next, tea.Batch(tickCmd(m.options.Interval), cmd)

	case dataMsg:
		if msg.seq != m.seq {
			// Response to a superseded request; drop it.
			return m, nil
		}
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.stats = msg.stats
			m.companies = msg.companies
			m.bots = msg.bots
			m.series = msg.series
			m.chartBot = msg.chartBot
			if m.store != nil {
				return m, m.recordSnapshot(msg.seq, msg.stats)
			}
		}
	}

	return m, nil
}

func (m model) refetch() (model, tea.Cmd) {
	m.seq++
	m.loading = true
	return m, m.fetch(m.seq)
}

func (m model) switchWindow(window calculator.Window) (model, tea.Cmd) {
	if window == m.window {
		return m, nil
	}
	m.window = window
	return m.refetch()
}

func (m model) fetch(seq int) tea.Cmd {
	window := m.window
	botID := m.options.BotID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		quotas, err := m.client.QuotasList(ctx)
		if err != nil {
			return dataMsg{seq: seq, err: err}
		}
		licenses, err := m.client.ExportLicenses(ctx)
		if err != nil {
			return dataMsg{seq: seq, err: err}
		}
		names, err := m.client.Bots(ctx)
		if err != nil {
			return dataMsg{seq: seq, err: err}
		}

		stats := m.calc.GlobalStats(quotas, licenses)
		companies := m.calc.AggregateByCompany(quotas, licenses)
		bots := m.calc.AggregateBotsFromQuotas(quotas, licenses, names)

		// Chart the requested bot, or the busiest one.
		chartBot := botID
		if chartBot == "" && len(bots) > 0 {
			chartBot = bots[0].BotID
		}
		var series calculator.Series
		if chartBot != "" {
			records, err := m.client.BotHistory(ctx, chartBot)
			if err != nil {
				return dataMsg{seq: seq, err: err}
			}
			series = m.calc.BucketDaily(records, window, time.Now())
		}

		return dataMsg{
			seq:       seq,
			stats:     stats,
			companies: companies,
			bots:      bots,
			series:    series,
			chartBot:  chartBot,
		}
	}
}

// recordSnapshot persists an applied snapshot. It runs only after the
// generation check, so superseded fetches never reach the store.
func (m model) recordSnapshot(seq int, stats types.GlobalStats) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := m.store.Save(ctx, stats); err != nil {
			return dataMsg{seq: seq, err: err}
		}
		return nil
	}
}

func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
