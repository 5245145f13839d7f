// Package ui provides the Bubble Tea swap simulator.
package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"

	lossDomain "github.com/shahrookhpiray1/sliswap-loss-visualizer/business/loss/domain"
	swapApp "github.com/shahrookhpiray1/sliswap-loss-visualizer/business/swap/app"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/pkg/ui/components"
)

// Quoter prices a swap. The UI never computes anything itself.
type Quoter interface {
	Calculate(ctx context.Context, req swapApp.CalculateRequest) (*swapApp.Quote, error)
}

// Options configures the simulator.
type Options struct {
	Quoter Quoter
	Tokens []string // selectable symbols, in display order
	From   string
	To     string
	Amount string

	// OnStart is called once when the welcome screen ends.
	OnStart func()

	// QuoteTimeout bounds each Calculate call.
	QuoteTimeout time.Duration
}

// Phase represents the current UI phase.
type Phase string

const (
	PhaseWelcome   Phase = "welcome"   // Initial welcome screen
	PhaseDashboard Phase = "dashboard" // Simulator and scanner
)

// WelcomeDuration is how long the welcome screen shows before auto-advancing.
const WelcomeDuration = 2 * time.Second

// ErrorEntry represents an error with timestamp.
type ErrorEntry struct {
	Message   string
	Timestamp time.Time
}

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	// Components
	quote  *components.QuoteComponent
	scan   *components.ScanComponent
	status *components.StatusComponent
	amount textinput.Model
	help   help.Model
	keys   KeyMap

	quoter       Quoter
	quoteTimeout time.Duration
	onStart      func()
	started      bool

	tokens  []string
	fromIdx int
	toIdx   int
	seq     int // id of the latest quote request

	// Phase state
	phase        Phase
	welcomeStart time.Time

	// State
	quitting     bool
	width        int
	height       int
	lastUpdate   time.Time
	lastScanTime time.Time
	scanCount    uint64
	errors       []ErrorEntry // last 3
	logs         []string
}

// New creates a new TUI model.
func New(opts Options) Model {
	if opts.QuoteTimeout == 0 {
		opts.QuoteTimeout = 10 * time.Second
	}
	if len(opts.Tokens) == 0 {
		opts.Tokens = []string{"EDS", "USDT", "VDEP"}
	}

	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = "amount"
	ti.CharLimit = 24
	ti.Width = 20
	ti.SetValue(opts.Amount)
	ti.Focus()

	m := Model{
		quote:        components.NewQuoteComponent(),
		scan:         components.NewScanComponent(12),
		status:       components.NewStatusComponent(),
		amount:       ti,
		help:         help.New(),
		keys:         DefaultKeyMap(),
		quoter:       opts.Quoter,
		quoteTimeout: opts.QuoteTimeout,
		onStart:      opts.OnStart,
		tokens:       opts.Tokens,
		phase:        PhaseWelcome,
		welcomeStart: time.Now(),
		errors:       make([]ErrorEntry, 0, 3),
		logs:         make([]string, 0, 5),
	}
	m.fromIdx = indexOf(m.tokens, opts.From, 0)
	m.toIdx = indexOf(m.tokens, opts.To, 1%len(m.tokens))
	return m
}

// From returns the selected input token.
func (m Model) From() string {
	return m.tokens[m.fromIdx]
}

// To returns the selected output token.
func (m Model) To() string {
	return m.tokens[m.toIdx]
}

// Phase returns the current phase.
func (m Model) Phase() Phase {
	return m.phase
}

func indexOf(list []string, s string, fallback int) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return fallback
}

func quoteView(q *swapApp.Quote, from, to string, amount float64) components.QuoteView {
	return components.QuoteView{
		Pair:           q.Pair,
		Route:          q.Route,
		Via:            q.Via,
		Amount:         amount,
		From:           from,
		To:             to,
		MarketExpected: q.MarketExpected,
		IdealAmount:    q.IdealAmount,
		ActualAmount:   q.ActualAmount,
		TotalSlippage:  q.TotalSlippage,
		FeeSlippage:    q.FeeSlippage,
		PriceImpact:    q.PriceImpact(),
		Source:         q.Source,
	}
}

func scanRows(r *lossDomain.ScanReport) []components.ScanRowView {
	rows := make([]components.ScanRowView, 0, len(r.Rows))
	for _, row := range r.Rows {
		rows = append(rows, components.ScanRowView{
			Pair:          row.Pair,
			Size:          row.Size,
			ActualAmount:  row.ActualAmount,
			TotalSlippage: row.TotalSlippage,
			FeeSlippage:   row.FeeSlippage,
			PriceImpact:   row.PriceImpact(),
			Error:         row.Error,
		})
	}
	return rows
}
