package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// QuoteView is a computed swap ready for display.
type QuoteView struct {
	Pair           string
	Route          string
	Via            string
	Amount         float64
	From           string
	To             string
	MarketExpected float64
	IdealAmount    float64
	ActualAmount   float64
	TotalSlippage  float64
	FeeSlippage    float64
	PriceImpact    float64
	Source         string
}

// QuoteComponent renders the simulator result panel.
type QuoteComponent struct {
	quote   *QuoteView
	err     string
	pending bool
}

// NewQuoteComponent creates a new quote component.
func NewQuoteComponent() *QuoteComponent {
	return &QuoteComponent{}
}

// SetQuote shows q and clears any error.
func (c *QuoteComponent) SetQuote(q QuoteView) {
	c.quote = &q
	c.err = ""
	c.pending = false
}

// SetError replaces the panel with an error message.
func (c *QuoteComponent) SetError(msg string) {
	c.quote = nil
	c.err = msg
	c.pending = false
}

// SetPending marks a request in flight; the last quote stays visible.
func (c *QuoteComponent) SetPending() {
	c.pending = true
}

// Reset empties the panel.
func (c *QuoteComponent) Reset() {
	c.quote = nil
	c.err = ""
	c.pending = false
}

// Quote returns the quote on display, if any.
func (c *QuoteComponent) Quote() (QuoteView, bool) {
	if c.quote == nil {
		return QuoteView{}, false
	}
	return *c.quote, true
}

// View renders the quote component.
func (c *QuoteComponent) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	valueStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF"))
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))

	var sb strings.Builder
	sb.WriteString(headerStyle.Render("SWAP RESULT"))
	if c.pending {
		sb.WriteString(mutedStyle.Render("  computing..."))
	}
	sb.WriteString("\n\n")

	if c.err != "" {
		sb.WriteString(errorStyle.Render("  ✗ " + c.err))
		sb.WriteString("\n")
		return sb.String()
	}
	if c.quote == nil {
		sb.WriteString(mutedStyle.Render("  Type an amount to simulate a swap"))
		sb.WriteString("\n")
		return sb.String()
	}

	q := c.quote
	route := q.Route
	if q.Via != "" {
		route += " via " + q.Via
	}
	sb.WriteString(mutedStyle.Render(fmt.Sprintf("  %s %s → %s  (%s, %s)", formatAmount(q.Amount), q.From, q.To, route, q.Source)))
	sb.WriteString("\n\n")

	rows := []struct {
		label string
		value string
	}{
		{"Market expected", formatAmount(q.MarketExpected) + " " + q.To},
		{"Ideal amount", formatAmount(q.IdealAmount) + " " + q.To},
		{"Actual amount", formatAmount(q.ActualAmount) + " " + q.To},
	}
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("  %-17s %s\n", mutedStyle.Render(r.label), valueStyle.Render(r.value)))
	}

	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  %-17s %s\n", mutedStyle.Render("Total slippage"), slippageStyle(q.TotalSlippage).Render(fmt.Sprintf("%.4f%%", q.TotalSlippage))))
	sb.WriteString(fmt.Sprintf("  %-17s %s\n", mutedStyle.Render("  fee"), mutedStyle.Render(fmt.Sprintf("%.4f%%", q.FeeSlippage))))
	sb.WriteString(fmt.Sprintf("  %-17s %s\n", mutedStyle.Render("  price impact"), slippageStyle(q.PriceImpact).Render(fmt.Sprintf("%.4f%%", q.PriceImpact))))

	return sb.String()
}

// slippageStyle colours a percentage: green under 0.5, amber under 3, red above.
func slippageStyle(pct float64) lipgloss.Style {
	switch {
	case pct < 0.5:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	case pct < 3:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	}
}

func formatAmount(v float64) string {
	switch {
	case v >= 1000:
		return fmt.Sprintf("%.2f", v)
	case v >= 1:
		return fmt.Sprintf("%.6f", v)
	default:
		return fmt.Sprintf("%.8f", v)
	}
}
