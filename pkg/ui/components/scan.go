package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ScanRowView is one pair and trade size of a scanner pass.
type ScanRowView struct {
	Pair          string
	Size          float64
	ActualAmount  float64
	TotalSlippage float64
	FeeSlippage   float64
	PriceImpact   float64
	Error         string
}

// ScanComponent renders the latest scanner pass as a scrollable table.
type ScanComponent struct {
	rows      []ScanRowView
	timestamp string
	source    string
	offset    int
	visible   int
}

// NewScanComponent creates a scan table showing visible rows at a time.
func NewScanComponent(visible int) *ScanComponent {
	if visible < 1 {
		visible = 1
	}
	return &ScanComponent{visible: visible}
}

// Update replaces the table with a new pass.
func (s *ScanComponent) Update(timestamp, source string, rows []ScanRowView) {
	s.rows = rows
	s.timestamp = timestamp
	s.source = source
	if s.offset > s.maxOffset() {
		s.offset = s.maxOffset()
	}
}

// Len returns the number of rows in the current pass.
func (s *ScanComponent) Len() int {
	return len(s.rows)
}

// ScrollUp scrolls up.
func (s *ScanComponent) ScrollUp() {
	if s.offset > 0 {
		s.offset--
	}
}

// ScrollDown scrolls down.
func (s *ScanComponent) ScrollDown() {
	if s.offset < s.maxOffset() {
		s.offset++
	}
}

func (s *ScanComponent) maxOffset() int {
	if len(s.rows) <= s.visible {
		return 0
	}
	return len(s.rows) - s.visible
}

// View renders the scan component.
func (s *ScanComponent) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))

	var sb strings.Builder
	sb.WriteString(headerStyle.Render("SLIPPAGE SCAN"))
	if s.timestamp != "" {
		sb.WriteString(mutedStyle.Render(fmt.Sprintf("  %s · %s", s.timestamp, s.source)))
	}
	sb.WriteString("\n\n")

	if len(s.rows) == 0 {
		sb.WriteString(mutedStyle.Render("  Waiting for first scan..."))
		return sb.String()
	}

	sb.WriteString("┌────────────┬────────────┬──────────────────┬──────────┬──────────┐\n")
	sb.WriteString("│    Pair    │    Size    │      Actual      │  Total   │  Impact  │\n")
	sb.WriteString("├────────────┼────────────┼──────────────────┼──────────┼──────────┤\n")

	end := s.offset + s.visible
	if end > len(s.rows) {
		end = len(s.rows)
	}
	for _, row := range s.rows[s.offset:end] {
		if row.Error != "" {
			msg := row.Error
			if len(msg) > 40 {
				msg = msg[:37] + "..."
			}
			sb.WriteString(fmt.Sprintf("│ %-10s │ %10s │ %s\n", row.Pair, formatAmount(row.Size), errorStyle.Render(msg)))
			continue
		}
		sb.WriteString(fmt.Sprintf("│ %-10s │ %10s │ %16s │ %s │ %s │\n",
			row.Pair,
			formatAmount(row.Size),
			formatAmount(row.ActualAmount),
			slippageStyle(row.TotalSlippage).Render(fmt.Sprintf("%7.3f%%", row.TotalSlippage)),
			slippageStyle(row.PriceImpact).Render(fmt.Sprintf("%7.3f%%", row.PriceImpact)),
		))
	}
	sb.WriteString("└────────────┴────────────┴──────────────────┴──────────┴──────────┘\n")

	if len(s.rows) > s.visible {
		sb.WriteString(mutedStyle.Render(fmt.Sprintf("  rows %d-%d of %d", s.offset+1, end, len(s.rows))))
	}
	return sb.String()
}
