// Package ui provides the Bubble Tea swap simulator.
package ui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	swapApp "github.com/shahrookhpiray1/sliswap-loss-visualizer/business/swap/app"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/internal/apperror"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/pkg/ui/components"
)

// Init initializes the TUI model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), textinput.Blink)
}

// tickCmd returns a command that sends a tick every 100ms for smooth animations.
func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg{}
	})
}

// quoteCmd runs Calculate off the update loop and tags the answer with seq.
func quoteCmd(q Quoter, req swapApp.CalculateRequest, seq int, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		quote, err := q.Calculate(ctx, req)
		return QuoteMsg{Seq: seq, Quote: quote, Err: err}
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Always allow quit
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		// During welcome phase, any other key skips to the dashboard
		if m.phase == PhaseWelcome {
			return m.enterDashboard()
		}
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case TickMsg:
		if m.phase == PhaseWelcome && time.Since(m.welcomeStart) >= WelcomeDuration {
			var cmd tea.Cmd
			m, cmd = m.enterDashboard()
			return m, tea.Batch(cmd, tickCmd())
		}
		return m, tickCmd()

	case QuoteMsg:
		// A newer request is in flight; this answer is stale.
		if msg.Seq != m.seq {
			return m, nil
		}
		if msg.Err != nil {
			m.quote.SetError(errorText(msg.Err))
			return m, nil
		}
		amount, _ := parseAmount(m.amount.Value())
		m.quote.SetQuote(quoteView(msg.Quote, m.From(), m.To(), amount))
		m.lastUpdate = time.Now()

	case ScanReportMsg:
		if msg.Report != nil {
			r := msg.Report
			m.scan.Update(r.Timestamp.Format("15:04:05"), r.Source, scanRows(r))
			m.scanCount++
			m.lastScanTime = time.Now()
			m.lastUpdate = time.Now()
			if n := r.Failed(); n > 0 {
				m.logs = addLog(m.logs, "warn", fmt.Sprintf("%d scan rows failed", n))
			}
		}

	case StatusMsg:
		m.status.Update(components.ConnectionStatus{
			Name:       msg.Name,
			Healthy:    msg.Healthy,
			Latency:    msg.Latency,
			LastUpdate: time.Now(),
		})
		m.lastUpdate = time.Now()

	case ErrorMsg:
		m.logs = addLog(m.logs, "error", msg.Error.Error())
		m.errors = append(m.errors, ErrorEntry{
			Message:   msg.Error.Error(),
			Timestamp: time.Now(),
		})
		if len(m.errors) > 3 {
			m.errors = m.errors[len(m.errors)-3:]
		}

	case LogMsg:
		m.logs = addLog(m.logs, msg.Level, msg.Message)
	}

	return m, nil
}

func (m Model) enterDashboard() (Model, tea.Cmd) {
	m.phase = PhaseDashboard
	if !m.started && m.onStart != nil {
		m.started = true
		// Don't Send() from within Update
		go m.onStart()
	}
	return m.requestQuote()
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Clear):
		m.errors = make([]ErrorEntry, 0, 3)
		return m, nil
	case key.Matches(msg, m.keys.From):
		m.fromIdx = (m.fromIdx + 1) % len(m.tokens)
		return m.requestQuote()
	case key.Matches(msg, m.keys.To):
		m.toIdx = (m.toIdx + 1) % len(m.tokens)
		return m.requestQuote()
	case key.Matches(msg, m.keys.Reverse):
		m.fromIdx, m.toIdx = m.toIdx, m.fromIdx
		return m.requestQuote()
	case msg.String() == "up":
		m.scan.ScrollUp()
		return m, nil
	case msg.String() == "down":
		m.scan.ScrollDown()
		return m, nil
	}

	// Only digits and a decimal point reach the amount field.
	if msg.Type == tea.KeyRunes && !numericRunes(msg.Runes) {
		return m, nil
	}

	before := m.amount.Value()
	var cmd tea.Cmd
	m.amount, cmd = m.amount.Update(msg)
	if m.amount.Value() == before {
		return m, cmd
	}
	m, qcmd := m.requestQuote()
	return m, tea.Batch(cmd, qcmd)
}

// requestQuote starts a calculation for the current inputs. Every call bumps
// seq so answers to older inputs are dropped.
func (m Model) requestQuote() (Model, tea.Cmd) {
	m.seq++

	raw := strings.TrimSpace(m.amount.Value())
	if raw == "" {
		m.quote.Reset()
		return m, nil
	}
	amount, err := parseAmount(raw)
	if err != nil {
		m.quote.SetError("enter a number")
		return m, nil
	}
	if m.quoter == nil {
		m.quote.SetError("no quoter configured")
		return m, nil
	}

	m.quote.SetPending()
	req := swapApp.CalculateRequest{From: m.From(), To: m.To(), Amount: amount}
	return m, quoteCmd(m.quoter, req, m.seq, m.quoteTimeout)
}

func parseAmount(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

func numericRunes(rs []rune) bool {
	for _, r := range rs {
		if (r < '0' || r > '9') && r != '.' {
			return false
		}
	}
	return len(rs) > 0
}

// errorText prefers the user-facing message of an application error.
func errorText(err error) string {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		if appErr.Context != "" {
			return appErr.Message + " (" + appErr.Context + ")"
		}
		return appErr.Message
	}
	return err.Error()
}

// addLog adds a log message and returns the updated slice (keeps last 5).
func addLog(logs []string, level, message string) []string {
	timestamp := time.Now().Format("15:04:05")
	logLine := fmt.Sprintf("[%s] %s: %s", timestamp, level, message)
	logs = append(logs, logLine)
	if len(logs) > 5 {
		logs = logs[len(logs)-5:]
	}
	return logs
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return "\n  Goodbye!\n\n"
	}
	if m.phase == PhaseWelcome {
		return m.renderWelcomeScreen()
	}

	var b strings.Builder

	b.WriteString(TitleStyle.Render(" ⇄ Sliswap Loss Visualizer "))
	b.WriteString("\n\n")

	b.WriteString(m.renderStatusBar())
	b.WriteString("\n\n")

	leftCol := m.renderInput() + "\n\n" + m.quote.View()
	rightCol := m.scan.View()

	// Side by side if enough width
	if m.width > 120 {
		left := BoxStyle.Width(m.width/2 - 4).Render(leftCol)
		right := BoxStyle.Width(m.width/2 - 2).Render(rightCol)
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
	} else {
		width := m.width - 4
		if width < 40 {
			width = 76
		}
		b.WriteString(BoxStyle.Width(width).Render(leftCol))
		b.WriteString("\n")
		b.WriteString(BoxStyle.Width(width).Render(rightCol))
	}
	b.WriteString("\n\n")

	if len(m.errors) > 0 {
		errorHeader := lipgloss.NewStyle().Bold(true).Foreground(ColorDanger)

		b.WriteString(errorHeader.Render("ERRORS"))
		b.WriteString(MutedValue.Render(" (ctrl+e: clear)"))
		b.WriteString("\n")
		for _, err := range m.errors {
			ago := time.Since(err.Timestamp).Round(time.Second)
			b.WriteString(ErrorStyle.Render(fmt.Sprintf("  • %s ", err.Message)))
			b.WriteString(MutedValue.Render(fmt.Sprintf("(%s ago)", ago)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(HelpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func (m Model) renderInput() string {
	var sb strings.Builder
	sb.WriteString(HeaderStyle.Render("SIMULATE"))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("  %s %s\n", LabelStyle.Render("From  "), TokenStyle.Render(m.From())))
	sb.WriteString(fmt.Sprintf("  %s %s\n", LabelStyle.Render("To    "), TokenStyle.Render(m.To())))
	sb.WriteString(fmt.Sprintf("  %s %s", LabelStyle.Render("Amount"), m.amount.View()))
	return sb.String()
}

// renderWelcomeScreen renders the animated welcome screen.
func (m Model) renderWelcomeScreen() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary)

	goldStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorWarning)

	elapsed := time.Since(m.welcomeStart)
	dots := strings.Repeat(".", int(elapsed.Milliseconds()/300)%4)

	var sb strings.Builder
	sb.WriteString("\n\n\n\n")

	logo := `
   ███████╗██╗     ██╗███████╗██╗    ██╗ █████╗ ██████╗
   ██╔════╝██║     ██║██╔════╝██║    ██║██╔══██╗██╔══██╗
   ███████╗██║     ██║███████╗██║ █╗ ██║███████║██████╔╝
   ╚════██║██║     ██║╚════██║██║███╗██║██╔══██║██╔═══╝
   ███████║███████╗██║███████║╚███╔███╔╝██║  ██║██║
   ╚══════╝╚══════╝╚═╝╚══════╝ ╚══╝╚══╝ ╚═╝  ╚═╝╚═╝
`
	sb.WriteString(titleStyle.Render(logo))
	sb.WriteString("\n")
	sb.WriteString(MutedValue.Render("            S L I P P A G E   &   L O S S"))
	sb.WriteString("\n\n\n")
	sb.WriteString(goldStyle.Render("             EDS · USDT · VDEP on Endless"))
	sb.WriteString("\n\n\n")
	sb.WriteString(PositiveValue.Render(fmt.Sprintf("                 Loading pools%s", dots)))
	sb.WriteString("\n\n")
	sb.WriteString(MutedValue.Render("           Press any key to skip, or wait..."))
	sb.WriteString("\n")

	return sb.String()
}

func (m Model) renderStatusBar() string {
	var parts []string

	if time.Since(m.lastScanTime) < 500*time.Millisecond {
		spinners := []string{"⟳", "◐", "◓", "◑", "◒"}
		idx := int(time.Now().UnixMilli()/100) % len(spinners)
		scanningStyle := lipgloss.NewStyle().Foreground(ColorSecondary).Bold(true)
		parts = append(parts, scanningStyle.Render(spinners[idx]+" Scanning"))
	}

	if m.scanCount > 0 {
		parts = append(parts, PositiveValue.Render(fmt.Sprintf("Scans: %d", m.scanCount)))
	}

	parts = append(parts, m.status.View())

	if !m.lastUpdate.IsZero() {
		ago := time.Since(m.lastUpdate).Round(time.Second)
		parts = append(parts, MutedValue.Render(fmt.Sprintf("Updated: %s ago", ago)))
	}

	if len(m.logs) > 0 {
		parts = append(parts, MutedValue.Render(m.logs[len(m.logs)-1]))
	}

	return strings.Join(parts, "  │  ")
}

// NewProgram wraps m in a full-screen Bubble Tea program. The program is
// also the Sender the TUI reporter pushes scan results through.
func NewProgram(m Model) *tea.Program {
	return tea.NewProgram(m, tea.WithAltScreen())
}
