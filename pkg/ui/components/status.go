// Package components provides reusable TUI components.
package components

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// ConnectionStatus represents a dependency's status.
type ConnectionStatus struct {
	Name       string
	Healthy    bool
	Latency    time.Duration
	LastUpdate time.Time
}

// StatusComponent renders dependency status.
type StatusComponent struct {
	connections []ConnectionStatus
}

// NewStatusComponent creates a new status component.
func NewStatusComponent() *StatusComponent {
	return &StatusComponent{
		connections: make([]ConnectionStatus, 0),
	}
}

// Update updates a connection's status.
func (s *StatusComponent) Update(status ConnectionStatus) {
	for i, conn := range s.connections {
		if conn.Name == status.Name {
			s.connections[i] = status
			return
		}
	}
	s.connections = append(s.connections, status)
	sort.Slice(s.connections, func(i, j int) bool {
		return s.connections[i].Name < s.connections[j].Name
	})
}

// Get returns the status recorded for name.
func (s *StatusComponent) Get(name string) (ConnectionStatus, bool) {
	for _, conn := range s.connections {
		if conn.Name == name {
			return conn, true
		}
	}
	return ConnectionStatus{}, false
}

// View renders the status component on one line.
func (s *StatusComponent) View() string {
	if len(s.connections) == 0 {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")).Render("○ static snapshot")
	}

	parts := make([]string, 0, len(s.connections))
	for _, conn := range s.connections {
		status := "● " + conn.Name
		style := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
		if !conn.Healthy {
			status = "○ " + conn.Name + " (down)"
			style = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
		} else if conn.Latency > 0 {
			status += fmt.Sprintf(" (%dms)", conn.Latency.Milliseconds())
		}
		parts = append(parts, style.Render(status))
	}

	return strings.Join(parts, "  ")
}
