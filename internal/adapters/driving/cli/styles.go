package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/budget-mcp/internal/core/domain"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F9E2AF"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))
	labelStyle   = lipgloss.NewStyle().Bold(true).Width(14)
)

// stateStyle colours an authorization state.
func stateStyle(s domain.AuthState) lipgloss.Style {
	switch s {
	case domain.AuthStateAuthorized:
		return successStyle
	case domain.AuthStateExpired:
		return errorStyle
	case domain.AuthStateAwaitingCallback, domain.AuthStateExchanging:
		return warningStyle
	default:
		return mutedStyle
	}
}

// field renders one aligned "label value" line.
func field(label, value string) string {
	return labelStyle.Render(label) + value
}
