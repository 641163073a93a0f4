package fshost

import (
	"charm.land/lipgloss/v2"

	"go.jacobcolvin.com/pathplease/host"
)

// Theme styles what a [Host] prints.
type Theme struct {
	Info    lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Status  lipgloss.Style
	// StatusWarning replaces Status when [host.Status.Warning] is set.
	StatusWarning lipgloss.Style
	Diff          DiffTheme
}

// DiffTheme styles dry-run diffs.
type DiffTheme struct {
	Header lipgloss.Style
	Insert lipgloss.Style
	Delete lipgloss.Style
}

// DefaultTheme returns the colored [Theme] used on terminals.
func DefaultTheme() Theme {
	return Theme{
		Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		Status: lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("4")).
			Padding(0, 1),
		StatusWarning: lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("3")).
			Padding(0, 1),
		Diff: DiffTheme{
			Header: lipgloss.NewStyle().Bold(true),
			Insert: lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
			Delete: lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		},
	}
}

// PlainTheme returns a [Theme] that renders text unchanged.
func PlainTheme() Theme {
	plain := lipgloss.NewStyle()

	return Theme{
		Info:          plain,
		Warning:       plain,
		Error:         plain,
		Status:        plain,
		StatusWarning: plain,
		Diff: DiffTheme{
			Header: plain,
			Insert: plain,
			Delete: plain,
		},
	}
}

// RenderStatus renders s as a one-line indicator.
func (t Theme) RenderStatus(s host.Status) string {
	if s.Warning {
		return t.StatusWarning.Render(s.Text)
	}

	return t.Status.Render(s.Text)
}
