package output

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/leapstack-labs/tiersql/pkg/core"
)

// Styles holds the lipgloss styles used by text output. Without color every
// style renders its input unchanged.
type Styles struct {
	Header1 lipgloss.Style
	Header2 lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style

	tiers map[core.Tier]lipgloss.Style
}

// NewStyles returns colored styles, or plain ones when color is false.
func NewStyles(color bool) *Styles {
	if !color {
		plain := lipgloss.NewStyle()
		return &Styles{
			Header1: plain, Header2: plain, Bold: plain, Muted: plain,
			Success: plain, Warning: plain, Error: plain,
			tiers: map[core.Tier]lipgloss.Style{},
		}
	}

	return &Styles{
		Header1: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Header2: lipgloss.NewStyle().Bold(true),
		Bold:    lipgloss.NewStyle().Bold(true),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		tiers: map[core.Tier]lipgloss.Style{
			core.TierManual:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
			core.TierLookup:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
			core.TierImported: lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
			core.TierComputed: lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
			core.TierPart:     lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
		},
	}
}

// Tier renders a tier label in its color.
func (s *Styles) Tier(t core.Tier) string {
	if style, ok := s.tiers[t]; ok {
		return style.Render(t.String())
	}
	return t.String()
}
