package cycle

import (
	"github.com/bnema/focus-budget-cli/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	title      lipgloss.Style
	header     lipgloss.Style
	key        lipgloss.Style
	detail     lipgloss.Style
	warning    lipgloss.Style
	section    lipgloss.Style
	empty      lipgloss.Style
	added      lipgloss.Style
	removed    lipgloss.Style
	barBracket lipgloss.Style
	barFill    lipgloss.Style
	barEmpty   lipgloss.Style
	tiers      map[domain.Tier]lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:      lipgloss.NewStyle().Bold(true),
		header:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		key:        lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		detail:     lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		warning:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		section:    lipgloss.NewStyle().MarginTop(1),
		empty:      lipgloss.NewStyle().Faint(true),
		added:      lipgloss.NewStyle().Foreground(lipgloss.Color("114")),
		removed:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		barBracket: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		barFill:    lipgloss.NewStyle().Foreground(lipgloss.Color("159")),
		barEmpty:   lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
		tiers: map[domain.Tier]lipgloss.Style{
			domain.TierCritical: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
			domain.TierHigh:     lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
			domain.TierMedium:   lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
			domain.TierLow:      lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		},
	}
}

func (s styles) tier(t domain.Tier) lipgloss.Style {
	if style, ok := s.tiers[t]; ok {
		return style
	}
	return s.detail
}
