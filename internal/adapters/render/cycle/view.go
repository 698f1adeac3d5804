package cycle

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bnema/focus-budget-cli/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const barWidth = 20

func renderCycle(result domain.CycleResult, s styles) string {
	lines := []string{
		s.title.Render(cycleTitle(result)),
		s.header.Render(fmt.Sprintf(
			"items: %d  active: %d  queue: %d  processed in %s",
			result.Metrics.ItemCount,
			result.Metrics.ActiveCount,
			result.Metrics.QueueLength,
			result.ProcessingTime.Round(time.Microsecond),
		)),
	}

	switch result.Status {
	case domain.CycleEmpty:
		lines = append(lines, s.empty.Render("No work items submitted."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	case domain.CycleError:
		lines = append(lines, s.warning.Render("error: "+result.Error))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	lines = append(lines,
		meterLine("load", result.CognitiveLoad, s),
		meterLine("efficiency", result.Allocation.Efficiency, s),
		meterLine("utilization", result.Allocation.UtilizationRate, s),
	)

	lines = append(lines, s.section.Render(s.title.Render("Foci")))
	records := make(map[string]domain.AllocationRecord, len(result.Allocation.Records))
	for _, record := range result.Allocation.Records {
		records[record.Key] = record
	}
	if len(result.FocusManagement.Active) == 0 {
		lines = append(lines, s.empty.Render("No active foci."))
	}
	for _, entry := range result.FocusManagement.Active {
		lines = append(lines, focusLine(entry, records[entry.Key], s))
	}

	if len(result.FocusManagement.Changes) > 0 {
		lines = append(lines, s.section.Render(s.title.Render("Changes")))
		for _, change := range result.FocusManagement.Changes {
			lines = append(lines, changeLine(change, s))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderHistory(entries []domain.HistoryEntry, s styles) string {
	lines := []string{
		s.title.Render("Cycle History"),
		s.header.Render(fmt.Sprintf("cycles: %d", len(entries))),
	}

	if len(entries) == 0 {
		lines = append(lines, s.empty.Render("No cycles recorded."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, entry := range entries {
		lines = append(lines, lipgloss.JoinHorizontal(
			lipgloss.Top,
			s.header.Render(entry.Timestamp.Format("2006-01-02 15:04:05")),
			" ",
			s.key.Render(shortID(entry.CycleID)),
			" ",
			renderBar(entry.CognitiveLoad, barWidth, s),
			" ",
			s.detail.Render(fmt.Sprintf("load %.2f  active %d  efficiency %3.0f%%",
				entry.CognitiveLoad, entry.ActiveCount, entry.AllocationEfficiency*100)),
		))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func cycleTitle(result domain.CycleResult) string {
	if result.CycleID == "" {
		return fmt.Sprintf("Cycle (%s)", result.Status)
	}
	return fmt.Sprintf("Cycle %s (%s)", shortID(result.CycleID), result.Status)
}

func meterLine(label string, value float64, s styles) string {
	percent := clamp01(value) * 100
	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.detail.Render(fmt.Sprintf("%-12s", label+":")),
		renderBar(value, barWidth, s),
		" ",
		lipgloss.NewStyle().Foreground(interpolateColor(percent, 0, 100)).Render(fmt.Sprintf("%3.0f%%", percent)),
	)
}

func focusLine(entry domain.FocusEntry, record domain.AllocationRecord, s styles) string {
	tier := entry.Item.Tier
	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.key.Render(fmt.Sprintf("%-12s", shortID(entry.Key))),
		" ",
		s.tier(tier).Render(fmt.Sprintf("%-10s", "["+string(tier)+"]")),
		renderBar(entry.Intensity, barWidth, s),
		" ",
		s.detail.Render(fmt.Sprintf("%.2f  share %.1f  eta %s",
			entry.Intensity, record.ResourceShare, record.ProcessingTime.Round(time.Millisecond))),
	)
}

func changeLine(change domain.FocusChange, s styles) string {
	key := shortID(change.Key)
	switch change.Kind {
	case domain.FocusAdded:
		return s.added.Render(fmt.Sprintf("+ %s added at %.2f", key, change.Current))
	case domain.FocusRemoved:
		return s.removed.Render(fmt.Sprintf("- %s removed (%s)", key, change.Reason))
	default:
		return s.detail.Render(fmt.Sprintf("~ %s %.2f -> %.2f (%+.2f)", key, change.Previous, change.Current, change.Delta()))
	}
}

func renderBar(fraction float64, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	filled := int(math.Round(float64(width) * clamp01(fraction)))
	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		s.barFill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", width-filled)),
		s.barBracket.Render("]"),
	)
}

// shortID keeps item ids readable and trims generated UUID keys.
func shortID(id string) string {
	if len(id) == 36 && strings.Count(id, "-") == 4 {
		return id[:8]
	}
	return id
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func interpolateColor(value, min, max float64) lipgloss.Color {
	if max == min {
		return lipgloss.Color("255")
	}

	normalized := (value - min) / (max - min)
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}

	// greyscale ramp 240..255
	return lipgloss.Color(fmt.Sprintf("%d", int(240+15*normalized)))
}
