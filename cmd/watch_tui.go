package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/bnema/focus-budget-cli/internal/application"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type watchEventMsg struct {
	event application.Event
}

type watchClosedMsg struct{}

type watchModel struct {
	ctx     context.Context
	spinner spinner.Model
	label   string
	events  <-chan application.Event
	handle  func(context.Context, application.Event) string
	status  string
	cycle   string
	cycles  int
}

func newWatchModel(ctx context.Context, label string, events <-chan application.Event, handle func(context.Context, application.Event) string) watchModel {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
	)

	return watchModel{
		ctx:     ctx,
		spinner: s,
		label:   label,
		events:  events,
		handle:  handle,
		status:  "waiting for first cycle",
	}
}

func waitForEvent(events <-chan application.Event) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return watchClosedMsg{}
		}
		return watchEventMsg{event: event}
	}
}

func (m watchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForEvent(m.events))
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case watchEventMsg:
		text := m.handle(m.ctx, msg.event)
		switch msg.event.Type {
		case application.EventCycleCompleted:
			m.cycles++
			m.cycle = text
		case application.EventMaintenanceTick:
			tick := msg.event.Tick
			m.status = fmt.Sprintf("cycles: %d  queue: %d  load: %.2f", m.cycles, tick.QueueLength, tick.CognitiveLoad)
		}
		return m, waitForEvent(m.events)
	case watchClosedMsg:
		return m, tea.Quit
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
		return m, nil
	default:
		return m, nil
	}
}

func (m watchModel) View() string {
	header := fmt.Sprintf("%s %s  %s", m.spinner.View(), m.label, m.status)
	if m.cycle == "" {
		return header + "\n"
	}

	return header + "\n\n" + m.cycle + "\n"
}

func runWatchTUI(ctx context.Context, output io.Writer, itemsPath string, events <-chan application.Event, handle func(context.Context, application.Event) string) error {
	p := tea.NewProgram(
		newWatchModel(ctx, "watching "+itemsPath, events, handle),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}

	return err
}
