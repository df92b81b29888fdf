// Package tui provides the Bubble Tea terminal UI for canonhost: an
// interactive prompt for a single URL and a live progress view for batches.
package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lukemcguire/canonhost/batch"
	"github.com/lukemcguire/canonhost/result"
)

// Model is the Bubble Tea model for the batch progress view.
type Model struct {
	ctx        context.Context
	cancel     context.CancelFunc
	runner     *batch.Runner
	inputs     []batch.Input
	spinner    spinner.Model
	progressCh <-chan batch.Event

	processed int
	total     int
	failed    int
	blocked   int
	current   string
	quitting  bool
	done      bool
	result    *result.Result
	err       error
	width     int
}

// NewModel creates a TUI model wired to the given runner, inputs and
// progress channel.
func NewModel(ctx context.Context, cancel context.CancelFunc, runner *batch.Runner, inputs []batch.Input, progressCh <-chan batch.Event) Model {
	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return Model{
		ctx:        ctx,
		cancel:     cancel,
		runner:     runner,
		inputs:     inputs,
		spinner:    spin,
		progressCh: progressCh,
		total:      len(inputs),
	}
}

// Init starts the spinner, the batch and the progress listener concurrently.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.startBatch(), waitForProgress(m.progressCh))
}

// startBatch returns a tea.Cmd that runs the batch and sends BatchDoneMsg.
func (m Model) startBatch() tea.Cmd {
	return func() tea.Msg {
		res, err := m.runner.Run(m.ctx, m.inputs)
		if err != nil {
			err = fmt.Errorf("batch: %w", err)
		}
		return BatchDoneMsg{Result: res, Err: err}
	}
}

// Update handles messages from the Bubble Tea runtime.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			m.cancel()
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case BatchProgressMsg:
		m.processed = msg.Processed
		m.total = msg.Total
		m.failed = msg.Failed
		m.blocked = msg.Blocked
		m.current = msg.Canonical
		return m, waitForProgress(m.progressCh)

	case progressClosedMsg:
		return m, nil

	case BatchDoneMsg:
		m.done = true
		m.result = msg.Result
		m.err = msg.Err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the current TUI state.
func (m Model) View() string {
	if m.done && m.err != nil {
		return errorStyle.Render("Error: "+m.err.Error()) + "\n"
	}
	if m.done && m.result != nil {
		return RenderSummary(m.result)
	}
	current := m.current
	if m.width > 4 && len(current) > m.width-4 {
		current = current[:m.width-4]
	}
	return fmt.Sprintf("%s Canonicalizing... %d/%d, failed %d, blocked %d\n%s\n",
		m.spinner.View(), m.processed, m.total, m.failed, m.blocked,
		dimStyle.Render("  "+current))
}

// Result returns the batch result, or nil if the batch did not finish.
func (m Model) Result() *result.Result {
	return m.result
}

// Err returns the error the batch finished with.
func (m Model) Err() error {
	return m.err
}
