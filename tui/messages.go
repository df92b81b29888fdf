package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lukemcguire/canonhost/batch"
	"github.com/lukemcguire/canonhost/result"
)

// BatchProgressMsg reports progress after a processed record.
type BatchProgressMsg struct {
	Processed int
	Total     int
	Failed    int
	Blocked   int
	Canonical string
}

// BatchDoneMsg signals the batch has completed.
type BatchDoneMsg struct {
	Result *result.Result
	Err    error
}

// progressClosedMsg signals the progress channel was closed.
type progressClosedMsg struct{}

// waitForProgress returns a tea.Cmd that reads one event from the progress
// channel.
func waitForProgress(ch <-chan batch.Event) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-ch
		if !ok {
			return progressClosedMsg{}
		}
		return BatchProgressMsg{
			Processed: evt.Processed,
			Total:     evt.Total,
			Failed:    evt.Failed,
			Blocked:   evt.Blocked,
			Canonical: evt.Canonical,
		}
	}
}
