package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lukemcguire/canonhost/canon"
)

// PromptModel asks for a single URL and previews its canonical form while
// the user types.
type PromptModel struct {
	input     textinput.Model
	submitted bool
	cancelled bool
}

// NewPromptModel creates a focused URL prompt.
func NewPromptModel() PromptModel {
	in := textinput.New()
	in.Placeholder = "http://example.com/"
	in.Prompt = "URL: "
	in.CharLimit = 4096
	in.Focus()
	return PromptModel{input: in}
}

// Init starts the cursor blink.
func (m PromptModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles key presses; enter submits, esc and ctrl+c cancel.
func (m PromptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			m.submitted = true
			return m, tea.Quit
		case tea.KeyEsc, tea.KeyCtrlC, tea.KeyCtrlD:
			m.cancelled = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the prompt and the live preview.
func (m PromptModel) View() string {
	if m.submitted || m.cancelled {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Enter a URL to canonicalize"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	if value := m.input.Value(); value != "" {
		b.WriteString(dimStyle.Render("  => "))
		b.WriteString(keyStyle.Render(canon.Canonicalize(value)))
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render("enter: submit  esc: cancel"))
	b.WriteString("\n")
	return b.String()
}

// Value returns the submitted URL. It returns nil when the prompt was
// cancelled, which callers treat as an absent input.
func (m PromptModel) Value() *string {
	if !m.submitted {
		return nil
	}
	value := m.input.Value()
	return &value
}
