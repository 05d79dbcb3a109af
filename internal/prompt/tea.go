package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#22D3EE")).
			Bold(true)

	answerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F59E0B"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))
)

// TeaPrompter asks questions with a bubbletea text input.
type TeaPrompter struct {
	in  io.Reader
	out io.Writer
}

// NewTeaPrompter creates a terminal prompter bound to in and out.
func NewTeaPrompter(in io.Reader, out io.Writer) *TeaPrompter {
	return &TeaPrompter{in: in, out: out}
}

// Ask runs a small bubbletea program until the user submits a valid answer,
// presses Esc or Ctrl+C, or ctx is done.
func (p *TeaPrompter) Ask(ctx context.Context, f Field) (string, error) {
	prog := tea.NewProgram(newInputModel(f),
		tea.WithContext(ctx),
		tea.WithInput(p.in),
		tea.WithOutput(p.out),
	)
	final, err := prog.Run()
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if errors.Is(err, tea.ErrProgramKilled) {
			return "", ErrAborted
		}
		return "", fmt.Errorf("running prompt: %w", err)
	}

	m, ok := final.(inputModel)
	if !ok || m.aborted || !m.done {
		return "", ErrAborted
	}
	return m.value, nil
}

type inputModel struct {
	field   Field
	input   textinput.Model
	errMsg  string
	value   string
	done    bool
	aborted bool
}

func newInputModel(f Field) inputModel {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = f.Placeholder
	ti.CharLimit = 256
	ti.Width = 50
	ti.Focus()

	return inputModel{field: f, input: ti}
}

func (m inputModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m inputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.aborted = true
			return m, tea.Quit
		case tea.KeyEnter:
			answer := strings.TrimSpace(m.input.Value())
			if m.field.Validate != nil {
				if err := m.field.Validate(answer); err != nil {
					m.errMsg = RetryMessage(err)
					m.input.SetValue("")
					return m, nil
				}
			}
			m.value = answer
			m.done = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m inputModel) View() string {
	label := labelStyle.Render(strings.TrimRight(m.field.Label, " "))
	if m.done {
		return label + " " + answerStyle.Render(m.value) + "\n"
	}
	if m.aborted {
		return label + "\n"
	}

	var b strings.Builder
	b.WriteString(label + " " + m.input.View() + "\n")
	if m.errMsg != "" {
		b.WriteString(errorStyle.Render(m.errMsg) + "\n")
	}
	b.WriteString(helpStyle.Render("enter to confirm • esc to cancel") + "\n")
	return b.String()
}
