package prompt

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/contactstevenwarren/vibe-coding-setup/internal/sys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errEmpty = errors.New("project name cannot be empty")

func required(s string) error {
	if s == "" {
		return errEmpty
	}
	return nil
}

func TestLinePrompterRetriesUntilValid(t *testing.T) {
	var out bytes.Buffer
	p := NewLinePrompter(strings.NewReader("\n   \ntest-project\n"), &out)

	got, err := p.Ask(context.Background(), Field{Label: "Enter project name: ", Validate: required})
	require.NoError(t, err)
	assert.Equal(t, "test-project", got)
	assert.Equal(t, 2, strings.Count(out.String(), "Error: Project name cannot be empty. Please try again."))
	assert.Equal(t, 3, strings.Count(out.String(), "Enter project name: "))
}

func TestLinePrompterTrimsAndAllowsEmpty(t *testing.T) {
	var out bytes.Buffer
	p := NewLinePrompter(strings.NewReader("  A simple test project  \n\n"), &out)

	desc, err := p.Ask(context.Background(), Field{Label: "Enter a brief project description: "})
	require.NoError(t, err)
	assert.Equal(t, "A simple test project", desc)

	empty, err := p.Ask(context.Background(), Field{Label: "Enter a brief project description: "})
	require.NoError(t, err)
	assert.Equal(t, "", empty)
}

func TestLinePrompterLastLineWithoutNewline(t *testing.T) {
	p := NewLinePrompter(strings.NewReader("final"), &bytes.Buffer{})

	got, err := p.Ask(context.Background(), Field{Label: "> ", Validate: required})
	require.NoError(t, err)
	assert.Equal(t, "final", got)
}

func TestLinePrompterEOF(t *testing.T) {
	p := NewLinePrompter(strings.NewReader(""), &bytes.Buffer{})
	_, err := p.Ask(context.Background(), Field{Label: "> ", Validate: required})
	assert.ErrorIs(t, err, ErrAborted)

	// Invalid last line with no newline cannot be retried.
	p = NewLinePrompter(strings.NewReader("   "), &bytes.Buffer{})
	_, err = p.Ask(context.Background(), Field{Label: "> ", Validate: required})
	assert.ErrorIs(t, err, ErrAborted)
}

func TestLinePrompterCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewLinePrompter(strings.NewReader("x\n"), &bytes.Buffer{})
	_, err := p.Ask(ctx, Field{Label: "> "})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewSelectsPrompter(t *testing.T) {
	in := strings.NewReader("")
	out := &bytes.Buffer{}

	assert.IsType(t, &LinePrompter{}, New(sys.InteractiveAuto, in, out))
	assert.IsType(t, &LinePrompter{}, New(sys.InteractiveNever, in, out))
	assert.IsType(t, &TeaPrompter{}, New(sys.InteractiveAlways, in, out))
}

func TestRetryMessage(t *testing.T) {
	assert.Equal(t, "Error: Project name cannot be empty. Please try again.", RetryMessage(errEmpty))
}

func typeString(m inputModel, s string) inputModel {
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return next.(inputModel)
}

func press(m inputModel, k tea.KeyType) (inputModel, tea.Cmd) {
	next, cmd := m.Update(tea.KeyMsg{Type: k})
	return next.(inputModel), cmd
}

func TestInputModelRejectsEmpty(t *testing.T) {
	m := newInputModel(Field{Label: "Enter project name: ", Validate: required})

	m = typeString(m, "   ")
	m, cmd := press(m, tea.KeyEnter)
	assert.Nil(t, cmd)
	assert.False(t, m.done)
	assert.Contains(t, m.View(), "Error: Project name cannot be empty. Please try again.")
	assert.Equal(t, "", m.input.Value())

	m = typeString(m, "my-app")
	m, cmd = press(m, tea.KeyEnter)
	require.NotNil(t, cmd)
	assert.True(t, m.done)
	assert.Equal(t, "my-app", m.value)
	assert.Contains(t, m.View(), "my-app")
}

func TestInputModelAbort(t *testing.T) {
	for _, k := range []tea.KeyType{tea.KeyEsc, tea.KeyCtrlC} {
		m := newInputModel(Field{Label: "> "})
		m, cmd := press(m, k)
		assert.True(t, m.aborted)
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
	}
}
