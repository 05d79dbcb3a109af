// Package prompt asks the user for the values a new project needs.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/contactstevenwarren/vibe-coding-setup/internal/sys"
	"github.com/mattn/go-isatty"
)

// ErrAborted is returned when the user cancels a prompt or input ends.
var ErrAborted = errors.New("setup aborted")

// Field describes one question.
type Field struct {
	Label       string // e.g. "Enter project name: "
	Placeholder string
	// Validate rejects a trimmed answer; the prompt repeats until it passes.
	// Nil accepts anything, including the empty string.
	Validate func(string) error
}

// Prompter asks a single question and returns the trimmed answer.
type Prompter interface {
	Ask(ctx context.Context, f Field) (string, error)
}

// New picks a prompter for mode (auto|always|never). In auto mode the
// bubbletea prompt is used only when both in and out are terminals.
func New(mode string, in io.Reader, out io.Writer) Prompter {
	switch mode {
	case sys.InteractiveAlways:
		return NewTeaPrompter(in, out)
	case sys.InteractiveNever:
		return NewLinePrompter(in, out)
	}
	if isTerminal(in) && isTerminal(out) {
		return NewTeaPrompter(in, out)
	}
	return NewLinePrompter(in, out)
}

type fder interface {
	Fd() uintptr
}

func isTerminal(v any) bool {
	f, ok := v.(fder)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// RetryMessage is what the user sees after a rejected answer.
func RetryMessage(err error) string {
	return fmt.Sprintf("Error: %s. Please try again.", capitalize(err.Error()))
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// LinePrompter reads answers line by line. It is used when stdin is not a terminal.
type LinePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewLinePrompter creates a line-based prompter.
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{in: bufio.NewReader(in), out: out}
}

// Ask prints the label and reads one line, repeating while validation fails.
func (p *LinePrompter) Ask(ctx context.Context, f Field) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		fmt.Fprint(p.out, f.Label)
		line, err := p.in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("reading input: %w", err)
		}
		eof := errors.Is(err, io.EOF)
		if eof && line == "" {
			fmt.Fprintln(p.out)
			return "", ErrAborted
		}

		answer := strings.TrimSpace(line)
		if f.Validate != nil {
			if verr := f.Validate(answer); verr != nil {
				if eof {
					fmt.Fprintln(p.out)
				}
				fmt.Fprintln(p.out, RetryMessage(verr))
				if eof {
					return "", ErrAborted
				}
				continue
			}
		}
		return answer, nil
	}
}
