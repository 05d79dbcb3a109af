package main

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette
var (
	ColorPrimary   = lipgloss.Color("#7C3AED") // Violet
	ColorSecondary = lipgloss.Color("#06B6D4") // Cyan
	ColorAccent    = lipgloss.Color("#F59E0B") // Amber

	ColorSuccess = lipgloss.Color("#10B981") // Emerald
	ColorWarning = lipgloss.Color("#F59E0B") // Amber
	ColorError   = lipgloss.Color("#EF4444") // Red
	ColorInfo    = lipgloss.Color("#3B82F6") // Blue

	ColorMuted = lipgloss.Color("#6B7280") // Gray
	ColorBold  = lipgloss.Color("#F3F4F6") // Almost White

	ColorMagic   = lipgloss.Color("#EC4899") // Pink
	ColorNeon    = lipgloss.Color("#22D3EE") // Bright Cyan
	ColorSunrise = lipgloss.Color("#FB923C") // Orange
)

var (
	cliTitle     = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	cliSubtitle  = lipgloss.NewStyle().Italic(true).Foreground(ColorSecondary)
	cliSuccess   = lipgloss.NewStyle().Bold(true).Foreground(ColorSuccess)
	cliError     = lipgloss.NewStyle().Bold(true).Foreground(ColorError)
	cliWarning   = lipgloss.NewStyle().Foreground(ColorWarning)
	cliInfo      = lipgloss.NewStyle().Foreground(ColorInfo)
	cliLabel     = lipgloss.NewStyle().Foreground(ColorNeon).Bold(true)
	cliValue     = lipgloss.NewStyle().Foreground(ColorBold)
	cliMuted     = lipgloss.NewStyle().Foreground(ColorMuted)
	cliBullet    = lipgloss.NewStyle().Foreground(ColorMagic).Bold(true)
	cliCommand   = lipgloss.NewStyle().Foreground(ColorSunrise).Bold(true)
	cliHighlight = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)

	cliBadgeSuccess = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#000")).Background(ColorSuccess).Padding(0, 1)
	cliBadgeError   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFF")).Background(ColorError).Padding(0, 1)
	cliBadgeInfo    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFF")).Background(ColorInfo).Padding(0, 1)
	cliBadgeWarning = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#000")).Background(ColorWarning).Padding(0, 1)
)

// ColorWriter colorizes help text on its way to the underlying writer.
type ColorWriter struct {
	underlying io.Writer
}

func NewColorWriter(w io.Writer) *ColorWriter {
	return &ColorWriter{underlying: w}
}

func (cw *ColorWriter) Write(p []byte) (n int, err error) {
	lines := strings.Split(string(p), "\n")
	var output strings.Builder

	for i, line := range lines {
		output.WriteString(colorizeLine(line))
		if i < len(lines)-1 {
			output.WriteString("\n")
		}
	}

	written, err := cw.underlying.Write([]byte(output.String()))
	if err == nil {
		return len(p), nil
	}
	return written, err
}

var (
	reFlag        = regexp.MustCompile(`(\s)(--?[a-zA-Z][-a-zA-Z0-9]*)`)
	reCommand     = regexp.MustCompile(`(vibe-coding-setup(?:\s+[a-z]+)+)`)
	reHeader      = regexp.MustCompile(`^([A-Z][a-zA-Z ]+:)\s*$`)
	reURL         = regexp.MustCompile(`(https?://[^\s]+)`)
	rePlaceholder = regexp.MustCompile(`(<[^>]+>)`)
	reOptional    = regexp.MustCompile(`(\[[^\]]+\])`)
)

func colorizeLine(line string) string {
	if strings.Contains(line, "\x1b[") {
		return line
	}

	if reHeader.MatchString(strings.TrimSpace(line)) {
		return cliTitle.Render(line)
	}

	result := reFlag.ReplaceAllStringFunc(line, func(m string) string {
		parts := reFlag.FindStringSubmatch(m)
		if len(parts) >= 3 {
			return parts[1] + lipgloss.NewStyle().Foreground(ColorNeon).Render(parts[2])
		}
		return m
	})
	result = reCommand.ReplaceAllStringFunc(result, func(m string) string {
		return cliCommand.Render(m)
	})
	result = reURL.ReplaceAllStringFunc(result, func(m string) string {
		return lipgloss.NewStyle().Foreground(ColorInfo).Underline(true).Render(m)
	})
	result = rePlaceholder.ReplaceAllStringFunc(result, func(m string) string {
		return lipgloss.NewStyle().Foreground(ColorMagic).Italic(true).Render(m)
	})
	result = reOptional.ReplaceAllStringFunc(result, func(m string) string {
		return cliMuted.Render(m)
	})
	return result
}

// printer writes styled lines to one destination, normally cmd.OutOrStdout().
type printer struct {
	w io.Writer
}

func newPrinter(w io.Writer) printer {
	return printer{w: w}
}

func (p printer) title(emoji, title string) {
	fmt.Fprintln(p.w)
	if emoji != "" {
		title = emoji + " " + title
	}
	fmt.Fprintln(p.w, cliTitle.Render(title))
	fmt.Fprintln(p.w, cliMuted.Render("─────────────────────────────────────────────"))
}

func (p printer) keyValue(key, value string) {
	fmt.Fprintf(p.w, "%s %s\n", cliLabel.Render(key+":"), cliValue.Render(value))
}

func (p printer) keyValueHighlight(key, value string) {
	fmt.Fprintf(p.w, "%s %s\n", cliLabel.Render(key+":"), cliHighlight.Render(value))
}

func (p printer) success(message string) {
	fmt.Fprintln(p.w, cliBadgeSuccess.Render("SUCCESS")+" "+cliSuccess.Render(message))
}

func (p printer) badge(label, message string) {
	fmt.Fprintln(p.w, cliBadgeInfo.Render(label)+" "+cliValue.Render(message))
}

func (p printer) errorBadge(message string) {
	fmt.Fprintln(p.w, cliBadgeError.Render("ERROR")+" "+cliError.Render(message))
}

// errorLine prints a plain "Error: ..." message in the error color.
func (p printer) errorLine(message string) {
	fmt.Fprintln(p.w, cliError.Render("Error: "+message))
}

func (p printer) info(message string) {
	fmt.Fprintln(p.w, cliInfo.Render(message))
}

func (p printer) warning(message string) {
	fmt.Fprintln(p.w, cliBadgeWarning.Render("WARN")+" "+cliWarning.Render(message))
}

func (p printer) muted(message string) {
	fmt.Fprintln(p.w, cliMuted.Render(message))
}

func (p printer) bullet(text string) {
	fmt.Fprintln(p.w, cliBullet.Render("●")+" "+cliValue.Render(text))
}

func (p printer) bulletWithMeta(text, meta string) {
	fmt.Fprintf(p.w, "%s %s %s\n", cliBullet.Render("●"), cliValue.Render(text), cliMuted.Render("("+meta+")"))
}

func (p printer) command(prefix, cmd, suffix string) {
	fmt.Fprintln(p.w, cliInfo.Render(prefix)+" "+cliCommand.Render(cmd)+" "+cliInfo.Render(suffix))
}

func (p printer) subtitle(text string) {
	fmt.Fprintln(p.w, cliSubtitle.Render(text))
}

func (p printer) plain(text string) {
	fmt.Fprintln(p.w, text)
}

func (p printer) newline() {
	fmt.Fprintln(p.w)
}
