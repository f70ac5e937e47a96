// Package render writes relay output to the terminal, formatting markdown with
// glamour when the destination is an interactive terminal.
package render

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

const defaultWidth = 80

var (
	labelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	faintStyle = lipgloss.NewStyle().Faint(true)
)

// terminalFd returns the file descriptor behind w when w is a terminal.
func terminalFd(w io.Writer) (int, bool) {
	f, ok := w.(*os.File)
	if !ok {
		return 0, false
	}
	fd := int(f.Fd())
	return fd, term.IsTerminal(fd)
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	_, ok := terminalFd(w)
	return ok
}

// Markdown writes text to w, rendered as markdown on a terminal and verbatim otherwise.
func Markdown(w io.Writer, text string) error {
	fd, ok := terminalFd(w)
	if !ok {
		_, err := fmt.Fprintln(w, text)
		return err
	}

	width := defaultWidth
	if cols, _, err := term.GetSize(fd); err == nil && cols > 0 {
		width = cols
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return fmt.Errorf("could not create markdown renderer: %w", err)
	}

	out, err := r.Render(text)
	if err != nil {
		return fmt.Errorf("could not render markdown: %w", err)
	}

	_, err = io.WriteString(w, out)
	return err
}

// Label writes a role label line, styled on a terminal.
func Label(w io.Writer, label string) {
	if IsTerminal(w) {
		label = labelStyle.Render(label)
	}
	fmt.Fprintln(w, label)
}

// Errorf writes an error line, styled on a terminal.
func Errorf(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if IsTerminal(w) {
		msg = errorStyle.Render(msg)
	}
	fmt.Fprintln(w, msg)
}

// Faintf writes a secondary detail line, dimmed on a terminal.
func Faintf(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if IsTerminal(w) {
		msg = faintStyle.Render(msg)
	}
	fmt.Fprintln(w, msg)
}
