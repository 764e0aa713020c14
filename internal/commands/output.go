package commands

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"

	"github.com/hay-kot/calcam/internal/core/auth"
)

// requireSession returns the signed-in session or auth.ErrUnauthenticated.
func (f *Flags) requireSession(ctx context.Context) (*auth.Session, error) {
	return f.Auth.RequireSession(ctx)
}

// writeJSON writes v to w as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// terminalWidth returns the width of w, or fallback when it is not a terminal.
func terminalWidth(w io.Writer, fallback int) int {
	if f, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width
		}
	}
	return fallback
}

// renderMarkdown renders md for w. Markdown is rendered with glamour on a
// terminal and returned unchanged otherwise.
func renderMarkdown(w io.Writer, md string) string {
	if !isTerminal(w) {
		return md
	}

	width := min(terminalWidth(w, 80), 100)
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("tokyo-night"),
		glamour.WithWordWrap(width-4),
	)
	if err != nil {
		return md
	}

	out, err := renderer.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n") + "\n"
}
