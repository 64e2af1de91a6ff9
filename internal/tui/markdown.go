package tui

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// Notes are short, so at most one renderer per width and background.
type noteStyle struct {
	dark  bool
	width int
}

var notes = struct {
	sync.Mutex
	renderers map[noteStyle]*glamour.TermRenderer
}{renderers: map[noteStyle]*glamour.TermRenderer{}}

func noteRenderer(st noteStyle) (*glamour.TermRenderer, error) {
	notes.Lock()
	defer notes.Unlock()
	if r, ok := notes.renderers[st]; ok {
		return r, nil
	}
	// glamour's auto style queries the terminal, which blocks inside the
	// program; pick the standard style from lipgloss' background instead.
	name := "light"
	if st.dark {
		name = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(name),
		glamour.WithWordWrap(st.width),
	)
	if err != nil {
		return nil, err
	}
	notes.renderers[st] = r
	return r, nil
}

// renderNote renders a patient note as markdown. The raw note is shown when
// rendering fails.
func renderNote(md string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	r, err := noteRenderer(noteStyle{dark: lipgloss.HasDarkBackground(), width: max(width, 10)})
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}
