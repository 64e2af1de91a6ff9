package tui

import (
	"strings"

	"patientboard/internal/dnd"
	"patientboard/internal/model"
)

func (m *boardModel) View() string {
	g := m.geom()
	preview, hasPreview := m.ctl.Preview()

	lines := make([]string, 0, m.height)
	lines = append(lines, m.titleLine())
	lines = append(lines, renderBoard(boardView{
		cols:       m.cols,
		cards:      m.cards,
		geom:       g,
		query:      m.query,
		selected:   m.selected,
		preview:    preview,
		hasPreview: hasPreview,
	})...)
	if h := m.noteHeight(); h > 0 {
		lines = append(lines, strings.Split(m.notePane(h), "\n")...)
	}
	lines = append(lines, m.footerLine())
	return strings.Join(lines, "\n")
}

func (m *boardModel) titleLine() string {
	title := "Patients"
	if m.board != nil && strings.TrimSpace(m.board.Title) != "" {
		title = m.board.Title
	} else if m.kind == model.BoardKindSpecies {
		title = "Species"
	}

	var status []string
	switch {
	case m.pending:
		status = append(status, "saving…")
	case m.ctl.Phase() != dnd.PhaseIdle:
		status = append(status, m.ctl.Phase().String())
	}
	g := m.geom()
	if m.scrollX > 0 {
		status = append(status, glyphArrowLeft())
	}
	if m.scrollX < g.maxScroll(len(m.cols)) {
		status = append(status, glyphArrowRight())
	}

	right := strings.Join(status, " ")
	left := fitLine(" "+title, max(m.width-len([]rune(right))-1, 0))
	return fitLine(styleHeader().Render(left)+styleMuted().Render(right), m.width)
}

func (m *boardModel) footerLine() string {
	switch {
	case m.searching || m.filtering():
		return fitLine(m.search.View(), m.width)
	case m.flash != "" && m.flashErr:
		return fitLine(styleFlashError().Render(" "+m.flash+" "), m.width)
	case m.flash != "":
		return fitLine(styleMuted().Render(" "+m.flash), m.width)
	}
	return fitLine(m.help.View(m.keys), m.width)
}

func (m *boardModel) notePane(h int) string {
	card, ok := m.cards[m.selected]
	if !ok {
		return normalizePane("", m.width, h)
	}
	head := styleSeparator().Render(strings.Repeat(glyphHRule(), m.width))
	title := styleHeader().Render(" " + card.Title)
	if card.Subtitle != "" {
		title += styleMuted().Render(" · " + card.Subtitle)
	}
	body := renderNote(card.Note, m.width-2)
	if body == "" {
		body = styleMuted().Render("  (no note)")
	}
	return normalizePane(strings.Join([]string{head, title, body}, "\n"), m.width, h)
}
