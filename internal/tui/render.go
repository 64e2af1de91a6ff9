package tui

import (
	"fmt"
	"strings"

	"patientboard/internal/dnd"
	"patientboard/internal/model"
)

type boardView struct {
	cols     []columnView
	cards    map[int64]model.Card
	geom     boardGeom
	query    string
	selected int64

	preview    dnd.Preview
	hasPreview bool
}

// renderBoard draws the board area as exactly geom.Height lines of
// geom.Width cells.
func renderBoard(v boardView) []string {
	g := v.geom
	blank := strings.Repeat(" ", max(g.Width, 0))
	lines := make([]string, max(g.Height, 0))
	for i := range lines {
		lines[i] = blank
	}
	if g.Width <= 0 || g.Height <= 0 {
		return lines
	}

	if strings.TrimSpace(v.query) != "" && len(v.cols) == 0 {
		msg := fmt.Sprintf("No patients match %q", strings.TrimSpace(v.query))
		row := g.Height / 2
		pad := max((g.Width-len(msg))/2, 0)
		lines[row] = fitLine(strings.Repeat(" ", pad)+styleMuted().Render(msg), g.Width)
		return lines
	}

	w := g.colWidth()
	for i, c := range v.cols {
		x := i*(w+columnGap) - g.ScrollX
		if x+w <= 0 || x >= g.Width {
			continue
		}
		lines = overlay(lines, renderColumn(v, c, w, g.Height), x, 0)
	}

	if v.hasPreview && v.preview.Ghost {
		if card, ok := v.cards[int64(v.preview.Item)]; ok {
			at := v.preview.GhostAt
			lines = overlay(lines, renderGhost(card, w), at.X, at.Y-g.Top)
		}
	}
	return lines
}

func renderColumn(v boardView, c columnView, w, height int) []string {
	out := make([]string, height)
	for i := range out {
		out[i] = strings.Repeat(" ", w)
	}

	dragged := int64(-1)
	if v.hasPreview {
		dragged = int64(v.preview.Item)
	}
	isTarget := v.hasPreview && v.preview.HasSlot && int64(v.preview.Slot.Container) == c.ID

	count := fmt.Sprintf("(%d)", c.Total)
	if strings.TrimSpace(v.query) != "" {
		count = fmt.Sprintf("(%d/%d)", len(c.Cards), c.Total)
	}
	header := fitLine(" "+c.Name+" "+count, w)
	if isTarget {
		out[0] = styleHeaderTarget().Render(header)
	} else {
		out[0] = styleHeader().Render(header)
	}
	if height > 1 {
		out[1] = styleSeparator().Render(strings.Repeat(glyphHRule(), w))
	}

	for k, id := range c.Cards {
		top := cardsOffset + k*cardStride
		card := v.cards[id]
		for r, ln := range renderCard(card, w, id == v.selected, id == dragged) {
			if top+r < height {
				out[top+r] = ln
			}
		}
	}

	if isTarget {
		if row := slotRow(c, dragged, v.preview.Slot.Index); row >= 0 && row < height {
			out[row] = styleSlot().Render(strings.Repeat(glyphSlot(), w))
		}
	}
	return out
}

// slotRow is the spacer row where an item dropped at index would land. index
// counts cards with the dragged one removed.
func slotRow(c columnView, dragged int64, index int) int {
	var tops []int
	for k, id := range c.Cards {
		if id == dragged {
			continue
		}
		tops = append(tops, cardsOffset+k*cardStride)
	}
	switch {
	case len(tops) == 0:
		return cardsOffset - 1
	case index < len(tops):
		return tops[index] - 1
	default:
		return tops[len(tops)-1] + cardHeight
	}
}

func renderCard(card model.Card, w int, selected, dragging bool) []string {
	title := fitLine(glyphHandle()+" "+card.Title, w-infoButtonWidth) + "[i]"
	sub := fitLine("  "+card.Subtitle, w)
	meta := fitLine("  "+cardMeta(card), w)

	switch {
	case dragging:
		return []string{styleMuted().Render(title), styleMuted().Render(sub), styleMuted().Render(meta)}
	case selected:
		return []string{styleSelected().Render(title), styleSelected().Render(sub), styleSelected().Render(meta)}
	default:
		return []string{styleHandle().Render(title), sub, styleMeta().Render(meta)}
	}
}

func renderGhost(card model.Card, w int) []string {
	st := styleGhost()
	return []string{
		st.Render(fitLine(glyphHandle()+" "+card.Title, w)),
		st.Render(fitLine("  "+card.Subtitle, w)),
		st.Render(fitLine("  "+cardMeta(card), w)),
	}
}

func cardMeta(card model.Card) string {
	parts := make([]string, 0, len(card.Tags)+1)
	parts = append(parts, card.Tags...)
	if card.Since != nil {
		parts = append(parts, "since "+card.Since.Format("2006-01-02"))
	}
	return strings.Join(parts, " · ")
}
