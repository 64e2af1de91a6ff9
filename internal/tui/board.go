package tui

import (
	"fmt"
	"strings"

	"patientboard/internal/dnd"
	"patientboard/internal/model"
)

// Card geometry in cells. A card is three rows (handle line, subtitle, meta)
// followed by one blank spacer row.
const (
	cardHeight      = 3
	cardStride      = cardHeight + 1
	cardsOffset     = 2 // header row + blank row above the first card
	columnGap       = 1
	infoButtonWidth = 3 // "[i]" at the right end of the handle line

	defaultColumnWidth = 28
	minColumnWidth     = 12
)

// columnView is a column as currently shown: its cards in display order after
// filtering.
type columnView struct {
	ID    int64
	Name  string
	Cards []int64
	// Total is the unfiltered card count, shown in the header.
	Total int
}

type boardGeom struct {
	ColWidth int
	Top      int
	Height   int
	Width    int
	ScrollX  int
}

func (g boardGeom) colWidth() int {
	if g.ColWidth < minColumnWidth {
		return defaultColumnWidth
	}
	return g.ColWidth
}

func (g boardGeom) contentWidth(cols int) int {
	if cols <= 0 {
		return 0
	}
	return cols*(g.colWidth()+columnGap) - columnGap
}

// maxScroll is the largest useful horizontal offset.
func (g boardGeom) maxScroll(cols int) int {
	if w := g.contentWidth(cols) - g.Width; w > 0 {
		return w
	}
	return 0
}

func (g boardGeom) clampScroll(x, cols int) int {
	if x < 0 {
		return 0
	}
	if mx := g.maxScroll(cols); x > mx {
		return mx
	}
	return x
}

// checkBoard refuses a board the configured endpoints cannot serve: a board
// of the other kind, or a species board that is not the configured home's.
func checkBoard(b *model.Board, kind model.BoardKind, home int64) error {
	if b == nil {
		return nil
	}
	want, got := kind, b.Kind
	if want == "" {
		want = model.BoardKindPatients
	}
	if got == "" {
		got = model.BoardKindPatients
	}
	if got != want {
		return fmt.Errorf("board is a %s board, configured for %s", got, want)
	}
	if want != model.BoardKindSpecies {
		return nil
	}
	if len(b.Columns) != 1 {
		return fmt.Errorf("species board has %d columns, want 1", len(b.Columns))
	}
	if home > 0 && b.Columns[0].ID != home {
		return fmt.Errorf("species board is home %d, configured home is %d", b.Columns[0].ID, home)
	}
	return nil
}

func listsFromBoard(b *model.Board) (*dnd.Lists, error) {
	l := dnd.NewLists()
	if b == nil {
		return l, nil
	}
	for _, c := range b.Columns {
		ids := make([]dnd.ItemID, 0, len(c.Cards))
		for _, card := range c.Cards {
			ids = append(ids, dnd.ItemID(card.ID))
		}
		if err := l.Add(dnd.ContainerID(c.ID), ids...); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// boardWithOrder returns a copy of b whose columns list their cards in the
// order held by l.
func boardWithOrder(b *model.Board, l *dnd.Lists) *model.Board {
	if b == nil {
		return nil
	}
	cards := make(map[int64]model.Card)
	for _, c := range b.Columns {
		for _, card := range c.Cards {
			cards[card.ID] = card
		}
	}
	out := &model.Board{Kind: b.Kind, Title: b.Title, Columns: make([]model.Column, 0, len(b.Columns))}
	for _, c := range b.Columns {
		nc := model.Column{ID: c.ID, Name: c.Name, Cards: []model.Card{}}
		for _, id := range l.Order(dnd.ContainerID(c.ID)) {
			if card, ok := cards[int64(id)]; ok {
				nc.Cards = append(nc.Cards, card)
			}
		}
		out.Columns = append(out.Columns, nc)
	}
	return out
}

// buildColumns lists the visible columns. With a non-empty query only
// matching cards are kept and columns without matches are hidden.
func buildColumns(b *model.Board, l *dnd.Lists, query string) []columnView {
	if b == nil {
		return nil
	}
	q := strings.ToLower(strings.TrimSpace(query))
	cards := make(map[int64]model.Card)
	for _, c := range b.Columns {
		for _, card := range c.Cards {
			cards[card.ID] = card
		}
	}

	out := make([]columnView, 0, len(b.Columns))
	for _, c := range b.Columns {
		order := l.Order(dnd.ContainerID(c.ID))
		cv := columnView{ID: c.ID, Name: c.Name, Total: len(order)}
		for _, id := range order {
			card, ok := cards[int64(id)]
			if !ok || !card.Matches(q) {
				continue
			}
			cv.Cards = append(cv.Cards, card.ID)
		}
		if q != "" && len(cv.Cards) == 0 {
			continue
		}
		out = append(out, cv)
	}
	return out
}

// computeLayout places columns left to right, shifted by the scroll offset.
// Every column spans the full board height so a drop below the last card
// still lands in it.
func computeLayout(cols []columnView, g boardGeom) dnd.Layout {
	w := g.colWidth()
	l := dnd.Layout{Containers: make([]dnd.ContainerLayout, 0, len(cols))}
	for i, c := range cols {
		x := i*(w+columnGap) - g.ScrollX
		cl := dnd.ContainerLayout{
			ID:     dnd.ContainerID(c.ID),
			Bounds: dnd.Rect{X: x, Y: g.Top, W: w, H: g.Height},
		}
		for k, id := range c.Cards {
			cl.Children = append(cl.Children, dnd.ChildLayout{
				Item:   dnd.ItemID(id),
				Bounds: dnd.Rect{X: x, Y: g.Top + cardsOffset + k*cardStride, W: w, H: cardHeight},
			})
		}
		l.Containers = append(l.Containers, cl)
	}
	return l
}

// hitAt classifies the cell under p. The handle is a card's first row, minus
// the info button at its right end.
func hitAt(l dnd.Layout, g boardGeom, p dnd.Point) dnd.Hit {
	for _, c := range l.Containers {
		if !c.Bounds.Contains(p) {
			continue
		}
		for _, ch := range c.Children {
			if !ch.Bounds.Contains(p) {
				continue
			}
			h := dnd.Hit{Item: ch.Item, Container: c.ID, Bounds: ch.Bounds}
			switch {
			case p.Y == ch.Bounds.Y && p.X > ch.Bounds.Right()-infoButtonWidth:
				h.Kind = dnd.HitInteractive
			case p.Y == ch.Bounds.Y:
				h.Kind = dnd.HitHandle
			default:
				h.Kind = dnd.HitItem
			}
			return h
		}
		return dnd.Hit{Kind: dnd.HitBackground, Container: c.ID}
	}
	area := dnd.Rect{X: 0, Y: g.Top, W: g.Width, H: g.Height}
	if area.Contains(p) {
		return dnd.Hit{Kind: dnd.HitBackground}
	}
	return dnd.Hit{Kind: dnd.HitNone}
}
