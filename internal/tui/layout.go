package tui

import (
	"strings"

	xansi "github.com/charmbracelet/x/ansi"
)

// normalizePane forces s to exactly width columns (ANSI-aware) and height
// lines.
func normalizePane(s string, width, height int) string {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}

	lines := strings.Split(s, "\n")
	if height > 0 {
		if len(lines) > height {
			lines = lines[:height]
		}
		for len(lines) < height {
			lines = append(lines, "")
		}
	}
	for i := range lines {
		lines[i] = fitLine(lines[i], width)
	}
	return strings.Join(lines, "\n")
}

// fitLine truncates or pads ln to exactly width cells.
func fitLine(ln string, width int) string {
	if width <= 0 {
		return ""
	}
	w := xansi.StringWidth(ln)
	if w > width {
		if width == 1 {
			ln = xansi.Cut(ln, 0, 1)
		} else {
			ln = xansi.Cut(ln, 0, width-1) + glyphEllipsis()
		}
		w = xansi.StringWidth(ln)
	}
	if w < width {
		ln += strings.Repeat(" ", width-w)
	}
	return ln
}

// overlay draws top over base with its top-left corner at (x, y). base lines
// must already be padded to a common width; top is clipped to base.
func overlay(base []string, top []string, x, y int) []string {
	if len(base) == 0 {
		return base
	}
	width := xansi.StringWidth(base[0])
	out := append([]string(nil), base...)
	for i, tl := range top {
		row := y + i
		if row < 0 || row >= len(out) {
			continue
		}
		tw := xansi.StringWidth(tl)
		left, right := x, x+tw
		// Clip the overlay line to the visible columns.
		if left < 0 {
			tl = xansi.Cut(tl, -left, tw)
			left = 0
		}
		if right > width {
			tl = xansi.Cut(tl, 0, xansi.StringWidth(tl)-(right-width))
			right = width
		}
		if left >= right {
			continue
		}
		out[row] = xansi.Cut(out[row], 0, left) + tl + xansi.Cut(out[row], right, width)
	}
	return out
}
