package util

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// PadRight pads or truncates s to exactly width terminal cells.
func PadRight(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w > width {
		return runewidth.Truncate(s, width, "...")
	}
	return s + strings.Repeat(" ", width-w)
}

// Row lays cells out in fixed-width columns separated by a space. Cells
// beyond len(widths) are dropped.
func Row(cells []string, widths []int) string {
	var b strings.Builder
	for i, w := range widths {
		if i > 0 {
			b.WriteByte(' ')
		}
		var cell string
		if i < len(cells) {
			cell = cells[i]
		}
		b.WriteString(PadRight(cell, w))
	}
	return b.String()
}
