package ui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/evgeny-sureev/Chatto/pkg/layout"
)

// renderViewport paints the visible items into viewport rows. Only items the
// controller returns are rendered; the pinned separator is painted last so it
// covers whatever scrolled beneath it.
func (m Model) renderViewport() string {
	rows := m.viewportRows()
	lines := make([]string, rows)

	width := m.layoutWidth()
	items := m.visible()
	headers := make(map[int]bool)
	for _, g := range m.ctrl.Model().StickyItems() {
		headers[g.Index] = true
	}

	var pinned *layout.ItemGeometry
	for _, g := range items {
		if g.IsSticking {
			p := g
			pinned = &p
			continue
		}
		style := MessageStyle
		if headers[g.Index] {
			style = HeaderStyle
		}
		m.paint(lines, g, width, style)
	}
	if pinned != nil {
		m.paint(lines, *pinned, width, PinnedHeaderStyle.Width(int(width)))
	}
	return strings.Join(lines, "\n")
}

// paint writes the block of g into lines at its current frame, clipped to the
// viewport.
func (m Model) paint(lines []string, g layout.ItemGeometry, width float64, style lipgloss.Style) {
	top := int(math.Floor(g.CurrentFrame.Y - m.scrollY))
	for i, line := range m.source.Block(width, g.Index) {
		row := top + i
		if row < 0 || row >= len(lines) {
			continue
		}
		lines[row] = style.Render(line)
	}
}
