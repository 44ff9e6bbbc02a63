package layout

import "math"

// Build lays out measurements top to bottom at the given width. Each item
// starts where the previous item's bottom margin ends, so every y is a prefix
// sum of the heights and margins before it.
//
// Negative or NaN heights and margins are treated as zero.
func Build(width float64, measurements []ItemMeasurement) *Model {
	m := &Model{
		builtForWidth: width,
		items:         make([]ItemGeometry, 0, len(measurements)),
	}

	offset := 0.0
	for i, ms := range measurements {
		height := nonNegative(ms.Height)
		margin := nonNegative(ms.BottomMargin)

		frame := Rect{X: 0, Y: offset, Width: width, Height: height}
		m.items = append(m.items, ItemGeometry{
			Index:         i,
			OriginalFrame: frame,
			CurrentFrame:  frame,
			BottomMargin:  margin,
		})
		if ms.IsStickyToTop {
			m.stickyItems = append(m.stickyItems, i)
		}
		offset += height + margin
	}

	m.contentSize = Size{Width: width, Height: offset}
	return m
}

func nonNegative(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
