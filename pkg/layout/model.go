package layout

// ItemMeasurement is the externally supplied size of one item, in display
// order.
type ItemMeasurement struct {
	Height        float64 `json:"height" yaml:"height"`
	BottomMargin  float64 `json:"bottom_margin,omitempty" yaml:"bottom_margin,omitempty"`
	IsStickyToTop bool    `json:"sticky,omitempty" yaml:"sticky,omitempty"`
}

// ItemGeometry is the computed placement of one item.
//
// OriginalFrame is fixed at build time. CurrentFrame equals OriginalFrame
// except for the copy handed out for the active sticky item of a query,
// whose Y is pinned to the scroll offset.
type ItemGeometry struct {
	Index         int     `json:"index"`
	OriginalFrame Rect    `json:"original_frame"`
	CurrentFrame  Rect    `json:"current_frame"`
	BottomMargin  float64 `json:"bottom_margin"`
	IsSticking    bool    `json:"is_sticking"`
}

// Equal reports whether two geometries describe the same placement.
func (g ItemGeometry) Equal(o ItemGeometry) bool {
	return g == o
}

// Unstuck returns a copy of g with its current frame restored.
func (g ItemGeometry) Unstuck() ItemGeometry {
	g.CurrentFrame = g.OriginalFrame
	g.IsSticking = false
	return g
}

// Model is an immutable snapshot of item placements for one content width.
// It is safe to share between goroutines once built.
type Model struct {
	contentSize   Size
	items         []ItemGeometry
	stickyItems   []int
	builtForWidth float64
}

// EmptyModel returns a model with no items and a zero content size, built
// for width. It is what a controller serves when no provider is attached.
func EmptyModel(width float64) *Model {
	return &Model{builtForWidth: width}
}

// ContentSize returns the total scrollable extent.
func (m *Model) ContentSize() Size {
	if m == nil {
		return Size{}
	}
	return m.contentSize
}

// BuiltForWidth returns the width the model was computed for.
func (m *Model) BuiltForWidth() float64 {
	if m == nil {
		return 0
	}
	return m.builtForWidth
}

// Len returns the number of items.
func (m *Model) Len() int {
	if m == nil {
		return 0
	}
	return len(m.items)
}

// StickyCount returns the number of items marked sticky.
func (m *Model) StickyCount() int {
	if m == nil {
		return 0
	}
	return len(m.stickyItems)
}

// Item returns the geometry at index i. The second result is false when i is
// out of range.
func (m *Model) Item(i int) (ItemGeometry, bool) {
	if m == nil || i < 0 || i >= len(m.items) {
		return ItemGeometry{}, false
	}
	return m.items[i], true
}

// Items returns a copy of every item geometry in display order.
func (m *Model) Items() []ItemGeometry {
	if m == nil {
		return nil
	}
	out := make([]ItemGeometry, len(m.items))
	copy(out, m.items)
	return out
}

// StickyItems returns copies of the sticky items in display order.
func (m *Model) StickyItems() []ItemGeometry {
	if m == nil {
		return nil
	}
	out := make([]ItemGeometry, len(m.stickyItems))
	for i, idx := range m.stickyItems {
		out[i] = m.items[idx]
	}
	return out
}
