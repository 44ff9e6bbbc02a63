package layout

import "math"

// ActiveSticky returns the sticky item pinned at scrollY, with its current
// frame moved to the pinned position. The second result is false when no
// sticky item has been scrolled past.
//
// Candidates are scanned from the bottom up. The first one whose natural top
// is above scrollY wins; it is pinned at scrollY but never pushed below the
// top of the next sticky item, so consecutive headers do not overlap.
func (m *Model) ActiveSticky(scrollY float64) (ItemGeometry, bool) {
	if m == nil {
		return ItemGeometry{}, false
	}
	boundary := math.Inf(1)
	for i := len(m.stickyItems) - 1; i >= 0; i-- {
		g := m.items[m.stickyItems[i]]
		if g.OriginalFrame.Y < scrollY {
			g.CurrentFrame.Y = math.Min(scrollY, boundary-g.CurrentFrame.Height)
			g.IsSticking = true
			return g, true
		}
		boundary = g.OriginalFrame.Y
	}
	return ItemGeometry{}, false
}

// ItemsIntersecting returns every item whose original frame intersects rect,
// plus the active sticky item for scrollY. The sticky item comes first;
// the rest follow in display order. Returned values are copies, so callers
// may keep or modify them freely.
func (m *Model) ItemsIntersecting(rect Rect, scrollY float64) []ItemGeometry {
	if m == nil {
		return nil
	}
	sticky, hasSticky := m.ActiveSticky(scrollY)

	var out []ItemGeometry
	if hasSticky {
		out = append(out, sticky)
	}

	match, found := searchOrdered(m.items, intersectionOrder(rect))
	if !found {
		return out
	}

	skip := -1
	if hasSticky {
		skip = sticky.Index
	}

	first := match
	for first > 0 && m.items[first-1].OriginalFrame.MaxY() >= rect.MinY() {
		first--
	}
	last := match
	for last+1 < len(m.items) && m.items[last+1].OriginalFrame.MinY() <= rect.MaxY() {
		last++
	}

	for i := first; i <= last; i++ {
		if i == skip {
			continue
		}
		out = append(out, m.items[i].Unstuck())
	}
	return out
}
