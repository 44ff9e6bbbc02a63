package layout

// searchOrdered runs a three-way binary search over items. cmp returns 0 for
// a match, a negative value when the match lies before the probed element and
// a positive value when it lies after. It returns the index of some match and
// true, or the insertion point and false.
func searchOrdered[T any](items []T, cmp func(T) int) (int, bool) {
	lo, hi := 0, len(items)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		switch c := cmp(items[mid]); {
		case c == 0:
			return mid, true
		case c < 0:
			hi = mid
		default:
			lo = mid + 1
		}
	}
	return lo, false
}

// intersectionOrder compares an item frame against a query rect for
// searchOrdered.
func intersectionOrder(rect Rect) func(ItemGeometry) int {
	return func(g ItemGeometry) int {
		switch {
		case g.OriginalFrame.Intersects(rect):
			return 0
		case g.OriginalFrame.MinY() > rect.MaxY():
			return -1
		default:
			return 1
		}
	}
}
