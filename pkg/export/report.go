// Package export writes layouts out as JSON, markdown, SVG and PNG, and
// summarizes them.
package export

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/evgeny-sureev/Chatto/pkg/layout"
)

// LayoutReport is the machine-readable form of a whole layout.
type LayoutReport struct {
	Width       float64               `json:"width"`
	ContentSize layout.Size           `json:"content_size"`
	ItemCount   int                   `json:"item_count"`
	StickyCount int                   `json:"sticky_count"`
	Sticky      []int                 `json:"sticky"`
	Items       []layout.ItemGeometry `json:"items"`
	Summary     Summary               `json:"summary"`
}

// QueryReport is the machine-readable result of a viewport query.
type QueryReport struct {
	Viewport layout.Rect           `json:"viewport"`
	ScrollY  float64               `json:"scroll_y"`
	Sticky   *int                  `json:"sticky,omitempty"` // Index of the pinned item
	Items    []layout.ItemGeometry `json:"items"`
}

// NewLayoutReport describes m.
func NewLayoutReport(m *layout.Model) LayoutReport {
	sticky := make([]int, 0, m.StickyCount())
	for _, g := range m.StickyItems() {
		sticky = append(sticky, g.Index)
	}
	items := m.Items()
	if items == nil {
		items = []layout.ItemGeometry{}
	}
	return LayoutReport{
		Width:       m.BuiltForWidth(),
		ContentSize: m.ContentSize(),
		ItemCount:   m.Len(),
		StickyCount: m.StickyCount(),
		Sticky:      sticky,
		Items:       items,
		Summary:     Summarize(m),
	}
}

// NewQueryReport describes the items a viewport query returned.
func NewQueryReport(viewport layout.Rect, scrollY float64, items []layout.ItemGeometry) QueryReport {
	r := QueryReport{Viewport: viewport, ScrollY: scrollY, Items: items}
	if r.Items == nil {
		r.Items = []layout.ItemGeometry{}
	}
	if len(items) > 0 && items[0].IsSticking {
		idx := items[0].Index
		r.Sticky = &idx
	}
	return r
}

// WriteJSON encodes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
