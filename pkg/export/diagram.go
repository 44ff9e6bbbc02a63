package export

import (
	"math"

	"github.com/evgeny-sureev/Chatto/pkg/layout"
)

// Pixel size of one layout unit. Layout units are terminal cells, so a
// cell is drawn taller than it is wide.
const (
	DefaultScaleX = 8.0
	DefaultScaleY = 16.0

	// Content taller than this is cut off in raster output.
	MaxImageHeight = 8192
)

// Diagram is a layout plus an optional viewport to draw over it.
type Diagram struct {
	Model    *layout.Model
	Labels   []string // Optional per-item labels, by index
	Viewport *layout.Rect
	ScrollY  float64
	ScaleX   float64
	ScaleY   float64
}

// itemBox is an item rectangle in pixels.
type itemBox struct {
	Index           int
	X, Y, W, H      int
	Sticky, Visible bool
	Pinned          bool
	Label           string
}

func (d Diagram) scale() (float64, float64) {
	sx, sy := d.ScaleX, d.ScaleY
	if sx <= 0 {
		sx = DefaultScaleX
	}
	if sy <= 0 {
		sy = DefaultScaleY
	}
	return sx, sy
}

func px(v, s float64) int {
	return int(math.Round(v * s))
}

// canvasSize returns the pixel size of the whole diagram. Empty layouts still
// get a one-pixel canvas.
func (d Diagram) canvasSize() (int, int) {
	sx, sy := d.scale()
	size := d.Model.ContentSize()
	w := max(px(size.Width, sx), 1)
	h := max(px(size.Height, sy), 1)
	return w, h
}

// viewportBox returns the viewport in pixels.
func (d Diagram) viewportBox() (x, y, w, h int, ok bool) {
	if d.Viewport == nil {
		return 0, 0, 0, 0, false
	}
	sx, sy := d.scale()
	v := *d.Viewport
	return px(v.X, sx), px(v.Y, sy), px(v.Width, sx), px(v.Height, sy), true
}

// boxes lays every item out in pixels. When a viewport is set, items it
// returns are marked visible and the pinned sticky item is placed where the
// query put it.
func (d Diagram) boxes() []itemBox {
	sx, sy := d.scale()
	items := d.Model.Items()

	visible := make(map[int]bool)
	var pinned *layout.ItemGeometry
	if d.Viewport != nil {
		for _, g := range d.Model.ItemsIntersecting(*d.Viewport, d.ScrollY) {
			visible[g.Index] = true
			if g.IsSticking {
				p := g
				pinned = &p
			}
		}
	}

	sticky := make(map[int]bool, d.Model.StickyCount())
	for _, g := range d.Model.StickyItems() {
		sticky[g.Index] = true
	}

	out := make([]itemBox, 0, len(items)+1)
	for _, g := range items {
		b := d.box(g, sx, sy)
		b.Sticky = sticky[g.Index]
		b.Visible = visible[g.Index]
		out = append(out, b)
	}
	if pinned != nil {
		b := d.box(*pinned, sx, sy)
		b.Sticky, b.Visible, b.Pinned = true, true, true
		out = append(out, b)
	}
	return out
}

func (d Diagram) box(g layout.ItemGeometry, sx, sy float64) itemBox {
	f := g.CurrentFrame
	b := itemBox{
		Index: g.Index,
		X:     px(f.X, sx),
		Y:     px(f.Y, sy),
		W:     px(f.Width, sx),
		H:     px(f.Height, sy),
	}
	if g.Index < len(d.Labels) {
		b.Label = d.Labels[g.Index]
	}
	return b
}
