package export

import (
	"fmt"
	"io"

	"git.sr.ht/~sbinet/gg"
	"golang.org/x/image/font/basicfont"
)

// WritePNG rasterizes d as a PNG image. Content below MaxImageHeight pixels
// is cut off.
func WritePNG(w io.Writer, d Diagram) error {
	width, height := d.canvasSize()
	height = min(height, MaxImageHeight)

	dc := gg.NewContext(width, height)
	dc.SetHexColor(colorBackground)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	for _, b := range d.boxes() {
		if b.Y >= height {
			continue
		}
		dc.DrawRectangle(float64(b.X), float64(b.Y), float64(max(b.W, 1)), float64(max(b.H, 1)))
		dc.SetHexColor(boxFill(b))
		dc.FillPreserve()
		dc.SetHexColor(colorBackground)
		dc.SetLineWidth(1)
		dc.Stroke()

		if b.H >= basicfont.Face7x13.Height {
			label := fmt.Sprintf("#%d", b.Index)
			if b.Label != "" {
				label += " " + b.Label
			}
			dc.SetHexColor(colorText)
			dc.DrawString(label, float64(b.X+4), float64(b.Y+basicfont.Face7x13.Ascent+2))
		}
	}

	if x, y, vw, vh, ok := d.viewportBox(); ok {
		dc.SetHexColor(colorViewport)
		dc.SetLineWidth(2)
		dc.SetDash(6, 4)
		dc.DrawRectangle(float64(x), float64(y), float64(max(vw, 1)), float64(max(vh, 1)))
		dc.Stroke()
	}

	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// boxFill is the raster equivalent of boxStyle. Hidden items are drawn
// darker instead of translucent.
func boxFill(b itemBox) string {
	switch {
	case b.Pinned:
		return colorPinned
	case b.Sticky:
		return colorSticky
	case b.Visible:
		return colorVisible
	}
	return colorItem
}
