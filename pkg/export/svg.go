package export

import (
	"fmt"
	"io"

	svg "github.com/ajstarks/svgo"
)

const (
	colorBackground = "#1e1e2e"
	colorItem       = "#45475a"
	colorVisible    = "#89b4fa"
	colorSticky     = "#f9e2af"
	colorPinned     = "#fab387"
	colorViewport   = "#f38ba8"
	colorText       = "#cdd6f4"
)

// errWriter remembers the first write error. svgo has no error returns.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}

// WriteSVG draws d as an SVG document.
func WriteSVG(w io.Writer, d Diagram) error {
	ew := &errWriter{w: w}
	canvas := svg.New(ew)

	width, height := d.canvasSize()
	canvas.Start(width, height)
	canvas.Title(fmt.Sprintf("Layout: %d items, %d sticky", d.Model.Len(), d.Model.StickyCount()))
	canvas.Rect(0, 0, width, height, "fill:"+colorBackground)

	_, sy := d.scale()
	fontSize := max(int(sy*0.6), 6)

	for _, b := range d.boxes() {
		canvas.Rect(b.X, b.Y, max(b.W, 1), max(b.H, 1), boxStyle(b))
		if b.H >= fontSize {
			label := fmt.Sprintf("#%d", b.Index)
			if b.Label != "" {
				label += " " + b.Label
			}
			canvas.Text(b.X+4, b.Y+fontSize, label,
				fmt.Sprintf("fill:%s;font-family:monospace;font-size:%dpx", colorText, fontSize))
		}
	}

	if x, y, vw, vh, ok := d.viewportBox(); ok {
		canvas.Rect(x, y, max(vw, 1), max(vh, 1),
			"fill:none;stroke-dasharray:6,4;stroke-width:2;stroke:"+colorViewport)
	}

	canvas.End()
	if ew.err != nil {
		return fmt.Errorf("write svg: %w", ew.err)
	}
	return nil
}

func boxStyle(b itemBox) string {
	opacity := "0.45"
	if b.Visible {
		opacity = "0.9"
	}
	return fmt.Sprintf("fill:%s;fill-opacity:%s;stroke:%s;stroke-width:1", boxFill(b), opacity, colorBackground)
}
