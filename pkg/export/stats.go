package export

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/evgeny-sureev/Chatto/pkg/layout"
)

// Summary holds item height statistics for a layout.
type Summary struct {
	Items        int     `json:"items"`
	Sticky       int     `json:"sticky"`
	TotalHeight  float64 `json:"total_height"`
	MeanHeight   float64 `json:"mean_height"`
	StdDevHeight float64 `json:"stddev_height"`
	MedianHeight float64 `json:"median_height"`
	MaxHeight    float64 `json:"max_height"`
	MarginShare  float64 `json:"margin_share"` // Fraction of content height spent on margins
}

// Summarize computes height statistics for m.
func Summarize(m *layout.Model) Summary {
	s := Summary{
		Items:       m.Len(),
		Sticky:      m.StickyCount(),
		TotalHeight: m.ContentSize().Height,
	}
	if s.Items == 0 {
		return s
	}

	heights := make([]float64, 0, s.Items)
	margins := make([]float64, 0, s.Items)
	for _, g := range m.Items() {
		heights = append(heights, g.OriginalFrame.Height)
		margins = append(margins, g.BottomMargin)
	}

	s.MeanHeight, s.StdDevHeight = stat.MeanStdDev(heights, nil)
	if s.Items == 1 {
		s.StdDevHeight = 0
	}
	s.MaxHeight = floats.Max(heights)

	sorted := append([]float64(nil), heights...)
	floats.Argsort(sorted, make([]int, len(sorted)))
	s.MedianHeight = stat.Quantile(0.5, stat.Empirical, sorted, nil)

	if s.TotalHeight > 0 {
		s.MarginShare = floats.Sum(margins) / s.TotalHeight
	}
	return s
}
