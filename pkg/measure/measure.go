// Package measure turns transcript entries into layout measurements by
// rendering them at a given width and counting lines.
package measure

import (
	"log"
	"math"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"

	"github.com/evgeny-sureev/Chatto/pkg/layout"
	"github.com/evgeny-sureev/Chatto/pkg/transcript"
)

// Static is a provider for fixed measurements that do not depend on width.
type Static []layout.ItemMeasurement

// Measurements returns s unchanged.
func (s Static) Measurements(float64) []layout.ItemMeasurement {
	return s
}

// maxCachedWidths bounds the per-width block cache during resizes.
const maxCachedWidths = 8

// Options controls how entries are measured.
type Options struct {
	MessageMargin float64 // Gap below messages
	HeaderMargin  float64 // Gap below separators
	Markdown      bool    // Render every message as markdown
	GlamourStyle  string  // Standard glamour style name (default: dark)
}

// Transcript measures transcript entries. Each entry is rendered to lines at
// the requested width; its height is the line count unless the entry fixes
// one. Rendered blocks are cached per width until the entries change.
//
// Transcript is not safe for concurrent use.
type Transcript struct {
	entries   []transcript.Entry
	opts      Options
	blocks    map[int][][]string
	renderers map[int]*glamour.TermRenderer
}

// NewTranscript creates a provider over entries.
func NewTranscript(entries []transcript.Entry, opts Options) *Transcript {
	if opts.GlamourStyle == "" {
		opts.GlamourStyle = "dark"
	}
	return &Transcript{
		entries:   entries,
		opts:      opts,
		blocks:    make(map[int][][]string),
		renderers: make(map[int]*glamour.TermRenderer),
	}
}

// SetEntries replaces the entries and drops every cached block.
func (t *Transcript) SetEntries(entries []transcript.Entry) {
	t.entries = entries
	t.blocks = make(map[int][][]string)
}

// Entries returns the current entries.
func (t *Transcript) Entries() []transcript.Entry {
	return t.entries
}

// Len returns the entry count.
func (t *Transcript) Len() int {
	return len(t.entries)
}

// Measurements implements layout.MeasurementProvider.
func (t *Transcript) Measurements(width float64) []layout.ItemMeasurement {
	blocks := t.render(cells(width))
	out := make([]layout.ItemMeasurement, len(t.entries))
	for i, e := range t.entries {
		height := float64(len(blocks[i]))
		if e.Height != nil {
			height = fixedSize(*e.Height)
		}
		margin := t.opts.MessageMargin
		if e.IsSeparator() {
			margin = t.opts.HeaderMargin
		}
		if e.BottomMargin != nil {
			margin = fixedSize(*e.BottomMargin)
		}
		out[i] = layout.ItemMeasurement{
			Height:        height,
			BottomMargin:  margin,
			IsStickyToTop: e.IsSticky(),
		}
	}
	return out
}

// Block returns the rendered lines of entry i at width. Entries with a fixed
// height are padded or cut to that many lines.
func (t *Transcript) Block(width float64, i int) []string {
	if i < 0 || i >= len(t.entries) {
		return nil
	}
	lines := append([]string(nil), t.render(cells(width))[i]...)
	if h := t.entries[i].Height; h != nil {
		n := int(fixedSize(*h))
		if n < len(lines) {
			return lines[:n]
		}
		for len(lines) < n {
			lines = append(lines, "")
		}
	}
	return lines
}

// fixedSize bounds a size taken from an entry. Entries normally pass
// transcript validation, but SetEntries accepts anything.
func fixedSize(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return math.Min(v, transcript.MaxSize)
}

// cells converts a layout width to a terminal column count of at least one.
func cells(width float64) int {
	if width < 1 {
		return 1
	}
	return int(width)
}

func (t *Transcript) render(w int) [][]string {
	if blocks, ok := t.blocks[w]; ok && len(blocks) == len(t.entries) {
		return blocks
	}
	if len(t.blocks) >= maxCachedWidths {
		t.blocks = make(map[int][][]string)
	}
	if len(t.renderers) >= maxCachedWidths {
		t.renderers = make(map[int]*glamour.TermRenderer)
	}
	blocks := make([][]string, len(t.entries))
	for i, e := range t.entries {
		blocks[i] = t.renderEntry(e, w)
	}
	t.blocks[w] = blocks
	return blocks
}

func (t *Transcript) renderEntry(e transcript.Entry, w int) []string {
	if e.IsSeparator() {
		return []string{separatorLine(e.Text, w)}
	}

	text := e.Text
	if e.Author != "" {
		text = e.Author + ": " + text
	}
	if e.Markdown || t.opts.Markdown {
		if lines, ok := t.renderMarkdown(text, w); ok {
			return lines
		}
	}
	return WrapText(text, w)
}

func (t *Transcript) renderMarkdown(text string, w int) ([]string, bool) {
	r, ok := t.renderers[w]
	if !ok {
		var err error
		r, err = glamour.NewTermRenderer(
			glamour.WithStandardStyle(t.opts.GlamourStyle),
			glamour.WithWordWrap(w),
		)
		if err != nil {
			log.Printf("measure: markdown renderer unavailable (style=%s): %v", t.opts.GlamourStyle, err)
			return nil, false
		}
		t.renderers[w] = r
	}
	out, err := r.Render(text)
	if err != nil {
		log.Printf("measure: markdown render failed, using plain text: %v", err)
		return nil, false
	}
	out = strings.Trim(out, "\n")
	return strings.Split(out, "\n"), true
}

// WrapText word-wraps text to w columns, hard-breaking words that are wider
// than a line. It always returns at least one line.
func WrapText(text string, w int) []string {
	if w < 1 {
		w = 1
	}
	wrapped := wrap.String(wordwrap.String(text, w), w)
	lines := strings.Split(wrapped, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " ")
	}
	return lines
}

// separatorLine centers label in a rule of w columns.
func separatorLine(label string, w int) string {
	label = " " + label + " "
	lw := runewidth.StringWidth(label)
	if lw >= w {
		return runewidth.Truncate(label, w, "")
	}
	left := (w - lw) / 2
	right := w - lw - left
	return strings.Repeat("─", left) + label + strings.Repeat("─", right)
}
