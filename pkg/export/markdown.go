package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/evgeny-sureev/Chatto/pkg/layout"
	"github.com/evgeny-sureev/Chatto/pkg/transcript"
)

// GenerateMarkdown creates a markdown report of a layout. entries may be nil;
// when present they supply a short description of each item.
func GenerateMarkdown(m *layout.Model, entries []transcript.Entry, title string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s\n\n", title))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", time.Now().Format(time.RFC1123)))

	s := Summarize(m)
	size := m.ContentSize()
	sb.WriteString("## Summary\n\n")
	sb.WriteString(fmt.Sprintf("- **Width**: %g\n", m.BuiltForWidth()))
	sb.WriteString(fmt.Sprintf("- **Content size**: %g x %g\n", size.Width, size.Height))
	sb.WriteString(fmt.Sprintf("- **Items**: %d\n", s.Items))
	sb.WriteString(fmt.Sprintf("- **Sticky**: %d\n", s.Sticky))
	if s.Items > 0 {
		sb.WriteString(fmt.Sprintf("- **Height**: mean %.2f, median %.2f, stddev %.2f, max %g\n",
			s.MeanHeight, s.MedianHeight, s.StdDevHeight, s.MaxHeight))
		sb.WriteString(fmt.Sprintf("- **Margins**: %.1f%% of content height\n", s.MarginShare*100))
	}
	sb.WriteString("\n")

	if sticky := m.StickyItems(); len(sticky) > 0 {
		sb.WriteString("## Sticky Headers\n\n")
		sb.WriteString("| # | Top | Pinned Range | Description |\n")
		sb.WriteString("|---|-----|--------------|-------------|\n")
		for i, g := range sticky {
			// A header stays pinned until the next one pushes it out
			end := "end"
			if i+1 < len(sticky) {
				end = fmt.Sprintf("%g", sticky[i+1].OriginalFrame.Y)
			}
			sb.WriteString(fmt.Sprintf("| %d | %g | %g to %s | %s |\n",
				g.Index, g.OriginalFrame.Y, g.OriginalFrame.Y, end, describe(entries, g.Index)))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Items\n\n")
	if m.Len() == 0 {
		sb.WriteString("_No items._\n")
		return sb.String()
	}
	sb.WriteString("| # | Y | Height | Margin | Sticky | Description |\n")
	sb.WriteString("|---|---|--------|--------|--------|-------------|\n")
	pinnable := make(map[int]bool, m.StickyCount())
	for _, g := range m.StickyItems() {
		pinnable[g.Index] = true
	}
	for _, g := range m.Items() {
		sticky := ""
		if pinnable[g.Index] {
			sticky = "yes"
		}
		sb.WriteString(fmt.Sprintf("| %d | %g | %g | %g | %s | %s |\n",
			g.Index, g.OriginalFrame.Y, g.OriginalFrame.Height, g.BottomMargin, sticky, describe(entries, g.Index)))
	}
	return sb.String()
}

// describe returns a one-line, table-safe summary of entry i.
func describe(entries []transcript.Entry, i int) string {
	if i < 0 || i >= len(entries) {
		return ""
	}
	e := entries[i]
	text := strings.Join(strings.Fields(e.Text), " ")
	text = runewidth.Truncate(text, 40, "...")
	if e.Author != "" && !e.IsSeparator() {
		text = e.Author + ": " + text
	}
	return strings.ReplaceAll(text, "|", "\\|")
}
