// Package ui is a terminal viewer for a laid-out transcript. It draws only
// the items the layout reports as visible and keeps the active date
// separator pinned to the top of the screen.
package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/goccy/go-json"

	"github.com/evgeny-sureev/Chatto/pkg/layout"
	"github.com/evgeny-sureev/Chatto/pkg/measure"
	"github.com/evgeny-sureev/Chatto/pkg/transcript"
)

// TranscriptLoadedMsg carries a reloaded transcript into the program.
type TranscriptLoadedMsg struct {
	Entries []transcript.Entry
	Err     error
}

// Options configures a Model.
type Options struct {
	FixedWidth int  // Layout width in cells; 0 follows the terminal
	HideHelp   bool // Drop the key help line

	// CopyFunc writes to the clipboard (default: clipboard.WriteAll)
	CopyFunc func(string) error
}

// Model is the bubbletea model for the viewer.
type Model struct {
	ctrl   *layout.Controller
	source *measure.Transcript
	keys   keyMap
	help   help.Model
	opts   Options

	// State
	ready   bool
	width   int
	height  int
	scrollY float64
	follow  bool // Stay at the bottom as the transcript grows
	status  string
	isError bool
}

// NewModel creates a viewer over source. ctrl must use source as its
// measurement provider.
func NewModel(ctrl *layout.Controller, source *measure.Transcript, opts Options) Model {
	if opts.CopyFunc == nil {
		opts.CopyFunc = clipboard.WriteAll
	}
	return Model{
		ctrl:   ctrl,
		source: source,
		keys:   defaultKeyMap(),
		help:   help.New(),
		opts:   opts,
		follow: true,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress {
			break
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.scrollBy(-3)
		case tea.MouseButtonWheelDown:
			m.scrollBy(3)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		m.boundsChanged()
		if m.follow {
			m.scrollY = m.maxScroll()
		}
		m.clampScroll()

	case TranscriptLoadedMsg:
		if msg.Err != nil {
			m.setError(fmt.Sprintf("reload failed: %v", msg.Err))
			break
		}
		atBottom := m.ready && m.scrollY >= m.maxScroll()
		m.source.SetEntries(msg.Entries)
		m.ctrl.Invalidate()
		if !m.ready {
			break
		}
		if m.follow || atBottom {
			m.follow = true
			m.scrollY = m.maxScroll()
		}
		m.clampScroll()
		m.setStatus(fmt.Sprintf("reloaded %d entries", len(msg.Entries)))
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	page := float64(m.viewportRows())
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.scrollBy(-1)
	case key.Matches(msg, m.keys.Down):
		m.scrollBy(1)
	case key.Matches(msg, m.keys.HalfUp):
		m.scrollBy(-math.Max(1, math.Floor(page/2)))
	case key.Matches(msg, m.keys.HalfDown):
		m.scrollBy(math.Max(1, math.Floor(page/2)))
	case key.Matches(msg, m.keys.PageUp):
		m.scrollBy(-page)
	case key.Matches(msg, m.keys.PageDown):
		m.scrollBy(page)
	case key.Matches(msg, m.keys.Top):
		m.scrollTo(0)
	case key.Matches(msg, m.keys.Bottom):
		m.scrollTo(m.maxScroll())
	case key.Matches(msg, m.keys.Copy):
		m.copyTopItem()
	case key.Matches(msg, m.keys.Reload):
		m.ctrl.Invalidate()
		m.clampScroll()
		m.setStatus(fmt.Sprintf("layout rebuilt (%d)", m.ctrl.Rebuilds()))
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

// layoutWidth is the width the layout is built for.
func (m Model) layoutWidth() float64 {
	if m.opts.FixedWidth > 0 {
		return float64(m.opts.FixedWidth)
	}
	return float64(max(m.width, 1))
}

// chromeRows is the number of rows below the viewport.
func (m Model) chromeRows() int {
	if m.opts.HideHelp {
		return 1
	}
	return 1 + len(strings.Split(m.help.View(m.keys), "\n"))
}

func (m Model) viewportRows() int {
	return max(m.height-m.chromeRows(), 1)
}

// viewportRect is the visible region in layout coordinates.
func (m Model) viewportRect() layout.Rect {
	return layout.Rect{
		X:      0,
		Y:      m.scrollY,
		Width:  m.layoutWidth(),
		Height: float64(m.viewportRows()),
	}
}

func (m Model) maxScroll() float64 {
	return math.Max(0, m.ctrl.ContentSize().Height-float64(m.viewportRows()))
}

// boundsChanged tells the controller the visible bounds moved or resized.
func (m *Model) boundsChanged() {
	w := m.layoutWidth()
	if m.ctrl.ShouldInvalidateForBoundsChange(w) {
		m.ctrl.EnsureUpToDate(w)
	}
}

func (m *Model) scrollBy(delta float64) {
	m.scrollTo(m.scrollY + delta)
}

func (m *Model) scrollTo(y float64) {
	m.scrollY = y
	m.clampScroll()
	m.follow = m.scrollY >= m.maxScroll()
	m.boundsChanged()
}

func (m *Model) clampScroll() {
	m.scrollY = math.Max(0, math.Min(m.scrollY, m.maxScroll()))
}

// visible queries the controller for the current viewport.
func (m Model) visible() []layout.ItemGeometry {
	return m.ctrl.ItemsIntersecting(m.viewportRect(), m.scrollY)
}

// copyTopItem copies the geometry of the first visible item as JSON. A pinned
// separator counts as the top item.
func (m *Model) copyTopItem() {
	items := m.visible()
	if len(items) == 0 {
		m.setError("nothing to copy")
		return
	}
	g, err := m.ctrl.ItemAt(0, items[0].Index)
	if err != nil {
		m.setError(err.Error())
		return
	}
	data, err := json.Marshal(g)
	if err != nil {
		m.setError(fmt.Sprintf("encode geometry: %v", err))
		return
	}
	if err := m.opts.CopyFunc(string(data)); err != nil {
		m.setError(fmt.Sprintf("clipboard: %v", err))
		return
	}
	m.setStatus(fmt.Sprintf("copied item %d", g.Index))
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.isError = false
}

func (m *Model) setError(s string) {
	m.status = s
	m.isError = true
}

func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(m.renderViewport())
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	if !m.opts.HideHelp {
		b.WriteString("\n")
		b.WriteString(m.help.View(m.keys))
	}
	return b.String()
}

func (m Model) renderStatus() string {
	size := m.ctrl.ContentSize()
	pos := fmt.Sprintf(" %g/%g ", m.scrollY, m.maxScroll())
	info := fmt.Sprintf(" %d items  %d sticky  width %g  rebuilds %d ",
		m.ctrl.Model().Len(), m.ctrl.Model().StickyCount(), size.Width, m.ctrl.Rebuilds())

	left := StatusKeyStyle.Render("chatlayout") + StatusStyle.Render(info)
	msgStyle := StatusStyle
	if m.isError {
		msgStyle = StatusErrorStyle
	}
	msg := msgStyle.Render(m.status)
	right := StatusKeyStyle.Render(pos)

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(msg) - lipgloss.Width(right)
	filler := StatusStyle.Render(strings.Repeat(" ", max(gap, 0)))
	return left + msg + filler + right
}

// Accessors for tests and hosts.

// ScrollY returns the current scroll offset in rows.
func (m Model) ScrollY() float64 { return m.scrollY }

// Following reports whether the view tracks the bottom of the transcript.
func (m Model) Following() bool { return m.follow }

// Status returns the current status line message.
func (m Model) Status() string { return m.status }

// Controller returns the layout controller.
func (m Model) Controller() *layout.Controller { return m.ctrl }
