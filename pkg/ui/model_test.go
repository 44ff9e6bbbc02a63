package ui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/goccy/go-json"

	"github.com/evgeny-sureev/Chatto/pkg/layout"
	"github.com/evgeny-sureev/Chatto/pkg/measure"
	"github.com/evgeny-sureev/Chatto/pkg/transcript"
)

func keyMsg(k string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// twoDays lays out as:
//
//	y0 Mon, y1 a1, y3 a2, y5 a3, y7 Tue, y8 b1, y10 b2, y12 b3; height 14
func twoDays() []transcript.Entry {
	return []transcript.Entry{
		{ID: "d1", Kind: transcript.KindSeparator, Text: "Mon"},
		{ID: "a1", Text: "a1"},
		{ID: "a2", Text: "a2"},
		{ID: "a3", Text: "a3"},
		{ID: "d2", Kind: transcript.KindSeparator, Text: "Tue"},
		{ID: "b1", Text: "b1"},
		{ID: "b2", Text: "b2"},
		{ID: "b3", Text: "b3"},
	}
}

type testViewer struct {
	m      Model
	copied []string
}

func newTestViewer(t *testing.T, entries []transcript.Entry) *testViewer {
	t.Helper()
	tv := &testViewer{}
	source := measure.NewTranscript(entries, measure.Options{MessageMargin: 1})
	ctrl := layout.NewController(source, layout.WithStrictContracts(true))
	tv.m = NewModel(ctrl, source, Options{
		HideHelp: true,
		CopyFunc: func(s string) error {
			tv.copied = append(tv.copied, s)
			return nil
		},
	})
	return tv
}

func (tv *testViewer) send(msg tea.Msg) tea.Cmd {
	next, cmd := tv.m.Update(msg)
	tv.m = next.(Model)
	return cmd
}

func (tv *testViewer) rows() []string {
	return strings.Split(tv.m.renderViewport(), "\n")
}

func TestModel_InitialViewFollowsBottom(t *testing.T) {
	tv := newTestViewer(t, twoDays())
	if got := tv.m.View(); got != "Initializing..." {
		t.Errorf("expected placeholder before first resize, got %q", got)
	}

	tv.send(tea.WindowSizeMsg{Width: 20, Height: 5})

	if tv.m.ScrollY() != 10 {
		t.Fatalf("expected scroll at bottom (10), got %v", tv.m.ScrollY())
	}
	rows := tv.rows()
	if len(rows) != 4 {
		t.Fatalf("expected 4 viewport rows, got %d", len(rows))
	}
	if !strings.Contains(rows[0], "Tue") {
		t.Errorf("expected Tue pinned on row 0, got %q", rows[0])
	}
	if strings.Contains(tv.m.renderViewport(), "b2") {
		t.Error("expected b2 covered by the pinned header")
	}
	if !strings.Contains(rows[2], "b3") {
		t.Errorf("expected b3 on row 2, got %q", rows[2])
	}
	if tv.m.Controller().State() != layout.StateFresh {
		t.Errorf("expected fresh layout, got %v", tv.m.Controller().State())
	}
}

func TestModel_ScrollAndStickyHandoff(t *testing.T) {
	tv := newTestViewer(t, twoDays())
	tv.send(tea.WindowSizeMsg{Width: 20, Height: 5})

	tv.send(keyMsg("g"))
	if tv.m.ScrollY() != 0 || tv.m.Following() {
		t.Fatalf("expected top without follow, got scroll %v follow %v", tv.m.ScrollY(), tv.m.Following())
	}
	rows := tv.rows()
	if !strings.Contains(rows[0], "Mon") || !strings.Contains(rows[1], "a1") || !strings.Contains(rows[3], "a2") {
		t.Errorf("unexpected rows at top: %q", rows)
	}

	tv.send(keyMsg("j"))
	tv.send(keyMsg("j"))
	rows = tv.rows()
	if !strings.Contains(rows[0], "Mon") {
		t.Errorf("expected Mon pinned at scroll 2, got %q", rows[0])
	}
	if !strings.Contains(rows[1], "a2") || !strings.Contains(rows[3], "a3") {
		t.Errorf("unexpected rows at scroll 2: %q", rows)
	}

	// At scroll 6 Tue pushes Mon up against it
	for i := 0; i < 4; i++ {
		tv.send(keyMsg("j"))
	}
	rows = tv.rows()
	if !strings.Contains(rows[0], "Mon") || !strings.Contains(rows[1], "Tue") {
		t.Errorf("expected Mon above Tue at scroll 6, got %q", rows)
	}

	tv.send(keyMsg("j"))
	rows = tv.rows()
	if !strings.Contains(rows[0], "Tue") || strings.Contains(strings.Join(rows, "\n"), "Mon") {
		t.Errorf("expected Tue alone at scroll 7, got %q", rows)
	}
}

func TestModel_ScrollClamps(t *testing.T) {
	tv := newTestViewer(t, twoDays())
	tv.send(tea.WindowSizeMsg{Width: 20, Height: 5})

	tv.send(tea.KeyMsg{Type: tea.KeyPgDown})
	if tv.m.ScrollY() != 10 {
		t.Errorf("expected clamp at 10, got %v", tv.m.ScrollY())
	}
	tv.send(keyMsg("g"))
	tv.send(keyMsg("k"))
	if tv.m.ScrollY() != 0 {
		t.Errorf("expected clamp at 0, got %v", tv.m.ScrollY())
	}
	tv.send(tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonWheelDown})
	if tv.m.ScrollY() != 3 {
		t.Errorf("expected wheel to scroll 3 rows, got %v", tv.m.ScrollY())
	}
	tv.send(keyMsg("G"))
	if !tv.m.Following() {
		t.Error("expected follow after jumping to bottom")
	}
}

func TestModel_ResizeRebuildsForWidth(t *testing.T) {
	entries := []transcript.Entry{
		{ID: "m1", Text: "one two three four five six"},
	}
	tv := newTestViewer(t, entries)
	tv.send(tea.WindowSizeMsg{Width: 40, Height: 10})
	wide := tv.m.Controller().ContentSize().Height
	rebuilds := tv.m.Controller().Rebuilds()

	tv.send(tea.WindowSizeMsg{Width: 10, Height: 10})
	if tv.m.Controller().Rebuilds() != rebuilds+1 {
		t.Errorf("expected one rebuild for the new width, got %d", tv.m.Controller().Rebuilds()-rebuilds)
	}
	if narrow := tv.m.Controller().ContentSize().Height; narrow <= wide {
		t.Errorf("expected taller content when narrower: %v <= %v", narrow, wide)
	}

	// Same width without sticky items needs no new layout
	tv.send(tea.WindowSizeMsg{Width: 10, Height: 12})
	if tv.m.Controller().Rebuilds() != rebuilds+1 {
		t.Errorf("expected no rebuild for a height-only change")
	}
}

func TestModel_FixedWidth(t *testing.T) {
	source := measure.NewTranscript(twoDays(), measure.Options{MessageMargin: 1})
	ctrl := layout.NewController(source)
	m := NewModel(ctrl, source, Options{FixedWidth: 12, HideHelp: true})

	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 5})
	m = next.(Model)
	if got := m.Controller().Model().BuiltForWidth(); got != 12 {
		t.Errorf("expected layout width 12, got %v", got)
	}
}

func TestModel_ReloadKeepsBottom(t *testing.T) {
	tv := newTestViewer(t, twoDays())
	tv.send(tea.WindowSizeMsg{Width: 20, Height: 5})

	more := append(twoDays(), transcript.Entry{ID: "b4", Text: "b4"})
	tv.send(TranscriptLoadedMsg{Entries: more})

	if tv.m.ScrollY() != 12 {
		t.Errorf("expected scroll to follow new bottom (12), got %v", tv.m.ScrollY())
	}
	if !strings.Contains(tv.m.renderViewport(), "b4") {
		t.Error("expected new entry visible")
	}
	if !strings.Contains(tv.m.Status(), "reloaded 9 entries") {
		t.Errorf("unexpected status %q", tv.m.Status())
	}
}

func TestModel_ReloadKeepsPosition(t *testing.T) {
	tv := newTestViewer(t, twoDays())
	tv.send(tea.WindowSizeMsg{Width: 20, Height: 5})
	tv.send(keyMsg("g"))

	more := append(twoDays(), transcript.Entry{ID: "b4", Text: "b4"})
	tv.send(TranscriptLoadedMsg{Entries: more})
	if tv.m.ScrollY() != 0 {
		t.Errorf("expected scroll to stay at 0, got %v", tv.m.ScrollY())
	}
	if got := tv.m.Controller().ContentSize().Height; got != 16 {
		t.Errorf("expected content height 16 after reload, got %v", got)
	}
}

func TestModel_ReloadError(t *testing.T) {
	tv := newTestViewer(t, twoDays())
	tv.send(tea.WindowSizeMsg{Width: 20, Height: 5})
	before := tv.m.Controller().Rebuilds()

	tv.send(TranscriptLoadedMsg{Err: errors.New("boom")})
	if !strings.Contains(tv.m.Status(), "boom") || !tv.m.isError {
		t.Errorf("expected error status, got %q", tv.m.Status())
	}
	tv.m.renderViewport()
	if tv.m.Controller().Rebuilds() != before {
		t.Error("expected no rebuild on failed reload")
	}
}

func TestModel_CopyTopItem(t *testing.T) {
	tv := newTestViewer(t, twoDays())
	tv.send(tea.WindowSizeMsg{Width: 20, Height: 5})

	tv.send(keyMsg("y"))
	if len(tv.copied) != 1 {
		t.Fatalf("expected one clipboard write, got %d", len(tv.copied))
	}
	var g layout.ItemGeometry
	if err := json.Unmarshal([]byte(tv.copied[0]), &g); err != nil {
		t.Fatalf("copied text is not geometry json: %v", err)
	}
	if g.Index != 4 || !g.IsSticking || g.CurrentFrame.Y != 10 || g.OriginalFrame.Y != 7 {
		t.Errorf("expected pinned Tue geometry, got %+v", g)
	}
	if tv.m.Status() != "copied item 4" {
		t.Errorf("unexpected status %q", tv.m.Status())
	}
}

func TestModel_CopyEmpty(t *testing.T) {
	tv := newTestViewer(t, nil)
	tv.send(tea.WindowSizeMsg{Width: 20, Height: 5})
	tv.send(keyMsg("y"))
	if len(tv.copied) != 0 || !tv.m.isError {
		t.Errorf("expected nothing copied and an error status, got %q", tv.m.Status())
	}
}

func TestModel_CopyFailure(t *testing.T) {
	tv := newTestViewer(t, twoDays())
	tv.m.opts.CopyFunc = func(string) error { return errors.New("no clipboard") }
	tv.send(tea.WindowSizeMsg{Width: 20, Height: 5})
	tv.send(keyMsg("y"))
	if !strings.Contains(tv.m.Status(), "no clipboard") {
		t.Errorf("expected clipboard error in status, got %q", tv.m.Status())
	}
}

func TestModel_RelayoutKey(t *testing.T) {
	tv := newTestViewer(t, twoDays())
	tv.send(tea.WindowSizeMsg{Width: 20, Height: 5})
	before := tv.m.Controller().Rebuilds()

	tv.send(keyMsg("r"))
	if tv.m.Controller().Rebuilds() != before+1 {
		t.Errorf("expected a rebuild, got %d", tv.m.Controller().Rebuilds()-before)
	}
}

func TestModel_QuitAndHelp(t *testing.T) {
	source := measure.NewTranscript(twoDays(), measure.Options{})
	m := NewModel(layout.NewController(source), source, Options{})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 10})
	m = next.(Model)

	short := m.chromeRows()
	next, _ = m.Update(keyMsg("?"))
	m = next.(Model)
	if m.chromeRows() <= short {
		t.Errorf("expected full help to take more rows (%d <= %d)", m.chromeRows(), short)
	}
	if !strings.Contains(m.View(), "copy geometry") {
		t.Error("expected help text in view")
	}

	_, cmd := m.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}
