package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/evgeny-sureev/Chatto/pkg/config"
	"github.com/evgeny-sureev/Chatto/pkg/export"
	"github.com/evgeny-sureev/Chatto/pkg/layout"
	"github.com/evgeny-sureev/Chatto/pkg/measure"
	"github.com/evgeny-sureev/Chatto/pkg/transcript"
)

func TestResolveWidth(t *testing.T) {
	termWide := func() (int, error) { return 132, nil }
	noTerm := func() (int, error) { return 0, errors.New("not a terminal") }

	tests := []struct {
		name     string
		flag     int
		cfg      int
		term     func() (int, error)
		expected int
	}{
		{"FlagWins", 40, 60, termWide, 40},
		{"ConfigBeatsTerminal", 0, 60, termWide, 60},
		{"Terminal", 0, 0, termWide, 132},
		{"Fallback", 0, 0, noTerm, defaultWidth},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveWidth(tt.flag, tt.cfg, tt.term); got != tt.expected {
				t.Errorf("resolveWidth(%d, %d) = %d, want %d", tt.flag, tt.cfg, got, tt.expected)
			}
		})
	}
}

func TestLoadSettings_ExplicitFile(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, config.DirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create settings dir: %v", err)
	}
	path := filepath.Join(dir, config.FileName)
	if err := os.WriteFile(path, []byte("source:\n  path: chat.jsonl\nlayout:\n  width: 50\n"), 0644); err != nil {
		t.Fatalf("Failed to write settings: %v", err)
	}

	disc, err := loadSettings(path)
	if err != nil {
		t.Fatalf("loadSettings failed: %v", err)
	}
	if disc.Config.Layout.Width != 50 {
		t.Errorf("expected width 50, got %d", disc.Config.Layout.Width)
	}
	if got := disc.ResolvePath(disc.Config.Source.Path); got != filepath.Join(root, "chat.jsonl") {
		t.Errorf("expected source relative to %s, got %s", root, got)
	}

	if _, err := loadSettings(filepath.Join(root, "missing.yaml")); err == nil {
		t.Error("expected error for missing explicit settings file")
	}
}

func TestMeasureOptions_Defaults(t *testing.T) {
	opts := measureOptions(config.Default())
	if opts.MessageMargin != 1 || opts.HeaderMargin != 0 || opts.GlamourStyle != "dark" {
		t.Errorf("unexpected defaults: %+v", opts)
	}
}

func TestLabelsFor(t *testing.T) {
	labels := labelsFor([]transcript.Entry{
		{ID: "d1", Kind: transcript.KindSeparator, Text: "Monday"},
		{ID: "m1", Text: "hello"},
	})
	if len(labels) != 2 || labels[0] != "Monday" || labels[1] != "m1" {
		t.Errorf("unexpected labels: %q", labels)
	}
}

func batchFixture() (*layout.Controller, []transcript.Entry) {
	entries := []transcript.Entry{
		{ID: "d1", Kind: transcript.KindSeparator, Text: "Mon"},
		{ID: "m1", Text: "one"},
		{ID: "m2", Text: "two"},
		{ID: "d2", Kind: transcript.KindSeparator, Text: "Tue"},
		{ID: "m3", Text: "three"},
	}
	ctrl := layout.NewController(measure.NewTranscript(entries, measure.Options{MessageMargin: 1}))
	ctrl.EnsureUpToDate(20)
	return ctrl, entries
}

func TestRunBatch_RobotQuery(t *testing.T) {
	ctrl, entries := batchFixture()
	var out bytes.Buffer

	// y: Mon 0, one 1, two 3, Tue 5, three 6
	view := viewport{Scroll: 2, Height: 2, Width: 20}
	if err := runBatch(&out, ctrl, entries, view, batchOptions{RobotQuery: true}); err != nil {
		t.Fatalf("runBatch failed: %v", err)
	}

	var report export.QueryReport
	if err := json.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("Failed to decode query: %v\n%s", err, out.String())
	}
	if report.Sticky == nil || *report.Sticky != 0 {
		t.Fatalf("expected Mon pinned, got %v", report.Sticky)
	}
	var got []int
	for _, g := range report.Items {
		got = append(got, g.Index)
	}
	if len(got) != 3 || got[0] != 0 || got[1] != 1 || got[2] != 2 {
		t.Errorf("expected items [0 1 2], got %v", got)
	}
}

func TestRunBatch_LayoutAndStats(t *testing.T) {
	ctrl, entries := batchFixture()
	var out bytes.Buffer
	err := runBatch(&out, ctrl, entries, viewport{Height: 5, Width: 20}, batchOptions{RobotLayout: true, RobotStats: true})
	if err != nil {
		t.Fatalf("runBatch failed: %v", err)
	}

	dec := json.NewDecoder(&out)
	var report export.LayoutReport
	if err := dec.Decode(&report); err != nil {
		t.Fatalf("Failed to decode layout: %v", err)
	}
	if report.ItemCount != 5 || report.StickyCount != 2 || report.ContentSize.Height != 8 {
		t.Errorf("unexpected layout report: %+v", report)
	}
	var stats export.Summary
	if err := dec.Decode(&stats); err != nil {
		t.Fatalf("Failed to decode stats: %v", err)
	}
	if stats.Items != 5 || stats.MaxHeight != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestRunBatch_Exports(t *testing.T) {
	ctrl, entries := batchFixture()
	dir := t.TempDir()
	opts := batchOptions{
		SVGPath:      filepath.Join(dir, "layout.svg"),
		PNGPath:      filepath.Join(dir, "layout.png"),
		MarkdownPath: filepath.Join(dir, "layout.md"),
		Title:        "chat.jsonl",
	}
	var out bytes.Buffer
	if err := runBatch(&out, ctrl, entries, viewport{Scroll: 2, Height: 3, Width: 20}, opts); err != nil {
		t.Fatalf("runBatch failed: %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("expected no stdout output for exports, got %q", out.String())
	}

	svg, err := os.ReadFile(opts.SVGPath)
	if err != nil || !strings.Contains(string(svg), "Tue") {
		t.Errorf("expected svg with labels, err=%v", err)
	}
	png, err := os.ReadFile(opts.PNGPath)
	if err != nil || !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Errorf("expected png file, err=%v", err)
	}
	md, err := os.ReadFile(opts.MarkdownPath)
	if err != nil || !strings.Contains(string(md), "# chat.jsonl") {
		t.Errorf("expected markdown report, err=%v", err)
	}
}

func TestRunBatch_ExportError(t *testing.T) {
	ctrl, entries := batchFixture()
	opts := batchOptions{SVGPath: filepath.Join(t.TempDir(), "missing", "layout.svg")}
	if err := runBatch(&bytes.Buffer{}, ctrl, entries, viewport{Width: 20}, opts); err == nil {
		t.Error("expected error for unwritable export path")
	}
}

func TestReportError(t *testing.T) {
	var out bytes.Buffer
	reportError(&out, "running chatlayout", errors.New("terminal closed"))
	if got := out.String(); got != "Error running chatlayout: terminal closed\n" {
		t.Errorf("unexpected error output: %q", got)
	}
}
