package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/evgeny-sureev/Chatto/pkg/config"
	"github.com/evgeny-sureev/Chatto/pkg/export"
	"github.com/evgeny-sureev/Chatto/pkg/layout"
	"github.com/evgeny-sureev/Chatto/pkg/measure"
	"github.com/evgeny-sureev/Chatto/pkg/transcript"
	"github.com/evgeny-sureev/Chatto/pkg/ui"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

const defaultWidth = 80

func main() {
	help := flag.Bool("help", false, "Show help")
	versionFlag := flag.Bool("version", false, "Show version")
	configPath := flag.String("config", "", "Settings file (default: nearest .chatlayout/config.yaml)")
	sourcePath := flag.String("source", "", "Transcript to lay out (.jsonl, .json, .yaml, .db)")
	width := flag.Int("width", 0, "Layout width in cells (default: terminal width)")
	robotHelp := flag.Bool("robot-help", false, "Show help for the JSON interface")
	robotLayout := flag.Bool("robot-layout", false, "Output the full layout as JSON")
	robotQuery := flag.Bool("robot-query", false, "Output the items visible in a viewport as JSON (use with --scroll, --viewport-height)")
	robotStats := flag.Bool("robot-stats", false, "Output item height statistics as JSON")
	scroll := flag.Float64("scroll", 0, "Scroll offset for --robot-query and exports")
	viewportHeight := flag.Float64("viewport-height", 24, "Viewport height for --robot-query and exports")
	exportSVG := flag.String("export-svg", "", "Draw the layout to an SVG file")
	exportPNG := flag.String("export-png", "", "Draw the layout to a PNG file")
	exportMD := flag.String("export-md", "", "Write a Markdown layout report (e.g., layout.md)")
	debugLog := flag.String("debug-log", "", "Write log output to this file while the viewer runs")
	noWatch := flag.Bool("no-watch", false, "Do not reload the transcript when it changes")
	strict := flag.Bool("strict", false, "Panic on layout contract violations")
	flag.Parse()

	if *help {
		fmt.Println("Usage: chatlayout [options]")
		fmt.Println("\nLays out a chat transcript with sticky date headers and shows it in the terminal.")
		flag.PrintDefaults()
		os.Exit(0)
	}

	if *versionFlag {
		fmt.Printf("chatlayout %s\n", version)
		os.Exit(0)
	}

	if *robotHelp {
		printRobotHelp()
		os.Exit(0)
	}

	disc, err := loadSettings(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading settings: %v\n", err)
		os.Exit(1)
	}
	cfg := disc.Config

	path := *sourcePath
	if path == "" {
		path = disc.ResolvePath(cfg.Source.Path)
	}
	if path == "" {
		fmt.Fprintln(os.Stderr, "Error: no transcript given. Pass --source or set source.path in .chatlayout/config.yaml")
		os.Exit(1)
	}

	entries, err := transcript.LoadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading transcript: %v\n", err)
		os.Exit(1)
	}

	provider := measure.NewTranscript(entries, measureOptions(cfg))
	strictContracts := *strict || cfg.Layout.StrictContracts
	layoutWidth := resolveWidth(*width, cfg.Layout.Width, terminalWidth)

	batch := *robotLayout || *robotQuery || *robotStats || *exportSVG != "" || *exportPNG != "" || *exportMD != ""
	if batch {
		ctrl := layout.NewController(provider, layout.WithStrictContracts(strictContracts))
		ctrl.EnsureUpToDate(float64(layoutWidth))
		view := viewport{Scroll: *scroll, Height: *viewportHeight, Width: float64(layoutWidth)}

		if err := runBatch(os.Stdout, ctrl, entries, view, batchOptions{
			RobotLayout:  *robotLayout,
			RobotQuery:   *robotQuery,
			RobotStats:   *robotStats,
			SVGPath:      *exportSVG,
			PNGPath:      *exportPNG,
			MarkdownPath: *exportMD,
			Title:        filepath.Base(path),
		}); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	// Logging would corrupt the alternate screen
	if *debugLog != "" {
		f, err := tea.LogToFile(*debugLog, "chatlayout")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening debug log: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	fixedWidth := *width
	if fixedWidth == 0 {
		fixedWidth = cfg.Layout.Width
	}
	err = ui.Run(context.Background(), ui.RunConfig{
		Source:         provider,
		SourcePath:     path,
		Watch:          cfg.Source.ShouldWatch() && !*noWatch,
		Debounce:       cfg.Source.GetDebounce(),
		Strict:         strictContracts,
		RetireDisabled: cfg.Retire.Disabled,
		RetireQueue:    cfg.Retire.GetQueueSize(),
		Options: ui.Options{
			FixedWidth: fixedWidth,
			HideHelp:   cfg.Render.HideHelp,
		},
	})
	if err != nil {
		reportError(os.Stderr, "running chatlayout", err)
		os.Exit(1)
	}
}

// reportError writes a failure for the user. Callers pass os.Stderr so
// stdout stays clean for piped output.
func reportError(w io.Writer, doing string, err error) {
	fmt.Fprintf(w, "Error %s: %v\n", doing, err)
}

// loadSettings reads an explicit settings file or discovers one from the
// working directory.
func loadSettings(path string) (config.Discovered, error) {
	if path == "" {
		return config.LoadDefault()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Discovered{}, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return config.Discovered{}, fmt.Errorf("resolve %s: %w", path, err)
	}
	// Paths inside an explicit file are relative to the directory holding
	// its .chatlayout folder, the same as for a discovered one.
	root := filepath.Dir(abs)
	if filepath.Base(root) == config.DirName {
		root = filepath.Dir(root)
	}
	return config.Discovered{Config: cfg, Root: root, Path: abs}, nil
}

func measureOptions(cfg config.Config) measure.Options {
	return measure.Options{
		MessageMargin: float64(cfg.Layout.GetMessageMargin()),
		HeaderMargin:  float64(cfg.Layout.GetHeaderMargin()),
		Markdown:      cfg.Render.Markdown,
		GlamourStyle:  cfg.Render.GetGlamourStyle(),
	}
}

// resolveWidth picks the layout width: flag, then settings, then terminal.
func resolveWidth(flagWidth, cfgWidth int, termWidth func() (int, error)) int {
	if flagWidth > 0 {
		return flagWidth
	}
	if cfgWidth > 0 {
		return cfgWidth
	}
	if w, err := termWidth(); err == nil && w > 0 {
		return w
	}
	return defaultWidth
}

func terminalWidth() (int, error) {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0, errors.New("stdout is not a terminal")
	}
	w, _, err := term.GetSize(fd)
	return w, err
}

type viewport struct {
	Scroll float64
	Height float64
	Width  float64
}

func (v viewport) Rect() layout.Rect {
	return layout.Rect{X: 0, Y: v.Scroll, Width: v.Width, Height: v.Height}
}

type batchOptions struct {
	RobotLayout  bool
	RobotQuery   bool
	RobotStats   bool
	SVGPath      string
	PNGPath      string
	MarkdownPath string
	Title        string
}

// runBatch performs every requested non-interactive output. JSON goes to
// out; exports go to their files.
func runBatch(out io.Writer, ctrl *layout.Controller, entries []transcript.Entry, view viewport, opts batchOptions) error {
	m := ctrl.Model()

	if opts.RobotLayout {
		if err := export.WriteJSON(out, export.NewLayoutReport(m)); err != nil {
			return err
		}
	}
	if opts.RobotQuery {
		rect := view.Rect()
		report := export.NewQueryReport(rect, view.Scroll, ctrl.ItemsIntersecting(rect, view.Scroll))
		if err := export.WriteJSON(out, report); err != nil {
			return err
		}
	}
	if opts.RobotStats {
		if err := export.WriteJSON(out, export.Summarize(m)); err != nil {
			return err
		}
	}

	rect := view.Rect()
	diagram := export.Diagram{
		Model:    m,
		Labels:   labelsFor(entries),
		Viewport: &rect,
		ScrollY:  view.Scroll,
	}
	if opts.SVGPath != "" {
		if err := writeFile(opts.SVGPath, func(w io.Writer) error { return export.WriteSVG(w, diagram) }); err != nil {
			return err
		}
	}
	if opts.PNGPath != "" {
		if err := writeFile(opts.PNGPath, func(w io.Writer) error { return export.WritePNG(w, diagram) }); err != nil {
			return err
		}
	}
	if opts.MarkdownPath != "" {
		md := export.GenerateMarkdown(m, entries, opts.Title)
		if err := os.WriteFile(opts.MarkdownPath, []byte(md), 0644); err != nil {
			return fmt.Errorf("write %s: %w", opts.MarkdownPath, err)
		}
	}
	return nil
}

// labelsFor names diagram items after separator text or entry IDs.
func labelsFor(entries []transcript.Entry) []string {
	labels := make([]string, len(entries))
	for i, e := range entries {
		if e.IsSeparator() {
			labels[i] = e.Text
		} else {
			labels[i] = e.ID
		}
	}
	return labels
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	return write(f)
}

func printRobotHelp() {
	fmt.Println("chatlayout JSON Interface")
	fmt.Println("=========================")
	fmt.Println("Lays out a transcript at a fixed width and reports geometry as JSON.")
	fmt.Println("Units are terminal rows and columns.")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  --robot-layout")
	fmt.Println("      Every item with its frame, plus content size and sticky indices.")
	fmt.Println("")
	fmt.Println("  --robot-query --scroll N --viewport-height H")
	fmt.Println("      Items intersecting the viewport at scroll offset N.")
	fmt.Println("      The pinned sticky item, if any, is listed first with is_sticking=true")
	fmt.Println("      and current_frame.y moved to where it is drawn.")
	fmt.Println("")
	fmt.Println("  --robot-stats")
	fmt.Println("      Mean, median, stddev and max item height, and the share of margins.")
	fmt.Println("")
	fmt.Println("Use --width to fix the layout width; otherwise the terminal width is used.")
}
