package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/evgeny-sureev/Chatto/pkg/layout"
	"github.com/evgeny-sureev/Chatto/pkg/measure"
	"github.com/evgeny-sureev/Chatto/pkg/transcript"
	"github.com/evgeny-sureev/Chatto/pkg/watcher"
)

// RunConfig describes a viewer session.
type RunConfig struct {
	Source     *measure.Transcript
	SourcePath string // Transcript file to reload on change; "" disables reloads
	Watch      bool
	Debounce   time.Duration

	Strict         bool
	RetireDisabled bool
	RetireQueue    int

	Options Options
}

// Run shows the viewer until the user quits or ctx is cancelled.
func Run(ctx context.Context, cfg RunConfig) error {
	if cfg.Source == nil {
		cfg.Source = measure.NewTranscript(nil, measure.Options{})
	}

	var retirer *layout.Retirer
	if !cfg.RetireDisabled {
		retirer = layout.NewRetirer(layout.RetireConfig{QueueSize: cfg.RetireQueue})
		retirer.Start()
		defer retirer.Stop()
	}

	ctrl := layout.NewController(cfg.Source,
		layout.WithRetirer(retirer),
		layout.WithStrictContracts(cfg.Strict),
	)
	m := NewModel(ctrl, cfg.Source, cfg.Options)

	var w *watcher.Watcher
	if cfg.Watch && cfg.SourcePath != "" {
		var err error
		w, err = watcher.NewWatcher(cfg.SourcePath, watcher.WithDebounceDuration(cfg.Debounce))
		if err != nil {
			return err
		}
		if err := w.Start(); err != nil {
			w.Stop()
			return err
		}
		defer w.Stop()
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(runCtx))

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		defer cancel()
		if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("run viewer: %w", err)
		}
		return nil
	})
	if w != nil {
		g.Go(func() error {
			return forwardReloads(gctx, w, p.Send)
		})
	}
	return g.Wait()
}

// forwardReloads reloads the transcript on every change w reports and hands
// the result to send. It returns when ctx is done.
func forwardReloads(ctx context.Context, w *watcher.Watcher, send func(tea.Msg)) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.Changed():
			entries, err := transcript.LoadFile(w.Path())
			send(TranscriptLoadedMsg{Entries: entries, Err: err})
		}
	}
}
