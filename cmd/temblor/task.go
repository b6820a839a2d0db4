package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/linuxmatters/temblor/internal/ui"
)

// taskFunc does the work of one step, reporting each finished item, and
// returns summary lines for the completion screen
type taskFunc func(ctx context.Context, report func(ui.Progress)) ([][2]string, error)

// runTask runs work behind the progress TUI when stdout is a terminal.
// Quitting the TUI early cancels the work.
func runTask(ctx context.Context, g *Globals, title string, work taskFunc) error {
	if g.NoProgress || !isatty.IsTerminal(os.Stdout.Fd()) {
		_, err := work(ctx, func(p ui.Progress) {
			g.log.Debugf("%s: %d/%d %s %s", title, p.Done, p.Total, p.Item, p.Detail)
		})
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(ui.NewTaskModel(title))

	// Run the work in a goroutine and send progress updates
	var workErr error
	done := make(chan struct{})
	go func() {
		defer close(done)

		start := time.Now()
		var lines [][2]string
		lines, workErr = work(ctx, func(pr ui.Progress) {
			p.Send(pr)
		})

		if workErr == nil {
			p.Send(ui.Complete{Lines: lines, Duration: time.Since(start)})
		} else {
			// On error, just quit the program
			p.Quit()
		}
	}()

	_, err := p.Run()
	cancel()
	<-done
	if err != nil {
		return fmt.Errorf("running UI: %w", err)
	}
	return workErr
}
