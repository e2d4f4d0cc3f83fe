package tui

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/appcanvas/internal/wizard"
)

// App wraps the Bubbletea program
type App struct {
	program *tea.Program
	model   Model
	wizard  *wizard.Wizard
}

// New creates a new TUI application
func New(ctx context.Context, w *wizard.Wizard, opts Options) *App {
	return &App{
		model:  NewModel(ctx, w, opts),
		wizard: w,
	}
}

// Run starts the TUI application and blocks until it exits.
func (a *App) Run() error {
	defer a.model.close()

	a.program = tea.NewProgram(
		a.model,
		tea.WithAltScreen(),
	)

	// Quit cleanly on termination signals so the terminal is restored
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGHUP)

	go func() {
		if _, ok := <-sigChan; ok && a.program != nil {
			a.program.Send(tea.Quit())
		}
	}()

	_, err := a.program.Run()

	signal.Stop(sigChan)
	close(sigChan)

	return err
}
