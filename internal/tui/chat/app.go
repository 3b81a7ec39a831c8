package chat

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// App owns the Bubble Tea program and bridges background goroutines into
// its update loop.
type App struct {
	program *tea.Program
}

// NewApp creates the program around a chat model built from deps. The
// Publish hook is wired here so streaming deltas produced on the Ask
// goroutine reach the update loop.
func NewApp(deps ChatModelDeps) *App {
	app := &App{}
	deps.Publish = app.Send
	model := NewChatModel(deps)
	app.program = tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	return app
}

// Send pushes a message into the update loop. Safe to call from any
// goroutine once Run has been called.
func (a *App) Send(msg tea.Msg) {
	if a.program != nil {
		a.program.Send(msg)
	}
}

// Run blocks until the program exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		a.Send(QuitMsg{})
	}()
	_, err := a.program.Run()
	return err
}
