package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/datacraft-labs/sftgen-cli/internal/adapters/driving/tui/components/status"
	"github.com/datacraft-labs/sftgen-cli/internal/adapters/driving/tui/keymap"
	"github.com/datacraft-labs/sftgen-cli/internal/adapters/driving/tui/messages"
	"github.com/datacraft-labs/sftgen-cli/internal/adapters/driving/tui/styles"
	"github.com/datacraft-labs/sftgen-cli/internal/adapters/driving/tui/views/dashboard"
	"github.com/datacraft-labs/sftgen-cli/internal/core/domain"
)

// eventBuffer is the progress event channel capacity. The pipeline's
// event callback must never block, so events beyond this are dropped;
// the final report reconciles anything missed.
const eventBuffer = 256

// App is the dashboard TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// config holds the pipeline and run parameters.
	config Config

	// ctx is the context for cancellation.
	ctx context.Context

	// cancelRun stops the in-flight run.
	cancelRun context.CancelFunc

	// styles holds the TUI styles.
	styles *styles.Styles

	// keymap holds the key bindings.
	keymap *keymap.KeyMap

	// dashboardView renders per-file progress.
	dashboardView *dashboard.View

	// statusBar renders run state and key hints at the bottom.
	statusBar *status.Bar

	// cancelling is set after the user requested cancellation.
	cancelling bool

	// done is set once the run finished.
	done bool

	// report is the final run report.
	report *domain.Report

	// runErr is the terminal run error.
	runErr error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new dashboard application for one pipeline run.
func NewApp(config Config) (*App, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	dashboardView := dashboard.NewView(s)
	dashboardView.SetPaths(config.Input, config.Options.OutputPath)

	return &App{
		config:        config,
		ctx:           context.Background(),
		styles:        s,
		keymap:        km,
		dashboardView: dashboardView,
		statusBar:     status.NewBar(s, km),
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
// It runs initial commands when the program starts.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("sftgen - Dataset Generation"),
		a.dashboardView.Init(),
	)
}

// Update implements tea.Model.
// It handles messages and updates the model state.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		// Last line belongs to the status bar
		a.dashboardView.SetDimensions(msg.Width, msg.Height-1)
		a.statusBar.SetWidth(msg.Width)
		return a, nil

	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case messages.RunStarted:
		a.statusBar.SetState(status.StateRunning)
		a.dashboardView, cmd = a.dashboardView.Update(msg)
		a.syncProgress()
		return a, cmd

	case messages.FileStarted, messages.ChunkFinished, messages.PairWritten, messages.FileFinished:
		a.dashboardView, cmd = a.dashboardView.Update(msg)
		a.syncProgress()
		return a, cmd

	case messages.RunCompleted:
		a.done = true
		a.report = msg.Report
		a.runErr = msg.Err
		a.dashboardView, cmd = a.dashboardView.Update(msg)
		a.syncProgress()
		if msg.Err != nil {
			a.statusBar.SetState(status.StateFailed)
			a.statusBar.SetMessage(msg.Err.Error())
		} else {
			a.statusBar.SetState(status.StateDone)
		}
		return a, cmd

	case messages.ErrorOccurred:
		a.dashboardView, cmd = a.dashboardView.Update(msg)
		return a, cmd

	case messages.CancelRequested:
		a.requestCancel()
		return a, nil

	case messages.Quit:
		return a, tea.Quit
	}

	// Forward everything else (spinner ticks) to the dashboard
	a.dashboardView, cmd = a.dashboardView.Update(msg)
	return a, cmd
}

// handleKeyMsg handles global keys and forwards the rest to the dashboard.
func (a *App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if keymap.Matches(msg.String(), a.keymap.Quit) {
		// After completion, or while already cancelling, quit outright.
		// During a run the first press cancels and waits for the final
		// report so partial results still get printed.
		if a.done || a.cancelling {
			return a, tea.Quit
		}
		a.requestCancel()
		return a, nil
	}

	var cmd tea.Cmd
	a.dashboardView, cmd = a.dashboardView.Update(msg)
	return a, cmd
}

// requestCancel stops the in-flight run and flips the UI into the
// cancelling state. The run goroutine still delivers RunCompleted.
func (a *App) requestCancel() {
	if a.cancelling || a.done {
		return
	}
	a.cancelling = true
	a.statusBar.SetState(status.StateCancelling)
	if a.cancelRun != nil {
		a.cancelRun()
	}
}

// syncProgress mirrors the dashboard counters into the status bar.
func (a *App) syncProgress() {
	a.statusBar.SetProgress(
		a.dashboardView.FilesDone(),
		a.dashboardView.TotalFiles(),
		a.dashboardView.Pairs(),
	)
}

// View implements tea.Model.
// It renders the dashboard with the status bar pinned to the bottom.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	content := a.dashboardView.View()

	contentHeight := a.height - 1
	if contentHeight < 1 {
		contentHeight = 1
	}
	lines := strings.Split(content, "\n")
	if len(lines) > contentHeight {
		lines = lines[:contentHeight]
	}
	for len(lines) < contentHeight {
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n") + "\n" + a.statusBar.View()
}

// Run starts the dashboard, drives the pipeline run in the background,
// and returns the final report once the user quits.
func (a *App) Run() (*domain.Report, error) {
	runCtx, cancel := context.WithCancel(a.ctx)
	defer cancel()
	a.cancelRun = cancel

	p := tea.NewProgram(a, tea.WithAltScreen())

	events := make(chan domain.RunEvent, eventBuffer)
	opts := a.config.Options
	opts.OnEvent = func(ev domain.RunEvent) {
		// Never block a pipeline worker; drop events under load
		select {
		case events <- ev:
		default:
		}
	}

	type runResult struct {
		report *domain.Report
		err    error
	}
	res := make(chan runResult, 1)

	go func() {
		report, err := a.config.Pipeline.Run(runCtx, a.config.Input, opts)
		res <- runResult{report: report, err: err}
		close(events)
	}()

	// Pump pipeline events into the program in order, then deliver the
	// final result once the event stream is drained.
	go func() {
		for ev := range events {
			if msg := eventMsg(ev); msg != nil {
				p.Send(msg)
			}
		}
		r := <-res
		p.Send(messages.RunCompleted{Report: r.report, Err: r.err})
	}()

	if _, err := p.Run(); err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}

	return a.report, a.runErr
}

// eventMsg converts a pipeline event into its bubbletea message.
// EventRunFinished maps to nil; RunCompleted is sent separately once the
// event stream drains, carrying the authoritative report and error.
func eventMsg(ev domain.RunEvent) tea.Msg {
	switch ev.Kind {
	case domain.EventRunStarted:
		return messages.RunStarted{TotalFiles: ev.TotalFiles}
	case domain.EventFileStarted:
		return messages.FileStarted{Path: ev.Path}
	case domain.EventFileFinished:
		if ev.File == nil {
			return nil
		}
		return messages.FileFinished{Result: *ev.File}
	case domain.EventChunkFinished:
		return messages.ChunkFinished{Path: ev.Path, Pairs: ev.Pairs}
	case domain.EventPairWritten:
		return messages.PairWritten{Path: ev.Path}
	default:
		return nil
	}
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// Done returns true once the run has completed.
func (a *App) Done() bool {
	return a.done
}

// Cancelling returns true after cancellation was requested.
func (a *App) Cancelling() bool {
	return a.cancelling
}

// Report returns the final run report, or nil before completion.
func (a *App) Report() *domain.Report {
	return a.report
}

// Err returns the terminal run error, if any.
func (a *App) Err() error {
	return a.runErr
}

// SetDimensions sets the terminal dimensions (for testing).
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.dashboardView.SetDimensions(width, height-1)
	a.statusBar.SetWidth(width)
}
