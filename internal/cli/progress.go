package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

const tickInterval = 100 * time.Millisecond

// Theme holds the color scheme for terminal output.
type Theme struct {
	Status  lipgloss.Color
	Success lipgloss.Color
	Error   lipgloss.Color
	Hint    lipgloss.Color
	Accent  lipgloss.Color
}

var defaultTheme = Theme{
	Status:  lipgloss.Color("#5FAFD7"), // light blue
	Success: lipgloss.Color("#00D787"), // green
	Error:   lipgloss.Color("#FF005F"), // red
	Hint:    lipgloss.Color("#6C6C6C"), // dim gray
	Accent:  lipgloss.Color("#D7AF00"), // amber
}

func (t Theme) statusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Status)
}

func (t Theme) completedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

func (t Theme) accentStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
}

// tickMsg advances the elapsed-time bar.
type tickMsg time.Time

// doneMsg carries the finished call.
type doneMsg[T any] struct {
	value T
}

// pendingModel shows elapsed time against the model timeout while a call
// runs. Ctrl+C cancels the call and waits for it to return.
type pendingModel[T any] struct {
	label    string
	run      func(context.Context) T
	ctx      context.Context
	cancel   context.CancelFunc
	started  time.Time
	elapsed  time.Duration
	timeout  time.Duration
	progress progress.Model
	theme    Theme
	value    T
	done     bool
	quitting bool
}

func newPendingModel[T any](label string, timeout time.Duration, run func(context.Context) T) pendingModel[T] {
	ctx, cancel := context.WithCancel(context.Background())
	return pendingModel[T]{
		label:   label,
		run:     run,
		ctx:     ctx,
		cancel:  cancel,
		started: time.Now(),
		timeout: timeout,
		progress: progress.New(
			progress.WithDefaultBlend(),
			progress.WithWidth(30),
		),
		theme: defaultTheme,
	}
}

func (m pendingModel[T]) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		m.progress.Init(),
		m.runCmd(),
	)
}

func (m pendingModel[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			m.cancel()
			return m, nil
		}

	case tickMsg:
		if m.done {
			return m, nil
		}
		m.elapsed = time.Since(m.started)
		return m, tickCmd()

	case doneMsg[T]:
		m.value = msg.value
		m.done = true
		m.cancel()
		return m, tea.Quit

	case progress.FrameMsg:
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m pendingModel[T]) View() tea.View {
	return tea.NewView(m.renderContent())
}

func (m pendingModel[T]) renderContent() string {
	if m.done {
		return ""
	}
	if m.quitting {
		return m.theme.hintStyle().Render("Cancelling...") + "\n"
	}

	var pct float64
	if m.timeout > 0 {
		pct = min(float64(m.elapsed)/float64(m.timeout), 1)
	}

	status := m.theme.statusStyle().Render(fmt.Sprintf("[%s]", m.label))
	bar := m.progress.ViewAs(pct)
	seconds := fmt.Sprintf("%.1fs", m.elapsed.Seconds())
	hint := m.theme.hintStyle().Render("Ctrl+C to cancel")

	return fmt.Sprintf("%s %s %s\n%s\n", status, bar, seconds, hint)
}

func (m pendingModel[T]) runCmd() tea.Cmd {
	return func() tea.Msg {
		return doneMsg[T]{value: m.run(m.ctx)}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// isInteractive reports whether stdout is a terminal.
func isInteractive() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// runPending runs fn behind the progress display when stdout is a terminal,
// and directly with ctx otherwise.
func runPending[T any](ctx context.Context, label string, timeout time.Duration, fn func(context.Context) T) (T, error) {
	if !isInteractive() {
		return fn(ctx), nil
	}

	model := newPendingModel(label, timeout, func(runCtx context.Context) T {
		merged, cancel := context.WithCancel(runCtx)
		defer cancel()
		stop := context.AfterFunc(ctx, cancel)
		defer stop()
		return fn(merged)
	})
	p := tea.NewProgram(model)

	finalModel, err := p.Run()
	if err != nil {
		model.cancel()
		var zero T
		return zero, fmt.Errorf("progress UI error: %w", err)
	}

	m, ok := finalModel.(pendingModel[T])
	if !ok {
		var zero T
		return zero, fmt.Errorf("progress UI returned %T", finalModel)
	}
	return m.value, nil
}
