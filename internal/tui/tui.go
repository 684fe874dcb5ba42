// Package tui provides a Bubble Tea terminal user interface for loading
// asset manifests.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/handiism/asset-loader/internal/config"
	"github.com/handiism/asset-loader/internal/loader"
	"github.com/handiism/asset-loader/internal/logger"
	"github.com/handiism/asset-loader/internal/manifest"
	"github.com/handiism/asset-loader/internal/model"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)

	assetStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

// errCancelled is shown when the user stops a running load.
var errCancelled = errors.New("cancelled by user")

// maxLogs is the number of log lines kept on screen.
const maxLogs = 10

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateInitializing
	StateLoading
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   loader.Level
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	settings  *config.Settings
	logs      []LogEntry
	summary   []string
	err       error

	// Running load
	manager *loader.Manager
	handle  *loader.Handle
	updates chan tea.Msg
	total   int
	loaded  int
	percent float64

	// Options
	sequential bool
	cacheAll   bool
	verbose    bool

	width  int
	height int
}

// NewModel creates a new TUI model. A nil settings uses the defaults.
func NewModel(settings *config.Settings) Model {
	if settings == nil {
		settings = config.DefaultSettings()
	}

	ti := textinput.New()
	ti.Placeholder = "assets.yaml"
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	return Model{
		state:     StateInput,
		textInput: ti,
		spinner:   sp,
		progress:  prog,
		settings:  settings,
		logs:      make([]LogEntry, 0),
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// EventMsg carries a loader event.
	EventMsg struct {
		Event loader.Event
	}

	// ProgressMsg is sent when the batch progress fraction rises.
	ProgressMsg struct {
		Fraction float64
	}

	// AssetDoneMsg is sent when one top-level descriptor has finished.
	AssetDoneMsg struct{}

	// InitDoneMsg is sent when the manifest is read and the batch started.
	InitDoneMsg struct {
		Manager *loader.Manager
		Handle  *loader.Handle
		Updates chan tea.Msg
		Total   int
		Err     error
	}

	// LoadDoneMsg is sent when the batch has finished or stopped.
	LoadDoneMsg struct {
		Results model.Results
		Err     error
	}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(max(msg.Width-20, 20), 80)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.shutdown()
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StateLoading && m.handle != nil {
				m.handle.Stop()
			}

		case "enter":
			if m.state == StateInput && m.textInput.Value() != "" {
				m.state = StateInitializing
				return m, tea.Batch(m.initializeLoad(), m.spinner.Tick)
			}

		case "ctrl+s":
			if m.state == StateInput {
				m.sequential = !m.sequential
			}

		case "ctrl+a":
			if m.state == StateInput {
				m.cacheAll = !m.cacheAll
			}

		case "ctrl+v":
			if m.state == StateInput {
				m.verbose = !m.verbose
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				m.shutdown()
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				m.shutdown()
				m.state = StateInput
				m.logs = nil
				m.summary = nil
				m.err = nil
				m.total = 0
				m.loaded = 0
				m.percent = 0
				m.textInput.SetValue("")
				m.textInput.Focus()
				return m, nil
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case EventMsg:
		cmds = append(cmds, waitForUpdate(m.updates))
		if msg.Event.Level == loader.LevelVerbose && !m.verbose {
			break
		}
		m.logs = append(m.logs, LogEntry{
			Message: msg.Event.Message,
			Level:   msg.Event.Level,
		})
		if len(m.logs) > maxLogs {
			m.logs = m.logs[len(m.logs)-maxLogs:]
		}

	case ProgressMsg:
		cmds = append(cmds, waitForUpdate(m.updates))
		if msg.Fraction > m.percent {
			m.percent = msg.Fraction
			cmds = append(cmds, m.progress.SetPercent(m.percent))
		}

	case AssetDoneMsg:
		cmds = append(cmds, waitForUpdate(m.updates))
		m.loaded++

	case InitDoneMsg:
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
			break
		}
		m.manager = msg.Manager
		m.handle = msg.Handle
		m.updates = msg.Updates
		m.total = msg.Total
		m.state = StateLoading
		cmds = append(cmds, waitForUpdate(m.updates), waitForResults(m.handle))

	case LoadDoneMsg:
		switch {
		case errors.Is(msg.Err, loader.ErrStopped):
			m.state = StateError
			m.err = errCancelled
		case msg.Err != nil:
			m.state = StateError
			m.err = msg.Err
		default:
			m.state = StateComplete
			m.summary = Summarize(msg.Results)
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	// Update text input
	if m.state == StateInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// shutdown stops any running batch and releases the manager.
func (m *Model) shutdown() {
	if m.handle != nil {
		m.handle.Stop()
		m.handle = nil
	}
	if m.manager != nil {
		m.manager.Close()
		m.manager = nil
	}
	m.updates = nil
}

// Summarize renders one line per loaded leaf result.
func Summarize(results model.Results) []string {
	if results == nil {
		return nil
	}
	var lines []string
	model.Walk(results, func(key string, v any) {
		lines = append(lines, fmt.Sprintf("%s: %s", key, model.Describe(v)))
	})
	return lines
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("Asset Loader"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Load asset manifests"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateInitializing:
		b.WriteString(m.viewInitializing())
	case StateLoading:
		b.WriteString(m.viewLoading())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Manifest path:"))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s Sequential (ctrl+s)\n", checkbox(m.sequential)))
	b.WriteString(fmt.Sprintf("  %s Cache all results (ctrl+a)\n", checkbox(m.cacheAll)))
	b.WriteString(fmt.Sprintf("  %s Verbose output (ctrl+v)\n", checkbox(m.verbose)))
	b.WriteString("\n")

	source := m.settings.BaseURL
	if source == "" {
		source = m.settings.AssetRoot
	}
	if source == "" {
		source = "."
	}
	b.WriteString(dimStyle.Render(fmt.Sprintf("Asset source: %s", source)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewInitializing() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Reading manifest..."))
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewLoading() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render(m.textInput.Value()))
	b.WriteString("\n\n")

	b.WriteString(m.progress.ViewAs(m.percent))
	b.WriteString("\n")
	b.WriteString(infoStyle.Render(fmt.Sprintf("Assets: %d/%d", m.loaded, m.total)))
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	failed := 0
	for _, line := range m.summary {
		if strings.HasSuffix(line, ": failed") {
			failed++
		}
	}

	box := boxStyle.Render(fmt.Sprintf(
		"Load Complete!\n\nAssets: %d\nFailed: %d",
		len(m.summary),
		failed,
	))
	b.WriteString(box)
	b.WriteString("\n\n")

	shown := m.summary
	if len(shown) > 20 {
		shown = shown[:20]
	}
	for _, line := range shown {
		style := assetStyle
		if strings.HasSuffix(line, ": failed") {
			style = errorStyle
		}
		b.WriteString(style.Render("  " + line))
		b.WriteString("\n")
	}
	if len(m.summary) > len(shown) {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  ... %d more", len(m.summary)-len(shown))))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case loader.LevelError:
			style = errorStyle
			prefix = "✗"
		case loader.LevelWarning:
			style = warningStyle
			prefix = "!"
		case loader.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case loader.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		return "enter: load • ctrl+s: sequential • ctrl+a: cache all • ctrl+v: verbose • esc: quit"
	case StateInitializing, StateLoading:
		return "esc: stop"
	case StateComplete, StateError:
		return "r: new manifest • q: quit"
	}
	return ""
}

// initializeLoad reads the manifest, creates a manager and starts the
// batch. Loader callbacks are forwarded to the program through updates.
func (m Model) initializeLoad() tea.Cmd {
	path := m.textInput.Value()
	settings := m.settings
	sequential, cacheAll := m.sequential, m.cacheAll

	return func() tea.Msg {
		mf, err := manifest.Load(path)
		if err != nil {
			return InitDoneMsg{Err: err}
		}

		updates := make(chan tea.Msg, 256)
		forward := func(msg tea.Msg) {
			// never stall the loader on a slow or closed UI
			select {
			case updates <- msg:
			default:
			}
		}

		mgr, err := loader.New(settings,
			loader.WithLogger(logger.Discard()),
			loader.WithEventHandler(func(e loader.Event) { forward(EventMsg{Event: e}) }),
		)
		if err != nil {
			return InitDoneMsg{Err: err}
		}

		opts := mf.Options.LoadOptions()
		opts.Sequential = opts.Sequential || sequential
		opts.CacheAll = opts.CacheAll || cacheAll
		opts.Progress = func(f float64) { forward(ProgressMsg{Fraction: f}) }
		opts.TaskDone = func(any, loader.Task) { forward(AssetDoneMsg{}) }

		h, err := mgr.Load(mf.Assets, opts)
		if err != nil {
			mgr.Close()
			return InitDoneMsg{Err: err}
		}
		if opts.Deferred {
			h.Start()
		}
		return InitDoneMsg{
			Manager: mgr,
			Handle:  h,
			Updates: updates,
			Total:   len(mf.Assets),
		}
	}
}

// waitForUpdate delivers the next forwarded loader callback.
func waitForUpdate(updates chan tea.Msg) tea.Cmd {
	if updates == nil {
		return nil
	}
	return func() tea.Msg {
		return <-updates
	}
}

// waitForResults blocks until the batch finishes.
func waitForResults(h *loader.Handle) tea.Cmd {
	return func() tea.Msg {
		results, err := h.Wait(context.Background())
		return LoadDoneMsg{Results: results, Err: err}
	}
}

// Run starts the TUI application.
func Run(settings *config.Settings) error {
	p := tea.NewProgram(NewModel(settings), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
