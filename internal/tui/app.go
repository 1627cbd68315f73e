// internal/tui/app.go
//
// Main TUI for the RFP generator, following The Elm Architecture:
//
// 1. Model: App holds all state
// 2. Update: state transitions in response to messages
// 3. View: renders state to a string
//
// All remote calls run as tea.Cmd closures; their outcomes come back as
// typed messages, so every mutation happens inside Update and at most
// one logical operation is in flight per phase.

package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/DipanjanlahaRPSG/RFP-Generator/internal/api"
	"github.com/DipanjanlahaRPSG/RFP-Generator/internal/config"
	"github.com/DipanjanlahaRPSG/RFP-Generator/internal/export"
	"github.com/DipanjanlahaRPSG/RFP-Generator/internal/intake"
	"github.com/DipanjanlahaRPSG/RFP-Generator/internal/logbook"
	"github.com/DipanjanlahaRPSG/RFP-Generator/internal/review"
	"github.com/DipanjanlahaRPSG/RFP-Generator/internal/rfp"
	"github.com/DipanjanlahaRPSG/RFP-Generator/internal/session"
)

// screen represents which view we're on.
type screen int

const (
	screenChat   screen = iota // conversational intake
	screenReview               // section review and approval
)

// backendClient is the slice of the API client the TUI depends on.
// Tests substitute a stub through WithClient.
type backendClient interface {
	Analyze(ctx context.Context, prompt string) (api.AnalyzeResult, error)
	DiscoverContext(ctx context.Context, sessionID string, sessionCtx map[string]string) (api.DiscoveryResult, error)
	Generate(ctx context.Context, sessionID string, sessionCtx map[string]string) (rfp.Bundle, error)
	Regenerate(ctx context.Context, req api.RegenerateRequest) (rfp.Section, error)
	Export(ctx context.Context, sessionID string) ([]byte, error)
	Health(ctx context.Context) error
}

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithClient overrides the backend client used by the TUI.
func WithClient(client backendClient) AppOption {
	return func(a *App) {
		if client != nil {
			a.client = client
		}
	}
}

// WithLogbook overrides the logbook destination.
func WithLogbook(lb *logbook.Logbook) AppOption {
	return func(a *App) {
		a.logbook = lb
	}
}

// Messages produced by asynchronous commands.

type healthMsg struct{ err error }

// Session-scoped messages carry the generation they were issued under;
// outcomes from before a ctrl+n reset are discarded on arrival.

type analysisMsg struct {
	gen    int
	prompt string
	result api.AnalyzeResult
	err    error
}

type discoveryMsg struct {
	gen    int
	result api.DiscoveryResult
	err    error
}

type generateMsg struct {
	gen    int
	bundle rfp.Bundle
	err    error
}

type regenMsg struct {
	gen     int
	name    string
	section rfp.Section
	err     error
}

type exportMsg struct {
	gen  int
	data []byte
	err  error
}

// App is the main application model.
type App struct {
	cfg     *config.Config
	client  backendClient
	logbook *logbook.Logbook

	ctx        *session.Context
	transcript *session.Transcript
	intake     *intake.Controller
	bench      *review.Workbench

	screen     screen
	title      string
	exporting  bool
	statusMsg  string
	generation int

	width  int
	height int

	// chat widgets
	input    textinput.Model
	chatView viewport.Model
	spin     spinner.Model

	// review widgets
	reviewTab    int // 0 critical · 1 historical · 2 templates
	selection    int
	approveBar   progress.Model
	scratchInput textinput.Model
	scratchOpen  bool
	titleInput   textinput.Model
	titleOpen    bool
}

// NewApp creates the application model around a loaded configuration.
func NewApp(cfg *config.Config, opts ...AppOption) *App {
	ctx := session.NewContext()
	transcript := session.NewTranscript()

	input := textinput.New()
	input.Placeholder = "Describe your RFP need..."
	input.Focus()

	scratch := textinput.New()
	scratch.Placeholder = "Additional context for regeneration (optional)"

	titleInput := textinput.New()
	titleInput.Placeholder = "RFP title"

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	app := &App{
		cfg:          cfg,
		client:       api.NewClient(cfg.APIBaseURL(), cfg.APITimeout()),
		ctx:          ctx,
		transcript:   transcript,
		intake:       intake.New(ctx, transcript),
		bench:        review.New(ctx, transcript),
		screen:       screenChat,
		input:        input,
		scratchInput: scratch,
		titleInput:   titleInput,
		spin:         spin,
		approveBar:   progress.New(progress.WithDefaultGradient()),
		chatView:     viewport.New(0, 0),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}
	return app
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.healthCmd(), a.spin.Tick, textinput.Blink)
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.layoutChat()
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(msg)
		return a, cmd

	case healthMsg:
		if msg.err != nil {
			a.setStatus(fmt.Sprintf("Backend unreachable at %s", a.cfg.APIBaseURL()))
			a.logWarn("Health check failed: %v", msg.err)
		} else {
			a.setStatus("Connected to backend")
		}
		return a, nil

	case analysisMsg:
		if msg.gen != a.generation {
			return a, nil
		}
		return a.handleAnalysis(msg)

	case discoveryMsg:
		if msg.gen != a.generation {
			return a, nil
		}
		return a.handleDiscovery(msg)

	case generateMsg:
		if msg.gen != a.generation {
			return a, nil
		}
		return a.handleGenerate(msg)

	case regenMsg:
		if msg.gen != a.generation {
			return a, nil
		}
		return a.handleRegenerated(msg)

	case exportMsg:
		if msg.gen != a.generation {
			return a, nil
		}
		return a.handleExport(msg)

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	return a, a.updateWidgets(msg)
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit
	case "ctrl+n":
		a.resetSession()
		return a, nil
	}
	if a.screen == screenChat {
		return a.handleChatKey(msg)
	}
	return a.handleReviewKey(msg)
}

// resetSession clears every piece of per-session state and returns to
// an empty chat screen.
func (a *App) resetSession() {
	a.generation++
	a.intake.Reset()
	a.bench.Reset()
	a.title = ""
	a.exporting = false
	a.screen = screenChat
	a.reviewTab = 0
	a.selection = 0
	a.scratchOpen = false
	a.scratchInput.SetValue("")
	a.titleOpen = false
	a.titleInput.SetValue("")
	a.input.SetValue("")
	a.input.Focus()
	a.refreshChatView()
	a.setStatus("Session reset")
	a.logInfo("Session reset")
}

// busy reports whether an intake or generation call is in flight; new
// user submissions are rejected while it is true.
func (a *App) busy() bool {
	return a.intake.State() == intake.StateAnalyzing || a.bench.Generating()
}

// Commands

func (a *App) healthCmd() tea.Cmd {
	client := a.client
	return func() tea.Msg {
		return healthMsg{err: client.Health(context.Background())}
	}
}

func (a *App) analyzeCmd(prompt string) tea.Cmd {
	client := a.client
	gen := a.generation
	return func() tea.Msg {
		result, err := client.Analyze(context.Background(), prompt)
		return analysisMsg{gen: gen, prompt: prompt, result: result, err: err}
	}
}

func (a *App) discoverCmd() tea.Cmd {
	client := a.client
	gen := a.generation
	sessionID := a.ctx.SessionID()
	snapshot := a.ctx.Snapshot()
	return func() tea.Msg {
		result, err := client.DiscoverContext(context.Background(), sessionID, snapshot)
		return discoveryMsg{gen: gen, result: result, err: err}
	}
}

func (a *App) generateCmd() tea.Cmd {
	client := a.client
	gen := a.generation
	sessionID := a.ctx.SessionID()
	snapshot := a.ctx.Snapshot()
	return func() tea.Msg {
		bundle, err := client.Generate(context.Background(), sessionID, snapshot)
		return generateMsg{gen: gen, bundle: bundle, err: err}
	}
}

func (a *App) regenerateCmd(req api.RegenerateRequest) tea.Cmd {
	client := a.client
	gen := a.generation
	return func() tea.Msg {
		section, err := client.Regenerate(context.Background(), req)
		return regenMsg{gen: gen, name: req.SectionName, section: section, err: err}
	}
}

// exportCmd only fetches the artifact bytes; the write happens in
// handleExport so an outcome from a reset session never reaches disk.
func (a *App) exportCmd() tea.Cmd {
	client := a.client
	gen := a.generation
	sessionID := a.ctx.SessionID()
	return func() tea.Msg {
		data, err := client.Export(context.Background(), sessionID)
		return exportMsg{gen: gen, data: data, err: err}
	}
}

// Handlers for asynchronous outcomes.

func (a *App) handleAnalysis(msg analysisMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		a.intake.FailAnalysis(msg.err)
		a.refreshChatView()
		a.setStatus("Analysis failed")
		a.logError("Analysis failed: %v", msg.err)
		return a, nil
	}
	if err := a.intake.ApplyAnalysis(msg.prompt, msg.result); err != nil {
		a.setStatus(fmt.Sprintf("Analysis rejected: %v", err))
		a.logError("Analysis rejected: %v", err)
		return a, nil
	}
	a.title = rfp.TitleFromRequest(msg.prompt)
	a.logInfo("Analyzed request · type=%s · %d question(s)", msg.result.RFPType, len(msg.result.Questions))
	a.refreshChatView()
	if a.intake.State() == intake.StateReady {
		return a, a.beginHandoff()
	}
	a.setStatus(fmt.Sprintf("Question 1 of %d", len(a.intake.Questions())))
	return a, nil
}

// beginHandoff starts the discovery→generation sequence from a finished
// intake context. Discovery always settles before generation starts.
func (a *App) beginHandoff() tea.Cmd {
	if err := a.bench.BeginDiscovery(); err != nil {
		a.setStatus(fmt.Sprintf("Cannot start generation: %v", err))
		return nil
	}
	a.refreshChatView()
	a.setStatus("Searching historical RFPs...")
	a.logInfo("Discovery started · session=%s", a.ctx.SessionID())
	return a.discoverCmd()
}

func (a *App) handleDiscovery(msg discoveryMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		a.bench.FailDiscovery(msg.err)
		a.refreshChatView()
		a.setStatus("Context discovery failed")
		a.logError("Discovery failed: %v", msg.err)
		return a, nil
	}
	if err := a.bench.ApplyDiscovery(msg.result); err != nil {
		a.setStatus(fmt.Sprintf("Discovery rejected: %v", err))
		return a, nil
	}
	a.refreshChatView()
	a.setStatus("Generating sections...")
	a.logInfo("Discovery complete · %d relevant document(s)", msg.result.TotalFound)
	return a, a.generateCmd()
}

func (a *App) handleGenerate(msg generateMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		a.bench.FailGeneration(msg.err)
		a.refreshChatView()
		a.setStatus("Generation failed")
		a.logError("Generation failed: %v", msg.err)
		return a, nil
	}
	if err := a.bench.ApplyBundle(msg.bundle); err != nil {
		a.refreshChatView()
		a.setStatus("Generation returned an incomplete bundle")
		a.logError("Generation rejected: %v", err)
		return a, nil
	}
	a.refreshChatView()
	bundle := a.bench.Bundle()
	a.setStatus("Sections ready · press tab to review")
	a.logInfo("Generated %d/%d/%d sections (critical/historical/template)",
		len(bundle.New), len(bundle.Old), len(bundle.Rules))
	return a, nil
}

func (a *App) handleRegenerated(msg regenMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		a.bench.FailRegenerate(msg.name)
		a.setStatus(fmt.Sprintf("Regeneration of %s failed: %v", msg.name, msg.err))
		a.logError("Regeneration failed · section=%s: %v", msg.name, msg.err)
		return a, nil
	}
	if err := a.bench.ApplyRegenerated(msg.name, msg.section); err != nil {
		a.setStatus(fmt.Sprintf("Regeneration rejected: %v", err))
		a.logError("Regeneration rejected · section=%s: %v", msg.name, err)
		return a, nil
	}
	a.setStatus(fmt.Sprintf("%s regenerated (v%d/%d)", msg.name, a.bench.RegenCount(msg.name), review.MaxRegenerations))
	a.logInfo("Regenerated section %s to v%d", msg.name, a.bench.RegenCount(msg.name))
	return a, nil
}

func (a *App) handleExport(msg exportMsg) (tea.Model, tea.Cmd) {
	a.exporting = false
	if msg.err != nil {
		a.setStatus(fmt.Sprintf("Export failed: %v", msg.err))
		a.logError("Export failed: %v", msg.err)
		return a, nil
	}
	path, err := export.Save(a.cfg.ExportDir(), export.Filename(a.title), msg.data)
	if err != nil {
		a.setStatus(fmt.Sprintf("Export failed: %v", err))
		a.logError("Export failed: %v", err)
		return a, nil
	}
	a.setStatus(fmt.Sprintf("Saved %s", path))
	a.logInfo("Exported document to %s", path)
	return a, nil
}

// updateWidgets forwards unhandled messages to the focused components.
func (a *App) updateWidgets(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	var cmd tea.Cmd
	if a.screen == screenChat {
		a.input, cmd = a.input.Update(msg)
		cmds = append(cmds, cmd)
		a.chatView, cmd = a.chatView.Update(msg)
		cmds = append(cmds, cmd)
	} else if a.scratchOpen {
		a.scratchInput, cmd = a.scratchInput.Update(msg)
		cmds = append(cmds, cmd)
	} else if a.titleOpen {
		a.titleInput, cmd = a.titleInput.Update(msg)
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// View renders the current screen.
func (a *App) View() string {
	var body string
	switch a.screen {
	case screenChat:
		body = a.viewChat()
	case screenReview:
		body = a.viewReview()
	}
	sections := []string{a.renderHeader(), body}
	if panel := a.renderLogPanel(); panel != "" {
		sections = append(sections, panel)
	}
	sections = append(sections, a.renderFooter())
	return strings.Join(sections, "\n")
}

func (a *App) renderHeader() string {
	title := "RFP GENERATOR"
	if a.title != "" {
		title += " · " + a.title
	}
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FF6B6B")).
		MarginBottom(1).
		Render(title)
}

func (a *App) renderLogPanel() string {
	if a.logbook == nil {
		return ""
	}
	lines := a.logbook.Tail(5)
	if len(lines) == 0 {
		return ""
	}
	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render("LOG")
	body := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		Render(strings.Join(lines, "\n"))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Render(head + "\n" + body)
}

func (a *App) renderFooter() string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		MarginTop(1).
		Render(a.statusMsg)
}

func (a *App) setStatus(message string) {
	message = strings.TrimSpace(message)
	if message == "" {
		return
	}
	a.statusMsg = message
}

func (a *App) logInfo(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Info(format, args...)
}

func (a *App) logWarn(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Warn(format, args...)
}

func (a *App) logError(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Error(format, args...)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
