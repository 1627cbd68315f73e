// internal/tui/chat_view.go
//
// The chat screen: welcome card, conversation viewport, and the prompt
// input that drives the intake controller.

package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/DipanjanlahaRPSG/RFP-Generator/internal/intake"
	"github.com/DipanjanlahaRPSG/RFP-Generator/internal/rfp"
)

var (
	userMsgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F7B801")).
			Bold(true)
	assistantMsgStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#CCCCCC"))
	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
)

var examplePrompts = []string{
	"I need an RFP for hiring a UI/UX designer for 6 months",
	"Create an RFP for procuring 500 energy meters",
	"RFP for construction of a new substation",
}

func (a *App) layoutChat() {
	width := max(40, a.width-4)
	height := max(8, a.height-14)
	a.chatView.Width = width
	a.chatView.Height = height
	a.input.Width = max(20, width-4)
	a.scratchInput.Width = max(20, width-4)
	a.titleInput.Width = max(20, width-4)
	a.refreshChatView()
}

// refreshChatView re-renders the transcript into the viewport and keeps
// it scrolled to the newest message.
func (a *App) refreshChatView() {
	messages := a.transcript.Messages()
	if len(messages) == 0 {
		a.chatView.SetContent(a.renderWelcome())
		return
	}
	var blocks []string
	for _, msg := range messages {
		prefix := "you"
		style := userMsgStyle
		if msg.Role == rfp.RoleAssistant {
			prefix = "rfp"
			style = assistantMsgStyle
		}
		blocks = append(blocks, fmt.Sprintf("%s %s", style.Render(prefix+" ›"), msg.Content))
	}
	a.chatView.SetContent(strings.Join(blocks, "\n\n"))
	a.chatView.GotoBottom()
}

func (a *App) renderWelcome() string {
	lines := []string{
		"Welcome to the RFP Generator!",
		"",
		"Describe what you need to procure and I'll walk you through a",
		"few questions before drafting the document.",
		"",
		"Examples:",
	}
	for i, prompt := range examplePrompts {
		lines = append(lines, hintStyle.Render(fmt.Sprintf("  %d · %s", i+1, prompt)))
	}
	lines = append(lines, "", hintStyle.Render("Press 1-3 to use an example, or just start typing."))
	return strings.Join(lines, "\n")
}

func (a *App) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		return a, a.submitChatInput()
	case "tab":
		if a.bench.HasBundle() {
			a.enterReview()
			return a, nil
		}
	case "1", "2", "3":
		// Example shortcuts only apply to an untouched session.
		if a.transcript.Len() == 0 && a.input.Value() == "" {
			idx := int(msg.String()[0] - '1')
			a.input.SetValue(examplePrompts[idx])
			return a, nil
		}
	}
	return a, a.updateWidgets(msg)
}

// submitChatInput routes the typed text to the right intake action for
// the current state and kicks off the matching backend call.
func (a *App) submitChatInput() tea.Cmd {
	if a.busy() {
		a.setStatus("Please wait for the current step to finish")
		return nil
	}
	text := a.input.Value()
	if strings.TrimSpace(text) == "" {
		return nil
	}

	switch a.intake.State() {
	case intake.StateIdle:
		prompt, err := a.intake.Submit(text)
		if err != nil {
			return nil
		}
		a.input.SetValue("")
		a.refreshChatView()
		a.setStatus("Analyzing your request...")
		a.logInfo("Submitted request: %s", rfp.TitleFromRequest(prompt))
		return a.analyzeCmd(prompt)

	case intake.StateAsking:
		if err := a.intake.SubmitAnswer(text); err != nil {
			return nil
		}
		a.input.SetValue("")
		a.refreshChatView()
		if a.intake.State() == intake.StateReady {
			return a.beginHandoff()
		}
		a.setStatus(fmt.Sprintf("Question %d of %d", a.intake.Cursor(), len(a.intake.Questions())))
		return nil

	case intake.StateReady:
		// A failed hand-off leaves the workbench ready without a
		// bundle; the next submission retries discovery+generation.
		if !a.bench.HasBundle() {
			a.input.SetValue("")
			return a.beginHandoff()
		}
		a.setStatus("Intake complete · press ctrl+n to start a new RFP")
		return nil
	}
	return nil
}

func (a *App) viewChat() string {
	body := a.chatView.View()

	var inputLine string
	if a.busy() {
		inputLine = fmt.Sprintf("%s %s", a.spin.View(), a.busyLabel())
	} else {
		inputLine = a.input.View()
	}

	hints := []string{"enter=send", "ctrl+n=start over", "ctrl+c=quit"}
	if a.bench.HasBundle() {
		hints = append([]string{"tab=review sections"}, hints...)
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Width(max(40, a.width-2))

	return strings.Join([]string{
		box.Render(body),
		box.Render(inputLine),
		hintStyle.Render(strings.Join(hints, "  ")),
	}, "\n")
}

func (a *App) busyLabel() string {
	switch {
	case a.intake.State() == intake.StateAnalyzing:
		return "Analyzing your request..."
	case a.bench.Generating():
		return "Generating your RFP... This may take up to 90 seconds."
	}
	return "Working..."
}
