// internal/tui/review_view.go
//
// The review screen: three section tabs, the approval progress bar, and
// the per-section approve / regenerate / export actions.

package tui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/DipanjanlahaRPSG/RFP-Generator/internal/review"
	"github.com/DipanjanlahaRPSG/RFP-Generator/internal/rfp"
)

const (
	tabCritical = iota
	tabHistorical
	tabTemplates
)

var (
	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF"))
	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#888888"))
	approvedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	pendingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F7B801"))
	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))
	sectionBodyStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#A0AEC0"))
)

func (a *App) enterReview() {
	a.screen = screenReview
	a.reviewTab = tabCritical
	a.selection = 0
	a.setStatus(fmt.Sprintf("%d/%d critical sections approved",
		a.bench.ApprovedCount(), len(rfp.CriticalSections)))
}

func (a *App) currentTabSections() []rfp.Section {
	bundle := a.bench.Bundle()
	switch a.reviewTab {
	case tabHistorical:
		return bundle.Old
	case tabTemplates:
		return bundle.Rules
	default:
		return bundle.New
	}
}

func (a *App) selectedSection() (rfp.Section, bool) {
	sections := a.currentTabSections()
	if len(sections) == 0 {
		return rfp.Section{}, false
	}
	if a.selection >= len(sections) {
		a.selection = len(sections) - 1
	}
	return sections[a.selection], true
}

func (a *App) handleReviewKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.titleOpen {
		switch msg.String() {
		case "enter":
			if title := strings.TrimSpace(a.titleInput.Value()); title != "" {
				a.title = title
				a.logInfo("Renamed document to %s", title)
			}
			a.titleOpen = false
			a.titleInput.Blur()
			return a, nil
		case "esc":
			a.titleOpen = false
			a.titleInput.Blur()
			return a, nil
		}
		return a, a.updateWidgets(msg)
	}

	if a.scratchOpen {
		switch msg.String() {
		case "enter", "esc":
			if section, ok := a.selectedSection(); ok && a.reviewTab == tabCritical {
				a.bench.SetScratch(section.Name, a.scratchInput.Value())
			}
			a.scratchOpen = false
			a.scratchInput.Blur()
			return a, nil
		}
		return a, a.updateWidgets(msg)
	}

	switch msg.String() {
	case "esc":
		a.screen = screenChat
		a.input.Focus()
		return a, nil
	case "tab":
		a.reviewTab = (a.reviewTab + 1) % 3
		a.selection = 0
		return a, nil
	case "up", "k":
		if a.selection > 0 {
			a.selection--
		}
		return a, nil
	case "down", "j":
		if n := len(a.currentTabSections()); a.selection < n-1 {
			a.selection++
		}
		return a, nil
	case "a":
		return a, a.approveSelected()
	case "u":
		return a, a.unapproveSelected()
	case "r":
		return a, a.regenerateSelected()
	case "c":
		if a.reviewTab == tabCritical {
			if section, ok := a.selectedSection(); ok {
				a.scratchInput.SetValue(a.bench.Scratch(section.Name))
				a.scratchInput.Focus()
				a.scratchOpen = true
			}
		}
		return a, nil
	case "t":
		a.titleInput.SetValue(a.title)
		a.titleInput.Focus()
		a.titleOpen = true
		return a, nil
	case "e":
		return a, a.exportDocument()
	}
	return a, nil
}

func (a *App) approveSelected() tea.Cmd {
	if a.reviewTab != tabCritical {
		a.setStatus("Only critical sections need approval")
		return nil
	}
	section, ok := a.selectedSection()
	if !ok {
		return nil
	}
	if err := a.bench.Approve(section.Name); err != nil {
		a.setStatus(fmt.Sprintf("Cannot approve: %v", err))
		return nil
	}
	a.logInfo("Approved section %s (%d/%d)", section.Name, a.bench.ApprovedCount(), len(rfp.CriticalSections))
	a.setStatus(fmt.Sprintf("Approved %s · %d/%d", section.Name, a.bench.ApprovedCount(), len(rfp.CriticalSections)))
	return nil
}

func (a *App) unapproveSelected() tea.Cmd {
	if a.reviewTab != tabCritical {
		return nil
	}
	section, ok := a.selectedSection()
	if !ok {
		return nil
	}
	if err := a.bench.Unapprove(section.Name); err != nil {
		a.setStatus(fmt.Sprintf("Cannot unapprove: %v", err))
		return nil
	}
	a.logInfo("Unapproved section %s", section.Name)
	a.setStatus(fmt.Sprintf("Unapproved %s · %d/%d", section.Name, a.bench.ApprovedCount(), len(rfp.CriticalSections)))
	return nil
}

// regenerateSelected enforces the version cap locally before any call
// leaves the process.
func (a *App) regenerateSelected() tea.Cmd {
	if a.reviewTab != tabCritical {
		a.setStatus("Only critical sections can be regenerated")
		return nil
	}
	section, ok := a.selectedSection()
	if !ok {
		return nil
	}
	req, err := a.bench.BeginRegenerate(section.Name)
	switch {
	case errors.Is(err, review.ErrRegenLimit):
		a.setStatus(fmt.Sprintf("%s has reached its regeneration limit (v%d/%d)",
			section.Name, a.bench.RegenCount(section.Name), review.MaxRegenerations))
		return nil
	case errors.Is(err, review.ErrRegenInFlight):
		a.setStatus(fmt.Sprintf("%s is already regenerating", section.Name))
		return nil
	case err != nil:
		a.setStatus(fmt.Sprintf("Cannot regenerate: %v", err))
		return nil
	}
	a.setStatus(fmt.Sprintf("Regenerating %s (v%d)...", section.Name, req.Iteration))
	a.logInfo("Regenerating section %s · iteration=%d", section.Name, req.Iteration)
	return a.regenerateCmd(req)
}

// exportDocument refuses locally unless every critical section is
// approved; only then does the export call go out.
func (a *App) exportDocument() tea.Cmd {
	if a.exporting {
		a.setStatus("Export already in progress")
		return nil
	}
	err := a.bench.BeginExport()
	switch {
	case errors.Is(err, review.ErrNotFullyApproved):
		remaining := len(rfp.CriticalSections) - a.bench.ApprovedCount()
		a.setStatus(fmt.Sprintf("Approve all critical sections to enable download (%d remaining)", remaining))
		return nil
	case err != nil:
		a.setStatus(fmt.Sprintf("Cannot export: %v", err))
		return nil
	}
	a.exporting = true
	a.setStatus("Exporting document...")
	a.logInfo("Export started · session=%s", a.ctx.SessionID())
	return a.exportCmd()
}

func (a *App) viewReview() string {
	if !a.bench.HasBundle() {
		return "No sections generated yet. Press esc to return to the chat."
	}
	bundle := a.bench.Bundle()

	tabs := []string{
		fmt.Sprintf("Critical (%d/%d)", a.bench.ApprovedCount(), len(rfp.CriticalSections)),
		fmt.Sprintf("Historical (%d)", len(bundle.Old)),
		fmt.Sprintf("Templates (%d)", len(bundle.Rules)),
	}
	var tabLine []string
	for i, label := range tabs {
		if i == a.reviewTab {
			tabLine = append(tabLine, tabActiveStyle.Render("["+label+"]"))
		} else {
			tabLine = append(tabLine, tabInactiveStyle.Render(" "+label+" "))
		}
	}

	ratio := float64(a.bench.ApprovedCount()) / float64(len(rfp.CriticalSections))
	bar := a.approveBar.ViewAs(ratio)

	lines := []string{strings.Join(tabLine, " "), bar, ""}
	sections := a.currentTabSections()
	if len(sections) == 0 {
		lines = append(lines, "No sections in this category.")
	}
	for i, section := range sections {
		lines = append(lines, a.renderSectionLine(i, section))
		if i == a.selection {
			lines = append(lines, a.renderSectionDetails(section))
		}
	}

	if a.scratchOpen {
		lines = append(lines, "", "Additional context: "+a.scratchInput.View())
	}
	if a.titleOpen {
		lines = append(lines, "", "RFP title: "+a.titleInput.View())
	}

	if !a.bench.FullyApproved() {
		remaining := len(rfp.CriticalSections) - a.bench.ApprovedCount()
		lines = append(lines, "", noticeStyle.Render(
			fmt.Sprintf("Approve all %d critical sections to enable download (%d remaining)",
				len(rfp.CriticalSections), remaining)))
	} else {
		lines = append(lines, "", approvedStyle.Render("All critical sections approved! Press e to export."))
	}

	hints := "a=approve  u=unapprove  r=regenerate  c=context  t=title  e=export  tab=next tab  esc=chat"
	lines = append(lines, "", hintStyle.Render(hints))
	return strings.Join(lines, "\n")
}

func (a *App) renderSectionLine(idx int, section rfp.Section) string {
	indicator := " "
	if idx == a.selection {
		indicator = ">"
	}
	name := section.Name
	if a.reviewTab != tabCritical {
		return fmt.Sprintf("%s %s", indicator, name)
	}
	status := pendingStyle.Render("pending")
	if a.bench.IsApproved(name) {
		status = approvedStyle.Render("approved")
	}
	if a.bench.Regenerating(name) {
		status = fmt.Sprintf("%s regenerating", a.spin.View())
	}
	badge := fmt.Sprintf("v%d/%d", a.bench.RegenCount(name), review.MaxRegenerations)
	return fmt.Sprintf("%s %s · %s · [%s]", indicator, name, badge, status)
}

func (a *App) renderSectionDetails(section rfp.Section) string {
	var details []string
	content := strings.TrimSpace(section.Content)
	if content != "" {
		details = append(details, truncateLines(content, 8))
	}
	if len(section.Assumptions) > 0 {
		details = append(details, "Assumptions: "+strings.Join(section.Assumptions, "; "))
	}
	if section.Eval != nil {
		details = append(details, fmt.Sprintf(
			"Eval: coherence %.1f/10 · RAG confidence %.0f%% · format %.0f%%",
			section.Eval.Coherence, section.Eval.RAGConfidence, section.Eval.FormatCompliance))
	}
	if len(details) == 0 {
		return sectionBodyStyle.Render("  no content")
	}
	return sectionBodyStyle.Render("  " + strings.ReplaceAll(strings.Join(details, "\n"), "\n", "\n  "))
}

func truncateLines(text string, maxLines int) string {
	lines := strings.Split(text, "\n")
	if len(lines) <= maxLines {
		return text
	}
	return strings.Join(lines[:maxLines], "\n") + "\n…"
}
