// internal/review/workbench.go
//
// The review workbench owns everything that happens after intake hands
// over a finished context: the discovery→generation phase sequence, the
// per-section approval set, bounded regeneration, and the export gate.
// Like the intake controller it is event-driven: the caller issues the
// network calls and reports outcomes back through the Apply*/Fail*
// methods.

package review

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/DipanjanlahaRPSG/RFP-Generator/internal/api"
	"github.com/DipanjanlahaRPSG/RFP-Generator/internal/rfp"
	"github.com/DipanjanlahaRPSG/RFP-Generator/internal/session"
)

// MaxRegenerations caps the version number of any critical section.
// The initial generation counts as version 1.
const MaxRegenerations = 5

// Phase is the workbench's position in the generation sequence.
type Phase int

const (
	// PhaseReady means a finished context is waiting for a hand-off
	// (or the last attempt failed and may be retried).
	PhaseReady Phase = iota
	// PhaseDiscovering means the context-discovery call is in flight.
	PhaseDiscovering
	// PhaseGenerating means the section-generation call is in flight.
	PhaseGenerating
	// PhaseReviewing is the stable post-generation state.
	PhaseReviewing
)

func (p Phase) String() string {
	switch p {
	case PhaseReady:
		return "ready"
	case PhaseDiscovering:
		return "discovering"
	case PhaseGenerating:
		return "generating"
	case PhaseReviewing:
		return "reviewing"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

var (
	// ErrWrongPhase rejects an operation issued outside its phase.
	ErrWrongPhase = errors.New("review: operation not valid in current phase")
	// ErrUnknownSection rejects a name that is not a critical section.
	ErrUnknownSection = errors.New("review: unknown critical section")
	// ErrRegenLimit rejects regeneration of a section already at its
	// version cap. No call is made to the backend.
	ErrRegenLimit = errors.New("review: regeneration limit reached")
	// ErrRegenInFlight rejects a second regeneration of the same
	// section while one is outstanding.
	ErrRegenInFlight = errors.New("review: regeneration already in flight")
	// ErrNotFullyApproved rejects export before every critical section
	// is approved. No call is made to the backend.
	ErrNotFullyApproved = errors.New("review: not all critical sections approved")
	// ErrIncompleteBundle rejects a generation response missing one or
	// more required critical sections.
	ErrIncompleteBundle = errors.New("review: bundle missing critical sections")
)

// Workbench tracks generation and review state for one session.
type Workbench struct {
	ctx        *session.Context
	transcript *session.Transcript

	phase     Phase
	bundle    rfp.Bundle
	hasBundle bool

	approved    map[string]struct{}
	regenCounts map[string]int
	scratch     map[string]string
	regenBusy   map[string]struct{}
}

// New builds a workbench over the shared session context and transcript.
func New(ctx *session.Context, transcript *session.Transcript) *Workbench {
	return &Workbench{
		ctx:         ctx,
		transcript:  transcript,
		phase:       PhaseReady,
		approved:    map[string]struct{}{},
		regenCounts: map[string]int{},
		scratch:     map[string]string{},
		regenBusy:   map[string]struct{}{},
	}
}

// Phase returns the current phase.
func (w *Workbench) Phase() Phase { return w.phase }

// HasBundle reports whether generation has succeeded this session.
func (w *Workbench) HasBundle() bool { return w.hasBundle }

// Bundle returns the current section bundle.
func (w *Workbench) Bundle() rfp.Bundle { return w.bundle }

// Generating reports whether a discovery or generation call is in
// flight; user submissions are rejected while it is.
func (w *Workbench) Generating() bool {
	return w.phase == PhaseDiscovering || w.phase == PhaseGenerating
}

// BeginDiscovery starts the hand-off. It appends the progress message
// and moves into PhaseDiscovering; the caller then issues the discovery
// call. Discovery always settles before generation is attempted.
func (w *Workbench) BeginDiscovery() error {
	if w.phase != PhaseReady {
		return ErrWrongPhase
	}
	w.transcript.AppendAssistant("Searching historical RFPs for relevant context...")
	w.phase = PhaseDiscovering
	return nil
}

// ApplyDiscovery merges the discovered metadata into the session
// context and advances to PhaseGenerating. The merge is additive: the
// session id and user-entered fields are never touched, and repeated
// discovery overwrites only its own keys.
func (w *Workbench) ApplyDiscovery(result api.DiscoveryResult) error {
	if w.phase != PhaseDiscovering {
		return ErrWrongPhase
	}
	w.ctx.Merge(map[string]string{
		session.KeyDiscoveryCount: strconv.Itoa(result.TotalFound),
		session.KeyDiscoveryQuery: result.SearchQuery,
	})
	w.transcript.AppendAssistant(fmt.Sprintf(
		"Found %d relevant historical RFPs! Using insights to generate your RFP...",
		result.TotalFound,
	))
	w.phase = PhaseGenerating
	return nil
}

// FailDiscovery aborts the hand-off: no generation is attempted and the
// workbench returns to PhaseReady for a retry.
func (w *Workbench) FailDiscovery(err error) {
	if w.phase != PhaseDiscovering {
		return
	}
	w.transcript.AppendAssistant(fmt.Sprintf("Error generating RFP: %v. Please try again.", err))
	w.phase = PhaseReady
}

// ApplyBundle installs a successful generation result: regeneration
// counters start at 1 for every critical section, the approval set
// starts empty, and a per-category summary is appended to the chat.
func (w *Workbench) ApplyBundle(bundle rfp.Bundle) error {
	if w.phase != PhaseGenerating {
		return ErrWrongPhase
	}
	if missing := bundle.MissingCritical(); len(missing) > 0 {
		w.transcript.AppendAssistant(fmt.Sprintf(
			"Error generating RFP: response is missing required sections (%s). Please try again.",
			strings.Join(missing, ", "),
		))
		w.phase = PhaseReady
		return ErrIncompleteBundle
	}
	w.bundle = bundle
	w.hasBundle = true
	w.approved = map[string]struct{}{}
	w.regenCounts = map[string]int{}
	w.scratch = map[string]string{}
	w.regenBusy = map[string]struct{}{}
	for _, name := range rfp.CriticalSections {
		w.regenCounts[name] = 1
	}
	w.transcript.AppendAssistant(fmt.Sprintf(
		"RFP Generated Successfully!\n\nSections Created:\n- %d Critical sections (need your approval)\n- %d RAG-generated sections (from historical RFPs)\n- %d Template sections (standard clauses)\n\nOpen the review screen to approve the critical sections.",
		len(bundle.New), len(bundle.Old), len(bundle.Rules),
	))
	w.phase = PhaseReviewing
	return nil
}

// FailGeneration surfaces a generation failure and returns to
// PhaseReady so the hand-off can be retried.
func (w *Workbench) FailGeneration(err error) {
	if w.phase != PhaseGenerating {
		return
	}
	w.transcript.AppendAssistant(fmt.Sprintf("Error generating RFP: %v. Please try again.", err))
	w.phase = PhaseReady
}

// Approve marks a critical section as approved. Approving an already
// approved section is a no-op.
func (w *Workbench) Approve(name string) error {
	if !rfp.IsCritical(name) {
		return ErrUnknownSection
	}
	w.approved[name] = struct{}{}
	return nil
}

// Unapprove reverts an approval; a no-op when the section was not
// approved.
func (w *Workbench) Unapprove(name string) error {
	if !rfp.IsCritical(name) {
		return ErrUnknownSection
	}
	delete(w.approved, name)
	return nil
}

// IsApproved reports whether the named section is approved.
func (w *Workbench) IsApproved(name string) bool {
	_, ok := w.approved[name]
	return ok
}

// ApprovedCount returns the approval set size.
func (w *Workbench) ApprovedCount() int { return len(w.approved) }

// FullyApproved reports whether every critical section is approved.
func (w *Workbench) FullyApproved() bool {
	return len(w.approved) == len(rfp.CriticalSections)
}

// RegenCount returns the current version of the named section.
func (w *Workbench) RegenCount(name string) int {
	return w.regenCounts[name]
}

// Regenerating reports whether the named section has a regeneration in
// flight.
func (w *Workbench) Regenerating(name string) bool {
	_, ok := w.regenBusy[name]
	return ok
}

// SetScratch stores the optional additional-context text for the next
// regeneration of the named section.
func (w *Workbench) SetScratch(name, text string) {
	w.scratch[name] = text
}

// Scratch returns the pending additional-context text.
func (w *Workbench) Scratch(name string) string {
	return w.scratch[name]
}

// BeginRegenerate validates the cap locally and returns the request the
// caller must send. The counter is not advanced until the call
// succeeds; a section at the cap is rejected without any network call.
func (w *Workbench) BeginRegenerate(name string) (api.RegenerateRequest, error) {
	if w.phase != PhaseReviewing {
		return api.RegenerateRequest{}, ErrWrongPhase
	}
	if !rfp.IsCritical(name) {
		return api.RegenerateRequest{}, ErrUnknownSection
	}
	if w.regenCounts[name] >= MaxRegenerations {
		return api.RegenerateRequest{}, ErrRegenLimit
	}
	if _, busy := w.regenBusy[name]; busy {
		return api.RegenerateRequest{}, ErrRegenInFlight
	}
	w.regenBusy[name] = struct{}{}
	return api.RegenerateRequest{
		SessionID:         w.ctx.SessionID(),
		SectionName:       name,
		Context:           w.ctx.Snapshot(),
		Iteration:         w.regenCounts[name] + 1,
		AdditionalContext: strings.TrimSpace(w.scratch[name]),
	}, nil
}

// ApplyRegenerated installs a successful regeneration: the counter
// advances by exactly one, the scratch text is cleared, and the
// section's content, assumptions, and evaluation are replaced.
func (w *Workbench) ApplyRegenerated(name string, updated rfp.Section) error {
	delete(w.regenBusy, name)
	if !rfp.IsCritical(name) {
		return ErrUnknownSection
	}
	updated.Name = name
	if !w.bundle.ReplaceNew(updated) {
		return ErrUnknownSection
	}
	w.regenCounts[name]++
	delete(w.scratch, name)
	return nil
}

// FailRegenerate releases the per-section busy indicator. The counter,
// the stored content, and the scratch text are left exactly as they
// were before the call.
func (w *Workbench) FailRegenerate(name string) {
	delete(w.regenBusy, name)
}

// BeginExport enforces the approval gate. It must be called before any
// export request is issued; an incomplete approval set refuses the
// export locally.
func (w *Workbench) BeginExport() error {
	if w.phase != PhaseReviewing {
		return ErrWrongPhase
	}
	if !w.FullyApproved() {
		return ErrNotFullyApproved
	}
	return nil
}

// Reset discards the bundle, approvals, counters, and scratch values.
// The shared context and transcript are reset by the intake controller.
func (w *Workbench) Reset() {
	w.phase = PhaseReady
	w.bundle = rfp.Bundle{}
	w.hasBundle = false
	w.approved = map[string]struct{}{}
	w.regenCounts = map[string]int{}
	w.scratch = map[string]string{}
	w.regenBusy = map[string]struct{}{}
}
