// internal/intake/controller.go
//
// The intake controller owns the turn-by-turn conversation that builds
// a session context from the user's first message and their answers to
// the backend's clarifying questions. It is a plain state machine: the
// caller performs the actual network call and feeds the outcome back in
// through ApplyAnalysis or FailAnalysis, so every transition happens
// synchronously inside one action handler.

package intake

import (
	"errors"
	"fmt"
	"strings"

	"github.com/DipanjanlahaRPSG/RFP-Generator/internal/api"
	"github.com/DipanjanlahaRPSG/RFP-Generator/internal/session"
)

// State is the intake machine's position in the conversation.
type State int

const (
	// StateIdle means no analysis has happened yet; the next submission
	// is treated as the original request.
	StateIdle State = iota
	// StateAnalyzing means the first analysis call is in flight.
	StateAnalyzing
	// StateAsking means clarifying questions remain unanswered.
	StateAsking
	// StateReady means the context is assembled and generation may begin.
	StateReady
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAnalyzing:
		return "analyzing"
	case StateAsking:
		return "asking"
	case StateReady:
		return "ready"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

var (
	// ErrBlankInput rejects empty or whitespace-only submissions. No
	// chat message is appended and no state changes.
	ErrBlankInput = errors.New("intake: blank input")
	// ErrNotAccepting rejects a submission that arrives in the wrong
	// state, e.g. while an analysis call is already in flight.
	ErrNotAccepting = errors.New("intake: not accepting input")
)

// Controller sequences the intake conversation.
type Controller struct {
	state      State
	ctx        *session.Context
	transcript *session.Transcript

	questions []string
	cursor    int
	answers   []string
}

// New builds a controller over the shared session context and chat
// transcript.
func New(ctx *session.Context, transcript *session.Transcript) *Controller {
	return &Controller{state: StateIdle, ctx: ctx, transcript: transcript}
}

// State returns the current machine state.
func (c *Controller) State() State { return c.state }

// Context returns the shared session context.
func (c *Controller) Context() *session.Context { return c.ctx }

// Questions returns the pending question queue.
func (c *Controller) Questions() []string { return c.questions }

// Cursor returns the index of the next unanswered question.
func (c *Controller) Cursor() int { return c.cursor }

// Answers returns the answers collected so far.
func (c *Controller) Answers() []string { return c.answers }

// Submit records the user's original free-text request and moves the
// machine into Analyzing. The returned string is the trimmed prompt the
// caller must send to the analysis endpoint.
func (c *Controller) Submit(text string) (string, error) {
	prompt := strings.TrimSpace(text)
	if prompt == "" {
		return "", ErrBlankInput
	}
	if c.state != StateIdle {
		return "", ErrNotAccepting
	}
	c.transcript.AppendUser(prompt)
	c.state = StateAnalyzing
	return prompt, nil
}

// ApplyAnalysis consumes a successful analysis response: it records the
// session id, the original request, the classified type, and every
// extracted entity, then either starts asking questions or completes
// intake outright when none were returned.
func (c *Controller) ApplyAnalysis(prompt string, result api.AnalyzeResult) error {
	if c.state != StateAnalyzing {
		return ErrNotAccepting
	}
	if err := c.ctx.SetSessionID(result.SessionID); err != nil {
		return err
	}
	c.ctx.Set(session.KeyOriginalRequest, prompt)
	c.ctx.Set(session.KeyRFPType, result.RFPType)
	c.ctx.Merge(result.Entities)

	if len(result.Questions) == 0 {
		c.state = StateReady
		return nil
	}

	c.questions = append([]string(nil), result.Questions...)
	c.cursor = 1
	c.answers = nil
	total := len(c.questions)
	plural := ""
	if total > 1 {
		plural = "s"
	}
	c.transcript.AppendAssistant(fmt.Sprintf(
		"Thanks! I have %d quick question%s to help create a better RFP.\n\nQuestion 1/%d: %s",
		total, plural, total, c.questions[0],
	))
	c.state = StateAsking
	return nil
}

// FailAnalysis surfaces an analysis failure and returns to Idle so the
// user can resubmit. The user's message stays in the transcript.
func (c *Controller) FailAnalysis(err error) {
	if c.state != StateAnalyzing {
		return
	}
	c.transcript.AppendAssistant(fmt.Sprintf("Error analyzing request: %v. Please try again.", err))
	c.state = StateIdle
}

// SubmitAnswer records the answer to the current question. When every
// question is answered the Q:/A: transcript is merged into the context
// under the answers key and the machine becomes Ready.
func (c *Controller) SubmitAnswer(text string) error {
	answer := strings.TrimSpace(text)
	if answer == "" {
		return ErrBlankInput
	}
	if c.state != StateAsking {
		return ErrNotAccepting
	}
	c.transcript.AppendUser(answer)
	c.answers = append(c.answers, answer)

	total := len(c.questions)
	if c.cursor < total {
		c.transcript.AppendAssistant(fmt.Sprintf("Question %d/%d: %s", c.cursor+1, total, c.questions[c.cursor]))
		c.cursor++
		return nil
	}

	pairs := make([]string, total)
	for i, q := range c.questions {
		pairs[i] = fmt.Sprintf("Q: %s\nA: %s", q, c.answers[i])
	}
	c.ctx.Set(session.KeyAnswers, strings.Join(pairs, "\n\n"))
	c.state = StateReady
	return nil
}

// Reset clears the transcript, the question queue, the collected
// answers, and the session context, returning to Idle from any state.
func (c *Controller) Reset() {
	c.transcript.Reset()
	c.ctx.Reset()
	c.questions = nil
	c.cursor = 0
	c.answers = nil
	c.state = StateIdle
}
