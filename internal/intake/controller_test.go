package intake

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/DipanjanlahaRPSG/RFP-Generator/internal/api"
	"github.com/DipanjanlahaRPSG/RFP-Generator/internal/session"
)

func newController() (*Controller, *session.Context, *session.Transcript) {
	ctx := session.NewContext()
	tr := session.NewTranscript()
	return New(ctx, tr), ctx, tr
}

func analyzed(questions ...string) api.AnalyzeResult {
	return api.AnalyzeResult{
		SessionID: "sess-1",
		RFPType:   "services",
		Entities:  map[string]string{"service": "UI/UX design", "duration": "6 months"},
		Questions: questions,
	}
}

func TestBlankSubmissionHasNoSideEffects(t *testing.T) {
	c, ctx, tr := newController()
	for _, input := range []string{"", "   ", "\n\t "} {
		if _, err := c.Submit(input); !errors.Is(err, ErrBlankInput) {
			t.Fatalf("input %q: expected ErrBlankInput, got %v", input, err)
		}
	}
	if tr.Len() != 0 {
		t.Fatalf("blank input appended %d message(s)", tr.Len())
	}
	if ctx.Len() != 0 {
		t.Fatalf("blank input touched the context")
	}
	if c.State() != StateIdle {
		t.Fatalf("blank input changed state to %s", c.State())
	}
}

func TestBlankAnswerHasNoSideEffects(t *testing.T) {
	c, _, tr := newController()
	mustSubmit(t, c, "I need an RFP")
	if err := c.ApplyAnalysis("I need an RFP", analyzed("What budget range?")); err != nil {
		t.Fatalf("apply analysis: %v", err)
	}
	before := tr.Len()
	if err := c.SubmitAnswer("   "); !errors.Is(err, ErrBlankInput) {
		t.Fatalf("expected ErrBlankInput, got %v", err)
	}
	if tr.Len() != before {
		t.Fatalf("blank answer appended a message")
	}
	if c.State() != StateAsking {
		t.Fatalf("blank answer changed state to %s", c.State())
	}
}

func TestSubmitRejectedWhileAnalyzing(t *testing.T) {
	c, _, _ := newController()
	mustSubmit(t, c, "first request")
	if _, err := c.Submit("second request"); !errors.Is(err, ErrNotAccepting) {
		t.Fatalf("expected ErrNotAccepting while analyzing, got %v", err)
	}
}

func TestAnalysisWithQuestionsStartsAsking(t *testing.T) {
	c, ctx, tr := newController()
	mustSubmit(t, c, "I need an RFP for hiring a UI/UX designer for 6 months")
	err := c.ApplyAnalysis("I need an RFP for hiring a UI/UX designer for 6 months",
		analyzed("What budget range?"))
	if err != nil {
		t.Fatalf("apply analysis: %v", err)
	}
	if c.State() != StateAsking {
		t.Fatalf("expected asking, got %s", c.State())
	}
	if got := ctx.SessionID(); got != "sess-1" {
		t.Fatalf("session id not recorded: %s", got)
	}
	if v, _ := ctx.Get(session.KeyRFPType); v != "services" {
		t.Fatalf("rfp type not recorded: %s", v)
	}
	if v, _ := ctx.Get("service"); v != "UI/UX design" {
		t.Fatalf("entity not merged: %s", v)
	}
	last, _ := tr.Last()
	if !strings.Contains(last.Content, "Question 1/1") {
		t.Fatalf("expected question 1/1 announcement, got %q", last.Content)
	}
	if !strings.Contains(last.Content, "What budget range?") {
		t.Fatalf("expected question text in announcement, got %q", last.Content)
	}
}

func TestAnalysisWithoutQuestionsIsReadyImmediately(t *testing.T) {
	c, _, _ := newController()
	mustSubmit(t, c, "simple request")
	if err := c.ApplyAnalysis("simple request", analyzed()); err != nil {
		t.Fatalf("apply analysis: %v", err)
	}
	if c.State() != StateReady {
		t.Fatalf("expected ready with zero questions, got %s", c.State())
	}
}

func TestFailedAnalysisReturnsToIdle(t *testing.T) {
	c, _, tr := newController()
	mustSubmit(t, c, "request")
	c.FailAnalysis(errors.New("backend down"))
	if c.State() != StateIdle {
		t.Fatalf("expected idle after failure, got %s", c.State())
	}
	last, _ := tr.Last()
	if !strings.Contains(last.Content, "backend down") {
		t.Fatalf("error message missing cause: %q", last.Content)
	}
	// Resubmission must be possible.
	if _, err := c.Submit("request again"); err != nil {
		t.Fatalf("resubmit after failure: %v", err)
	}
}

func TestExactlyNAnswersCompleteIntake(t *testing.T) {
	for _, n := range []int{1, 3, 5} {
		c, ctx, tr := newController()
		mustSubmit(t, c, "request")
		questions := make([]string, n)
		for i := range questions {
			questions[i] = fmt.Sprintf("question %d?", i+1)
		}
		if err := c.ApplyAnalysis("request", analyzed(questions...)); err != nil {
			t.Fatalf("n=%d apply analysis: %v", n, err)
		}
		for i := 0; i < n; i++ {
			if c.State() != StateAsking {
				t.Fatalf("n=%d: left asking after %d answers", n, i)
			}
			if err := c.SubmitAnswer(fmt.Sprintf("answer %d", i+1)); err != nil {
				t.Fatalf("n=%d answer %d: %v", n, i+1, err)
			}
			if i < n-1 {
				last, _ := tr.Last()
				want := fmt.Sprintf("Question %d/%d", i+2, n)
				if !strings.Contains(last.Content, want) {
					t.Fatalf("n=%d: expected %q, got %q", n, want, last.Content)
				}
			}
		}
		if c.State() != StateReady {
			t.Fatalf("n=%d: expected ready after %d answers, got %s", n, n, c.State())
		}

		answers, ok := ctx.Get(session.KeyAnswers)
		if !ok {
			t.Fatalf("n=%d: answers key missing", n)
		}
		pairs := strings.Split(answers, "\n\n")
		if len(pairs) != n {
			t.Fatalf("n=%d: expected %d Q/A pairs, got %d", n, n, len(pairs))
		}
		for i, pair := range pairs {
			want := fmt.Sprintf("Q: question %d?\nA: answer %d", i+1, i+1)
			if pair != want {
				t.Fatalf("n=%d pair %d:\nwant %q\ngot  %q", n, i, want, pair)
			}
		}
	}
}

func TestAnswersPairPositionally(t *testing.T) {
	c, _, _ := newController()
	mustSubmit(t, c, "request")
	if err := c.ApplyAnalysis("request", analyzed("q1?", "q2?")); err != nil {
		t.Fatalf("apply analysis: %v", err)
	}
	if err := c.SubmitAnswer("a1"); err != nil {
		t.Fatalf("answer 1: %v", err)
	}
	if len(c.Answers()) != c.Cursor() {
		t.Fatalf("answers length %d must match cursor %d", len(c.Answers()), c.Cursor())
	}
}

func TestResetClearsAllIntakeState(t *testing.T) {
	c, ctx, tr := newController()
	mustSubmit(t, c, "request")
	if err := c.ApplyAnalysis("request", analyzed("q1?", "q2?")); err != nil {
		t.Fatalf("apply analysis: %v", err)
	}
	if err := c.SubmitAnswer("a1"); err != nil {
		t.Fatalf("answer: %v", err)
	}

	c.Reset()
	if c.State() != StateIdle {
		t.Fatalf("expected idle after reset, got %s", c.State())
	}
	if len(c.Questions()) != 0 || c.Cursor() != 0 || len(c.Answers()) != 0 {
		t.Fatalf("intake state not cleared: %d questions, cursor %d, %d answers",
			len(c.Questions()), c.Cursor(), len(c.Answers()))
	}
	if tr.Len() != 0 {
		t.Fatalf("transcript not cleared: %d messages", tr.Len())
	}
	if ctx.Len() != 0 {
		t.Fatalf("context not cleared: %d keys", ctx.Len())
	}
}

func mustSubmit(t *testing.T, c *Controller, text string) {
	t.Helper()
	if _, err := c.Submit(text); err != nil {
		t.Fatalf("submit %q: %v", text, err)
	}
}
