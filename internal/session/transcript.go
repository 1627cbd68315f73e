package session

import "github.com/DipanjanlahaRPSG/RFP-Generator/internal/rfp"

// Transcript is the ordered, append-only conversational history.
// Messages are never edited or reordered; the only bulk operation is a
// whole-sale reset.
type Transcript struct {
	messages []rfp.ChatMessage
}

// NewTranscript returns an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{}
}

// AppendUser records a user message.
func (t *Transcript) AppendUser(content string) {
	t.messages = append(t.messages, rfp.ChatMessage{Role: rfp.RoleUser, Content: content})
}

// AppendAssistant records an assistant message.
func (t *Transcript) AppendAssistant(content string) {
	t.messages = append(t.messages, rfp.ChatMessage{Role: rfp.RoleAssistant, Content: content})
}

// Messages returns the history in order. The returned slice is a copy.
func (t *Transcript) Messages() []rfp.ChatMessage {
	out := make([]rfp.ChatMessage, len(t.messages))
	copy(out, t.messages)
	return out
}

// Len reports the number of recorded messages.
func (t *Transcript) Len() int {
	return len(t.messages)
}

// Last returns the most recent message, if any.
func (t *Transcript) Last() (rfp.ChatMessage, bool) {
	if len(t.messages) == 0 {
		return rfp.ChatMessage{}, false
	}
	return t.messages[len(t.messages)-1], true
}

// Reset clears the history.
func (t *Transcript) Reset() {
	t.messages = nil
}
