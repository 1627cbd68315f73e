// internal/rfp/sections.go
//
// Core document types shared by the intake, review, and API layers.
// Section catalogs mirror the backend's fixed RFP structure: critical
// sections are generated per request and must be approved one by one,
// historical sections are adapted from prior RFPs, and template
// sections are standard clauses that never change.

package rfp

import "strings"

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one entry in the conversational history.
type ChatMessage struct {
	Role    Role
	Content string
}

// Source describes one historical document consulted during generation.
type Source struct {
	DocName    string  `json:"docName"`
	Section    string  `json:"section"`
	Similarity float64 `json:"similarity"`
	Chunk      string  `json:"chunk,omitempty"`
}

// EvalScores carries the backend's own assessment of a generated section.
type EvalScores struct {
	Coherence        float64  `json:"coherence"`
	RAGConfidence    float64  `json:"ragConfidence"`
	FormatCompliance float64  `json:"formatCompliance"`
	Sources          []Source `json:"sources,omitempty"`
	LatencyMs        int      `json:"latencyMs,omitempty"`
	TokenCount       int      `json:"tokenCount,omitempty"`
}

// Section is one unit of document content. Name is unique within its
// category.
type Section struct {
	Name        string      `json:"name"`
	Content     string      `json:"content"`
	Assumptions []string    `json:"assumptions,omitempty"`
	Eval        *EvalScores `json:"aiEval,omitempty"`
}

// Bundle groups the three section categories returned by one generation
// call. Categories never mix; ordering within each category follows the
// backend response.
type Bundle struct {
	New   []Section `json:"new"`
	Old   []Section `json:"old"`
	Rules []Section `json:"rules"`
}

// CriticalSections is the fixed set of generated-critical section names.
// Every bundle must contain all of them, and export requires each one to
// be individually approved.
var CriticalSections = []string{
	"Scope of Work",
	"Deliverables",
	"Technical Requirements",
	"Evaluation Criteria",
	"Timeline & Milestones",
	"Budget & Payment Terms",
}

// HistoricalSections lists the retrieved-historical section names.
var HistoricalSections = []string{
	"Background & Context",
	"Vendor Qualifications",
	"Proposal Format",
	"Submission Instructions",
	"Contract Terms",
	"Insurance Requirements",
	"Warranty & Support",
	"References Required",
}

// TemplateSections lists the fixed standard clauses.
var TemplateSections = []string{
	"General Terms & Conditions",
	"Safety & Compliance",
	"Intellectual Property",
	"Confidentiality",
	"Termination Clause",
	"Dispute Resolution",
	"Force Majeure",
	"Indemnification",
	"Liability Limitations",
	"Governing Law",
	"Amendment Procedures",
}

// IsCritical reports whether name belongs to the critical catalog.
func IsCritical(name string) bool {
	for _, s := range CriticalSections {
		if s == name {
			return true
		}
	}
	return false
}

// FindSection returns the section with the given name from the slice.
func FindSection(sections []Section, name string) (Section, bool) {
	for _, s := range sections {
		if s.Name == name {
			return s, true
		}
	}
	return Section{}, false
}

// MissingCritical returns the critical names absent from the bundle's
// New category, in catalog order.
func (b Bundle) MissingCritical() []string {
	var missing []string
	for _, name := range CriticalSections {
		if _, ok := FindSection(b.New, name); !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// Lookup finds a section by name across all three categories.
func (b Bundle) Lookup(name string) (Section, bool) {
	for _, group := range [][]Section{b.New, b.Old, b.Rules} {
		if s, ok := FindSection(group, name); ok {
			return s, true
		}
	}
	return Section{}, false
}

// ReplaceNew swaps the named critical section's content in place and
// reports whether the name was found.
func (b *Bundle) ReplaceNew(updated Section) bool {
	for i := range b.New {
		if b.New[i].Name == updated.Name {
			b.New[i] = updated
			return true
		}
	}
	return false
}

// TitleFromRequest derives a short document title from the user's first
// message. Long requests are truncated on a word boundary.
func TitleFromRequest(request string) string {
	title := strings.TrimSpace(request)
	if title == "" {
		return "RFP"
	}
	const maxLen = 60
	if len(title) > maxLen {
		cut := strings.LastIndex(title[:maxLen], " ")
		if cut <= 0 {
			cut = maxLen
		}
		title = title[:cut]
	}
	return title
}
