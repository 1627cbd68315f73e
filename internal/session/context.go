// internal/session/context.go
//
// The session context is the one object shared between the intake phase
// and generation. It is append-only while questions are being asked and
// read-mostly afterwards. Rather than an untyped map, the required keys
// get named accessors and everything else lives in an open extension
// area keyed by string.

package session

import (
	"fmt"
	"sort"
)

// Well-known context keys. Extracted entities use their own free-form
// keys alongside these.
const (
	KeySessionID       = "sessionId"
	KeyOriginalRequest = "originalRequest"
	KeyRFPType         = "rfpType"
	KeyAnswers         = "answers"
	KeyDiscoveryCount  = "rag_discovery_count"
	KeyDiscoveryQuery  = "rag_discovery_query"
)

// Context holds the accumulated key-value state for one session.
type Context struct {
	values map[string]string
}

// NewContext returns an empty session context.
func NewContext() *Context {
	return &Context{values: map[string]string{}}
}

// SetSessionID records the backend-issued session identifier. It may be
// set exactly once; a second call with a different value is an error so
// a stray response can never hijack an existing session.
func (c *Context) SetSessionID(id string) error {
	if id == "" {
		return fmt.Errorf("session: empty session id")
	}
	if existing, ok := c.values[KeySessionID]; ok && existing != id {
		return fmt.Errorf("session: session id already set to %s", existing)
	}
	c.values[KeySessionID] = id
	return nil
}

// SessionID returns the backend session identifier, empty before the
// first successful analysis.
func (c *Context) SessionID() string {
	return c.values[KeySessionID]
}

// Set stores an extension value. The session id must go through
// SetSessionID.
func (c *Context) Set(key, value string) {
	if key == KeySessionID {
		return
	}
	c.values[key] = value
}

// Get returns the value for key and whether it is present.
func (c *Context) Get(key string) (string, bool) {
	v, ok := c.values[key]
	return v, ok
}

// Merge copies every entry of values into the context. The session id
// is never overwritten through a merge; discovery keys replace any
// earlier value (discovery runs at most once per hand-off, latest wins).
func (c *Context) Merge(values map[string]string) {
	for key, value := range values {
		if key == KeySessionID {
			continue
		}
		c.values[key] = value
	}
}

// Len reports how many keys are set.
func (c *Context) Len() int {
	return len(c.values)
}

// Snapshot returns a copy of the full key set for outbound requests.
func (c *Context) Snapshot() map[string]string {
	out := make(map[string]string, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

// Keys returns the present keys in sorted order. Used by the debug
// panel and tests.
func (c *Context) Keys() []string {
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Reset drops every key, returning the context to its initial state.
func (c *Context) Reset() {
	c.values = map[string]string{}
}
