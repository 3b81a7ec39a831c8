package domain

import "time"

// Role constants for message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is a single entry in the conversation transcript. The assistant
// message for an in-flight turn is the only mutable one: its Content is
// replaced wholesale on every stream increment until the turn completes.
type Message struct {
	ID         string    `json:"id"`
	Role       string    `json:"role"`
	Content    string    `json:"content"`
	Annotation string    `json:"annotation,omitempty"` // memory-stored note, set after completion
	Timestamp  time.Time `json:"timestamp"`
}

// Transcript is the ordered conversation history for one session.
type Transcript struct {
	Messages []Message
}

// Append adds a message and returns its index.
func (t *Transcript) Append(msg Message) int {
	t.Messages = append(t.Messages, msg)
	return len(t.Messages) - 1
}

// TruncateTo drops every message at or after index n. Used to roll the
// transcript back to its pre-turn state when the session expires.
func (t *Transcript) TruncateTo(n int) {
	if n < 0 {
		n = 0
	}
	if n < len(t.Messages) {
		t.Messages = t.Messages[:n]
	}
}

// History returns the messages that accompany the next question:
// user/assistant exchanges only, system notices excluded.
func (t *Transcript) History() []Message {
	out := make([]Message, 0, len(t.Messages))
	for _, m := range t.Messages {
		if m.Role == RoleUser || m.Role == RoleAssistant {
			out = append(out, m)
		}
	}
	return out
}
