package domain

// MemoryEvent is the out-of-band control event the backend appends to a
// response stream when it has stored a durable coaching memory. It is parsed
// out of the raw stream and must never reach the display text.
type MemoryEvent struct {
	Action  string `json:"action"`
	Key     string `json:"key"`
	Content string `json:"content"`
	ID      string `json:"id"`
	Updated bool   `json:"updated"`
}
