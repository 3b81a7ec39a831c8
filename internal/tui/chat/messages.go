// Package chat implements the Bubble Tea chat UI for askmygarmin.
package chat

import (
	"askmygarmin/internal/api"
	"askmygarmin/internal/domain"
)

// StreamDeltaMsg carries the renderable text for an in-progress turn.
// Display is the full accumulated display text, not an increment.
// Gen identifies the turn generation so stale deltas can be discarded.
type StreamDeltaMsg struct {
	Gen     uint64
	Display string
}

// TurnDoneMsg signals that an Ask turn finished, however it ended.
type TurnDoneMsg struct {
	Gen    uint64
	Result *domain.TurnResult
	Err    error
}

// LoginDoneMsg carries the outcome of a login attempt.
type LoginDoneMsg struct {
	Email  string
	Result *api.LoginResult
	Err    error
}

// MFADoneMsg carries the outcome of an MFA code submission.
type MFADoneMsg struct {
	Email string
	Err   error
}

// StatusDoneMsg carries the backend's view of the Garmin connection.
type StatusDoneMsg struct {
	Status   *api.AuthStatus
	Announce bool // true when triggered by /status, false for silent probes
	Err      error
}

// LogoutDoneMsg signals a completed logout.
type LogoutDoneMsg struct {
	Err error
}

// HistoryLoadedMsg carries persisted messages restored at startup.
type HistoryLoadedMsg struct {
	Messages []domain.Message
	Err      error
}

// QuitMsg signals the program to exit.
type QuitMsg struct{}
