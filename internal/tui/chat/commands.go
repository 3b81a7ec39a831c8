package chat

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"askmygarmin/internal/api"
	"askmygarmin/internal/domain"
)

// askCmd runs a streaming Ask turn in a background goroutine. Interim
// display updates are pushed through publish so they reach the update loop
// while the turn is still in flight; the final result comes back as the
// command's message. gen tags everything so stale turns are discarded.
func askCmd(ctx context.Context, backend Backend, p api.AskParams, gen uint64, publish func(tea.Msg)) tea.Cmd {
	return func() tea.Msg {
		result, err := backend.Ask(ctx, p, func(display string) {
			if publish != nil {
				publish(StreamDeltaMsg{Gen: gen, Display: display})
			}
		})
		return TurnDoneMsg{Gen: gen, Result: result, Err: err}
	}
}

func loginCmd(backend Backend, email, password string) tea.Cmd {
	return func() tea.Msg {
		result, err := backend.Login(context.Background(), email, password)
		return LoginDoneMsg{Email: email, Result: result, Err: err}
	}
}

func mfaCmd(backend Backend, sessionID, code, email string) tea.Cmd {
	return func() tea.Msg {
		err := backend.SubmitMFA(context.Background(), sessionID, code)
		return MFADoneMsg{Email: email, Err: err}
	}
}

func statusCmd(backend Backend, announce bool) tea.Cmd {
	return func() tea.Msg {
		status, err := backend.Status(context.Background())
		return StatusDoneMsg{Status: status, Announce: announce, Err: err}
	}
}

func logoutCmd(backend Backend) tea.Cmd {
	return func() tea.Msg {
		return LogoutDoneMsg{Err: backend.Logout(context.Background())}
	}
}

func loadHistoryCmd(store HistoryStore) tea.Cmd {
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		msgs, err := store.List(context.Background())
		return HistoryLoadedMsg{Messages: msgs, Err: err}
	}
}

// persistCmd writes completed turn messages to the history store. Failures
// are logged by the caller via the store itself; persistence is best effort
// and never blocks the UI.
func persistCmd(store HistoryStore, msgs ...domain.Message) tea.Cmd {
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		for _, msg := range msgs {
			_ = store.Append(context.Background(), msg)
		}
		return nil
	}
}

func clearHistoryCmd(store HistoryStore) tea.Cmd {
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		_ = store.Clear(context.Background())
		return nil
	}
}
