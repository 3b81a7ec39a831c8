package chat

import (
	"context"
	"io"
	"log/slog"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"askmygarmin/internal/api"
	"askmygarmin/internal/domain"
	"askmygarmin/internal/tui/components"
)

type fakeBackend struct {
	authenticated bool
}

func (f *fakeBackend) Ask(_ context.Context, p api.AskParams, _ func(string)) (*domain.TurnResult, error) {
	return &domain.TurnResult{Outcome: domain.TurnCompleted, Content: "ok"}, nil
}

func (f *fakeBackend) Login(context.Context, string, string) (*api.LoginResult, error) {
	return &api.LoginResult{}, nil
}

func (f *fakeBackend) SubmitMFA(context.Context, string, string) error { return nil }

func (f *fakeBackend) Status(context.Context) (*api.AuthStatus, error) {
	return &api.AuthStatus{Connected: f.authenticated}, nil
}

func (f *fakeBackend) Logout(context.Context) error { return nil }

func (f *fakeBackend) Authenticated() bool { return f.authenticated }

func newTestModel(t *testing.T) ChatModel {
	t.Helper()
	m := NewChatModel(ChatModelDeps{
		Backend: &fakeBackend{authenticated: true},
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Mode:    "coach",
	})
	sized, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return sized.(ChatModel)
}

func submit(t *testing.T, m ChatModel, question string) ChatModel {
	t.Helper()
	updated, cmd := m.Update(components.InputSubmitMsg{Value: question})
	if cmd == nil {
		t.Fatal("submit should produce a command")
	}
	return updated.(ChatModel)
}

func TestSubmitAppendsOptimisticMessages(t *testing.T) {
	m := submit(t, newTestModel(t), "how did I sleep?")

	if !m.waiting {
		t.Error("model should be waiting")
	}
	if len(m.transcript.Messages) != 1 {
		t.Fatalf("transcript len = %d, want 1", len(m.transcript.Messages))
	}
	if m.transcript.Messages[0].Content != "how did I sleep?" {
		t.Errorf("transcript = %+v", m.transcript.Messages)
	}
	// Chat view shows the user message plus the streaming placeholder.
	if got := len(m.chatView.Messages.Messages); got != 2 {
		t.Errorf("chat view messages = %d, want 2", got)
	}
}

func TestSessionExpiredRollsBackAndCarriesQuestion(t *testing.T) {
	m := submit(t, newTestModel(t), "how far did I run?")

	updated, _ := m.Update(TurnDoneMsg{
		Gen: m.gen,
		Result: &domain.TurnResult{
			Outcome:  domain.TurnSessionExpired,
			Question: "how far did I run?",
			Err:      domain.ErrSessionExpired,
		},
	})
	m = updated.(ChatModel)

	if len(m.transcript.Messages) != 0 {
		t.Errorf("transcript = %+v, want rolled back", m.transcript.Messages)
	}
	if m.pendingAsk != "how far did I run?" {
		t.Errorf("pendingAsk = %q, want carried question", m.pendingAsk)
	}
	if m.waiting {
		t.Error("turn must be settled")
	}
	// The optimistic pair is gone; only the expiry notice remains.
	for _, msg := range m.chatView.Messages.Messages {
		if msg.Role == components.RoleUser {
			t.Errorf("user message still visible after rollback: %+v", msg)
		}
	}
}

func TestLoginReplaysPendingQuestion(t *testing.T) {
	m := submit(t, newTestModel(t), "how far did I run?")

	updated, _ := m.Update(TurnDoneMsg{
		Gen: m.gen,
		Result: &domain.TurnResult{
			Outcome:  domain.TurnSessionExpired,
			Question: "how far did I run?",
		},
	})
	m = updated.(ChatModel)

	updated, cmd := m.Update(LoginDoneMsg{Email: "runner@example.com", Result: &api.LoginResult{}})
	m = updated.(ChatModel)

	if cmd == nil {
		t.Fatal("reconnect should replay the carried question")
	}
	if m.pendingAsk != "" {
		t.Errorf("pendingAsk = %q, want consumed", m.pendingAsk)
	}
	if !m.waiting {
		t.Error("replay should start a new turn")
	}
	if len(m.transcript.Messages) != 1 || m.transcript.Messages[0].Content != "how far did I run?" {
		t.Errorf("transcript = %+v", m.transcript.Messages)
	}
}

func TestErroredTurnKeepsUserMessage(t *testing.T) {
	m := submit(t, newTestModel(t), "question")

	updated, _ := m.Update(TurnDoneMsg{
		Gen: m.gen,
		Result: &domain.TurnResult{
			Outcome: domain.TurnErrored,
			Content: "Error: backend error: boom",
		},
	})
	m = updated.(ChatModel)

	// No rollback: the question stays, the error joins the transcript.
	if len(m.transcript.Messages) != 2 {
		t.Fatalf("transcript len = %d, want 2", len(m.transcript.Messages))
	}
	if m.transcript.Messages[1].Content != "Error: backend error: boom" {
		t.Errorf("transcript = %+v", m.transcript.Messages)
	}
	var sawUser, sawError bool
	for _, msg := range m.chatView.Messages.Messages {
		switch msg.Role {
		case components.RoleUser:
			sawUser = true
		case components.RoleError:
			sawError = true
		}
	}
	if !sawUser || !sawError {
		t.Errorf("chat view roles: user=%v error=%v", sawUser, sawError)
	}
}

func TestCompletedTurnAnnotatesMemory(t *testing.T) {
	m := submit(t, newTestModel(t), "remember my goal")

	updated, _ := m.Update(TurnDoneMsg{
		Gen: m.gen,
		Result: &domain.TurnResult{
			Outcome: domain.TurnCompleted,
			Content: "Saved it.",
			Memory:  &domain.MemoryEvent{Action: "saved", Key: "goal", Content: "sub-4 marathon"},
		},
	})
	m = updated.(ChatModel)

	if len(m.transcript.Messages) != 2 {
		t.Fatalf("transcript len = %d, want 2", len(m.transcript.Messages))
	}
	assistant := m.transcript.Messages[1]
	if assistant.Content != "Saved it." {
		t.Errorf("assistant content = %q", assistant.Content)
	}
	if assistant.Annotation == "" {
		t.Error("assistant message should carry the memory annotation")
	}
}

func TestStaleTurnResultIsDiscarded(t *testing.T) {
	m := submit(t, newTestModel(t), "question")

	updated, _ := m.Update(TurnDoneMsg{
		Gen:    m.gen - 1,
		Result: &domain.TurnResult{Outcome: domain.TurnCompleted, Content: "stale"},
	})
	m = updated.(ChatModel)

	if !m.waiting {
		t.Error("stale result must not settle the live turn")
	}
	if len(m.transcript.Messages) != 1 {
		t.Errorf("transcript len = %d, want untouched", len(m.transcript.Messages))
	}
}

func TestSlashCommandsDoNotReachBackend(t *testing.T) {
	m := newTestModel(t)

	updated, _ := m.Update(components.InputSubmitMsg{Value: "/mode brief"})
	m = updated.(ChatModel)

	if m.mode != "brief" {
		t.Errorf("mode = %q, want brief", m.mode)
	}
	if len(m.transcript.Messages) != 0 {
		t.Errorf("slash command must not enter the transcript: %+v", m.transcript.Messages)
	}
}

func TestParseSlashCommand(t *testing.T) {
	cmd, args, ok := components.ParseSlashCommand("/login runner@example.com hunter2")
	if !ok || cmd != "/login" || len(args) != 2 {
		t.Errorf("got (%q, %v, %v)", cmd, args, ok)
	}
	if _, _, ok := components.ParseSlashCommand("not a command"); ok {
		t.Error("plain text must not parse as a command")
	}
}
