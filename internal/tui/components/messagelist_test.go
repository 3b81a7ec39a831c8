package components

import (
	"strings"
	"testing"
	"time"
)

func TestMessageListAddAndRemoveLast(t *testing.T) {
	var m MessageListModel
	m.SetWidth(80)
	m.Add(ChatMessage{Role: RoleUser, Content: "question"})
	m.Add(ChatMessage{Role: RoleAssistant, Content: "answer", Streaming: true})

	m.RemoveLast(2)
	if len(m.Messages) != 0 {
		t.Errorf("messages = %d, want 0 after rollback", len(m.Messages))
	}

	// Removing more than exists must not panic.
	m.RemoveLast(5)
	if len(m.Messages) != 0 {
		t.Errorf("messages = %d", len(m.Messages))
	}
}

func TestMessageListUpdateLastInvalidatesCache(t *testing.T) {
	var m MessageListModel
	m.SetWidth(80)
	m.Add(ChatMessage{Role: RoleAssistant, Content: "partial", Streaming: true})

	first := m.View()
	if !strings.Contains(first, "partial") {
		t.Fatalf("view missing content:\n%s", first)
	}

	m.UpdateLast("partial answer grew")
	second := m.View()
	if !strings.Contains(second, "partial answer grew") {
		t.Errorf("view missing updated content:\n%s", second)
	}
}

func TestMessageListAnnotateLast(t *testing.T) {
	var m MessageListModel
	m.SetWidth(80)
	m.Add(ChatMessage{Role: RoleAssistant, Content: "done"})
	m.AnnotateLast("[saved: goal]")

	if !strings.Contains(m.View(), "[saved: goal]") {
		t.Error("annotation not rendered")
	}
}

func TestRelativeTime(t *testing.T) {
	now := time.Now()
	tests := []struct {
		t    time.Time
		want string
	}{
		{now.Add(-5 * time.Second), "just now"},
		{now.Add(-3 * time.Minute), "3m ago"},
		{now.Add(-2 * time.Hour), "2h ago"},
	}
	for _, tt := range tests {
		if got := RelativeTime(tt.t); got != tt.want {
			t.Errorf("RelativeTime(%v) = %q, want %q", tt.t, got, tt.want)
		}
	}
}
