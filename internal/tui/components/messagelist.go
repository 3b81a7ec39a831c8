package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"askmygarmin/internal/render"
	"askmygarmin/internal/tui/theme"
)

// MessageRole identifies the sender of a chat message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
	RoleError     MessageRole = "error"
)

// ChatMessage represents a single message in the chat history.
type ChatMessage struct {
	Role       MessageRole
	Content    string
	Rendered   string // cached block render; empty means not yet rendered
	Annotation string // memory-stored note shown under completed responses
	Timestamp  time.Time
	Streaming  bool // true while this message's turn is in flight
}

// MessageListModel manages an ordered list of chat messages.
type MessageListModel struct {
	Messages []ChatMessage
	width    int
	renderer *render.Renderer
}

// NewMessageList creates an empty message list.
func NewMessageList() MessageListModel {
	return MessageListModel{}
}

// SetWidth updates the rendering width and clears cached renders.
func (m *MessageListModel) SetWidth(w int) {
	if w == m.width {
		return
	}
	m.width = w
	m.renderer = nil // force re-creation with new width
	for i := range m.Messages {
		m.Messages[i].Rendered = ""
	}
}

// Add appends a message.
func (m *MessageListModel) Add(msg ChatMessage) {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	m.Messages = append(m.Messages, msg)
}

// Clear removes all messages.
func (m *MessageListModel) Clear() {
	m.Messages = nil
}

// UpdateLast replaces the content of the last message (for streaming).
func (m *MessageListModel) UpdateLast(content string) {
	if len(m.Messages) == 0 {
		return
	}
	m.Messages[len(m.Messages)-1].Content = content
	m.Messages[len(m.Messages)-1].Rendered = "" // invalidate cache
}

// AnnotateLast sets the annotation on the last message.
func (m *MessageListModel) AnnotateLast(note string) {
	if len(m.Messages) == 0 {
		return
	}
	m.Messages[len(m.Messages)-1].Annotation = note
}

// RemoveLast drops the n most recent messages.
func (m *MessageListModel) RemoveLast(n int) {
	if n <= 0 {
		return
	}
	if n > len(m.Messages) {
		n = len(m.Messages)
	}
	m.Messages = m.Messages[:len(m.Messages)-n]
}

// RawLines returns the raw (un-rendered) message content split into lines.
func (m MessageListModel) RawLines() []string {
	var lines []string
	for _, msg := range m.Messages {
		lines = append(lines, strings.Split(msg.Content, "\n")...)
	}
	return lines
}

// View renders all messages as a single string.
func (m *MessageListModel) View() string {
	if len(m.Messages) == 0 {
		return theme.TextMuted.Render("  Ask anything about your Garmin data.")
	}

	contentWidth := ContentWidth(m.width)
	if m.renderer == nil {
		m.renderer = render.New(contentWidth)
	}

	var sb strings.Builder
	for i := range m.Messages {
		msg := &m.Messages[i]
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(m.renderMessage(msg))
	}
	return sb.String()
}

func (m *MessageListModel) renderMessage(msg *ChatMessage) string {
	label := roleLabel(msg.Role)
	header := label + " " + theme.Timestamp.Render(RelativeTime(msg.Timestamp))

	var body string
	switch msg.Role {
	case RoleAssistant:
		// Assistant text goes through the block parse + render pipeline,
		// recomputed from scratch on every content change.
		if msg.Rendered == "" {
			msg.Rendered = m.renderer.Text(msg.Content)
		}
		body = msg.Rendered
	case RoleError:
		body = theme.TextError.Render(msg.Content)
	default:
		body = msg.Content
	}

	out := header + "\n" + indent(body, 2)
	if msg.Annotation != "" {
		out += "\n" + indent(theme.Annotation.Render(theme.SymbolSuccess+" "+msg.Annotation), 2)
	}
	return out
}

func roleLabel(role MessageRole) string {
	switch role {
	case RoleUser:
		return theme.UserLabel.Render(theme.SymbolUser)
	case RoleAssistant:
		return theme.BotLabel.Render(theme.SymbolBot)
	case RoleSystem:
		return theme.SystemLabel.Render("System")
	case RoleError:
		return theme.ErrorLabel.Render(theme.SymbolError + " Error")
	default:
		return theme.TextMuted.Render(string(role))
	}
}

// RelativeTime returns a human-readable relative time string.
func RelativeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return t.Format("Jan 2 15:04")
	}
}

// ContentWidth calculates the content width respecting MaxContentWidth.
func ContentWidth(termWidth int) int {
	w := termWidth - 4
	if w > theme.MaxContentWidth {
		w = theme.MaxContentWidth
	}
	if w < 40 {
		w = 40
	}
	return w
}

// Divider renders a horizontal line at the given width.
func Divider(width int) string {
	return lipgloss.NewStyle().
		Foreground(theme.ColorBorder).
		Render(strings.Repeat("─", width))
}

func indent(s string, n int) string {
	pad := strings.Repeat(" ", n)
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = pad + l
		}
	}
	return strings.Join(lines, "\n")
}
