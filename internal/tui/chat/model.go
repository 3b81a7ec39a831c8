package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"askmygarmin/internal/api"
	"askmygarmin/internal/domain"
	"askmygarmin/internal/history"
	"askmygarmin/internal/sentinel"
	"askmygarmin/internal/tui/components"
	"askmygarmin/internal/tui/theme"
)

// Backend is the slice of the API client the chat UI depends on.
type Backend interface {
	Ask(ctx context.Context, p api.AskParams, onUpdate func(display string)) (*domain.TurnResult, error)
	Login(ctx context.Context, email, password string) (*api.LoginResult, error)
	SubmitMFA(ctx context.Context, sessionID, code string) error
	Status(ctx context.Context) (*api.AuthStatus, error)
	Logout(ctx context.Context) error
	Authenticated() bool
}

// HistoryStore persists the transcript across sessions.
type HistoryStore interface {
	Append(ctx context.Context, msg domain.Message) error
	List(ctx context.Context) ([]domain.Message, error)
	Clear(ctx context.Context) error
}

// ChatModelDeps are dependencies injected into the chat model.
type ChatModelDeps struct {
	Backend Backend
	History HistoryStore
	Logger  *slog.Logger
	Mode    string        // response mode flag: "coach" or "brief"
	Publish func(tea.Msg) // pushes messages into the running program
}

// ChatModel is the root Bubble Tea model for the chat TUI.
type ChatModel struct {
	deps ChatModelDeps

	// Sub-models
	chatView  components.ChatViewModel
	input     components.InputAreaModel
	statusBar components.StatusBarModel
	spinner   spinner.Model

	// Conversation state. checkpoint marks the transcript length before
	// the in-flight turn so an expired session can roll it back.
	transcript domain.Transcript
	checkpoint int

	// Turn lifecycle: gen is incremented on every submitted question.
	// Stale StreamDeltaMsg / TurnDoneMsg with an older gen are discarded.
	gen      uint64
	cancelFn context.CancelFunc
	waiting  bool

	// Auth state carried between messages.
	mfaSession   string // pending MFA session ID, empty unless MFA in progress
	loginEmail   string // email of the login attempt in flight
	pendingAsk   string // question to replay once the user reconnects
	mode         string
	width        int
	height       int
	scrollMode   bool // input blurred, j/k scroll the chat view
	quitting     bool
}

// NewChatModel creates the root chat model.
func NewChatModel(deps ChatModelDeps) ChatModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(theme.ColorInfo)

	mode := deps.Mode
	if mode == "" {
		mode = "coach"
	}

	sb := components.NewStatusBar()
	sb.Hints = defaultHints()
	sb.Mode = mode

	return ChatModel{
		deps:      deps,
		chatView:  components.NewChatView(),
		input:     components.NewInputArea(),
		statusBar: sb,
		spinner:   s,
		mode:      mode,
	}
}

// Init loads persisted history and probes the backend connection.
func (m ChatModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		loadHistoryCmd(m.deps.History),
		statusCmd(m.deps.Backend, false),
	)
}

// Update handles all incoming messages.
func (m ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case components.InputSubmitMsg:
		return m.handleSubmit(msg.Value)

	case StreamDeltaMsg:
		if msg.Gen != m.gen {
			return m, nil
		}
		m.chatView.UpdateLastMessage(msg.Display)
		return m, nil

	case TurnDoneMsg:
		if msg.Gen != m.gen {
			return m, nil
		}
		return m.handleTurnDone(msg)

	case LoginDoneMsg:
		return m.handleLoginDone(msg)

	case MFADoneMsg:
		return m.handleMFADone(msg)

	case StatusDoneMsg:
		return m.handleStatusDone(msg)

	case LogoutDoneMsg:
		if msg.Err != nil {
			m.addError(fmt.Sprintf("Logout failed: %v", msg.Err))
			return m, nil
		}
		m.statusBar.Email = ""
		m.addSystem("Disconnected from Garmin.")
		return m, nil

	case HistoryLoadedMsg:
		return m.handleHistoryLoaded(msg)

	case QuitMsg:
		m.quitting = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	// Update sub-models (mouse events never reach the input).
	if !m.waiting {
		if _, isMouse := msg.(tea.MouseMsg); !isMouse {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	var cmd tea.Cmd
	m.chatView, cmd = m.chatView.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// View renders the entire chat UI.
func (m ChatModel) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}
	if m.width == 0 {
		return "  Initializing..."
	}

	inputView := m.input.View()
	if m.waiting {
		spinnerStr := m.spinner.View() + " " + m.statusBar.Extra
		inputView = lipgloss.NewStyle().Faint(true).Render("> waiting for response...") +
			"\n" + spinnerStr
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.chatView.View(),
		components.Divider(m.width),
		inputView,
		m.statusBar.View(),
	)
}

// layout recalculates sizes for all sub-models.
func (m *ChatModel) layout() {
	inputH := 3
	statusH := 1
	dividerH := 1
	contentH := m.height - inputH - statusH - dividerH
	if contentH < 5 {
		contentH = 5
	}

	m.statusBar.SetWidth(m.width)
	m.chatView.SetSize(m.width, contentH)
	m.input.SetWidth(m.width)
}

// handleKey processes keyboard input.
func (m ChatModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.waiting {
			m.cancelTurn("Request cancelled.")
			return m, nil
		}
		m.quitting = true
		return m, tea.Quit

	case tea.KeyCtrlL:
		return m.handleSlashCommand("/clear", nil)

	case tea.KeyEsc:
		if !m.scrollMode && !m.waiting {
			m.scrollMode = true
			m.input.SetEnabled(false)
			m.statusBar.Hints = scrollHints()
			return m, nil
		}

	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.chatView, cmd = m.chatView.Update(msg)
		return m, cmd
	}

	// Scroll mode: j/k move, g/G jump, i returns to the input.
	if m.scrollMode {
		switch msg.String() {
		case "j", "down":
			m.chatView.Viewport.LineDown(3)
		case "k", "up":
			m.chatView.Viewport.LineUp(3)
		case "g":
			m.chatView.Viewport.GotoTop()
		case "G":
			m.chatView.Viewport.GotoBottom()
		case "i":
			m.scrollMode = false
			m.input.SetEnabled(true)
			m.statusBar.Hints = defaultHints()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleSubmit processes user input submission.
func (m ChatModel) handleSubmit(value string) (tea.Model, tea.Cmd) {
	if cmd, args, ok := components.ParseSlashCommand(value); ok {
		return m.handleSlashCommand(cmd, args)
	}
	if m.waiting {
		return m, nil
	}
	return m.submitQuestion(value)
}

// submitQuestion starts a streaming turn for the given question. The user
// message and an empty assistant placeholder go into the chat view up front;
// a session expiry removes both again.
func (m ChatModel) submitQuestion(question string) (tea.Model, tea.Cmd) {
	// Snapshot history before the new question: the backend receives the
	// question as its own field, not as part of the history.
	hist := m.transcript.History()

	m.checkpoint = m.transcript.Append(domain.Message{
		ID:        history.NewID(time.Now()),
		Role:      domain.RoleUser,
		Content:   question,
		Timestamp: time.Now(),
	})

	m.chatView.AddMessage(components.ChatMessage{
		Role:      components.RoleUser,
		Content:   question,
		Timestamp: time.Now(),
	})
	m.chatView.AddMessage(components.ChatMessage{
		Role:      components.RoleAssistant,
		Timestamp: time.Now(),
		Streaming: true,
	})

	m.gen++
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelFn = cancel

	m.waiting = true
	m.scrollMode = true
	m.input.SetEnabled(false)
	m.statusBar.Extra = theme.SymbolSpinner + " Thinking..."

	params := api.AskParams{
		Question: question,
		History:  hist,
		Mode:     m.mode,
	}
	return m, askCmd(ctx, m.deps.Backend, params, m.gen, m.deps.Publish)
}

// handleTurnDone settles an in-flight turn according to its outcome.
func (m ChatModel) handleTurnDone(msg TurnDoneMsg) (tea.Model, tea.Cmd) {
	m.resetTurnState()

	if msg.Err != nil {
		// Only the in-flight guard surfaces as a plain error.
		m.chatView.RemoveLast(1)
		m.addSystem("A request is already in progress.")
		return m, nil
	}

	result := msg.Result
	switch result.Outcome {
	case domain.TurnCompleted:
		return m.handleTurnCompleted(result)

	case domain.TurnAuthRequired:
		m.rollbackTurn()
		m.pendingAsk = result.Question
		m.addSystem("Not connected to Garmin. Use /login <email> <password>; your question will be sent once connected.")
		return m, nil

	case domain.TurnSessionExpired:
		m.rollbackTurn()
		m.pendingAsk = result.Question
		m.statusBar.Email = ""
		m.addSystem("Your Garmin session expired. Use /login <email> <password> to reconnect; your question will be resent.")
		return m, nil

	default: // TurnErrored
		m.chatView.RemoveLast(1)
		m.chatView.AddMessage(components.ChatMessage{
			Role:      components.RoleError,
			Content:   result.Content,
			Timestamp: time.Now(),
		})
		// The failed exchange stays in the transcript so the backend sees
		// the full conversation on the next turn.
		m.transcript.Append(domain.Message{
			ID:        history.NewID(time.Now()),
			Role:      domain.RoleAssistant,
			Content:   result.Content,
			Timestamp: time.Now(),
		})
		return m, nil
	}
}

func (m ChatModel) handleTurnCompleted(result *domain.TurnResult) (tea.Model, tea.Cmd) {
	m.chatView.UpdateLastMessage(result.Content)

	var annotation string
	if result.Memory != nil {
		annotation = sentinel.Annotate(*result.Memory)
		m.chatView.AnnotateLastMessage(annotation)
	}

	assistant := domain.Message{
		ID:         history.NewID(time.Now()),
		Role:       domain.RoleAssistant,
		Content:    result.Content,
		Annotation: annotation,
		Timestamp:  time.Now(),
	}
	m.transcript.Append(assistant)

	user := m.transcript.Messages[m.checkpoint]
	return m, persistCmd(m.deps.History, user, assistant)
}

// rollbackTurn removes the optimistic user message and the assistant
// placeholder from both the chat view and the transcript.
func (m *ChatModel) rollbackTurn() {
	m.chatView.RemoveLast(2)
	m.transcript.TruncateTo(m.checkpoint)
}

func (m *ChatModel) resetTurnState() {
	m.waiting = false
	m.scrollMode = false
	m.cancelFn = nil
	m.input.SetEnabled(true)
	m.statusBar.Extra = ""
	m.statusBar.Hints = defaultHints()
}

func (m ChatModel) handleLoginDone(msg LoginDoneMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.addError(fmt.Sprintf("Login failed: %v", msg.Err))
		return m, nil
	}
	if msg.Result.MFARequired {
		m.mfaSession = msg.Result.MFASessionID
		m.loginEmail = msg.Email
		m.addSystem("Two-factor code required. Enter it with /mfa <code>.")
		return m, nil
	}
	return m.handleConnected(msg.Email)
}

func (m ChatModel) handleMFADone(msg MFADoneMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.addError(fmt.Sprintf("MFA verification failed: %v", msg.Err))
		return m, nil
	}
	m.mfaSession = ""
	return m.handleConnected(msg.Email)
}

// handleConnected finishes a successful login and replays a question that
// was rolled back by an expired session.
func (m ChatModel) handleConnected(email string) (tea.Model, tea.Cmd) {
	m.statusBar.Email = email
	m.addSystem(theme.SymbolSuccess + " Connected to Garmin as " + email + ".")

	if m.pendingAsk != "" {
		question := m.pendingAsk
		m.pendingAsk = ""
		return m.submitQuestion(question)
	}
	return m, nil
}

func (m ChatModel) handleStatusDone(msg StatusDoneMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		if msg.Announce {
			m.addError(fmt.Sprintf("Status check failed: %v", msg.Err))
		}
		return m, nil
	}
	if msg.Status.Connected {
		m.statusBar.Email = msg.Status.Email
	} else {
		m.statusBar.Email = ""
	}
	if msg.Announce {
		if msg.Status.Connected {
			m.addSystem("Connected to Garmin as " + msg.Status.Email + ".")
		} else {
			m.addSystem("Not connected. Use /login <email> <password>.")
		}
	}
	return m, nil
}

func (m ChatModel) handleHistoryLoaded(msg HistoryLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		if m.deps.Logger != nil {
			m.deps.Logger.Warn("history load failed", "error", msg.Err)
		}
		return m, nil
	}
	for _, stored := range msg.Messages {
		m.transcript.Append(stored)
		role := components.RoleAssistant
		if stored.Role == domain.RoleUser {
			role = components.RoleUser
		}
		m.chatView.AddMessage(components.ChatMessage{
			Role:       role,
			Content:    stored.Content,
			Annotation: stored.Annotation,
			Timestamp:  stored.Timestamp,
		})
	}
	return m, nil
}

// handleSlashCommand processes a slash command.
func (m ChatModel) handleSlashCommand(cmd string, args []string) (tea.Model, tea.Cmd) {
	switch cmd {
	case "/help":
		m.addSystem(helpText)
		return m, nil

	case "/quit", "/exit":
		m.quitting = true
		return m, tea.Quit

	case "/clear":
		m.chatView.Clear()
		m.transcript.TruncateTo(0)
		m.pendingAsk = ""
		m.addSystem(theme.SymbolSuccess + " Conversation cleared.")
		return m, clearHistoryCmd(m.deps.History)

	case "/login":
		if len(args) < 2 {
			m.addSystem("Usage: /login <email> <password>")
			return m, nil
		}
		m.loginEmail = args[0]
		m.addSystem("Logging in to Garmin...")
		return m, loginCmd(m.deps.Backend, args[0], strings.Join(args[1:], " "))

	case "/mfa":
		if m.mfaSession == "" {
			m.addSystem("No MFA challenge pending. Start with /login.")
			return m, nil
		}
		if len(args) != 1 {
			m.addSystem("Usage: /mfa <code>")
			return m, nil
		}
		return m, mfaCmd(m.deps.Backend, m.mfaSession, args[0], m.loginEmail)

	case "/logout":
		return m, logoutCmd(m.deps.Backend)

	case "/status":
		return m, statusCmd(m.deps.Backend, true)

	case "/mode":
		if len(args) == 0 {
			m.addSystem("Response mode: " + m.mode + ". Use /mode coach or /mode brief.")
			return m, nil
		}
		switch args[0] {
		case "coach", "brief":
			m.mode = args[0]
			m.statusBar.Mode = m.mode
			m.addSystem("Response mode set to " + m.mode + ".")
		default:
			m.addSystem("Unknown mode: " + args[0] + ". Valid modes: coach, brief.")
		}
		return m, nil

	default:
		m.addSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
		return m, nil
	}
}

// cancelTurn aborts the in-flight turn and rolls back the optimistic
// messages, the same way an expired session would.
func (m *ChatModel) cancelTurn(reason string) {
	if m.cancelFn != nil {
		m.cancelFn()
	}
	m.gen++ // stale StreamDeltaMsg / TurnDoneMsg are ignored
	m.resetTurnState()
	m.rollbackTurn()
	m.addSystem(reason)
}

func (m *ChatModel) addSystem(content string) {
	m.chatView.AddMessage(components.ChatMessage{
		Role:      components.RoleSystem,
		Content:   content,
		Timestamp: time.Now(),
	})
}

func (m *ChatModel) addError(content string) {
	m.chatView.AddMessage(components.ChatMessage{
		Role:      components.RoleError,
		Content:   content,
		Timestamp: time.Now(),
	})
}

const helpText = `Available commands:
  /help             - Show this help
  /login <e> <pw>   - Connect your Garmin account
  /mfa <code>       - Complete two-factor login
  /logout           - Disconnect from Garmin
  /status           - Show connection status
  /mode [m]         - Show or set response mode (coach, brief)
  /clear            - Clear conversation
  /quit             - Exit

Keybindings:
  Enter      - Send message
  Alt+Enter  - New line
  Esc        - Scroll mode (j/k move, i to return)
  Ctrl+L     - Clear conversation
  Ctrl+C     - Cancel/Quit
  PgUp/PgDn  - Scroll chat`

func defaultHints() []components.KeyHint {
	return []components.KeyHint{
		{Key: "Enter", Desc: "Send"},
		{Key: "Esc", Desc: "Scroll"},
		{Key: "?", Desc: "/help"},
		{Key: "Ctrl+C", Desc: "Quit"},
	}
}

func scrollHints() []components.KeyHint {
	return []components.KeyHint{
		{Key: "j/k", Desc: "Scroll"},
		{Key: "g/G", Desc: "Top/bottom"},
		{Key: "i", Desc: "Input"},
	}
}
