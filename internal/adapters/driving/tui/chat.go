// Package tui implements the interactive chat interface. It is a
// single-view Bubbletea program: a scrolling transcript, a message
// input and a context-mode selector, all driven through the guest
// service port.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/docchat-labs/docchat-cli/internal/adapters/driving/tui/messages"
	"github.com/docchat-labs/docchat-cli/internal/adapters/driving/tui/styles"
	"github.com/docchat-labs/docchat-cli/internal/core/domain"
	"github.com/docchat-labs/docchat-cli/internal/core/ports/driving"
)

// Model is the chat TUI model.
type Model struct {
	styles *styles.Styles

	input    textinput.Model
	viewport viewport.Model

	guestService driving.GuestService
	session      driving.SessionManager
	ctx          context.Context

	history []domain.ChatMessage
	mode    domain.ContextMode

	width   int
	height  int
	ready   bool
	waiting bool
	err     error
}

// NewModel creates the chat model. The transcript starts from the
// persisted history so reopening the TUI resumes the conversation.
func NewModel(s *styles.Styles, guestService driving.GuestService, session driving.SessionManager) *Model {
	if s == nil {
		s = styles.DefaultStyles()
	}

	input := textinput.New()
	input.Placeholder = "Ask about your documents..."
	input.Focus()
	input.CharLimit = 4096

	var history []domain.ChatMessage
	if guestService != nil {
		history = guestService.History()
	}

	return &Model{
		styles:       s,
		input:        input,
		viewport:     viewport.New(80, 20),
		guestService: guestService,
		session:      session,
		ctx:          context.Background(),
		history:      history,
		mode:         domain.ContextNone,
		width:        80,
		height:       24,
	}
}

// WithContext sets the context used for backend calls.
func (m *Model) WithContext(ctx context.Context) *Model {
	m.ctx = ctx
	return m
}

// Init initialises the model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetDimensions(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case messages.ResponseReceived:
		m.waiting = false
		m.err = nil
		m.history = append(m.history, msg.Message)
		m.refreshTranscript()
		m.viewport.GotoBottom()
		return m, nil

	case messages.SessionExpired:
		m.history = nil
		m.refreshTranscript()
		return m, tea.Quit

	case messages.ErrorOccurred:
		m.waiting = false
		m.err = msg.Err
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleKeyMsg processes keyboard input.
func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit

	case tea.KeyTab:
		m.cycleMode()
		return m, nil

	case tea.KeyEnter:
		message := strings.TrimSpace(m.input.Value())
		if message == "" || m.waiting {
			return m, nil
		}
		m.input.SetValue("")
		m.waiting = true
		m.err = nil
		return m, m.sendMessage(message)

	case tea.KeyUp, tea.KeyDown, tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// cycleMode rotates none -> all -> none. Selected-document context
// stays on the CLI where individual ids can be named.
func (m *Model) cycleMode() {
	if m.mode == domain.ContextNone {
		m.mode = domain.ContextAll
	} else {
		m.mode = domain.ContextNone
	}
}

// sendMessage requests an assistant response off the Update loop.
func (m *Model) sendMessage(message string) tea.Cmd {
	return func() tea.Msg {
		if m.session != nil && m.session.HandleVisible() {
			return messages.SessionExpired{}
		}

		msg, err := m.guestService.SendMessage(m.ctx, message, m.mode, nil)
		if err != nil {
			return messages.ErrorOccurred{Err: err}
		}
		return messages.ResponseReceived{Message: msg}
	}
}

// refreshTranscript rebuilds the viewport content from the history.
func (m *Model) refreshTranscript() {
	var b strings.Builder
	for i, msg := range m.history {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(m.styles.UserMessage.Render("You: " + msg.Message))
		b.WriteString("\n")
		b.WriteString(m.styles.AssistantMessage.Render(msg.Response))
		if len(msg.ContextDocuments) > 0 {
			names := make([]string, 0, len(msg.ContextDocuments))
			for _, src := range msg.ContextDocuments {
				names = append(names, src.Filename)
			}
			b.WriteString("\n")
			b.WriteString(m.styles.ContextTag.Render("context: " + strings.Join(names, ", ")))
		}
	}
	m.viewport.SetContent(b.String())
}

// View renders the chat interface.
func (m *Model) View() string {
	if !m.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 8)

	header := m.styles.Title.Render("docchat")
	banner := m.styles.Banner.Render(
		fmt.Sprintf("guest mode: local only, wiped after %s of inactivity", domain.GuestInactivityLimit))
	sections = append(sections, header, banner, "")

	sections = append(sections, m.viewport.View(), "")

	if m.err != nil {
		sections = append(sections, m.styles.Error.Render("Error: "+m.err.Error()), "")
	}
	if m.waiting {
		sections = append(sections, m.styles.Muted.Render("Thinking..."), "")
	}

	sections = append(sections, m.styles.InputField.Render(m.input.View()))

	help := fmt.Sprintf("enter send | tab context (%s) | esc quit", m.mode)
	sections = append(sections, m.styles.Help.Render(help))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the model dimensions.
func (m *Model) SetDimensions(width, height int) {
	m.width = width
	m.height = height
	m.ready = true

	m.input.Width = width - 6
	m.viewport.Width = width
	m.viewport.Height = height - 8 // Reserve space for header, input, help
	m.refreshTranscript()
	m.viewport.GotoBottom()
}

// Mode returns the active context mode.
func (m *Model) Mode() domain.ContextMode {
	return m.mode
}

// History returns the transcript held by the model.
func (m *Model) History() []domain.ChatMessage {
	return m.history
}

// Waiting reports whether a response is pending.
func (m *Model) Waiting() bool {
	return m.waiting
}

// Run starts the TUI and blocks until the user quits.
func Run(guestService driving.GuestService, session driving.SessionManager) error {
	model := NewModel(styles.DefaultStyles(), guestService, session)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run chat interface: %w", err)
	}
	return nil
}
