// Package tui is the interactive chat screen started by 'chatsim start'.
package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/longkey1/chatsim/internal/chatsim"
	"github.com/longkey1/chatsim/internal/chatsim/chat"
	"github.com/longkey1/chatsim/internal/chatsim/clock"
	"github.com/longkey1/chatsim/internal/chatsim/prompt"
	"github.com/longkey1/chatsim/internal/chatsim/responder"
	"github.com/longkey1/chatsim/internal/chatsim/scroll"
	"github.com/longkey1/chatsim/internal/chatsim/session"
	"go.uber.org/zap"
)

// unitsPerLine converts terminal rows into the display units the follow
// threshold is expressed in.
const unitsPerLine = 20

// chromeHeight is the number of rows used by everything except the log.
const chromeHeight = 4

// Options configures the screen. Zero fields take defaults.
type Options struct {
	FollowThreshold int
	ScrollDebounce  time.Duration
	PromptDirs      []string
	Clock           clock.Clock
	Logger          *zap.Logger
}

// Model is the bubbletea model of the chat screen.
type Model struct {
	service    *chat.Service
	bridge     *Bridge
	follower   *scroll.Follower
	promptDirs []string
	logger     *zap.Logger

	viewport viewport.Model
	input    textinput.Model
	width    int
	height   int
	status   string
	failed   bool
	quitting bool
}

// New returns the chat screen over service. bridge must be the one whose
// OnReply was wired into the service.
func New(service *chat.Service, bridge *Bridge, opts Options) *Model {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	ti := textinput.New()
	ti.Placeholder = "Type a message... (/name text applies a prompt template)"
	ti.CharLimit = 4000
	ti.Focus()

	m := &Model{
		service:    service,
		bridge:     bridge,
		promptDirs: opts.PromptDirs,
		logger:     opts.Logger,
		viewport:   viewport.New(80, 20),
		input:      ti,
		width:      80,
		height:     20 + chromeHeight,
	}
	m.follower = scroll.NewFollower(bridge.scrollToBottom, scroll.Config{
		Threshold: opts.FollowThreshold,
		Debounce:  opts.ScrollDebounce,
		Clock:     opts.Clock,
	})
	m.refresh()
	m.viewport.GotoBottom()
	return m
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.bridge.wait())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case replyMsg:
		m.onReply(responder.Reply(msg))
		return m, m.bridge.wait()

	case scrollBottomMsg:
		m.viewport.GotoBottom()
		return m, m.bridge.wait()

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		m.userScrolled()
		return m, cmd

	case tea.KeyMsg:
		return m.updateKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.quitting = true
		m.follower.Stop()
		return m, tea.Quit

	case "enter":
		m.send()
		return m, nil

	case "ctrl+n":
		s := m.service.CreateSession()
		m.setStatus(fmt.Sprintf("Created %s", s.Title))
		m.logChanged()
		return m, nil

	case "ctrl+x":
		id := m.service.ActiveSessionID()
		if id == "" {
			m.setError("No active session")
			return m, nil
		}
		m.service.DeleteSession(id)
		m.setStatus("Session deleted")
		m.logChanged()
		return m, nil

	case "tab":
		m.cycleSession(1)
		return m, nil

	case "shift+tab":
		m.cycleSession(-1)
		return m, nil

	case "ctrl+t":
		m.cycleModel()
		return m, nil

	case "pgup", "pgdown", "up", "down":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		m.userScrolled()
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// send appends the typed text to the active session. Blank input is ignored.
func (m *Model) send() {
	text := m.input.Value()
	if strings.TrimSpace(text) == "" {
		return
	}

	if strings.HasPrefix(text, "/") {
		name, rest, _ := strings.Cut(strings.TrimPrefix(text, "/"), " ")
		formatted, promptModel, err := prompt.FormatMessage(rest, name, m.promptDirs, nil)
		if err != nil {
			m.setError(fmt.Sprintf("Prompt %q: %v", name, err))
			return
		}
		if promptModel != nil {
			if err := m.service.SelectModel(*promptModel); err != nil {
				m.setError(err.Error())
				return
			}
		}
		text = formatted
	}

	_, _, err := m.service.Send(text)
	if errors.Is(err, session.ErrEmptyMessage) {
		return
	}
	if err != nil {
		m.setError(err.Error())
		return
	}
	m.input.Reset()
	m.setStatus("Waiting for reply...")
	m.logChanged()
}

func (m *Model) onReply(r responder.Reply) {
	if !r.Delivered {
		m.logger.Debug("reply discarded", zap.String("session_id", r.SessionID))
		return
	}
	if r.SessionID != m.service.ActiveSessionID() {
		if s, ok := m.service.Registry().Session(r.SessionID); ok {
			m.setStatus(fmt.Sprintf("New reply in %s", s.Title))
		}
		return
	}
	m.setStatus("")
	m.logChanged()
}

func (m *Model) cycleSession(step int) {
	sessions := m.service.Sessions()
	if len(sessions) == 0 {
		return
	}
	idx := 0
	active := m.service.ActiveSessionID()
	for i, s := range sessions {
		if s.ID == active {
			idx = (i + step + len(sessions)) % len(sessions)
			break
		}
	}
	if err := m.service.SelectSession(sessions[idx].ID); err != nil {
		m.setError(err.Error())
		return
	}
	m.setStatus("")
	m.logChanged()
}

func (m *Model) cycleModel() {
	models := m.service.Models()
	if len(models) == 0 {
		return
	}
	next := models[0].ID
	for i, info := range models {
		if info.IsDefault {
			next = models[(i+1)%len(models)].ID
			break
		}
	}
	if err := m.service.SelectModel(next); err != nil {
		m.setError(err.Error())
		return
	}
	m.setStatus(fmt.Sprintf("Model: %s", next))
}

// logChanged re-renders the log and lets the follower decide whether to
// reveal the newest message.
func (m *Model) logChanged() {
	m.refresh()
	m.follower.OnLogChanged()
}

func (m *Model) userScrolled() {
	m.follower.OnUserScroll(m.position())
}

func (m *Model) position() scroll.Position {
	return scroll.Position{
		ContentHeight: m.viewport.TotalLineCount() * unitsPerLine,
		Offset:        m.viewport.YOffset * unitsPerLine,
		ViewHeight:    m.viewport.Height * unitsPerLine,
	}
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = max(1, height-chromeHeight)
	m.input.Width = max(10, width-4)
	m.refresh()
	if m.follower.AutoFollow() {
		m.viewport.GotoBottom()
	}
}

func (m *Model) refresh() {
	m.viewport.SetContent(renderLog(m.service.Messages(), m.width))
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.failed = false
}

func (m *Model) setError(s string) {
	m.status = s
	m.failed = true
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter send • tab/shift+tab switch • ctrl+n new • ctrl+x delete • ctrl+t model • pgup/pgdown scroll • esc quit"))
	return b.String()
}

func (m *Model) renderHeader() string {
	parts := []string{titleStyle.Render("chatsim")}
	active := m.service.ActiveSessionID()
	for _, s := range m.service.Sessions() {
		if s.ID == active {
			parts = append(parts, activeTabStyle.Render(s.Title))
		} else {
			parts = append(parts, tabStyle.Render(s.Title))
		}
	}
	return lipgloss.NewStyle().MaxWidth(m.width).Render(lipgloss.JoinHorizontal(lipgloss.Top, parts...))
}

func (m *Model) renderStatus() string {
	left := fmt.Sprintf("model: %s", m.service.Model())
	if pending := m.service.Pending(); pending > 0 {
		left += fmt.Sprintf(" • %d pending", pending)
	}
	if !m.follower.AutoFollow() {
		left += " • scrolled"
	}
	status := m.status
	if m.failed {
		status = errorStyle.Render(status)
	}
	return statusBarStyle.Render(left) + " " + status
}

// renderLog draws the messages of one session.
func renderLog(msgs []chatsim.Message, width int) string {
	if len(msgs) == 0 {
		return dimStyle.Render("No messages yet. Type below to start a conversation.")
	}

	body := lipgloss.NewStyle().Width(max(10, width-2)).PaddingLeft(1)
	var b strings.Builder
	for i, msg := range msgs {
		if i > 0 {
			b.WriteString("\n")
		}
		role := userRoleStyle.Render(msg.Label())
		if msg.Sender == chatsim.SenderAssistant {
			role = assistantRoleStyle.Render(msg.Label())
		}
		b.WriteString(role + " " + dimStyle.Render(msg.Timestamp) + "\n")
		b.WriteString(body.Render(msg.Text) + "\n")
	}
	return b.String()
}
