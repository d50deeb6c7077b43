// Package tui is the interactive terminal front end for the encryptor.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hfi/message-encryptor/internal/audit"
	"github.com/hfi/message-encryptor/internal/vault"
)

// Config contains terminal UI settings
type Config struct {
	TimeFormat string `yaml:"time_format"`
	AltScreen  bool   `yaml:"alt_screen"`
}

// DefaultConfig returns the default terminal UI configuration
func DefaultConfig() Config {
	return Config{
		TimeFormat: "2006-01-02 15:04:05",
		AltScreen:  true,
	}
}

// encryptedMsg and decryptedMsg carry an action's outcome back to Update.
// The result itself is read from the session snapshot.
type encryptedMsg struct{ err error }

type decryptedMsg struct{ err error }

// Model is the bubbletea model wrapping one session
type Model struct {
	ctx     context.Context
	session *vault.Session
	cfg     Config
	styles  Styles

	message textinput.Model
	code    textinput.Model

	mode  vault.Mode
	err   error
	width int
}

// New creates a model for session. Actions run under ctx.
func New(ctx context.Context, session *vault.Session, cfg Config) Model {
	if cfg.TimeFormat == "" {
		cfg.TimeFormat = DefaultConfig().TimeFormat
	}

	message := textinput.New()
	message.Placeholder = "Type a message"
	message.Prompt = "> "

	code := textinput.New()
	code.Placeholder = "ABCD"
	code.Prompt = "> "

	m := Model{
		ctx:     audit.WithRequest(ctx, audit.RequestInfo{Source: "tui"}),
		session: session,
		cfg:     cfg,
		styles:  DefaultStyles(),
		message: message,
		code:    code,
		mode:    session.Mode(),
	}

	snap := session.Snapshot()
	m.message.SetValue(snap.EncodeInput)
	m.code.SetValue(snap.LookupInput)
	m.focus()
	return m
}

// Run starts the program and blocks until the user quits or ctx ends
func Run(ctx context.Context, session *vault.Session, cfg Config) error {
	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if cfg.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	_, err := tea.NewProgram(New(ctx, session, cfg), opts...).Run()
	return err
}

func (m *Model) focus() {
	if m.mode == vault.ModeLookup {
		m.message.Blur()
		m.code.Focus()
		return
	}
	m.code.Blur()
	m.message.Focus()
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case encryptedMsg:
		m.err = nil
		if msg.err != nil {
			if !vault.IsSkipped(msg.err) {
				m.err = msg.err
			}
			return m, nil
		}
		m.message.SetValue("")
		return m, nil

	case decryptedMsg:
		m.err = nil
		if msg.err != nil && !vault.IsSkipped(msg.err) {
			m.err = msg.err
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "tab", "shift+tab":
			m.mode = m.session.Toggle(m.ctx)
			m.err = nil
			m.focus()
			return m, nil
		case "enter":
			if m.mode == vault.ModeLookup {
				return m, m.decrypt()
			}
			return m, m.encrypt()
		}
	}

	var cmd tea.Cmd
	if m.mode == vault.ModeLookup {
		m.code, cmd = m.code.Update(msg)
		if normalized := m.session.SetLookupInput(m.code.Value()); normalized != m.code.Value() {
			m.code.SetValue(normalized)
		}
		return m, cmd
	}

	m.message, cmd = m.message.Update(msg)
	m.session.SetEncodeInput(m.message.Value())
	return m, cmd
}

func (m Model) encrypt() tea.Cmd {
	ctx, session := m.ctx, m.session
	return func() tea.Msg {
		_, err := session.Encrypt(ctx)
		return encryptedMsg{err: err}
	}
}

func (m Model) decrypt() tea.Cmd {
	ctx, session := m.ctx, m.session
	return func() tea.Msg {
		_, _, err := session.Decrypt(ctx)
		return decryptedMsg{err: err}
	}
}

// View implements tea.Model
func (m Model) View() string {
	snap := m.session.Snapshot()
	s := m.styles
	if m.width > 4 {
		s.Panel = s.Panel.Width(m.width - 4)
	}

	var b strings.Builder
	b.WriteString(s.Title.Render("Message Encryptor"))
	b.WriteString("\n")

	encodeTab, lookupTab := s.ActiveTab, s.InactiveTab
	if m.mode == vault.ModeLookup {
		encodeTab, lookupTab = s.InactiveTab, s.ActiveTab
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		encodeTab.Render("Encrypt"),
		lookupTab.Render("Decrypt"),
	))
	b.WriteString("\n")

	var panel strings.Builder
	if m.mode == vault.ModeLookup {
		panel.WriteString(s.Label.Render("Enter a 4-letter code"))
		panel.WriteString("\n")
		panel.WriteString(m.code.View())
		if snap.LookupResult != "" {
			panel.WriteString("\n\n")
			panel.WriteString(s.Label.Render("Original message: "))
			panel.WriteString(s.Result.Render(snap.LookupResult))
		}
	} else {
		panel.WriteString(s.Label.Render("Message to encrypt"))
		panel.WriteString("\n")
		panel.WriteString(m.message.View())
		if snap.EncodeResult != "" {
			panel.WriteString("\n\n")
			panel.WriteString(s.Label.Render("Encrypted code: "))
			panel.WriteString(s.Code.Render(snap.EncodeResult))
		}
	}
	b.WriteString(s.Panel.Render(panel.String()))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(s.Error.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString(s.Panel.Render(historyView(s, snap.History, m.cfg.TimeFormat)))
	b.WriteString("\n")
	b.WriteString(s.Muted.Render("tab switch mode • enter run • esc quit"))
	b.WriteString("\n")
	return b.String()
}

func historyView(s Styles, history []vault.HistoryEntry, layout string) string {
	var b strings.Builder
	b.WriteString(s.Label.Render("Recent codes"))
	if len(history) == 0 {
		b.WriteString("\n")
		b.WriteString(s.Muted.Render("none yet"))
		return b.String()
	}
	for _, h := range history {
		fmt.Fprintf(&b, "\n%s  %s",
			s.Code.Render(h.Code),
			s.Muted.Render(h.Time().Local().Format(layout)))
	}
	return b.String()
}
