package ui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/leaddesk/internal/crmerr"
)

// loginView is the PIN prompt shown while there is no valid session.
type loginView struct {
	input textinput.Model
	err   string
	busy  bool
}

func newLoginView() loginView {
	ti := textinput.New()
	ti.Placeholder = "PIN"
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'
	ti.CharLimit = 32
	ti.Width = 20
	ti.Focus()
	return loginView{input: ti}
}

func (m Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit
	case key.Matches(msg, m.keys.Confirm):
		if m.login.busy {
			return m, nil
		}
		code := strings.TrimSpace(m.login.input.Value())
		if code == "" {
			m.login.err = "Enter your PIN"
			return m, nil
		}
		m.login.busy = true
		m.login.err = ""
		return m, m.verifyCmd(code)
	}

	var cmd tea.Cmd
	m.login.input, cmd = m.login.input.Update(msg)
	return m, cmd
}

func (m Model) handleLogin(msg loginMsg) (tea.Model, tea.Cmd) {
	m.login.busy = false
	if msg.err != nil {
		if errors.Is(msg.err, crmerr.ErrUnauthorized) {
			m.login.err = "Incorrect PIN"
		} else {
			m.login.err = crmerr.UserMessage(msg.err)
		}
		m.login.input.SetValue("")
		return m, nil
	}
	m.login = newLoginView()
	m.view = parseView(m.prefs.StartView)
	return m.load(false, false)
}

func (m Model) renderLogin() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(styles.Logo.Render("leaddesk"))
	b.WriteString("\n\n")
	b.WriteString(styles.Text.Render("Enter your PIN to continue"))
	b.WriteString("\n\n")
	b.WriteString(m.login.input.View())
	b.WriteString("\n\n")
	switch {
	case m.login.busy:
		b.WriteString(styles.MutedText.Render("Checking..."))
	case m.login.err != "":
		b.WriteString(styles.DangerText.Render(m.login.err))
	default:
		b.WriteString(styles.FaintText.Render("enter to sign in · ctrl+c to quit"))
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(1, 3).
		Render(b.String())

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
