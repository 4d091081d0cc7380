package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	loginEmail = iota
	loginPassword
)

// LoginModel is the sign-in screen.
type LoginModel struct {
	auth   Auth
	form   Form
	notice string
	busy   bool
}

func NewLoginModel(auth Auth, notice string) LoginModel {
	return LoginModel{
		auth:   auth,
		notice: notice,
		form: NewForm("Sweet Shop - Login",
			FieldSpec{Label: "Email", Placeholder: "your@email.com"},
			FieldSpec{Label: "Password", Placeholder: "password", Secret: true},
		),
	}
}

func (m LoginModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m LoginModel) Update(msg tea.Msg) (LoginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case authDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.form.SetError(errorText(msg.err, ""))
		}
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlR {
			return m, func() tea.Msg { return showRegisterMsg{} }
		}
		if m.busy {
			return m, nil
		}
		if m.form.Submitted(msg) {
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.form, cmd = m.form.Update(msg)
	return m, cmd
}

func (m LoginModel) submit() (LoginModel, tea.Cmd) {
	email, password := m.form.Value(loginEmail), m.form.Raw(loginPassword)
	if email == "" || password == "" {
		m.form.SetError("Email and password are required")
		return m, nil
	}
	m.form.SetError("")
	m.notice = ""
	m.busy = true
	auth := m.auth
	return m, func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		res, err := auth.Login(ctx, email, password)
		if err != nil {
			return authDoneMsg{err: err}
		}
		return authDoneMsg{user: &res.User}
	}
}

func (m LoginModel) View() string {
	var b strings.Builder
	if m.notice != "" {
		b.WriteString(statusMessageStyle(m.notice) + "\n\n")
	}
	b.WriteString(m.form.View())
	if m.busy {
		b.WriteString(blurredStyle.Render("Logging in...") + "\n")
	}
	b.WriteString(blurredStyle.Render("Tab to change fields, Enter to submit, Ctrl+R to create an account, Ctrl+C to quit"))
	return docStyle.Render(b.String())
}
