package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const minPasswordLength = 6

const (
	registerName = iota
	registerEmail
	registerPassword
	registerConfirm
)

// RegisterModel is the account creation screen.
type RegisterModel struct {
	auth Auth
	form Form
	busy bool
}

func NewRegisterModel(auth Auth) RegisterModel {
	return RegisterModel{
		auth: auth,
		form: NewForm("Sweet Shop - Create Account",
			FieldSpec{Label: "Full Name", Placeholder: "John Doe"},
			FieldSpec{Label: "Email", Placeholder: "your@email.com"},
			FieldSpec{Label: "Password", Placeholder: "at least 6 characters", Secret: true},
			FieldSpec{Label: "Confirm Password", Placeholder: "repeat password", Secret: true},
		),
	}
}

func (m RegisterModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m RegisterModel) Update(msg tea.Msg) (RegisterModel, tea.Cmd) {
	switch msg := msg.(type) {
	case authDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.form.SetError(errorText(msg.err, "Registration failed. Please try again."))
		}
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, func() tea.Msg { return showLoginMsg{} }
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

func (m RegisterModel) submit() (RegisterModel, tea.Cmd) {
	name := m.form.Value(registerName)
	email := m.form.Value(registerEmail)
	password := m.form.Raw(registerPassword)

	switch {
	case name == "" || email == "":
		m.form.SetError("Name and email are required")
		return m, nil
	case password != m.form.Raw(registerConfirm):
		m.form.SetError("Passwords don't match!")
		return m, nil
	case len(password) < minPasswordLength:
		m.form.SetError("Password must be at least 6 characters")
		return m, nil
	}

	m.form.SetError("")
	m.busy = true
	auth := m.auth
	return m, func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		res, err := auth.Register(ctx, name, email, password)
		if err != nil {
			return authDoneMsg{err: err}
		}
		return authDoneMsg{user: &res.User}
	}
}

func (m RegisterModel) View() string {
	var b strings.Builder
	b.WriteString(m.form.View())
	if m.busy {
		b.WriteString(blurredStyle.Render("Creating account...") + "\n")
	}
	b.WriteString(blurredStyle.Render("Tab to change fields, Enter to submit, Esc to go back to login"))
	return docStyle.Render(b.String())
}
