package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"sweetshop/internal/model"
)

type state int

const (
	stateLogin state = iota
	stateRegister
	stateCatalog
)

// Model is the top level program model. It switches between the login,
// registration and catalogue screens.
type Model struct {
	auth     Auth
	sweets   Sweets
	state    state
	login    LoginModel
	register RegisterModel
	catalog  CatalogModel
	height   int
	quitting bool
}

// New starts on the catalogue when a stored session exists, on the login screen otherwise.
func New(auth Auth, sweets Sweets) Model {
	m := Model{auth: auth, sweets: sweets}
	if user := auth.CurrentUser(); user != nil && auth.IsAuthenticated() {
		m.state = stateCatalog
		m.catalog = NewCatalogModel(sweets, *user, 0)
		return m
	}
	m.state = stateLogin
	m.login = NewLoginModel(auth, "")
	return m
}

func (m Model) Init() tea.Cmd {
	if m.state == stateCatalog {
		return m.catalog.Init()
	}
	return m.login.Init()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.quitting = true
			return m, tea.Quit
		}

	case showRegisterMsg:
		m.state = stateRegister
		m.register = NewRegisterModel(m.auth)
		return m, m.register.Init()

	case showLoginMsg:
		m.state = stateLogin
		m.login = NewLoginModel(m.auth, "")
		return m, m.login.Init()

	case authDoneMsg:
		if msg.err == nil && msg.user != nil {
			return m.enterCatalog(*msg.user)
		}

	case logoutRequestedMsg:
		auth, notice := m.auth, msg.notice
		return m, func() tea.Msg {
			ctx, cancel := withTimeout()
			defer cancel()
			_ = auth.Logout(ctx)
			return sessionEndedMsg{notice: notice}
		}

	case sessionEndedMsg:
		m.state = stateLogin
		m.login = NewLoginModel(m.auth, msg.notice)
		return m, m.login.Init()
	}

	var cmd tea.Cmd
	switch m.state {
	case stateLogin:
		m.login, cmd = m.login.Update(msg)
	case stateRegister:
		m.register, cmd = m.register.Update(msg)
	case stateCatalog:
		m.catalog, cmd = m.catalog.Update(msg)
	}
	return m, cmd
}

func (m Model) enterCatalog(user model.UserSummary) (tea.Model, tea.Cmd) {
	m.state = stateCatalog
	m.catalog = NewCatalogModel(m.sweets, user, m.height)
	return m, m.catalog.Init()
}

func (m Model) View() string {
	if m.quitting {
		return "Bye!\n"
	}
	switch m.state {
	case stateLogin:
		return m.login.View()
	case stateRegister:
		return m.register.View()
	case stateCatalog:
		return m.catalog.View()
	}
	return "Unknown state"
}
