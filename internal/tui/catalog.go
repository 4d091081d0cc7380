package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"sweetshop/internal/client"
	"sweetshop/internal/model"
)

type catalogMode int

const (
	modeBrowse catalogMode = iota
	modeSearch
	modePurchase
	modeRestock
	modeDelete
	modeEdit
)

const (
	searchName = iota
	searchCategory
	searchMinPrice
	searchMaxPrice
)

const (
	sweetName = iota
	sweetCategory
	sweetPrice
	sweetQuantity
	sweetDescription
)

// CatalogModel lists sweets and drives purchases and, for admins, inventory changes.
type CatalogModel struct {
	sweets  Sweets
	user    model.UserSummary
	table   table.Model
	items   []model.Sweet
	mode    catalogMode
	filter  *client.SearchParams
	search  Form
	editor  Form
	editing string
	prompt  Prompt
	loading bool
	status  string
	err     string
	height  int
}

func NewCatalogModel(sweets Sweets, user model.UserSummary, height int) CatalogModel {
	columns := []table.Column{
		{Title: "Name", Width: 24},
		{Title: "Category", Width: 16},
		{Title: "Price", Width: 10},
		{Title: "Stock", Width: 10},
		{Title: "Description", Width: 36},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(tableHeight(height)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return CatalogModel{sweets: sweets, user: user, table: t, height: height, loading: true}
}

func tableHeight(height int) int {
	if height <= 0 {
		return 12
	}
	if h := height - 12; h > 3 {
		return h
	}
	return 3
}

func (m CatalogModel) isAdmin() bool {
	return m.user.Role == model.RoleAdmin
}

func (m CatalogModel) Init() tea.Cmd {
	return m.load()
}

// load fetches the full catalogue, or the active search.
func (m CatalogModel) load() tea.Cmd {
	sweets, filter := m.sweets, m.filter
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		var (
			items []model.Sweet
			err   error
		)
		if filter != nil {
			items, err = sweets.Search(ctx, *filter)
		} else {
			items, err = sweets.GetAll(ctx)
		}
		return sweetsLoadedMsg{sweets: items, err: err}
	}
}

func (m CatalogModel) selected() (model.Sweet, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.items) {
		return model.Sweet{}, false
	}
	return m.items[i], true
}

func (m CatalogModel) Update(msg tea.Msg) (CatalogModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		m.table.SetHeight(tableHeight(msg.Height))
		return m, nil

	case sweetsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			if unauthorized(msg.err) {
				return m, endSession()
			}
			m.err = errorText(msg.err, "Failed to load sweets")
			return m, nil
		}
		m.setItems(msg.sweets)
		return m, nil

	case actionDoneMsg:
		if msg.err != nil {
			if unauthorized(msg.err) {
				return m, endSession()
			}
			m.status = ""
			m.err = errorText(msg.err, "")
			return m, nil
		}
		m.err = ""
		m.status = msg.status
		m.loading = true
		return m, m.load()

	case tea.KeyMsg:
		switch m.mode {
		case modeSearch:
			return m.updateSearch(msg)
		case modeEdit:
			return m.updateEditor(msg)
		case modePurchase, modeRestock:
			return m.updatePrompt(msg)
		case modeDelete:
			return m.updateDelete(msg)
		}
		return m.updateBrowse(msg)
	}

	var cmd tea.Cmd
	switch m.mode {
	case modeSearch:
		m.search, cmd = m.search.Update(msg)
	case modeEdit:
		m.editor, cmd = m.editor.Update(msg)
	case modePurchase, modeRestock:
		m.prompt, cmd = m.prompt.Update(msg)
	}
	return m, cmd
}

func (m *CatalogModel) setItems(items []model.Sweet) {
	m.items = items
	rows := make([]table.Row, 0, len(items))
	for _, s := range items {
		stock := strconv.Itoa(s.Quantity)
		if s.Quantity == 0 {
			stock = "sold out"
		}
		rows = append(rows, table.Row{s.Name, s.Category, "$" + s.Price.StringFixed(2), stock, s.Description})
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

func (m CatalogModel) updateBrowse(msg tea.KeyMsg) (CatalogModel, tea.Cmd) {
	m.err = ""
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "l":
		return m, func() tea.Msg { return logoutRequestedMsg{notice: "Logged out successfully"} }
	case "r":
		m.status = ""
		m.loading = true
		return m, m.load()
	case "/":
		m.mode = modeSearch
		m.search = newSearchForm(m.filter)
		return m, nil
	case "c":
		if m.filter == nil {
			return m, nil
		}
		m.filter = nil
		m.status = ""
		m.loading = true
		return m, m.load()
	case "p", "enter":
		sweet, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.mode = modePurchase
		m.prompt = newQuantityPrompt(fmt.Sprintf("How many %s would you like to buy? (%d in stock)", sweet.Name, sweet.Quantity), "1")
		return m, nil
	case "n", "e", "d", "s":
		if !m.isAdmin() {
			m.err = "Admin access required"
			return m, nil
		}
		return m.startAdminAction(msg.String())
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m CatalogModel) startAdminAction(key string) (CatalogModel, tea.Cmd) {
	if key == "n" {
		m.mode = modeEdit
		m.editing = ""
		m.editor = newSweetForm("Add Sweet", model.Sweet{})
		return m, nil
	}

	sweet, ok := m.selected()
	if !ok {
		return m, nil
	}
	switch key {
	case "e":
		m.mode = modeEdit
		m.editing = sweet.ID.String()
		m.editor = newSweetForm("Edit "+sweet.Name, sweet)
	case "d":
		m.mode = modeDelete
	case "s":
		m.mode = modeRestock
		m.prompt = newQuantityPrompt(fmt.Sprintf("Restock %s by how many?", sweet.Name), "")
	}
	return m, nil
}

func (m CatalogModel) updateSearch(msg tea.KeyMsg) (CatalogModel, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		m.mode = modeBrowse
		return m, nil
	}
	if !m.search.Submitted(msg) {
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}

	params := client.SearchParams{
		Name:     m.search.Value(searchName),
		Category: m.search.Value(searchCategory),
	}
	var ok bool
	if params.MinPrice, ok = parseOptionalFloat(m.search.Value(searchMinPrice)); !ok {
		m.search.SetError("Min price must be a number")
		return m, nil
	}
	if params.MaxPrice, ok = parseOptionalFloat(m.search.Value(searchMaxPrice)); !ok {
		m.search.SetError("Max price must be a number")
		return m, nil
	}

	m.mode = modeBrowse
	m.status = ""
	m.loading = true
	if params == (client.SearchParams{}) {
		m.filter = nil
	} else {
		m.filter = &params
	}
	return m, m.load()
}

func (m CatalogModel) updateEditor(msg tea.KeyMsg) (CatalogModel, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		m.mode = modeBrowse
		return m, nil
	}
	if !m.editor.Submitted(msg) {
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		return m, cmd
	}

	name := m.editor.Value(sweetName)
	category := m.editor.Value(sweetCategory)
	description := m.editor.Value(sweetDescription)
	price, err := strconv.ParseFloat(m.editor.Value(sweetPrice), 64)
	if err != nil {
		m.editor.SetError("Price must be a number")
		return m, nil
	}
	quantity, err := strconv.Atoi(m.editor.Value(sweetQuantity))
	if err != nil {
		m.editor.SetError("Quantity must be a whole number")
		return m, nil
	}
	if name == "" || category == "" {
		m.editor.SetError("Name and category are required")
		return m, nil
	}

	m.mode = modeBrowse
	sweets, id := m.sweets, m.editing
	if id == "" {
		in := client.SweetInput{Name: name, Category: category, Price: price, Quantity: quantity, Description: description}
		return m, func() tea.Msg {
			ctx, cancel := withTimeout()
			defer cancel()
			_, err := sweets.Create(ctx, in)
			return actionDoneMsg{status: "Sweet added successfully", err: err}
		}
	}

	in := client.SweetUpdate{Name: &name, Category: &category, Price: &price, Quantity: &quantity, Description: &description}
	return m, func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		_, err := sweets.Update(ctx, id, in)
		return actionDoneMsg{status: "Sweet updated successfully", err: err}
	}
}

func (m CatalogModel) updatePrompt(msg tea.KeyMsg) (CatalogModel, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeBrowse
		return m, nil
	case tea.KeyEnter:
	default:
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		return m, cmd
	}

	qty, ok := m.prompt.Quantity()
	if !ok {
		return m, nil
	}
	sweet, ok := m.selected()
	if !ok {
		m.mode = modeBrowse
		return m, nil
	}

	purchase := m.mode == modePurchase
	m.mode = modeBrowse
	sweets, id := m.sweets, sweet.ID.String()
	return m, func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		if purchase {
			_, text, err := sweets.Purchase(ctx, id, qty)
			return actionDoneMsg{status: fallback(text, "Purchase successful"), err: err}
		}
		_, text, err := sweets.Restock(ctx, id, qty)
		return actionDoneMsg{status: fallback(text, "Sweet restocked successfully"), err: err}
	}
}

func (m CatalogModel) updateDelete(msg tea.KeyMsg) (CatalogModel, tea.Cmd) {
	m.mode = modeBrowse
	if msg.String() != "y" {
		return m, nil
	}
	sweet, ok := m.selected()
	if !ok {
		return m, nil
	}
	sweets, id := m.sweets, sweet.ID.String()
	return m, func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		return actionDoneMsg{status: "Sweet deleted successfully", err: sweets.Delete(ctx, id)}
	}
}

func (m CatalogModel) View() string {
	var b strings.Builder

	header := titleStyle.Render("Sweet Shop") + " " + blurredStyle.Render("Welcome, "+m.user.Name)
	if m.isAdmin() {
		header += " " + badgeStyle.Render("admin")
	}
	b.WriteString(header + "\n\n")

	switch m.mode {
	case modeSearch:
		b.WriteString(m.search.View())
		b.WriteString(blurredStyle.Render("Leave fields empty to skip them. Enter to search, Esc to cancel"))
		return docStyle.Render(b.String())
	case modeEdit:
		b.WriteString(m.editor.View())
		b.WriteString(blurredStyle.Render("Tab to change fields, Enter to save, Esc to cancel"))
		return docStyle.Render(b.String())
	}

	if m.filter != nil {
		b.WriteString(labelStyle.Render("Search: "+describeFilter(*m.filter)) + "\n")
	}
	b.WriteString(m.table.View() + "\n\n")
	if m.loading {
		b.WriteString(blurredStyle.Render("Loading sweets...") + "\n")
	} else if len(m.items) == 0 {
		b.WriteString(blurredStyle.Render("No sweets found") + "\n")
	}

	switch m.mode {
	case modePurchase, modeRestock:
		b.WriteString(m.prompt.View() + "\n")
	case modeDelete:
		if sweet, ok := m.selected(); ok {
			b.WriteString(errorMessageStyle(fmt.Sprintf("Delete %s? (y/N)", sweet.Name)) + "\n")
		}
	default:
		help := "up/down move, p buy, / search, c clear search, r refresh, l logout, q quit"
		if m.isAdmin() {
			help += "\nn new, e edit, d delete, s restock"
		}
		b.WriteString(blurredStyle.Render(help) + "\n")
	}

	if m.status != "" {
		b.WriteString("\n" + statusMessageStyle(m.status))
	}
	if m.err != "" {
		b.WriteString("\n" + errorMessageStyle(m.err))
	}
	return docStyle.Render(b.String())
}

func newSearchForm(current *client.SearchParams) Form {
	var p client.SearchParams
	if current != nil {
		p = *current
	}
	return NewForm("Search Sweets",
		FieldSpec{Label: "Name", Placeholder: "any", Value: p.Name},
		FieldSpec{Label: "Category", Placeholder: "any", Value: p.Category},
		FieldSpec{Label: "Min price", Placeholder: "any", Value: formatOptionalFloat(p.MinPrice)},
		FieldSpec{Label: "Max price", Placeholder: "any", Value: formatOptionalFloat(p.MaxPrice)},
	)
}

func newSweetForm(title string, s model.Sweet) Form {
	price, quantity := "", ""
	if s.Name != "" {
		price = s.Price.String()
		quantity = strconv.Itoa(s.Quantity)
	}
	return NewForm(title,
		FieldSpec{Label: "Name", Placeholder: "Chocolate Bar", Value: s.Name},
		FieldSpec{Label: "Category", Placeholder: "Chocolate", Value: s.Category},
		FieldSpec{Label: "Price", Placeholder: "2.50", Value: price},
		FieldSpec{Label: "Quantity", Placeholder: "100", Value: quantity},
		FieldSpec{Label: "Description", Placeholder: "optional", Value: s.Description},
	)
}

func parseOptionalFloat(s string) (*float64, bool) {
	if s == "" {
		return nil, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, false
	}
	return &f, true
}

func formatOptionalFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func describeFilter(p client.SearchParams) string {
	var parts []string
	if p.Name != "" {
		parts = append(parts, "name~"+p.Name)
	}
	if p.Category != "" {
		parts = append(parts, "category~"+p.Category)
	}
	if p.MinPrice != nil {
		parts = append(parts, "price>="+formatOptionalFloat(p.MinPrice))
	}
	if p.MaxPrice != nil {
		parts = append(parts, "price<="+formatOptionalFloat(p.MaxPrice))
	}
	return strings.Join(parts, ", ")
}

func fallback(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func endSession() tea.Cmd {
	return func() tea.Msg {
		return logoutRequestedMsg{notice: "Session expired, please log in again"}
	}
}
