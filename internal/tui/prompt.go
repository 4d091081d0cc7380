package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Prompt asks for a single positive quantity.
type Prompt struct {
	question string
	input    textinput.Model
	err      string
}

func newQuantityPrompt(question, initial string) Prompt {
	ti := textinput.New()
	ti.Placeholder = "1"
	ti.CharLimit = 9
	ti.Prompt = "> "
	ti.SetValue(initial)
	ti.Focus()
	return Prompt{question: question, input: ti}
}

func (p Prompt) Update(msg tea.Msg) (Prompt, tea.Cmd) {
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

// Quantity parses the answer. It reports false and sets the prompt error when the answer is not a whole number of at least 1.
func (p *Prompt) Quantity() (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(p.input.Value()))
	if err != nil || n < 1 {
		p.err = "Quantity must be at least 1"
		return 0, false
	}
	p.err = ""
	return n, true
}

func (p Prompt) View() string {
	var b strings.Builder
	b.WriteString(labelStyle.Render(p.question) + "\n")
	b.WriteString(p.input.View() + "\n")
	if p.err != "" {
		b.WriteString(errorMessageStyle(p.err) + "\n")
	}
	b.WriteString(blurredStyle.Render("Enter to confirm, Esc to cancel"))
	return b.String()
}
