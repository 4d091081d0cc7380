package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// FieldSpec describes one input of a Form.
type FieldSpec struct {
	Label       string
	Placeholder string
	Value       string
	Secret      bool
}

// Form is a vertical list of labelled text inputs. Tab and the arrow keys move focus;
// Enter advances and submits from the last field.
type Form struct {
	title  string
	labels []string
	inputs []textinput.Model
	focus  int
	err    string
}

// NewForm builds a form with the first field focused.
func NewForm(title string, specs ...FieldSpec) Form {
	f := Form{title: title}
	for i, spec := range specs {
		ti := textinput.New()
		ti.Placeholder = spec.Placeholder
		ti.CharLimit = 256
		ti.Prompt = "> "
		if spec.Value != "" {
			ti.SetValue(spec.Value)
		}
		if spec.Secret {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		if i == 0 {
			ti.Focus()
		}
		f.labels = append(f.labels, spec.Label)
		f.inputs = append(f.inputs, ti)
	}
	return f
}

// Submitted reports whether msg is Enter pressed on the last field.
func (f Form) Submitted(msg tea.Msg) bool {
	key, ok := msg.(tea.KeyMsg)
	return ok && key.Type == tea.KeyEnter && f.focus == len(f.inputs)-1
}

// Update moves focus or forwards msg to the focused input.
func (f Form) Update(msg tea.Msg) (Form, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyTab, tea.KeyDown, tea.KeyEnter:
			return f, f.move(1)
		case tea.KeyShiftTab, tea.KeyUp:
			return f, f.move(-1)
		}
	}

	if len(f.inputs) == 0 {
		return f, nil
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

func (f *Form) move(delta int) tea.Cmd {
	if len(f.inputs) == 0 {
		return nil
	}
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + len(f.inputs)) % len(f.inputs)
	return f.inputs[f.focus].Focus()
}

// Value returns the trimmed value of field i.
func (f Form) Value(i int) string {
	return strings.TrimSpace(f.inputs[i].Value())
}

// Raw returns field i untrimmed.
func (f Form) Raw(i int) string {
	return f.inputs[i].Value()
}

// SetError shows msg under the form. An empty msg clears it.
func (f *Form) SetError(msg string) {
	f.err = msg
}

func (f Form) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(f.title) + "\n\n")
	for i := range f.inputs {
		style := labelStyle
		if i == f.focus {
			style = focusedStyle.Bold(true)
		}
		b.WriteString(style.Render(f.labels[i]) + "\n")
		b.WriteString(f.inputs[i].View() + "\n\n")
	}
	if f.err != "" {
		b.WriteString(errorMessageStyle(f.err) + "\n\n")
	}
	return b.String()
}
