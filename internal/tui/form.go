package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/smileynet/rolodex/internal/record"
)

// formKind selects which store operation a form feeds.
type formKind int

const (
	formAdd formKind = iota
	formFind
	formUpdate
)

// formSubmitMsg carries validated form values back to the model.
type formSubmitMsg struct {
	kind  formKind
	last  string
	first string
	phone int64
}

// formState manages the text inputs of one form.
type formState struct {
	kind    formKind
	labels  []string
	inputs  []textinput.Model
	focus   int
	invalid string
}

// newForm builds the inputs for kind with the first field focused.
// Name fields are capacity-bounded; the phone field accepts digits only.
func newForm(kind formKind) formState {
	labels := []string{"Last name", "First name"}
	if kind == formAdd {
		labels = append(labels, "Phone")
	} else if kind == formUpdate {
		labels = append(labels, "New phone")
	}

	inputs := make([]textinput.Model, len(labels))
	for i := range inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = record.NameCap
		inputs[i] = ti
	}
	if kind != formFind {
		phone := &inputs[len(inputs)-1]
		phone.CharLimit = 15
		phone.Validate = digitsOnly
	}
	inputs[0].Focus()

	return formState{kind: kind, labels: labels, inputs: inputs}
}

// digitsOnly rejects any non-digit phone input as it is typed.
func digitsOnly(s string) error {
	for _, r := range s {
		if r < '0' || r > '9' {
			return strconv.ErrSyntax
		}
	}
	return nil
}

// focusCmd starts the cursor blink on the focused field.
func (f formState) focusCmd() tea.Cmd {
	return textinput.Blink
}

// Update handles form keys: enter advances and finally submits, tab and
// arrows move focus, everything else goes to the focused input.
func (f formState) Update(msg tea.Msg) (formState, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return f.updateFocused(msg)
	}

	switch keyMsg.String() {
	case "enter":
		if f.focus < len(f.inputs)-1 {
			return f.setFocus(f.focus + 1)
		}
		return f.submit()

	case "tab", "down":
		return f.setFocus((f.focus + 1) % len(f.inputs))

	case "shift+tab", "up":
		return f.setFocus((f.focus + len(f.inputs) - 1) % len(f.inputs))
	}

	return f.updateFocused(msg)
}

// updateFocused forwards a message to the focused input.
func (f formState) updateFocused(msg tea.Msg) (formState, tea.Cmd) {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

// setFocus moves focus to input i.
func (f formState) setFocus(i int) (formState, tea.Cmd) {
	f.inputs[f.focus].Blur()
	f.focus = i
	return f, f.inputs[i].Focus()
}

// submit validates the fields and emits a formSubmitMsg, or records an
// inline validation message and keeps the form open.
func (f formState) submit() (formState, tea.Cmd) {
	last := strings.TrimSpace(f.inputs[0].Value())
	first := strings.TrimSpace(f.inputs[1].Value())
	if last == "" || first == "" {
		f.invalid = "Last and first name are required"
		return f, nil
	}

	var phone int64
	if f.kind != formFind {
		raw := strings.TrimSpace(f.inputs[len(f.inputs)-1].Value())
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			f.invalid = "Phone must be a number"
			return f, nil
		}
		phone = n
	}

	f.invalid = ""
	msg := formSubmitMsg{kind: f.kind, last: last, first: first, phone: phone}
	return f, func() tea.Msg { return msg }
}

// title returns the form heading.
func (f formState) title() string {
	switch f.kind {
	case formAdd:
		return "Add a client"
	case formFind:
		return "Find a phone number"
	case formUpdate:
		return "Change a phone number"
	}
	return ""
}

// View renders the labeled inputs and any validation message.
func (f formState) View() string {
	var b strings.Builder
	b.WriteString(formTitleStyle.Render(f.title()) + "\n\n")
	for i, in := range f.inputs {
		b.WriteString(labelStyle.Render(f.labels[i]+":") + " " + in.View() + "\n")
	}
	if f.invalid != "" {
		b.WriteString("\n" + errorStyle.Render(f.invalid) + "\n")
	}
	b.WriteString("\n" + faintStyle.Render("enter next/submit · esc back") + "\n")
	return b.String()
}
