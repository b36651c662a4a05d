// Package tui implements the interactive directory menu as a Bubble Tea
// program: a cursor menu over the store operations, with text-input forms
// for add, find, and update.
package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/smileynet/rolodex/internal/record"
	"github.com/smileynet/rolodex/internal/store"
)

// Directory is the store surface the menu drives.
type Directory interface {
	Append(last, first string, phone int64) error
	List() ([]record.Client, error)
	Find(last, first string) (record.Client, error)
	UpdatePhone(last, first string, phone int64) error
	SortByName() error
}

// CursorMarker is the prefix shown on the selected menu row.
const CursorMarker = "▸ "

// mode selects which screen the model is rendering.
type mode int

const (
	modeMenu mode = iota
	modeForm
	modeList
)

// action identifies a menu entry.
type action int

const (
	actionAdd action = iota
	actionList
	actionFind
	actionUpdate
	actionSort
	actionQuit
)

// menuEntries is the fixed menu, in display order.
var menuEntries = []struct {
	act   action
	label string
}{
	{actionAdd, "Add a client"},
	{actionList, "List the directory"},
	{actionFind, "Find a phone number"},
	{actionUpdate, "Change a phone number"},
	{actionSort, "Sort by name"},
	{actionQuit, "Quit"},
}

// listLoadedMsg carries the result of an asynchronous List call.
type listLoadedMsg struct {
	clients []record.Client
	err     error
}

// opDoneMsg carries the outcome of an append, find, update, or sort.
type opDoneMsg struct {
	status string
	err    error
}

// keyMap defines the menu key bindings.
type keyMap struct {
	Up    key.Binding
	Down  key.Binding
	Enter key.Binding
	Back  key.Binding
	Quit  key.Binding
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Enter, k.Back, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down}, {k.Enter, k.Back, k.Quit}}
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Enter: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		Back:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// Model is the Bubble Tea model for the directory menu.
type Model struct {
	dir      Directory
	mode     mode
	cursor   int
	form     formState
	list     viewport.Model
	listing  []record.Client
	status   string
	err      error
	keys     keyMap
	help     help.Model
	width    int
	height   int
	quitting bool
}

// Option configures a Model.
type Option func(*Model)

// WithDirectory sets the store the menu operates on.
func WithDirectory(d Directory) Option {
	return func(m *Model) { m.dir = d }
}

// NewModel creates the menu model.
func NewModel(opts ...Option) Model {
	m := Model{
		keys: defaultKeyMap(),
		help: help.New(),
		list: viewport.New(0, 0),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.Width = msg.Width
		m.list.Height = max(msg.Height-6, 3)
		return m, nil

	case listLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.status = ""
			m.mode = modeMenu
			return m, nil
		}
		m.err = nil
		m.listing = msg.clients
		m.list.SetContent(renderListing(msg.clients))
		m.list.GotoTop()
		m.mode = modeList
		return m, nil

	case opDoneMsg:
		m.mode = modeMenu
		if msg.err != nil {
			m.err = msg.err
			m.status = ""
			return m, nil
		}
		m.err = nil
		m.status = msg.status
		return m, nil

	case formSubmitMsg:
		return m, m.dispatchForm(msg)

	case tea.KeyMsg:
		switch m.mode {
		case modeMenu:
			return m.updateMenu(msg)
		case modeForm:
			return m.updateForm(msg)
		case modeList:
			return m.updateList(msg)
		}
	}

	return m, nil
}

// updateMenu handles keys while the cursor menu is shown.
func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		m.cursor--
		if m.cursor < 0 {
			m.cursor = len(menuEntries) - 1
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.cursor++
		if m.cursor >= len(menuEntries) {
			m.cursor = 0
		}
		return m, nil

	case key.Matches(msg, m.keys.Enter):
		return m.selectEntry(menuEntries[m.cursor].act)
	}
	return m, nil
}

// selectEntry dispatches the chosen menu action.
func (m Model) selectEntry(act action) (tea.Model, tea.Cmd) {
	m.status = ""
	m.err = nil

	switch act {
	case actionAdd:
		m.form = newForm(formAdd)
		m.mode = modeForm
		return m, m.form.focusCmd()

	case actionFind:
		m.form = newForm(formFind)
		m.mode = modeForm
		return m, m.form.focusCmd()

	case actionUpdate:
		m.form = newForm(formUpdate)
		m.mode = modeForm
		return m, m.form.focusCmd()

	case actionList:
		dir := m.dir
		return m, func() tea.Msg {
			clients, err := dir.List()
			return listLoadedMsg{clients: clients, err: err}
		}

	case actionSort:
		dir := m.dir
		return m, func() tea.Msg {
			if err := dir.SortByName(); err != nil {
				return opDoneMsg{err: err}
			}
			return opDoneMsg{status: "Directory sorted by name"}
		}

	case actionQuit:
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

// updateForm handles keys while a form is shown.
func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Back) {
		m.mode = modeMenu
		return m, nil
	}
	var cmd tea.Cmd
	m.form, cmd = m.form.Update(msg)
	return m, cmd
}

// updateList handles keys while the record list is shown.
func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Enter), key.Matches(msg, m.keys.Quit):
		m.mode = modeMenu
		return m, nil
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// dispatchForm turns a submitted form into the matching store call.
func (m Model) dispatchForm(msg formSubmitMsg) tea.Cmd {
	dir := m.dir
	switch msg.kind {
	case formAdd:
		return func() tea.Msg {
			if err := dir.Append(msg.last, msg.first, msg.phone); err != nil {
				return opDoneMsg{err: err}
			}
			return opDoneMsg{status: fmt.Sprintf("Added %s %s",
				record.Truncate(msg.last), record.Truncate(msg.first))}
		}

	case formFind:
		return func() tea.Msg {
			c, err := dir.Find(msg.last, msg.first)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return opDoneMsg{status: fmt.Sprintf("%s %s is not in the directory", msg.last, msg.first)}
				}
				return opDoneMsg{err: err}
			}
			return opDoneMsg{status: fmt.Sprintf("%s %s: %d", c.LastName, c.FirstName, c.Phone)}
		}

	case formUpdate:
		return func() tea.Msg {
			err := dir.UpdatePhone(msg.last, msg.first, msg.phone)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return opDoneMsg{status: fmt.Sprintf("%s %s is not in the directory", msg.last, msg.first)}
				}
				return opDoneMsg{err: err}
			}
			return opDoneMsg{status: fmt.Sprintf("Updated %s %s to %d",
				record.Truncate(msg.last), record.Truncate(msg.first), msg.phone)}
		}
	}
	return nil
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Client directory") + "\n\n")

	switch m.mode {
	case modeMenu:
		for i, entry := range menuEntries {
			if i == m.cursor {
				b.WriteString(cursorStyle.Render(CursorMarker+entry.label) + "\n")
			} else {
				b.WriteString("  " + entry.label + "\n")
			}
		}

	case modeForm:
		b.WriteString(m.form.View())

	case modeList:
		if len(m.listing) == 0 {
			b.WriteString(faintStyle.Render("The directory is empty.") + "\n")
		} else {
			b.WriteString(m.list.View() + "\n")
		}
	}

	if m.status != "" {
		b.WriteString("\n" + statusStyle.Render(m.status) + "\n")
	}
	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render("Error: "+m.err.Error()) + "\n")
	}

	b.WriteString("\n" + m.help.View(m.keys))
	return b.String()
}

// renderListing formats records in scan order with aligned columns.
func renderListing(clients []record.Client) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-*s %-*s %s\n", record.NameCap, "LAST NAME", record.NameCap, "FIRST NAME", "PHONE")
	for _, c := range clients {
		fmt.Fprintf(&b, "%-*s %-*s %d\n", record.NameCap, c.LastName, record.NameCap, c.FirstName, c.Phone)
	}
	return b.String()
}
