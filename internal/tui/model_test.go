package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"

	"github.com/smileynet/rolodex/internal/record"
	"github.com/smileynet/rolodex/internal/store"
)

// fakeDir is an in-memory Directory for menu tests.
type fakeDir struct {
	clients   []record.Client
	appendErr error
	listErr   error
	sorted    bool
}

func (f *fakeDir) Append(last, first string, phone int64) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.clients = append(f.clients, record.Client{
		LastName:  record.Truncate(last),
		FirstName: record.Truncate(first),
		Phone:     phone,
	})
	return nil
}

func (f *fakeDir) List() ([]record.Client, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.clients, nil
}

func (f *fakeDir) Find(last, first string) (record.Client, error) {
	for _, c := range f.clients {
		if c.Key(last, first) {
			return c, nil
		}
	}
	return record.Client{}, store.ErrNotFound
}

func (f *fakeDir) UpdatePhone(last, first string, phone int64) error {
	for i, c := range f.clients {
		if c.Key(last, first) {
			f.clients[i].Phone = phone
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeDir) SortByName() error {
	f.sorted = true
	return nil
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyUp    = tea.KeyMsg{Type: tea.KeyUp}
)

// step applies one message and returns the updated model and any command.
func step(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// run applies a message, then keeps feeding resulting command output back
// into the model until no command remains.
func run(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := step(t, m, msg)
	for cmd != nil {
		out := cmd()
		if out == nil {
			break
		}
		next, cmd = step(t, next, out)
	}
	return next
}

// selectAction moves the cursor to act and presses enter.
func selectAction(t *testing.T, m Model, act action) Model {
	t.Helper()
	for menuEntries[m.cursor].act != act {
		m, _ = step(t, m, keyDown)
	}
	return run(t, m, keyEnter)
}

func TestNewModel_StartsInMenu(t *testing.T) {
	m := NewModel(WithDirectory(&fakeDir{}))

	if m.mode != modeMenu {
		t.Errorf("mode = %d, want modeMenu", m.mode)
	}
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want 0", m.cursor)
	}
	view := m.View()
	for _, entry := range menuEntries {
		if !strings.Contains(view, entry.label) {
			t.Errorf("View() missing menu entry %q", entry.label)
		}
	}
}

func TestMenu_CursorWraps(t *testing.T) {
	m := NewModel(WithDirectory(&fakeDir{}))

	// Given the cursor on the first entry, moving up wraps to the last
	m, _ = step(t, m, keyUp)
	if m.cursor != len(menuEntries)-1 {
		t.Errorf("cursor after up = %d, want %d", m.cursor, len(menuEntries)-1)
	}

	// And moving down from the last entry wraps to the first
	m, _ = step(t, m, keyDown)
	if m.cursor != 0 {
		t.Errorf("cursor after down = %d, want 0", m.cursor)
	}
}

func TestMenu_QuitKey(t *testing.T) {
	m := NewModel(WithDirectory(&fakeDir{}))

	m, cmd := step(t, m, keyRune('q'))

	if !m.quitting {
		t.Error("model should be quitting after q")
	}
	if cmd == nil {
		t.Fatal("q should produce a quit command")
	}
}

func TestMenu_ListShowsRecords(t *testing.T) {
	// Given a directory with two clients
	dir := &fakeDir{clients: []record.Client{
		{LastName: "Smith", FirstName: "John", Phone: 5551234},
		{LastName: "Doe", FirstName: "Jane", Phone: 5555678},
	}}
	m := NewModel(WithDirectory(dir))
	m, _ = step(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})

	// When the list entry is selected
	m = selectAction(t, m, actionList)

	// Then the list screen shows every record
	if m.mode != modeList {
		t.Fatalf("mode = %d, want modeList", m.mode)
	}
	view := m.View()
	for _, want := range []string{"Smith", "John", "5551234", "Doe", "Jane", "5555678"} {
		if !strings.Contains(view, want) {
			t.Errorf("list view missing %q", want)
		}
	}

	// And esc returns to the menu
	m, _ = step(t, m, keyEsc)
	if m.mode != modeMenu {
		t.Errorf("mode after esc = %d, want modeMenu", m.mode)
	}
}

func TestMenu_ListError(t *testing.T) {
	// Given a directory whose List fails
	dir := &fakeDir{listErr: errors.New("disk gone")}
	m := NewModel(WithDirectory(dir))

	// When the list entry is selected
	m = selectAction(t, m, actionList)

	// Then the menu shows the error instead of the list
	if m.mode != modeMenu {
		t.Errorf("mode = %d, want modeMenu", m.mode)
	}
	if m.err == nil || !strings.Contains(m.err.Error(), "disk gone") {
		t.Errorf("err = %v, want the List failure", m.err)
	}
}

func TestMenu_AddFlow(t *testing.T) {
	// Given the add form
	dir := &fakeDir{}
	m := NewModel(WithDirectory(dir))
	m = selectAction(t, m, actionAdd)
	if m.mode != modeForm {
		t.Fatalf("mode = %d, want modeForm", m.mode)
	}
	if len(m.form.inputs) != 3 {
		t.Fatalf("add form inputs = %d, want 3", len(m.form.inputs))
	}

	// When the fields are filled and submitted
	m.form.inputs[0].SetValue("Smith")
	m.form.inputs[1].SetValue("John")
	m.form.inputs[2].SetValue("5551234")
	m.form.focus = 2
	m = run(t, m, keyEnter)

	// Then the client is appended and the menu confirms it
	if len(dir.clients) != 1 {
		t.Fatalf("appended clients = %d, want 1", len(dir.clients))
	}
	if dir.clients[0].Phone != 5551234 {
		t.Errorf("Phone = %d, want 5551234", dir.clients[0].Phone)
	}
	if m.mode != modeMenu {
		t.Errorf("mode = %d, want modeMenu after submit", m.mode)
	}
	if !strings.Contains(m.status, "Added Smith John") {
		t.Errorf("status = %q, want add confirmation", m.status)
	}
}

func TestMenu_FindFlow(t *testing.T) {
	dir := &fakeDir{clients: []record.Client{{LastName: "Doe", FirstName: "Jane", Phone: 5555678}}}
	m := NewModel(WithDirectory(dir))
	m = selectAction(t, m, actionFind)
	if len(m.form.inputs) != 2 {
		t.Fatalf("find form inputs = %d, want 2", len(m.form.inputs))
	}

	m.form.inputs[0].SetValue("Doe")
	m.form.inputs[1].SetValue("Jane")
	m.form.focus = 1
	m = run(t, m, keyEnter)

	if !strings.Contains(m.status, "5555678") {
		t.Errorf("status = %q, want the phone number", m.status)
	}
}

func TestMenu_FindNotFound(t *testing.T) {
	m := NewModel(WithDirectory(&fakeDir{}))
	m = selectAction(t, m, actionFind)

	m.form.inputs[0].SetValue("Ghost")
	m.form.inputs[1].SetValue("Nobody")
	m.form.focus = 1
	m = run(t, m, keyEnter)

	// Not-Found is a normal outcome, shown as status rather than an error.
	if m.err != nil {
		t.Errorf("err = %v, want nil for not-found", m.err)
	}
	if !strings.Contains(m.status, "not in the directory") {
		t.Errorf("status = %q, want not-found message", m.status)
	}
}

func TestMenu_UpdateFlow(t *testing.T) {
	dir := &fakeDir{clients: []record.Client{{LastName: "Smith", FirstName: "John", Phone: 111}}}
	m := NewModel(WithDirectory(dir))
	m = selectAction(t, m, actionUpdate)

	m.form.inputs[0].SetValue("Smith")
	m.form.inputs[1].SetValue("John")
	m.form.inputs[2].SetValue("9990000")
	m.form.focus = 2
	m = run(t, m, keyEnter)

	if dir.clients[0].Phone != 9990000 {
		t.Errorf("Phone = %d, want 9990000", dir.clients[0].Phone)
	}
	if !strings.Contains(m.status, "Updated Smith John") {
		t.Errorf("status = %q, want update confirmation", m.status)
	}
}

func TestMenu_SortAction(t *testing.T) {
	dir := &fakeDir{}
	m := NewModel(WithDirectory(dir))

	m = selectAction(t, m, actionSort)

	if !dir.sorted {
		t.Error("SortByName was not called")
	}
	if !strings.Contains(m.status, "sorted") {
		t.Errorf("status = %q, want sort confirmation", m.status)
	}
}

func TestMenu_AppendErrorSurfaces(t *testing.T) {
	dir := &fakeDir{appendErr: errors.New("write failed")}
	m := NewModel(WithDirectory(dir))
	m = selectAction(t, m, actionAdd)

	m.form.inputs[0].SetValue("Smith")
	m.form.inputs[1].SetValue("John")
	m.form.inputs[2].SetValue("1")
	m.form.focus = 2
	m = run(t, m, keyEnter)

	if m.err == nil || !strings.Contains(m.err.Error(), "write failed") {
		t.Errorf("err = %v, want the append failure", m.err)
	}
}

func TestForm_EscReturnsToMenu(t *testing.T) {
	m := NewModel(WithDirectory(&fakeDir{}))
	m = selectAction(t, m, actionAdd)

	m, _ = step(t, m, keyEsc)

	if m.mode != modeMenu {
		t.Errorf("mode = %d, want modeMenu", m.mode)
	}
}

func TestRenderListing_AlignsColumns(t *testing.T) {
	got := renderListing([]record.Client{
		{LastName: "Ng", FirstName: "Al", Phone: 7},
		{LastName: "Smith", FirstName: "John", Phone: 5551234},
	})

	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want header + 2 rows", len(lines))
	}
	// Phone column starts at the same offset on every row.
	wantCol := strings.Index(lines[0], "PHONE")
	if idx := strings.Index(lines[1], "7"); idx != wantCol {
		t.Errorf("row 1 phone column = %d, want %d", idx, wantCol)
	}
	if idx := strings.Index(lines[2], "5551234"); idx != wantCol {
		t.Errorf("row 2 phone column = %d, want %d", idx, wantCol)
	}
}

// TestModel_Teatest_QuitFromMenu runs the full program loop via teatest.
func TestModel_Teatest_QuitFromMenu(t *testing.T) {
	m := NewModel(WithDirectory(&fakeDir{}))
	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(80, 24))

	tm.Send(keyRune('q'))
	tm.WaitFinished(t, teatest.WithFinalTimeout(2*time.Second))

	final := tm.FinalModel(t).(Model)
	if !final.quitting {
		t.Error("final model should be quitting")
	}
}
