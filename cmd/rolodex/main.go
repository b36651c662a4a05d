package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"

	"github.com/smileynet/rolodex/internal/card"
	"github.com/smileynet/rolodex/internal/config"
	"github.com/smileynet/rolodex/internal/record"
	"github.com/smileynet/rolodex/internal/store"
	"github.com/smileynet/rolodex/internal/tui"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// CLI is the top-level command structure for rolodex.
type CLI struct {
	Version kong.VersionFlag `help:"Show version." short:"V"`
	Add     AddCmd           `cmd:"" help:"Add a client to the directory."`
	List    ListCmd          `cmd:"" help:"List every client in the directory."`
	Find    FindCmd          `cmd:"" help:"Find a client's phone number."`
	Update  UpdateCmd        `cmd:"" help:"Change a client's phone number."`
	Sort    SortCmd          `cmd:"" help:"Sort the directory by name."`
	Menu    MenuCmd          `cmd:"" help:"Open the interactive directory menu."`
	Card    CardCmd          `cmd:"" help:"Fill in and print a one-off client card."`
}

// directory abstracts the store operations for testing command wiring.
type directory interface {
	Append(last, first string, phone int64) error
	List() ([]record.Client, error)
	Find(last, first string) (record.Client, error)
	UpdatePhone(last, first string, phone int64) error
	SortByName() error
}

// loadConfig loads layered config from user and project paths with env
// overrides. A .env file in the working directory is applied first.
func loadConfig() (*config.Config, error) {
	_ = godotenv.Load()

	cfg, err := config.LoadLayered(
		os.ExpandEnv("$HOME/.config/rolodex/config.yaml"),
		".rolodex.yaml",
	)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openStore opens the configured directory file. Failure here is the
// startup contract: the caller aborts with a setup error.
func openStore() (*store.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return store.Open(cfg.Store.Path)
}

// AddCmd appends one client record.
type AddCmd struct {
	Last  string `arg:"" help:"Last name (truncated to capacity)."`
	First string `arg:"" help:"First name (truncated to capacity)."`
	Phone int64  `arg:"" help:"Phone number."`
}

// Run executes the add command.
func (a *AddCmd) Run() error {
	st, err := openStore()
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}
	defer st.Close()
	return a.run(os.Stdout, st)
}

// run appends the record with the given directory, enabling testable wiring.
func (a *AddCmd) run(w io.Writer, dir directory) error {
	if err := dir.Append(a.Last, a.First, a.Phone); err != nil {
		return fmt.Errorf("add: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Added %s %s (%d)\n",
		record.Truncate(a.Last), record.Truncate(a.First), a.Phone)
	return nil
}

// ListCmd prints every record in scan order.
type ListCmd struct{}

// Run executes the list command.
func (l *ListCmd) Run() error {
	st, err := openStore()
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}
	defer st.Close()
	return l.run(os.Stdout, st)
}

// run prints the directory with the given store, enabling testable wiring.
func (l *ListCmd) run(w io.Writer, dir directory) error {
	clients, err := dir.List()
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}
	if len(clients) == 0 {
		_, _ = fmt.Fprintln(w, "The directory is empty.")
		return nil
	}
	for _, c := range clients {
		_, _ = fmt.Fprintf(w, "%-*s %-*s %d\n",
			record.NameCap, c.LastName, record.NameCap, c.FirstName, c.Phone)
	}
	return nil
}

// FindCmd looks up a client's phone number by name.
type FindCmd struct {
	Last  string `arg:"" help:"Last name to search for."`
	First string `arg:"" help:"First name to search for."`
}

// Run executes the find command.
func (f *FindCmd) Run() error {
	st, err := openStore()
	if err != nil {
		return fmt.Errorf("find: %w", err)
	}
	defer st.Close()
	return f.run(os.Stdout, st)
}

// run looks up the record with the given store, enabling testable wiring.
func (f *FindCmd) run(w io.Writer, dir directory) error {
	c, err := dir.Find(f.Last, f.First)
	if err != nil {
		return fmt.Errorf("find: %w", err)
	}
	_, _ = fmt.Fprintf(w, "%s %s: %d\n", c.LastName, c.FirstName, c.Phone)
	return nil
}

// UpdateCmd changes a client's phone number.
type UpdateCmd struct {
	Last  string `arg:"" help:"Last name of the client."`
	First string `arg:"" help:"First name of the client."`
	Phone int64  `arg:"" help:"New phone number."`
}

// Run executes the update command.
func (u *UpdateCmd) Run() error {
	st, err := openStore()
	if err != nil {
		return fmt.Errorf("update: %w", err)
	}
	defer st.Close()
	return u.run(os.Stdout, st)
}

// run updates the record with the given store, enabling testable wiring.
func (u *UpdateCmd) run(w io.Writer, dir directory) error {
	if err := dir.UpdatePhone(u.Last, u.First, u.Phone); err != nil {
		return fmt.Errorf("update: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Updated %s %s to %d\n",
		record.Truncate(u.Last), record.Truncate(u.First), u.Phone)
	return nil
}

// SortCmd reorders the directory by name.
type SortCmd struct{}

// Run executes the sort command.
func (s *SortCmd) Run() error {
	st, err := openStore()
	if err != nil {
		return fmt.Errorf("sort: %w", err)
	}
	defer st.Close()
	return s.run(os.Stdout, st)
}

// run sorts the directory with the given store, enabling testable wiring.
func (s *SortCmd) run(w io.Writer, dir directory) error {
	if err := dir.SortByName(); err != nil {
		return fmt.Errorf("sort: %w", err)
	}
	_, _ = fmt.Fprintln(w, "Directory sorted by name.")
	return nil
}

// MenuCmd opens the interactive directory menu.
type MenuCmd struct{}

// teaRunner abstracts Bubble Tea program execution for testing.
type teaRunner interface {
	Run() (tea.Model, error)
}

// Run builds real dependencies and launches the menu TUI.
func (m *MenuCmd) Run() error {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return fmt.Errorf("menu: requires a terminal (TTY)")
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("menu: %w", err)
	}
	if cfg.UI.Plain {
		return fmt.Errorf("menu: ui.plain is set; use the add/list/find/update commands instead")
	}

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("menu: %w", err)
	}
	defer st.Close()

	model := tui.NewModel(tui.WithDirectory(st))
	prog := tea.NewProgram(model, tea.WithAltScreen())
	return m.run(true, prog)
}

// run executes the tea program, enabling testable wiring.
func (m *MenuCmd) run(isTTY bool, prog teaRunner) error {
	if !isTTY {
		return fmt.Errorf("menu: requires a terminal (TTY)")
	}
	_, err := prog.Run()
	return err
}

// CardCmd prompts a one-off client card and prints it. Cards are not
// stored in the directory.
type CardCmd struct{}

// Run executes the card command.
func (c *CardCmd) Run() error {
	return c.run(os.Stdin, os.Stdout)
}

// run prompts and renders the card, enabling testable wiring.
func (c *CardCmd) run(r io.Reader, w io.Writer) error {
	filled, err := card.Prompt(r, w)
	if err != nil {
		return fmt.Errorf("card: %w", err)
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprint(w, filled.Render())
	return nil
}

// Exit codes.
const (
	exitSuccess  = 0
	exitNotFound = 1
	exitSetup    = 2
)

// exitCode maps an error to the appropriate exit code.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	// Not-Found is an expected search outcome, not a setup failure.
	if errors.Is(err, store.ErrNotFound) {
		return exitNotFound
	}
	return exitSetup
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli, kong.Vars{"version": version + " " + commit + " " + date})
	err := ctx.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(exitCode(err))
	}
}
