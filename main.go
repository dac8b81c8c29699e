package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"lending-tracker/config"
	"lending-tracker/library"
)

type app struct {
	cfg    *config.Config
	log    *slog.Logger
	store  *library.Store
	render library.Renderer
	fee    float64
}

func main() {
	cfg := config.New()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	a := &app{
		cfg:    cfg,
		log:    logger,
		store:  library.NewStore(logger),
		render: library.NewRenderer(cfg.Renderer, os.Stdout),
		fee:    cfg.FeePerDay,
	}

	root := &cobra.Command{
		Use:           "lending-tracker",
		Short:         "Track book lending from an interactive text menu",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.load()
			a.menuLoop()
			return nil
		},
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Print the inventory and exit",
			RunE: func(cmd *cobra.Command, args []string) error {
				a.load()
				a.render.Inventory(a.store.Books())
				return nil
			},
		},
		&cobra.Command{
			Use:   "overdue",
			Short: "Print the overdue report and exit",
			RunE: func(cmd *cobra.Command, args []string) error {
				a.load()
				books, count, total := a.store.ListOverdue("", a.fee)
				a.render.OverdueReport(books, count, total)
				return nil
			},
		},
		&cobra.Command{
			Use:   "export <file.csv>",
			Short: "Export the collection to CSV",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				a.load()
				return a.store.ExportCSV(args[0])
			},
		},
		&cobra.Command{
			Use:   "import <file.csv>",
			Short: "Import books from CSV into the collection",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				a.load()
				added, err := a.store.ImportCSV(args[0], a.cfg.DisallowDuplicates)
				if err != nil {
					return err
				}
				fmt.Printf("Imported %d books.\n", added)
				return a.save()
			},
		},
		&cobra.Command{
			Use:   "seed",
			Short: "Replace the collection with the demo inventory",
			RunE: func(cmd *cobra.Command, args []string) error {
				a.store.Replace(nil)
				if err := a.store.SeedDemo(); err != nil {
					return err
				}
				return a.save()
			},
		},
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newLogger wires slog to stderr, mirrored to the configured log file.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}

	var w io.Writer = os.Stderr
	if cfg.LogPath != "" {
		if f, err := os.OpenFile(cfg.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err == nil {
			w = io.MultiWriter(os.Stderr, f)
		} else {
			fmt.Fprintf(os.Stderr, "Warning: cannot open log file %s: %v\n", cfg.LogPath, err)
		}
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// load pulls the collection from the configured backend, seeding the demo
// inventory when starting empty.
func (a *app) load() {
	switch a.cfg.Backend {
	case config.BackendSQLite:
		_ = a.store.LoadArchive(a.cfg.DataPath)
	default:
		_ = a.store.LoadJSON(a.cfg.DataPath)
	}
	if a.store.Len() == 0 && a.cfg.Seed {
		if err := a.store.SeedDemo(); err != nil {
			a.log.Error("seed failed", "error", err)
			return
		}
		_ = a.save()
	}
}

// save persists to the configured backend. Called after every mutating
// action so quitting without an explicit save loses nothing.
func (a *app) save() error {
	switch a.cfg.Backend {
	case config.BackendSQLite:
		return a.store.SaveArchive(a.cfg.DataPath)
	default:
		return a.store.SaveJSON(a.cfg.DataPath)
	}
}

func (a *app) autosave() {
	if err := a.save(); err != nil {
		fmt.Printf("Save failed: %v\n", err)
		return
	}
	fmt.Println("✓ Saved.")
}

func printMenu() {
	items := []struct{ key, label string }{
		{"t", "list all"},
		{"a", "search"},
		{"e", "add"},
		{"b", "borrow"},
		{"w", "join waitlist"},
		{"i", "return (with fee)"},
		{"r", "renew"},
		{"o", "overdue"},
		{"k", "save"},
		{"y", "reload"},
		{"u", "set fee"},
		{"q", "quit"},
	}
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, fmt.Sprintf("%s=%s", it.key, it.label))
	}
	fmt.Println(strings.Join(parts, " | "))
}

func (a *app) menuLoop() {
	fmt.Println("📚 Lending Tracker")
	a.render.Inventory(a.store.Books())

	sc := bufio.NewScanner(os.Stdin)
	for {
		printMenu()
		fmt.Print("> ")
		if !sc.Scan() {
			break
		}
		switch strings.ToLower(strings.TrimSpace(sc.Text())) {
		case "t":
			a.render.Inventory(a.store.Books())
		case "a":
			a.handleSearch(sc)
		case "e":
			a.handleAdd(sc)
		case "b":
			a.handleBorrow(sc)
		case "w":
			a.handleJoinWaitlist(sc)
		case "i":
			a.handleReturn(sc)
		case "r":
			a.handleRenew(sc)
		case "o":
			books, count, total := a.store.ListOverdue("", a.fee)
			a.render.OverdueReport(books, count, total)
		case "k":
			a.autosave()
		case "y":
			a.load()
			fmt.Printf("✓ Reloaded. Total: %d\n", a.store.Len())
			a.render.Inventory(a.store.Books())
		case "u":
			a.handleSetFee(sc)
		case "q":
			a.autosave()
			fmt.Println("Goodbye! 👋")
			return
		default:
			fmt.Println("Commands: t/a/e/b/w/i/r/o/k/y/u/q")
		}
	}
}

func prompt(sc *bufio.Scanner, label string) (string, bool) {
	fmt.Print(label)
	if !sc.Scan() {
		return "", false
	}
	return strings.TrimSpace(sc.Text()), true
}

func promptInt(sc *bufio.Scanner, label string, fallback int) (int, error) {
	raw, ok := prompt(sc, label)
	if !ok {
		return 0, io.EOF
	}
	if raw == "" && fallback > 0 {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", raw)
	}
	return n, nil
}

func (a *app) handleSearch(sc *bufio.Scanner) {
	q, ok := prompt(sc, "Search: ")
	if !ok {
		return
	}
	mode, _ := prompt(sc, "Mode (any/all/prefix): ")
	if mode == "" {
		mode = "any"
	}
	res, err := a.store.Search(q, library.SearchOptions{
		Mode:      library.SearchMode(mode),
		Normalize: true,
	})
	if err != nil {
		fmt.Printf("Search failed: %v\n", err)
		return
	}
	tokens := strings.Fields(library.NormalizeKey(q))
	a.render.SearchResults(res, tokens)
}

func (a *app) handleAdd(sc *bufio.Scanner) {
	title, ok := prompt(sc, "Title: ")
	if !ok {
		return
	}
	author, ok := prompt(sc, "Author: ")
	if !ok {
		return
	}
	if _, err := a.store.Add(title, author, a.cfg.DisallowDuplicates); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Println("✓ Added.")
	a.autosave()
	a.render.Inventory(a.store.Books())
}

func (a *app) handleBorrow(sc *bufio.Scanner) {
	id, err := promptInt(sc, "Book ID: ", 0)
	if err != nil {
		fmt.Println("ID must be a number.")
		return
	}
	user, ok := prompt(sc, "Username: ")
	if !ok {
		return
	}
	days, err := promptInt(sc, fmt.Sprintf("Days (default %d): ", a.cfg.LoanDays), a.cfg.LoanDays)
	if err != nil {
		fmt.Println("Days must be a number.")
		return
	}
	ok, err = a.store.Borrow(id, user, days)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if !ok {
		fmt.Println("Book is already on loan.")
		if join, _ := prompt(sc, "Join the waitlist? (y/n): "); strings.EqualFold(join, "y") {
			joined, err := a.store.JoinWaitlist(id, user)
			switch {
			case err != nil:
				fmt.Printf("Error: %v\n", err)
			case joined:
				fmt.Println("✓ Added to waitlist.")
				a.autosave()
			default:
				fmt.Println("Already on the waitlist.")
			}
		}
		return
	}
	fmt.Println("✓ Borrowed.")
	a.autosave()
	a.render.Inventory(a.store.Books())
}

func (a *app) handleJoinWaitlist(sc *bufio.Scanner) {
	id, err := promptInt(sc, "Book ID: ", 0)
	if err != nil {
		fmt.Println("ID must be a number.")
		return
	}
	user, ok := prompt(sc, "Username: ")
	if !ok {
		return
	}
	joined, err := a.store.JoinWaitlist(id, user)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if !joined {
		fmt.Println("Not queued (book is available, or user already listed).")
		return
	}
	fmt.Println("✓ Added to waitlist.")
	a.autosave()
}

func (a *app) handleReturn(sc *bufio.Scanner) {
	id, err := promptInt(sc, "Book ID to return: ", 0)
	if err != nil {
		fmt.Println("ID must be a number.")
		return
	}
	delay, fee, err := a.store.ReturnWithFee(id, a.fee)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("✓ Returned. Delay=%d days, Fee=%.2f\n", delay, fee)
	a.autosave()
	a.render.Inventory(a.store.Books())
}

func (a *app) handleRenew(sc *bufio.Scanner) {
	id, err := promptInt(sc, "Book ID to renew: ", 0)
	if err != nil {
		fmt.Println("ID must be a number.")
		return
	}
	extra, err := promptInt(sc, "Extra days: ", 0)
	if err != nil {
		fmt.Println("Extra days must be a number.")
		return
	}
	ok, err := a.store.Renew(id, extra, a.cfg.MaxRenewalDays)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if !ok {
		fmt.Println("Renewal refused (not on loan, overdue, or over the cap).")
		return
	}
	fmt.Println("✓ Renewed.")
	a.autosave()
}

func (a *app) handleSetFee(sc *bufio.Scanner) {
	raw, ok := prompt(sc, "Fee per day (e.g. 1.5): ")
	if !ok {
		return
	}
	fee, err := strconv.ParseFloat(raw, 64)
	if err != nil || fee < 0 {
		fmt.Println("Invalid value.")
		return
	}
	a.fee = fee
	fmt.Printf("✓ Updated: %.2f\n", a.fee)
}
