package library

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"golang.org/x/term"
)

// ANSI escapes for the color renderer.
const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiBold   = "\033[1m"
	ansiDim    = "\033[2m"
)

// Renderer displays collection views. Implementations are selected by
// configuration, never by probing for optional libraries at runtime.
type Renderer interface {
	Inventory(books []*Record)
	SearchResults(books []*Record, tokens []string)
	OverdueReport(books []*Record, count int, totalFee float64)
}

// NewRenderer builds a renderer for the given mode: "plain", "color", or
// "auto" (color only when out is a terminal).
func NewRenderer(mode string, out *os.File) Renderer {
	switch mode {
	case "plain":
		return &PlainRenderer{Out: out}
	case "color":
		return &ColorRenderer{Out: out, width: termWidth(out)}
	default: // auto
		if term.IsTerminal(int(out.Fd())) {
			return &ColorRenderer{Out: out, width: termWidth(out)}
		}
		return &PlainRenderer{Out: out}
	}
}

func termWidth(out *os.File) int {
	if w, _, err := term.GetSize(int(out.Fd())); err == nil && w > 40 {
		return w
	}
	return 100
}

// StatusText is the human status of a record.
func StatusText(b *Record) string {
	if b.Available {
		return "Available"
	}
	return "On loan"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func byTitle(books []*Record) []*Record {
	ordered := make([]*Record, len(books))
	copy(ordered, books)
	sort.SliceStable(ordered, func(i, j int) bool {
		return strings.ToLower(ordered[i].Title) < strings.ToLower(ordered[j].Title)
	})
	return ordered
}

func inventoryCounts(books []*Record) (total, available, borrowed, overdue int) {
	today := time.Now()
	total = len(books)
	for _, b := range books {
		if b.Available {
			available++
		}
		if b.Overdue(today) {
			overdue++
		}
	}
	borrowed = total - available
	return
}

// PlainRenderer prints fixed-width columns with no escape codes, suitable
// for pipes and logs.
type PlainRenderer struct {
	Out io.Writer
}

func (p *PlainRenderer) Inventory(books []*Record) {
	if len(books) == 0 {
		fmt.Fprintln(p.Out, "Inventory is empty.")
		return
	}
	fmt.Fprintf(p.Out, "%-5s %-32s %-24s %-10s %-16s %-12s\n", "ID", "Title", "Author", "Status", "Borrower", "Due")
	fmt.Fprintln(p.Out, strings.Repeat("-", 100))
	for _, b := range byTitle(books) {
		fmt.Fprintf(p.Out, "%-5d %-32s %-24s %-10s %-16s %-12s\n",
			b.ID, b.Title, b.Author, StatusText(b), orDash(b.Borrower), orDash(b.DueDate))
	}
	fmt.Fprintf(p.Out, "Total: %d books\n", len(books))
}

func (p *PlainRenderer) SearchResults(books []*Record, _ []string) {
	fmt.Fprintf(p.Out, "%d results:\n", len(books))
	for _, b := range books {
		fmt.Fprintf(p.Out, " - [%d] %s — %s | %s\n", b.ID, b.Title, b.Author, StatusText(b))
	}
}

func (p *PlainRenderer) OverdueReport(books []*Record, count int, totalFee float64) {
	fmt.Fprintf(p.Out, "%d overdue (estimated fee=%.2f)\n", count, totalFee)
	for _, b := range books {
		fmt.Fprintf(p.Out, " - [%d] %s — %s (due %s, borrower %s)\n",
			b.ID, b.Title, b.Author, orDash(b.DueDate), orDash(b.Borrower))
	}
}

// ColorRenderer adds ANSI status colors, overdue highlighting, a badge for
// records created in the last 24h, and a summary line sized to the terminal.
type ColorRenderer struct {
	Out   io.Writer
	width int
}

func (c *ColorRenderer) rule() string {
	w := c.width
	if w <= 0 {
		w = 100
	}
	return strings.Repeat("─", w)
}

func (c *ColorRenderer) Inventory(books []*Record) {
	if len(books) == 0 {
		fmt.Fprintln(c.Out, "📚 Inventory is empty.")
		return
	}
	total, available, borrowed, overdue := inventoryCounts(books)
	fmt.Fprintf(c.Out, "%s📚 Inventory%s  %d total | %s%d available%s | %s%d on loan%s | %s%d overdue%s\n",
		ansiBold, ansiReset,
		total, ansiGreen, available, ansiReset,
		ansiRed, borrowed, ansiReset,
		ansiYellow, overdue, ansiReset)
	fmt.Fprintln(c.Out, c.rule())

	today := time.Now()
	for _, b := range byTitle(books) {
		status := ansiGreen + StatusText(b) + ansiReset
		if !b.Available {
			status = ansiRed + StatusText(b) + ansiReset
		}
		due := orDash(b.DueDate)
		if b.Overdue(today) {
			due = ansiYellow + due + ansiReset
		}
		badge := ""
		if b.IsNew() {
			badge = " 🆕"
		}
		fmt.Fprintf(c.Out, "[%3d] %s%s — %s | %s | Borrower: %s | Due: %s\n",
			b.ID, b.Title, badge, b.Author, status, orDash(b.Borrower), due)
	}
	fmt.Fprintln(c.Out, c.rule())
}

func (c *ColorRenderer) SearchResults(books []*Record, tokens []string) {
	fmt.Fprintf(c.Out, "%s%d results%s\n", ansiDim, len(books), ansiReset)
	for _, b := range books {
		fmt.Fprintf(c.Out, " - [%d] %s — %s | %s\n",
			b.ID, highlight(b.Title, tokens), highlight(b.Author, tokens), StatusText(b))
	}
}

func (c *ColorRenderer) OverdueReport(books []*Record, count int, totalFee float64) {
	fmt.Fprintf(c.Out, "%s⏰ %d overdue, estimated fee=%.2f%s\n", ansiYellow, count, totalFee, ansiReset)
	for _, b := range books {
		fmt.Fprintf(c.Out, " - [%d] %s — %s (due %s, borrower %s)\n",
			b.ID, b.Title, b.Author, orDash(b.DueDate), orDash(b.Borrower))
	}
}

// highlight wraps the first occurrence of each token in yellow. Tokens are
// matched case-insensitively against the raw text.
func highlight(text string, tokens []string) string {
	out := text
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		low := strings.ToLower(stripANSI(out))
		idx := strings.Index(low, strings.ToLower(tok))
		if idx < 0 {
			continue
		}
		plain := stripANSI(out)
		out = plain[:idx] + ansiYellow + plain[idx:idx+len(tok)] + ansiReset + plain[idx+len(tok):]
	}
	return out
}

func stripANSI(s string) string {
	s = strings.ReplaceAll(s, ansiYellow, "")
	return strings.ReplaceAll(s, ansiReset, "")
}
