package library

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlainRenderer_Inventory(t *testing.T) {
	s := seededStore(t)
	var buf strings.Builder
	r := &PlainRenderer{Out: &buf}
	r.Inventory(s.Books())

	out := buf.String()
	assert.Contains(t, out, "Total: 3 books")
	assert.Contains(t, out, "Kürk Mantolu Madonna")
	assert.Contains(t, out, "On loan")
	assert.Contains(t, out, "Zey")
	assert.NotContains(t, out, "\033[", "plain output carries no escape codes")

	// Rows come out title-sorted.
	assert.Less(t, strings.Index(out, "1984"), strings.Index(out, "Dune"))
}

func TestPlainRenderer_EmptyInventory(t *testing.T) {
	var buf strings.Builder
	r := &PlainRenderer{Out: &buf}
	r.Inventory(nil)
	assert.Contains(t, buf.String(), "Inventory is empty.")
}

func TestPlainRenderer_OverdueReport(t *testing.T) {
	s := seededStore(t)
	books, count, fee := s.ListOverdue(todayStr(), 1.0)

	var buf strings.Builder
	r := &PlainRenderer{Out: &buf}
	r.OverdueReport(books, count, fee)

	assert.Contains(t, buf.String(), "1 overdue")
	assert.Contains(t, buf.String(), "1984")
}

func TestColorRenderer_InventoryMarksState(t *testing.T) {
	s := seededStore(t)
	var buf strings.Builder
	r := &ColorRenderer{Out: &buf, width: 60}
	r.Inventory(s.Books())

	out := buf.String()
	assert.Contains(t, out, ansiGreen+"Available"+ansiReset)
	assert.Contains(t, out, ansiRed+"On loan"+ansiReset)
	// The seeded 1984 loan is overdue, so its due date is highlighted.
	assert.Contains(t, out, ansiYellow+inDaysStr(-2)+ansiReset)
	assert.Contains(t, out, strings.Repeat("─", 60))
}

func TestHighlight(t *testing.T) {
	assert.Equal(t, ansiYellow+"Dune"+ansiReset, highlight("Dune", []string{"dune"}))
	assert.Equal(t, "K"+ansiYellow+"ür"+ansiReset+"k", highlight("Kürk", []string{"ür"}))
	assert.Equal(t, "Dune", highlight("Dune", []string{"orwell"}))
	assert.Equal(t, "Dune", highlight("Dune", nil))
}

func TestNewRenderer_ModeSelection(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out.txt"))
	require.NoError(t, err)
	defer f.Close()

	_, plain := NewRenderer("plain", f).(*PlainRenderer)
	assert.True(t, plain)
	_, color := NewRenderer("color", f).(*ColorRenderer)
	assert.True(t, color)
	// A regular file is not a terminal, so auto falls back to plain.
	_, auto := NewRenderer("auto", f).(*PlainRenderer)
	assert.True(t, auto)
}
