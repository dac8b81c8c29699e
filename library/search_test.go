package library

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func titlesOf(books []*Record) []string {
	out := make([]string, 0, len(books))
	for _, b := range books {
		out = append(out, b.Title)
	}
	return out
}

func TestSearch_BlankQueryShortCircuits(t *testing.T) {
	s := seededStore(t)
	for _, q := range []string{"", "   ", "\t"} {
		res, err := s.Search(q, SearchOptions{Mode: ModeAny, Normalize: true})
		require.NoError(t, err)
		assert.Empty(t, res)
	}
}

func TestSearch_AnyModeNormalized(t *testing.T) {
	s := seededStore(t)

	res, err := s.Search("dUnE", SearchOptions{Mode: ModeAny, Normalize: true})
	require.NoError(t, err)
	assert.Contains(t, titlesOf(res), "Dune")

	// Accent-insensitive both ways.
	res, err = s.Search("kurk", SearchOptions{Mode: ModeAny, Normalize: true})
	require.NoError(t, err)
	assert.Contains(t, titlesOf(res), "Kürk Mantolu Madonna")
}

func TestSearch_PrefixMode(t *testing.T) {
	s := seededStore(t)
	res, err := s.Search("kürk man", SearchOptions{Mode: ModePrefix, Normalize: true})
	require.NoError(t, err)
	assert.Contains(t, titlesOf(res), "Kürk Mantolu Madonna")

	// Prefix must match the start, not the middle.
	res, err = s.Search("mantolu", SearchOptions{Mode: ModePrefix, Normalize: true})
	require.NoError(t, err)
	assert.NotContains(t, titlesOf(res), "Kürk Mantolu Madonna")
}

func TestSearch_AllMode(t *testing.T) {
	s := seededStore(t)

	res, err := s.Search("george 1984", SearchOptions{Mode: ModeAll, Normalize: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"1984"}, titlesOf(res))

	res, err = s.Search("george dune", SearchOptions{Mode: ModeAll, Normalize: true})
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestSearch_Regex(t *testing.T) {
	s := seededStore(t)

	res, err := s.Search("^d.ne", SearchOptions{Regex: true, Normalize: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"Dune"}, titlesOf(res))

	// Substring semantics: match anywhere in the haystack.
	res, err = s.Search("orwell$", SearchOptions{Regex: true, Normalize: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"1984"}, titlesOf(res))

	_, err = s.Search("[unclosed", SearchOptions{Regex: true})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSearch_AvailableFilter(t *testing.T) {
	s := seededStore(t)
	avail := true

	res, err := s.Search("e", SearchOptions{Mode: ModeAny, Normalize: true, Available: &avail})
	require.NoError(t, err)
	for _, b := range res {
		assert.True(t, b.Available)
	}

	avail = false
	res, err = s.Search("e", SearchOptions{Mode: ModeAny, Normalize: true, Available: &avail})
	require.NoError(t, err)
	for _, b := range res {
		assert.False(t, b.Available)
	}
}

func TestSearch_BorrowerFilter(t *testing.T) {
	s := seededStore(t)
	res, err := s.Search("e", SearchOptions{Mode: ModeAny, Normalize: true, Borrower: "ZEY"})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "1984", res[0].Title)
}

func TestSearch_DueBeforeFilter(t *testing.T) {
	s := seededStore(t)

	// Seeded 1984 is due 2 days ago; tomorrow's cutoff catches it.
	res, err := s.Search("e", SearchOptions{Mode: ModeAny, Normalize: true, DueBefore: inDaysStr(1)})
	require.NoError(t, err)
	assert.Equal(t, []string{"1984"}, titlesOf(res))

	// A cutoff before the due date excludes it; records without a due
	// date are dropped either way.
	res, err = s.Search("e", SearchOptions{Mode: ModeAny, Normalize: true, DueBefore: inDaysStr(-10)})
	require.NoError(t, err)
	assert.Empty(t, res)

	_, err = s.Search("e", SearchOptions{Mode: ModeAny, DueBefore: "13/01/2025"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSearch_Ordering(t *testing.T) {
	s := newTestStore(t)
	gamma, err := s.Add("Gamma", "Walker", true)
	require.NoError(t, err)
	alpha, err := s.Add("alpha", "Young", true)
	require.NoError(t, err)
	beta, err := s.Add("Beta", "Adams", true)
	require.NoError(t, err)
	gamma.CreatedAt = "2024-01-01T10:00:00"
	alpha.CreatedAt = "2024-01-02T10:00:00"
	beta.CreatedAt = "2024-01-03T10:00:00"

	// Every haystack contains "a".
	res, err := s.Search("a", SearchOptions{Mode: ModeAny, Normalize: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha", "Beta", "Gamma"}, titlesOf(res))

	res, err = s.Search("a", SearchOptions{Mode: ModeAny, Normalize: true, OrderBy: OrderAuthor})
	require.NoError(t, err)
	assert.Equal(t, []string{"Beta", "Gamma", "Alpha"}, titlesOf(res))

	// Due ordering: loans sort by due date, records without one go last.
	ok, err := s.Borrow(beta.ID, "ali", 5)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = s.Borrow(gamma.ID, "ayşe", 2)
	require.NoError(t, err)
	require.True(t, ok)
	res, err = s.Search("a", SearchOptions{Mode: ModeAny, Normalize: true, OrderBy: OrderDue})
	require.NoError(t, err)
	assert.Equal(t, []string{"Gamma", "Beta", "Alpha"}, titlesOf(res))

	// Created ordering: newest first.
	res, err = s.Search("a", SearchOptions{Mode: ModeAny, Normalize: true, OrderBy: OrderCreated})
	require.NoError(t, err)
	assert.Equal(t, []string{"Beta", "Alpha", "Gamma"}, titlesOf(res))
}

func TestSearch_DoesNotMutateAndSharesReferences(t *testing.T) {
	s := seededStore(t)
	res, err := s.Search("dune", SearchOptions{Mode: ModeAny, Normalize: true})
	require.NoError(t, err)
	require.Len(t, res, 1)

	// The result holds the live record, not a copy.
	res[0].Borrower = "probe"
	assert.Equal(t, "probe", s.find(1).Borrower)
	s.find(1).Borrower = ""
	assert.Equal(t, 3, s.Len())
}
