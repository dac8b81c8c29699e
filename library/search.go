package library

import (
	"regexp"
	"sort"
	"strings"
)

// SearchMode selects how query tokens combine.
type SearchMode string

const (
	ModeAny    SearchMode = "any"    // at least one token matches
	ModeAll    SearchMode = "all"    // every token matches
	ModePrefix SearchMode = "prefix" // haystack or raw title starts with a token
)

// OrderBy selects result ordering.
type OrderBy string

const (
	OrderTitle   OrderBy = "title"   // case-insensitive ascending (default)
	OrderAuthor  OrderBy = "author"  // case-insensitive ascending, title tie-break
	OrderDue     OrderBy = "due"     // ascending, missing due dates last
	OrderCreated OrderBy = "created" // newest first
)

// SearchOptions tunes a Search call. The zero value means: any-mode token
// matching, no normalization, no post-filters, title ordering.
type SearchOptions struct {
	Mode      SearchMode
	Regex     bool
	Normalize bool
	Available *bool  // exact availability, nil = no filter
	Borrower  string // normalized exact-match borrower, "" = no filter
	DueBefore string // keep loans due strictly before this date, "" = no filter
	OrderBy   OrderBy
}

// Search scans the collection for records matching the query and options.
// A blank query short-circuits to an empty result. The returned slice is
// fresh but holds shared record references; the collection is not mutated.
func (s *Store) Search(query string, opts SearchOptions) ([]*Record, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return []*Record{}, nil
	}

	fold := strings.ToLower
	if opts.Normalize {
		fold = NormalizeKey
	}
	haystack := func(b *Record) string {
		return fold(strings.TrimSpace(b.Title + " " + b.Author))
	}

	var match func(b *Record) bool
	if opts.Regex {
		pattern, err := regexp.Compile("(?i)" + fold(q))
		if err != nil {
			return nil, validationCause("invalid regular expression", err)
		}
		match = func(b *Record) bool { return pattern.MatchString(haystack(b)) }
	} else {
		tokens := strings.Fields(fold(q))
		match = func(b *Record) bool {
			hay := haystack(b)
			switch opts.Mode {
			case ModeAll:
				for _, tok := range tokens {
					if !strings.Contains(hay, tok) {
						return false
					}
				}
				return true
			case ModePrefix:
				rawTitle := strings.ToLower(b.Title)
				for _, tok := range tokens {
					if strings.HasPrefix(hay, tok) || strings.HasPrefix(rawTitle, tok) {
						return true
					}
				}
				return false
			default: // ModeAny
				for _, tok := range tokens {
					if strings.Contains(hay, tok) {
						return true
					}
				}
				return false
			}
		}
	}

	filter, err := buildPostFilter(opts)
	if err != nil {
		return nil, err
	}

	out := []*Record{}
	for _, b := range s.books {
		if match(b) && filter(b) {
			out = append(out, b)
		}
	}

	orderResults(out, opts.OrderBy)
	s.log.Info("search", "query", q, "mode", string(opts.Mode), "normalize", opts.Normalize, "results", len(out))
	return out, nil
}

func buildPostFilter(opts SearchOptions) (func(*Record) bool, error) {
	borrowerKey := ""
	if opts.Borrower != "" {
		borrowerKey = NormalizeKey(opts.Borrower)
	}
	if opts.DueBefore != "" {
		if _, ok := parseDate(opts.DueBefore); !ok {
			return nil, validationErr("dueBefore must be a YYYY-MM-DD date")
		}
	}

	return func(b *Record) bool {
		if opts.Available != nil && b.Available != *opts.Available {
			return false
		}
		if borrowerKey != "" && NormalizeKey(b.Borrower) != borrowerKey {
			return false
		}
		if opts.DueBefore != "" {
			due, ok := parseDate(b.DueDate)
			if !ok {
				return false
			}
			limit, _ := parseDate(opts.DueBefore)
			if !due.Before(limit) {
				return false
			}
		}
		return true
	}, nil
}

func orderResults(books []*Record, by OrderBy) {
	switch by {
	case OrderAuthor:
		sort.SliceStable(books, func(i, j int) bool {
			ai, aj := strings.ToLower(books[i].Author), strings.ToLower(books[j].Author)
			if ai != aj {
				return ai < aj
			}
			return strings.ToLower(books[i].Title) < strings.ToLower(books[j].Title)
		})
	case OrderDue:
		sort.SliceStable(books, func(i, j int) bool {
			di, iOK := parseDate(books[i].DueDate)
			dj, jOK := parseDate(books[j].DueDate)
			if iOK != jOK {
				return iOK // parseable dates sort ahead of missing ones
			}
			if !iOK {
				return false
			}
			return di.Before(dj)
		})
	case OrderCreated:
		sort.SliceStable(books, func(i, j int) bool {
			return books[i].CreatedAt > books[j].CreatedAt
		})
	default: // OrderTitle
		sort.SliceStable(books, func(i, j int) bool {
			return strings.ToLower(books[i].Title) < strings.ToLower(books[j].Title)
		})
	}
}
