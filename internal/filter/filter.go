package filter

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"video-tagger/internal/database"
)

// Criteria describes the active filter. It is a value object: consumers
// receive a whole new Criteria on every edit and never mutate one in
// place.
type Criteria struct {
	// NamePattern is matched against the file's stem as an unanchored
	// regular expression search. Empty matches everything.
	NamePattern   string
	CaseSensitive bool

	// PathPrefix, when non-empty, must prefix the file's path. Plain
	// character prefix, not path-segment aware.
	PathPrefix string

	// Rating bounds, inclusive, both in [0,5]. An unrated file counts
	// as rating 0.
	RatingMin int
	RatingMax int

	// Whitelist: every listed tag must be attached (subset test).
	// Blacklist: any listed tag attached rejects. Empty = no constraint.
	Whitelist []string
	Blacklist []string

	// Size bounds in bytes, inclusive.
	SizeMin int64
	SizeMax int64

	// Modification-time bounds, inclusive.
	DateMin time.Time
	DateMax time.Time
}

// Default returns the identity criteria: every file passes.
func Default() Criteria {
	return Criteria{
		RatingMin: 0,
		RatingMax: 5,
		SizeMin:   0,
		SizeMax:   math.MaxInt64,
		DateMin:   time.Time{},
		DateMax:   time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC),
	}
}

// Filter is a compiled Criteria. Compile validates the name pattern, so a
// Filter never fails mid-evaluation.
type Filter struct {
	criteria  Criteria
	name      *regexp.Regexp
	whitelist map[string]struct{}
	blacklist map[string]struct{}
}

// Compile validates and compiles a Criteria. Malformed name patterns are
// rejected here, at the input boundary, never during Matches.
func Compile(c Criteria) (*Filter, error) {
	pattern := c.NamePattern
	if !c.CaseSensitive {
		pattern = "(?i)" + pattern
	}
	name, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid name pattern: %w", err)
	}

	f := &Filter{
		criteria:  c,
		name:      name,
		whitelist: make(map[string]struct{}, len(c.Whitelist)),
		blacklist: make(map[string]struct{}, len(c.Blacklist)),
	}
	for _, tag := range c.Whitelist {
		f.whitelist[tag] = struct{}{}
	}
	for _, tag := range c.Blacklist {
		f.blacklist[tag] = struct{}{}
	}
	return f, nil
}

// Criteria returns the criteria this filter was compiled from.
func (f *Filter) Criteria() Criteria {
	return f.criteria
}

// Matches reports whether the file is visible under this filter. The
// pinned file id is part of the predicate context: the pinned file is
// accepted unconditionally so the active selection never disappears from
// view mid-edit. A pinnedID of 0 means nothing is pinned.
func (f *Filter) Matches(pinnedID int64, file *database.VideoFile) bool {
	if pinnedID != 0 && file.ID == pinnedID {
		return true
	}

	if !f.name.MatchString(file.Stem()) {
		return false
	}

	if f.criteria.PathPrefix != "" && !strings.HasPrefix(file.Path, f.criteria.PathPrefix) {
		return false
	}

	rating := file.RatingOrZero()
	if rating < f.criteria.RatingMin || rating > f.criteria.RatingMax {
		return false
	}

	for tag := range f.whitelist {
		if !file.HasTag(tag) {
			return false
		}
	}

	for tag := range f.blacklist {
		if file.HasTag(tag) {
			return false
		}
	}

	if file.Size < f.criteria.SizeMin || file.Size > f.criteria.SizeMax {
		return false
	}

	if file.DateModified.Before(f.criteria.DateMin) || file.DateModified.After(f.criteria.DateMax) {
		return false
	}

	return true
}
