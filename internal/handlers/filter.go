package handlers

import (
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"

	"video-tagger/internal/filter"
)

// FilterRequest is the wire shape of filter criteria. Size bounds are
// human-readable strings ("250 MB", "1.5 GiB"); date bounds are
// RFC 3339. Empty strings and omitted fields mean unbounded.
type FilterRequest struct {
	NamePattern   string   `json:"namePattern"`
	CaseSensitive bool     `json:"caseSensitive"`
	PathPrefix    string   `json:"pathPrefix"`
	RatingMin     *int     `json:"ratingMin"`
	RatingMax     *int     `json:"ratingMax"`
	Whitelist     []string `json:"whitelist"`
	Blacklist     []string `json:"blacklist"`
	SizeMin       string   `json:"sizeMin"`
	SizeMax       string   `json:"sizeMax"`
	DateMin       string   `json:"dateMin"`
	DateMax       string   `json:"dateMax"`
}

// FilterResponse echoes the active criteria together with the observed
// collection bounds a client can seed its inputs from.
type FilterResponse struct {
	Criteria criteriaJSON `json:"criteria"`
	Bounds   criteriaJSON `json:"bounds"`
}

type criteriaJSON struct {
	NamePattern   string   `json:"namePattern"`
	CaseSensitive bool     `json:"caseSensitive"`
	PathPrefix    string   `json:"pathPrefix"`
	RatingMin     int      `json:"ratingMin"`
	RatingMax     int      `json:"ratingMax"`
	Whitelist     []string `json:"whitelist"`
	Blacklist     []string `json:"blacklist"`
	SizeMin       int64    `json:"sizeMin"`
	SizeMax       int64    `json:"sizeMax"`
	SizeMinHuman  string   `json:"sizeMinHuman"`
	SizeMaxHuman  string   `json:"sizeMaxHuman"`
	DateMin       string   `json:"dateMin"`
	DateMax       string   `json:"dateMax"`
}

func toCriteriaJSON(c filter.Criteria) criteriaJSON {
	out := criteriaJSON{
		NamePattern:   c.NamePattern,
		CaseSensitive: c.CaseSensitive,
		PathPrefix:    c.PathPrefix,
		RatingMin:     c.RatingMin,
		RatingMax:     c.RatingMax,
		Whitelist:     c.Whitelist,
		Blacklist:     c.Blacklist,
		SizeMin:       c.SizeMin,
		SizeMax:       c.SizeMax,
		SizeMinHuman:  humanize.IBytes(uint64(c.SizeMin)),
		DateMin:       c.DateMin.Format(time.RFC3339),
		DateMax:       c.DateMax.Format(time.RFC3339),
	}
	if c.SizeMax != math.MaxInt64 {
		out.SizeMaxHuman = humanize.IBytes(uint64(c.SizeMax))
	}
	if out.Whitelist == nil {
		out.Whitelist = []string{}
	}
	if out.Blacklist == nil {
		out.Blacklist = []string{}
	}
	return out
}

// GetFilter returns the active criteria and the collection bounds.
func (h *Handlers) GetFilter(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, FilterResponse{
		Criteria: toCriteriaJSON(h.view.Criteria()),
		Bounds:   toCriteriaJSON(h.view.Bounds()),
	})
}

// SetFilter replaces the active criteria and re-evaluates the view.
// All parsing and validation happens here; the filter package only
// ever receives well-formed criteria (its own pattern compilation is
// the one check it repeats).
func (h *Handlers) SetFilter(w http.ResponseWriter, r *http.Request) {
	var req FilterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	c, err := h.criteriaFromRequest(req)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.view.SetCriteria(c); err != nil {
		writeJSONError(w, "bad name pattern: "+err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, FilterResponse{
		Criteria: toCriteriaJSON(h.view.Criteria()),
		Bounds:   toCriteriaJSON(h.view.Bounds()),
	})
}

func (h *Handlers) criteriaFromRequest(req FilterRequest) (filter.Criteria, error) {
	c := filter.Default()
	c.NamePattern = req.NamePattern
	c.CaseSensitive = req.CaseSensitive
	c.PathPrefix = req.PathPrefix

	if req.RatingMin != nil {
		c.RatingMin = *req.RatingMin
	}
	if req.RatingMax != nil {
		c.RatingMax = *req.RatingMax
	}
	if c.RatingMin < 0 || c.RatingMax > 5 || c.RatingMin > c.RatingMax {
		return c, fmt.Errorf("rating range [%d, %d] is not within [0, 5]", c.RatingMin, c.RatingMax)
	}

	// User-typed tag names match known tags case-insensitively; unknown
	// names pass through as typed and simply never match a file.
	c.Whitelist = h.resolveTags(req.Whitelist)
	c.Blacklist = h.resolveTags(req.Blacklist)

	if req.SizeMin != "" {
		size, err := humanize.ParseBytes(req.SizeMin)
		if err != nil {
			return c, fmt.Errorf("bad sizeMin %q: %v", req.SizeMin, err)
		}
		c.SizeMin = int64(size)
	}
	if req.SizeMax != "" {
		size, err := humanize.ParseBytes(req.SizeMax)
		if err != nil {
			return c, fmt.Errorf("bad sizeMax %q: %v", req.SizeMax, err)
		}
		c.SizeMax = int64(size)
	}
	if c.SizeMin > c.SizeMax {
		return c, fmt.Errorf("sizeMin exceeds sizeMax")
	}

	if req.DateMin != "" {
		t, err := time.Parse(time.RFC3339, req.DateMin)
		if err != nil {
			return c, fmt.Errorf("bad dateMin %q: %v", req.DateMin, err)
		}
		c.DateMin = t
	}
	if req.DateMax != "" {
		t, err := time.Parse(time.RFC3339, req.DateMax)
		if err != nil {
			return c, fmt.Errorf("bad dateMax %q: %v", req.DateMax, err)
		}
		c.DateMax = t
	}
	if c.DateMin.After(c.DateMax) {
		return c, fmt.Errorf("dateMin is after dateMax")
	}

	return c, nil
}

func (h *Handlers) resolveTags(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	out := make([]string, len(names))
	for i, name := range names {
		if stored, ok := h.tags.Resolve(name); ok {
			out[i] = stored
		} else {
			out[i] = name
		}
	}
	return out
}
