package collection

import (
	"sort"
	"strings"
	"sync"
	"time"

	"video-tagger/internal/database"
	"video-tagger/internal/filter"
	"video-tagger/internal/logging"
	"video-tagger/internal/metrics"
)

// SortColumn identifies the file attribute a View is ordered by.
type SortColumn string

const (
	SortByName     SortColumn = "name"
	SortByPath     SortColumn = "path"
	SortBySize     SortColumn = "size"
	SortByDate     SortColumn = "date"
	SortByDuration SortColumn = "duration"
	SortByRating   SortColumn = "rating"
	SortByTags     SortColumn = "tags"
)

// ValidSortColumn reports whether s names a known sort column.
func ValidSortColumn(s string) bool {
	switch SortColumn(s) {
	case SortByName, SortByPath, SortBySize, SortByDate, SortByDuration, SortByRating, SortByTags:
		return true
	}
	return false
}

// View is the filtered, sorted projection of the library. The file the
// user last interacted with can be pinned; a pinned file stays visible
// even when the active criteria would exclude it. Pinning alone never
// triggers a re-filter, so a previously pinned file that fails the
// criteria drops out only on the next recomputation.
type View struct {
	mu       sync.RWMutex
	files    []*database.VideoFile
	visible  []*database.VideoFile
	flt      *filter.Filter
	pinnedID int64
	column   SortColumn
	asc      bool
	onChange func(visible, total int)
}

// NewView returns a View with the identity filter, sorted by name
// ascending, containing no files.
func NewView() *View {
	flt, err := filter.Compile(filter.Default())
	if err != nil {
		// Default() contains no pattern and cannot fail to compile.
		logging.Error("compiling identity filter: %v", err)
	}
	return &View{
		flt:    flt,
		column: SortByName,
		asc:    true,
	}
}

// OnChange registers a callback invoked after every recomputation with
// the visible and total file counts. Passing nil clears it.
func (v *View) OnChange(fn func(visible, total int)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.onChange = fn
}

// SetFiles replaces the entire working set and recomputes the view.
func (v *View) SetFiles(files []*database.VideoFile) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.files = make([]*database.VideoFile, len(files))
	copy(v.files, files)
	v.refilterLocked()
}

// SetCriteria compiles and activates new filter criteria, then
// recomputes the view. The previous filter stays active if the new
// criteria do not compile.
func (v *View) SetCriteria(c filter.Criteria) error {
	flt, err := filter.Compile(c)
	if err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.flt = flt
	v.refilterLocked()
	return nil
}

// Criteria returns the active filter criteria.
func (v *View) Criteria() filter.Criteria {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.flt.Criteria()
}

// SetPinned records the file the user is interacting with. It does not
// recompute the view: the pin takes effect on the next re-filter, and
// un-pinning a hidden-but-pinned file only hides it then.
func (v *View) SetPinned(id int64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pinnedID = id
}

// Pinned returns the pinned file ID, 0 when nothing is pinned.
func (v *View) Pinned() int64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.pinnedID
}

// SortBy changes the ordering and re-sorts the visible slice in place.
func (v *View) SortBy(column SortColumn, ascending bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.column = column
	v.asc = ascending
	v.sortLocked()
	v.notifyLocked()
}

// Visible returns a snapshot copy of the current projection.
func (v *View) Visible() []*database.VideoFile {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]*database.VideoFile, len(v.visible))
	copy(out, v.visible)
	return out
}

// Total returns the size of the full working set.
func (v *View) Total() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.files)
}

// Get returns the file with the given ID from the working set, or nil.
func (v *View) Get(id int64) *database.VideoFile {
	v.mu.RLock()
	defer v.mu.RUnlock()
	for _, f := range v.files {
		if f.ID == id {
			return f
		}
	}
	return nil
}

// All returns a snapshot copy of the full working set, unfiltered.
func (v *View) All() []*database.VideoFile {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]*database.VideoFile, len(v.files))
	copy(out, v.files)
	return out
}

// Add inserts a file into the working set and recomputes the view.
func (v *View) Add(file *database.VideoFile) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.files = append(v.files, file)
	v.refilterLocked()
}

// Remove drops the file with the given ID from the working set. It
// also clears the pin if that file was pinned.
func (v *View) Remove(id int64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i, f := range v.files {
		if f.ID == id {
			v.files = append(v.files[:i], v.files[i+1:]...)
			break
		}
	}
	if v.pinnedID == id {
		v.pinnedID = 0
	}
	v.refilterLocked()
}

// Invalidate recomputes the view against the current criteria. Callers
// use it after mutating file attributes (ratings, tags) in place.
func (v *View) Invalidate() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.refilterLocked()
}

// Bounds derives permissive criteria from the working set: size and
// date ranges spanning every file, and the path prefix common to all
// of them. An empty set yields the identity criteria.
func (v *View) Bounds() filter.Criteria {
	v.mu.RLock()
	defer v.mu.RUnlock()

	c := filter.Default()
	if len(v.files) == 0 {
		return c
	}

	c.SizeMin = v.files[0].Size
	c.SizeMax = v.files[0].Size
	c.DateMin = v.files[0].DateModified
	c.DateMax = v.files[0].DateModified
	prefix := v.files[0].Path

	for _, f := range v.files[1:] {
		if f.Size < c.SizeMin {
			c.SizeMin = f.Size
		}
		if f.Size > c.SizeMax {
			c.SizeMax = f.Size
		}
		if f.DateModified.Before(c.DateMin) {
			c.DateMin = f.DateModified
		}
		if f.DateModified.After(c.DateMax) {
			c.DateMax = f.DateModified
		}
		prefix = commonPrefix(prefix, f.Path)
	}

	// Trim the shared prefix back to a directory boundary.
	if i := strings.LastIndexByte(prefix, '/'); i >= 0 {
		prefix = prefix[:i+1]
	} else {
		prefix = ""
	}
	c.PathPrefix = prefix
	return c
}

func commonPrefix(a, b string) string {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[:i]
		}
	}
	return a[:n]
}

// refilterLocked rebuilds the visible slice from the working set. The
// caller must hold v.mu for writing.
func (v *View) refilterLocked() {
	start := time.Now()

	v.visible = v.visible[:0]
	for _, f := range v.files {
		if v.flt.Matches(v.pinnedID, f) {
			v.visible = append(v.visible, f)
		}
	}
	v.sortLocked()

	metrics.CollectionRefilterDuration.Observe(time.Since(start).Seconds())
	v.notifyLocked()
}

func (v *View) notifyLocked() {
	metrics.CollectionVisibleFiles.Set(float64(len(v.visible)))
	metrics.CollectionTotalFiles.Set(float64(len(v.files)))
	if v.onChange != nil {
		v.onChange(len(v.visible), len(v.files))
	}
}

// sortLocked orders the visible slice by the active column. The sort
// is stable so switching columns keeps the previous order as the
// secondary key. Size, duration and rating compare numerically.
func (v *View) sortLocked() {
	less := v.lessFunc()
	if !v.asc {
		inner := less
		less = func(i, j int) bool { return inner(j, i) }
	}
	sort.SliceStable(v.visible, less)
}

func (v *View) lessFunc() func(i, j int) bool {
	s := v.visible
	switch v.column {
	case SortByPath:
		return func(i, j int) bool { return s[i].Path < s[j].Path }
	case SortBySize:
		return func(i, j int) bool { return s[i].Size < s[j].Size }
	case SortByDate:
		return func(i, j int) bool { return s[i].DateModified.Before(s[j].DateModified) }
	case SortByDuration:
		return func(i, j int) bool { return durationOrZero(s[i]) < durationOrZero(s[j]) }
	case SortByRating:
		return func(i, j int) bool { return s[i].RatingOrZero() < s[j].RatingOrZero() }
	case SortByTags:
		return func(i, j int) bool {
			return strings.Join(s[i].TagNames(), ";") < strings.Join(s[j].TagNames(), ";")
		}
	default: // SortByName
		return func(i, j int) bool {
			return strings.ToLower(s[i].Name()) < strings.ToLower(s[j].Name())
		}
	}
}

func durationOrZero(f *database.VideoFile) float64 {
	if f.Duration == nil {
		return 0
	}
	return *f.Duration
}
