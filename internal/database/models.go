package database

import (
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// VideoFile is one tracked video, keyed by its absolute path.
//
// Rating and Tags are mutable in memory; Duration and Rating use pointers
// because "unknown" and "unrated" are distinct from zero values. Identity
// for collection membership is ID, which is 0 until the store assigns one.
type VideoFile struct {
	ID           int64
	Path         string
	Size         int64
	DateModified time.Time
	Duration     *float64
	Rating       *int
	Tags         map[string]struct{}
}

// NewVideoFile constructs an untracked file (ID 0) with an empty tag set.
func NewVideoFile(path string, size int64, dateModified time.Time) *VideoFile {
	return &VideoFile{
		Path:         path,
		Size:         size,
		DateModified: dateModified,
		Tags:         make(map[string]struct{}),
	}
}

// Name returns the final path element.
func (f *VideoFile) Name() string {
	return filepath.Base(f.Path)
}

// Stem returns the file name without its last extension segment.
func (f *VideoFile) Stem() string {
	name := f.Name()
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// Ext returns the file name's last extension segment, including the dot.
func (f *VideoFile) Ext() string {
	return filepath.Ext(f.Path)
}

// RatingOrZero treats an unrated file as rating 0.
func (f *VideoFile) RatingOrZero() int {
	if f.Rating == nil {
		return 0
	}
	return *f.Rating
}

// HasTag reports whether the tag is attached.
func (f *VideoFile) HasTag(name string) bool {
	_, ok := f.Tags[name]
	return ok
}

// AddTag attaches a tag to the in-memory tag set. No I/O.
func (f *VideoFile) AddTag(name string) {
	if f.Tags == nil {
		f.Tags = make(map[string]struct{})
	}
	f.Tags[name] = struct{}{}
}

// RemoveTag detaches a tag from the in-memory tag set. No I/O.
func (f *VideoFile) RemoveTag(name string) {
	delete(f.Tags, name)
}

// TagNames returns the attached tags sorted by name.
func (f *VideoFile) TagNames() []string {
	names := make([]string, 0, len(f.Tags))
	for name := range f.Tags {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
