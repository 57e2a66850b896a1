// Package collection maintains the in-memory working set of the video
// library: the full file list loaded from the store, the filtered and
// sorted view projected from it, and the live tag usage counts.
//
// The View is the single place re-filtering happens. Mutations
// (adding or removing files, changing the filter criteria, re-sorting)
// recompute the visible slice under the View's lock; readers get
// snapshot copies and never observe a partially updated projection.
package collection
