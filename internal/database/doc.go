// Package database owns the durable state of the video tagger: tracked
// files, tags, file-tag associations and the key/value settings store,
// all backed by a single SQLite database file.
//
// The store is the source of truth. Entities loaded from it (VideoFile)
// are plain mutable values; callers that edit them are responsible for
// writing the matching change back through this package.
package database
