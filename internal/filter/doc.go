// Package filter implements the composable file-filter predicate: an
// immutable Criteria value compiled once into a Filter that accepts or
// rejects files on name pattern, path prefix, rating range, tag
// whitelist/blacklist, size range and date range.
package filter
