/*
Package handlers exposes the application over an HTTP JSON API: the
library listing with its active filter, tagging and rating operations,
directory scans, settings, and the external-player controls.

Handlers are the validation boundary. Malformed input (bad regex,
unparsable size or date, out-of-range rating) is rejected with a 400
here; the packages underneath only ever see well-formed values. They
are also where the three views of a tag mutation are kept in step:
the store row, the in-memory file entity, and the tag-count aggregate
move together in every operation.
*/
package handlers
