// Package scanner walks a directory tree looking for video files and
// streams each hit over a channel. A scan runs in its own goroutine,
// honours context cancellation and an explicit abort flag, and always
// closes its event stream with exactly one terminal event.
package scanner
