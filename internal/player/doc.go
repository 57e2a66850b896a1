// Package player drives an external VLC process through its rc
// (remote control) interface: commands go down the process's stdin,
// replies come back on stdout terminated by the "> " prompt.
//
// The player is best-effort throughout. A missing binary, a crashed
// process or a malformed reply never takes the application down; the
// failure is logged, counted, and reported to the caller as an error
// it is free to ignore.
package player
