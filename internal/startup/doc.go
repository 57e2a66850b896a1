// Package startup handles process initialization: configuration from
// environment variables, build information, and the structured startup
// and shutdown logging that brackets the server's lifetime.
package startup
