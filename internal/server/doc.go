// Package server runs the HTTP transport of the demo service.
//
// It owns the server lifecycle: startup, signal handling and graceful
// shutdown.
package server
