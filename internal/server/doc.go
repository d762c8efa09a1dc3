// Package server wires and runs the application's HTTP transport.
//
// It provides orchestration for the server lifecycle: startup, signal
// handling, graceful shutdown, and supervision of background workers
// that share the server's lifetime.
package server
