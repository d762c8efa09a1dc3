package server

// Server is the lifecycle contract of the inbound transport.
//
// RunServer blocks until shutdown completes, either because the process
// received a termination signal or because the listener failed.
type Server interface {
	// RunServer starts serving requests and blocks until the server stops.
	RunServer()

	// Shutdown gracefully stops the server, letting in-flight requests
	// finish.
	Shutdown()
}
