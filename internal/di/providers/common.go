// Package providers contains dependency injection providers for the shop server.
package providers

import "time"

const (
	// shutdownTimeout bounds the graceful shutdown of each service.
	shutdownTimeout = 30 * time.Second
	// startupTimeout bounds connecting to remote backends.
	startupTimeout = 10 * time.Second
)
