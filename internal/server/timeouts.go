package server

import "time"

const (
	readTimeout = 10 * time.Second
	// Cold requests fetch a full season upstream.
	writeTimeout = 10 * time.Minute
	idleTimeout  = 60 * time.Second
)

// shutdownTimeout remains a var for tests to override.
var shutdownTimeout = 10 * time.Second
