// Package process cleans up browser processes left behind after shutdown.
package process

import "errors"

// ErrInvalidPID is returned for zero or negative process IDs.
var ErrInvalidPID = errors.New("invalid process id")
