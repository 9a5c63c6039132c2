package model

import "errors"

// ErrReparseStopped is returned when a snapshot is scheduled on a reparser
// that has been stopped.
var ErrReparseStopped = errors.New("reparser stopped")
