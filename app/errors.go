package app

import "errors"

// ErrSessionClosed is returned when a result arrives for a view that has
// already been torn down. The result is discarded.
var ErrSessionClosed = errors.New("timeline session closed")
