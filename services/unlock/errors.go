package unlock

import "errors"

var (
	// ErrAlreadyPending is returned when the session already has an unlock call outstanding.
	ErrAlreadyPending = errors.New("unlock request already pending")
	// ErrSuperseded is returned in place of an outcome for a request cancelled before it resolved.
	ErrSuperseded = errors.New("unlock request superseded")
)
