package booking

import "errors"

var (
	// ErrLockHeld signals another finalization currently owns the slot lock.
	ErrLockHeld = errors.New("booking slot lock already held")

	// ErrCapacityExceeded signals the commit-time capacity re-check failed.
	ErrCapacityExceeded = errors.New("capacity exceeded at commit time")
)
