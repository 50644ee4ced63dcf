package repository

import "errors"

// ErrNotFound indicates a user was not located.
var ErrNotFound = errors.New("repository: not found")

// ErrConflict indicates a unique constraint (email or username) was violated.
var ErrConflict = errors.New("repository: conflict")

// ErrStaleCredential indicates a conditional renewal-credential rotation found
// the stored value already changed.
var ErrStaleCredential = errors.New("repository: stale renewal credential")

// ErrUnavailable wraps infrastructure failures (connectivity, timeouts) so they
// are never mistaken for a missing row.
var ErrUnavailable = errors.New("repository: unavailable")
