package session

import "errors"

// Client-visible outcomes of the session state machine. Each is terminal for
// its request; none is retried internally. Infrastructure failures are not
// part of this taxonomy and surface as wrapped repository.ErrUnavailable.
var (
	ErrNotFound          = errors.New("session: user not found")
	ErrInvalidCredential = errors.New("session: invalid credential")
	ErrEmailUnconfirmed  = errors.New("session: email not confirmed")
	ErrUserBanned        = errors.New("session: user banned")
	ErrInvalidToken      = errors.New("session: invalid token")
	ErrTokenRevoked      = errors.New("session: token revoked")
	ErrForbidden         = errors.New("session: forbidden")
	ErrConflict          = errors.New("session: email or username already registered")
)
