package repository

import (
	"context"

	"github.com/photoshare/identity/domain"
)

// UserStore persists user accounts. Every method maps to a single atomic row
// operation; no method requires a multi-statement transaction.
type UserStore interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	CountUsers(ctx context.Context) (int, error)

	SetRole(ctx context.Context, email string, role domain.Role) error
	SetActive(ctx context.Context, email string, active bool) error
	SetAvatar(ctx context.Context, email string, url string) error
	MarkConfirmed(ctx context.Context, email string) error

	SetRenewalCredential(ctx context.Context, email string, credential string) error
	ClearRenewalCredential(ctx context.Context, email string) error
	// RotateRenewalCredential replaces the stored renewal credential only if it
	// still equals previous. Returns ErrStaleCredential when another rotation
	// won the race.
	RotateRenewalCredential(ctx context.Context, email string, previous, next string) error
}
