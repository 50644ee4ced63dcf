// Package account manages user records: registration, email confirmation and
// the privileged mutations (role changes, ban/unban, avatar updates). Every
// mutation that touches cached identity fields invalidates the cache entry
// before returning.
package account

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/photoshare/identity/crypto"
	"github.com/photoshare/identity/domain"
	"github.com/photoshare/identity/repository"
	"github.com/photoshare/identity/session"
	"github.com/photoshare/identity/token"
)

// Invalidator is the slice of the identity cache this service needs.
type Invalidator interface {
	Invalidate(ctx context.Context, email string) error
}

// Service handles account lifecycle and privileged mutations.
type Service struct {
	users  repository.UserStore
	cache  Invalidator
	codec  *token.Codec
	logger *slog.Logger
}

// New constructs a Service.
func New(users repository.UserStore, identities Invalidator, codec *token.Codec, logger *slog.Logger) *Service {
	return &Service{users: users, cache: identities, codec: codec, logger: logger}
}

// Register creates an unconfirmed account and returns it together with the
// email-verification token the caller should deliver. The very first account
// becomes the admin; everyone after is standard.
func (s *Service) Register(ctx context.Context, username, email, password string) (*domain.User, string, error) {
	digest, err := crypto.HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}
	count, err := s.users.CountUsers(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("count users: %w", err)
	}
	role := domain.RoleStandard
	if count == 0 {
		role = domain.RoleAdmin
	}
	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: digest,
		Role:         role,
		Active:       true,
		Confirmed:    false,
		Avatar:       GravatarURL(email),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, "", session.ErrConflict
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}
	verification, err := s.codec.IssueEmailVerification(email)
	if err != nil {
		return nil, "", fmt.Errorf("issue verification token: %w", err)
	}
	s.logger.Info("user registered", "user_id", user.ID, "role", string(user.Role))
	return user, verification, nil
}

// ConfirmEmail validates a verification token and marks the account
// confirmed. Confirming an already-confirmed account is a no-op.
func (s *Service) ConfirmEmail(ctx context.Context, verificationToken string) error {
	email, err := s.codec.DecodeEmailVerification(verificationToken)
	if err != nil {
		return session.ErrInvalidToken
	}
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return session.ErrNotFound
		}
		return fmt.Errorf("lookup user: %w", err)
	}
	if user.Confirmed {
		return nil
	}
	if err := s.users.MarkConfirmed(ctx, email); err != nil {
		return fmt.Errorf("mark confirmed: %w", err)
	}
	s.logger.Info("email confirmed", "user_id", user.ID)
	return nil
}

// SetRole changes a user's role. Admin only.
func (s *Service) SetRole(ctx context.Context, actor *domain.Identity, email string, role domain.Role) error {
	if err := session.Require(actor, domain.RoleAdmin); err != nil {
		return err
	}
	if !role.Valid() {
		return fmt.Errorf("set role: unknown role %q", role)
	}
	if err := s.users.SetRole(ctx, email, role); err != nil {
		return s.mapMutationErr("set role", err)
	}
	if err := s.cache.Invalidate(ctx, email); err != nil {
		return fmt.Errorf("invalidate cached identity: %w", err)
	}
	s.logger.Info("role changed", "email", email, "role", string(role), "actor_id", actor.ID)
	return nil
}

// SetActive bans or unbans a user. Admin only. Banning does not revoke
// already-issued access tokens; it invalidates the cache entry so new
// resolutions see the flag, and clears the renewal credential so no new pair
// can be minted.
func (s *Service) SetActive(ctx context.Context, actor *domain.Identity, email string, active bool) error {
	if err := session.Require(actor, domain.RoleAdmin); err != nil {
		return err
	}
	if err := s.users.SetActive(ctx, email, active); err != nil {
		return s.mapMutationErr("set active", err)
	}
	if !active {
		if err := s.users.ClearRenewalCredential(ctx, email); err != nil {
			return s.mapMutationErr("clear renewal credential", err)
		}
	}
	if err := s.cache.Invalidate(ctx, email); err != nil {
		return fmt.Errorf("invalidate cached identity: %w", err)
	}
	s.logger.Info("active flag changed", "email", email, "active", active, "actor_id", actor.ID)
	return nil
}

// UpdateAvatar replaces a user's avatar URL. Users may change their own;
// admins may change anyone's.
func (s *Service) UpdateAvatar(ctx context.Context, actor *domain.Identity, email, url string) error {
	if actor == nil || (actor.Email != email && actor.Role != domain.RoleAdmin) {
		return session.ErrForbidden
	}
	if err := s.users.SetAvatar(ctx, email, url); err != nil {
		return s.mapMutationErr("set avatar", err)
	}
	if err := s.cache.Invalidate(ctx, email); err != nil {
		return fmt.Errorf("invalidate cached identity: %w", err)
	}
	return nil
}

func (s *Service) mapMutationErr(op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return session.ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

// GravatarURL derives the default avatar assigned to new accounts.
func GravatarURL(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return "https://www.gravatar.com/avatar/" + hex.EncodeToString(sum[:]) + "?d=identicon"
}
