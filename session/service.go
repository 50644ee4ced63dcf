// Package session orchestrates login, credential renewal and identity
// resolution for inbound requests, and gates privileged operations by role.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/photoshare/identity/cache"
	"github.com/photoshare/identity/crypto"
	"github.com/photoshare/identity/domain"
	"github.com/photoshare/identity/repository"
	"github.com/photoshare/identity/token"
)

// Cache is the identity cache surface the service depends on. The Redis
// implementation lives in the cache package; tests substitute doubles.
type Cache interface {
	Get(ctx context.Context, email string) (*domain.Identity, error)
	Put(ctx context.Context, email string, identity domain.Identity) error
	Invalidate(ctx context.Context, email string) error
}

// TokenPair contains access and renewal tokens.
type TokenPair struct {
	AccessToken  string
	RenewalToken string
}

// Service handles authentication workflows.
type Service struct {
	users  repository.UserStore
	cache  Cache
	codec  *token.Codec
	logger *slog.Logger
}

// New constructs a Service. All collaborators are injected; the service holds
// no mutable state of its own.
func New(users repository.UserStore, identities Cache, codec *token.Codec, logger *slog.Logger) *Service {
	initMetrics()
	return &Service{users: users, cache: identities, codec: codec, logger: logger}
}

// Login authenticates an email/password pair and returns a fresh token pair.
// The user store is consulted directly, never the cache: the confirmed,
// active and password fields must be current. The renewal credential write is
// the last step, so an aborted call leaves no partial state.
func (s *Service) Login(ctx context.Context, email, password string) (TokenPair, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			record(loginsTotal, "not_found")
			return TokenPair{}, ErrNotFound
		}
		return TokenPair{}, fmt.Errorf("lookup user: %w", err)
	}
	if !user.Confirmed {
		record(loginsTotal, "unconfirmed")
		return TokenPair{}, ErrEmailUnconfirmed
	}
	if !crypto.VerifyPassword(password, user.PasswordHash) {
		record(loginsTotal, "bad_password")
		return TokenPair{}, ErrInvalidCredential
	}
	if !user.Active {
		record(loginsTotal, "banned")
		return TokenPair{}, ErrUserBanned
	}

	pair, err := s.issuePair(user.Email)
	if err != nil {
		return TokenPair{}, err
	}
	// Rotation: the stored value is the single valid renewal credential, so
	// every login implicitly revokes prior sessions at their next renewal.
	if err := s.users.SetRenewalCredential(ctx, user.Email, pair.RenewalToken); err != nil {
		return TokenPair{}, fmt.Errorf("store renewal credential: %w", err)
	}
	record(loginsTotal, "ok")
	s.logger.Info("user logged in", "user_id", user.ID)
	return pair, nil
}

// Renew exchanges a valid renewal token for a fresh pair, rotating the stored
// credential. A presented token that no longer matches the stored value is
// treated as a replay signal: the stored credential is cleared, forcing a full
// re-login for every outstanding session.
func (s *Service) Renew(ctx context.Context, renewalToken string) (TokenPair, error) {
	email, err := s.codec.Decode(renewalToken, token.ScopeRenewal)
	if err != nil {
		record(renewalsTotal, "invalid_token")
		return TokenPair{}, ErrInvalidToken
	}
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			record(renewalsTotal, "not_found")
			return TokenPair{}, ErrNotFound
		}
		return TokenPair{}, fmt.Errorf("lookup user: %w", err)
	}
	if user.RenewalCredential != renewalToken {
		if err := s.users.ClearRenewalCredential(ctx, email); err != nil {
			return TokenPair{}, fmt.Errorf("clear renewal credential: %w", err)
		}
		record(renewalsTotal, "revoked")
		s.logger.Warn("renewal token reuse detected", "user_id", user.ID)
		return TokenPair{}, ErrTokenRevoked
	}

	pair, err := s.issuePair(email)
	if err != nil {
		return TokenPair{}, err
	}
	// Conditional rotation: the store swaps the credential only if it still
	// holds the presented value, so of two concurrent renewals at most one
	// lands. The loser observes the same revocation outcome as a replay.
	if err := s.users.RotateRenewalCredential(ctx, email, renewalToken, pair.RenewalToken); err != nil {
		if errors.Is(err, repository.ErrStaleCredential) {
			record(renewalsTotal, "revoked")
			return TokenPair{}, ErrTokenRevoked
		}
		return TokenPair{}, fmt.Errorf("rotate renewal credential: %w", err)
	}
	record(renewalsTotal, "ok")
	return pair, nil
}

// Resolve validates an access token and returns the identity it names,
// consulting the cache before the user store. A cache hit is served without
// re-checking the active flag; staleness is bounded by the cache TTL and the
// token lifetime, whichever ends first. Cache failures degrade to a store
// lookup rather than failing the request.
func (s *Service) Resolve(ctx context.Context, accessToken string) (*domain.Identity, error) {
	email, err := s.codec.Decode(accessToken, token.ScopeAccess)
	if err != nil {
		record(resolvesTotal, "invalid_token")
		return nil, ErrInvalidToken
	}

	identity, err := s.cache.Get(ctx, email)
	if err == nil {
		record(resolvesTotal, "hit")
		return identity, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		s.logger.Warn("identity cache read failed", "error", err)
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			record(resolvesTotal, "not_found")
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	resolved := domain.IdentityOf(user)
	if err := s.cache.Put(ctx, email, resolved); err != nil {
		s.logger.Warn("identity cache write failed", "error", err)
	}
	record(resolvesTotal, "miss")
	return &resolved, nil
}

func (s *Service) issuePair(email string) (TokenPair, error) {
	access, err := s.codec.IssueAccess(email)
	if err != nil {
		return TokenPair{}, fmt.Errorf("issue access token: %w", err)
	}
	renewal, err := s.codec.IssueRenewal(email)
	if err != nil {
		return TokenPair{}, fmt.Errorf("issue renewal token: %w", err)
	}
	return TokenPair{AccessToken: access, RenewalToken: renewal}, nil
}
