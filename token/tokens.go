// Package token issues and verifies the signed credentials used by the
// identity core: short-lived access tokens, longer-lived renewal tokens and
// email-verification tokens.
package token

import (
	"errors"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Scope restricts a token to a single purpose.
const (
	ScopeAccess  = "access"
	ScopeRenewal = "refresh"
)

// ErrInvalid covers every decode failure: bad signature, expiry, malformed
// payload or a scope mismatch. The bearer surface exposes no finer detail.
var ErrInvalid = errors.New("token: invalid")

// Config carries the signing secret and lifetimes, fixed at process start.
type Config struct {
	Secret          string
	AccessTTL       time.Duration
	RenewalTTL      time.Duration
	VerificationTTL time.Duration
}

// Claims defines the signed payload.
type Claims struct {
	Scope string `json:"scope,omitempty"`
	jwtlib.RegisteredClaims
}

// Codec signs and verifies claims with a process-wide HS256 secret.
type Codec struct {
	secret          []byte
	accessTTL       time.Duration
	renewalTTL      time.Duration
	verificationTTL time.Duration
	now             func() time.Time
}

// NewCodec constructs a Codec. Zero lifetimes fall back to 15 minutes for
// access, 7 days for renewal and verification.
func NewCodec(cfg Config) (*Codec, error) {
	if cfg.Secret == "" {
		return nil, errors.New("token: empty signing secret")
	}
	c := &Codec{
		secret:          []byte(cfg.Secret),
		accessTTL:       cfg.AccessTTL,
		renewalTTL:      cfg.RenewalTTL,
		verificationTTL: cfg.VerificationTTL,
		now:             time.Now,
	}
	if c.accessTTL <= 0 {
		c.accessTTL = 15 * time.Minute
	}
	if c.renewalTTL <= 0 {
		c.renewalTTL = 7 * 24 * time.Hour
	}
	if c.verificationTTL <= 0 {
		c.verificationTTL = 7 * 24 * time.Hour
	}
	return c, nil
}

// IssueAccess signs a short-lived access token for subject.
func (c *Codec) IssueAccess(subject string) (string, error) {
	return c.issue(subject, ScopeAccess, c.accessTTL)
}

// IssueRenewal signs a renewal token for subject.
func (c *Codec) IssueRenewal(subject string) (string, error) {
	return c.issue(subject, ScopeRenewal, c.renewalTTL)
}

// IssueEmailVerification signs an email-verification token for subject. It
// carries no scope claim.
func (c *Codec) IssueEmailVerification(subject string) (string, error) {
	return c.issue(subject, "", c.verificationTTL)
}

func (c *Codec) issue(subject, scope string, ttl time.Duration) (string, error) {
	now := c.now()
	claims := Claims{
		Scope: scope,
		RegisteredClaims: jwtlib.RegisteredClaims{
			// The jti makes every issuance distinct. Rotation stores the
			// renewal token by value, so two identical tokens for the same
			// subject in the same second would make the swap a no-op and
			// replay undetectable.
			ID:        uuid.NewString(),
			Subject:   subject,
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Decode verifies signature, then expiry, then requires an exact scope match,
// and returns the subject.
func (c *Codec) Decode(token, expectedScope string) (string, error) {
	claims, err := c.parse(token)
	if err != nil {
		return "", err
	}
	if claims.Scope != expectedScope {
		return "", ErrInvalid
	}
	return claims.Subject, nil
}

// DecodeEmailVerification verifies signature and expiry with no scope check
// and returns the subject.
func (c *Codec) DecodeEmailVerification(token string) (string, error) {
	claims, err := c.parse(token)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func (c *Codec) parse(token string) (*Claims, error) {
	parsed, err := jwtlib.ParseWithClaims(token, &Claims{}, func(t *jwtlib.Token) (interface{}, error) {
		return c.secret, nil
	}, jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Name}), jwtlib.WithTimeFunc(c.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalid
	}
	return claims, nil
}
