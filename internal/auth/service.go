package auth

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/taskboard/taskboard/internal/rbac"
	"github.com/taskboard/taskboard/internal/shared"
)

// RevocationList records logged-out tokens.
type RevocationList interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Service wraps authentication business rules.
type Service struct {
	repo        Repository
	tokens      *TokenIssuer
	revocations RevocationList
}

// NewService constructs a new Service. revocations may be nil, in which case
// logout is a no-op on the server side.
func NewService(repo Repository, tokens *TokenIssuer, revocations RevocationList) *Service {
	return &Service{repo: repo, tokens: tokens, revocations: revocations}
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// Login authenticates and issues an access token.
func (s *Service) Login(ctx context.Context, email, password string) (string, *User, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return "", nil, err
	}
	token, _, err := s.tokens.Issue(user.Principal())
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Verify resolves a bearer token into the principal it was issued for.
func (s *Service) Verify(ctx context.Context, raw string) (rbac.Principal, Claims, error) {
	claims, err := s.tokens.Parse(raw)
	if err != nil {
		return rbac.Principal{}, Claims{}, err
	}
	if s.revocations != nil {
		revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			return rbac.Principal{}, Claims{}, err
		}
		if revoked {
			return rbac.Principal{}, Claims{}, fmt.Errorf("%w: token revoked", ErrInvalidToken)
		}
	}
	p, err := claims.Principal()
	if err != nil {
		return rbac.Principal{}, Claims{}, err
	}
	return p, claims, nil
}

// Logout revokes the token described by claims until it would have expired.
func (s *Service) Logout(ctx context.Context, claims Claims) error {
	if s.revocations == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	return s.revocations.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}
