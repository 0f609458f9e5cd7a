package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type RepositoryAPI interface {
	// GetCredentialsByLogin returns nil when no employee has that username or email.
	GetCredentialsByLogin(ctx context.Context, login string) (*Credentials, error)
	// GetUserByID returns nil when the employee no longer exists.
	GetUserByID(ctx context.Context, userID int64) (*User, error)
}

type ServiceAPI interface {
	Authenticate(ctx context.Context, dto LoginDTO) (AuthTokens, error)
	ValidateAccessToken(ctx context.Context, tokenString string) (*Claims, error)
	GetUser(ctx context.Context, claims *Claims) (*User, error)
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
}

const statusInactive = "inactive"

type Service struct {
	repo           RepositoryAPI
	tokens         TokenGeneratorAPI
	revocations    RevocationStore
	adminNumericID int
	logger         *slog.Logger
}

func NewService(repo RepositoryAPI, tokens TokenGeneratorAPI, revocations RevocationStore, adminNumericID int, logger *slog.Logger) *Service {
	return &Service{
		repo:           repo,
		tokens:         tokens,
		revocations:    revocations,
		adminNumericID: adminNumericID,
		logger:         logger,
	}
}

// Authenticate validates credentials and returns an access token.
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	creds, err := s.repo.GetCredentialsByLogin(ctx, dto.Login)
	if err != nil {
		s.logger.Error("failed to load credentials", "error", err)
		return AuthTokens{}, err
	}
	if creds == nil {
		return AuthTokens{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(dto.Password)); err != nil {
		return AuthTokens{}, ErrInvalidCredentials
	}
	if creds.Status == statusInactive {
		return AuthTokens{}, ErrUserInactive
	}

	token, claims, err := s.tokens.GenerateAccessToken(creds.UserID, creds.NumericID)
	if err != nil {
		return AuthTokens{}, err
	}

	user, err := s.GetUser(ctx, claims)
	if err != nil {
		return AuthTokens{}, err
	}

	s.logger.Info("user logged in", "user_id", creds.UserID, "numeric_id", creds.NumericID)
	return AuthTokens{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   claims.ExpiresAt.Time,
		User:        user,
	}, nil
}

// ValidateAccessToken checks the signature, expiry and revocation list.
func (s *Service) ValidateAccessToken(ctx context.Context, tokenString string) (*Claims, error) {
	claims, err := s.tokens.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		s.logger.Error("failed to check token revocation", "error", err, "user_id", claims.UserID)
		return nil, err
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

// GetUser loads the caller behind claims. Deleted or inactive accounts lose access.
func (s *Service) GetUser(ctx context.Context, claims *Claims) (*User, error) {
	user, err := s.repo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidToken
	}
	if user.Status == statusInactive {
		return nil, ErrUserInactive
	}

	user.IsAdmin = user.NumericID == s.adminNumericID
	user.TokenID = claims.ID
	if claims.ExpiresAt != nil {
		user.TokenExpiresAt = claims.ExpiresAt.Time
	}
	return user, nil
}

func (s *Service) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if tokenID == "" {
		return errors.New("token id is required")
	}
	if err := s.revocations.Revoke(ctx, tokenID, expiresAt); err != nil {
		s.logger.Error("failed to revoke token", "error", err)
		return err
	}
	return nil
}
