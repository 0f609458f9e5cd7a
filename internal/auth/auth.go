package auth

import (
	"context"
	"time"

	"github.com/frahmantamala/attendance-management/internal"
	"github.com/golang-jwt/jwt/v5"
)

type ctxKey string

const ContextUserKey ctxKey = "user"

var (
	ErrInvalidCredentials = internal.ErrInvalidCredentials
	ErrUserInactive       = internal.ErrUserInactive
	ErrInvalidToken       = internal.ErrInvalidToken
	ErrTokenExpired       = internal.ErrTokenExpired
	ErrTokenRevoked       = internal.ErrTokenRevoked
	ErrAdminOnly          = internal.ErrAdminOnly
)

// User is the authenticated caller attached to the request context.
type User struct {
	ID         int64  `json:"id"`
	NumericID  int    `json:"numeric_id"`
	Name       string `json:"name"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Department string `json:"department"`
	Status     string `json:"status"`
	IsAdmin    bool   `json:"is_admin"`

	TokenID        string    `json:"-"`
	TokenExpiresAt time.Time `json:"-"`
}

// Credentials is what login needs to verify a password.
type Credentials struct {
	UserID       int64
	NumericID    int
	PasswordHash string
	Status       string
}

type Claims struct {
	UserID    int64 `json:"user_id"`
	NumericID int   `json:"numeric_id"`
	jwt.RegisteredClaims
}

type AuthTokens struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        *User     `json:"user"`
}

func UserFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(ContextUserKey).(*User)
	return u, ok
}

func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, ContextUserKey, u)
}
