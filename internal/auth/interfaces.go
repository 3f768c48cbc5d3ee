package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/redmonkez12/todo-api/internal/user"
)

// TokenService defines the interface for token creation and validation.
// The production implementation is JWTService (HS256).
type TokenService interface {
	CreateToken(userID uuid.UUID) (string, error)
	VerifyToken(tokenStr string) (*TokenClaims, error)
}

// UserRepository defines the user persistence operations the credential
// service depends on
type UserRepository interface {
	Create(ctx context.Context, email, passwordHash string) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

// TokenRepository defines the interface for issued-token storage
type TokenRepository interface {
	Store(ctx context.Context, userID uuid.UUID, access, token string) error
	Find(ctx context.Context, access, token string) (uuid.UUID, error)
	Delete(ctx context.Context, userID uuid.UUID, token string) error
}

// TokenCache fronts TokenRepository.Find on the per-request auth path.
// Entries must be invalidated when the token is revoked.
type TokenCache interface {
	Get(ctx context.Context, token string) (uuid.UUID, bool, error)
	Set(ctx context.Context, token string, userID uuid.UUID) error
	Delete(ctx context.Context, token string) error
}
