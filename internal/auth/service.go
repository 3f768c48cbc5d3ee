package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/redmonkez12/todo-api/internal/logging"
	"github.com/redmonkez12/todo-api/internal/user"
)

var (
	// ErrInvalidCredentials is returned for unknown email and wrong
	// password alike, so a caller cannot tell which factor failed.
	ErrInvalidCredentials = errors.New("Email or password incorrect")
	ErrEmailRequired      = errors.New("email is required")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters")
	ErrNotAuthenticated   = errors.New("not authenticated")
)

const (
	minPasswordLen = 6
	maxEmailLen    = 254
)

// InvalidEmailError reports a syntactically invalid email, referencing the
// submitted value.
type InvalidEmailError struct {
	Email string
}

func (e *InvalidEmailError) Error() string {
	return fmt.Sprintf("%s is not a valid email", e.Email)
}

// DuplicateEmailError reports a case-insensitive email collision,
// referencing the submitted value.
type DuplicateEmailError struct {
	Email string
}

func (e *DuplicateEmailError) Error() string {
	return fmt.Sprintf("email %s is already registered", e.Email)
}

// Service implements the credential store lifecycle: registration, login,
// token resolution and revocation.
type Service struct {
	userRepo  UserRepository
	tokenRepo TokenRepository
	cache     TokenCache
	tokens    TokenService
	logger    *logging.Logger
}

// NewService creates a credential service. cache may be nil, in which case
// every token resolution goes to the store.
func NewService(
	userRepo UserRepository,
	tokenRepo TokenRepository,
	cache TokenCache,
	tokens TokenService,
	logger *logging.Logger,
) *Service {
	return &Service{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		cache:     cache,
		tokens:    tokens,
		logger:    logger,
	}
}

// Register validates the credentials, hashes the password and persists the
// user, then issues one auth token returned alongside the created user.
func (s *Service) Register(ctx context.Context, email, password string) (*user.User, string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, "", ErrEmailRequired
	}
	if len(email) > maxEmailLen {
		return nil, "", &InvalidEmailError{Email: email}
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, "", &InvalidEmailError{Email: email}
	}
	if len(password) < minPasswordLen {
		return nil, "", ErrPasswordTooShort
	}

	passwordHash, err := HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	newUser, err := s.userRepo.Create(ctx, email, passwordHash)
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return nil, "", &DuplicateEmailError{Email: email}
		}
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.issueToken(ctx, newUser.ID)
	if err != nil {
		return nil, "", err
	}

	return newUser, token, nil
}

// Login verifies the credentials and issues a fresh token, appended to the
// user's token list. Unknown email and wrong password fail identically.
func (s *Service) Login(ctx context.Context, email, password string) (*user.User, string, error) {
	existingUser, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to get user: %w", err)
	}

	if !CheckPassword(password, existingUser.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(ctx, existingUser.ID)
	if err != nil {
		return nil, "", err
	}

	return existingUser, token, nil
}

// ResolveByToken resolves a bearer token to its user. Decode failures
// propagate as-is; a valid signature without a matching stored token entry
// yields ErrNotAuthenticated.
func (s *Service) ResolveByToken(ctx context.Context, token string) (*user.User, error) {
	if _, err := s.tokens.VerifyToken(token); err != nil {
		return nil, err
	}

	if s.cache != nil {
		userID, ok, err := s.cache.Get(ctx, token)
		if err != nil {
			s.logger.Warn("token cache lookup failed", "error", err.Error())
		} else if ok {
			u, err := s.userRepo.GetByID(ctx, userID)
			if err == nil {
				return u, nil
			}
			if !errors.Is(err, user.ErrNotFound) {
				return nil, fmt.Errorf("failed to get user: %w", err)
			}
			// Stale cache entry; fall through to the store
		}
	}

	userID, err := s.tokenRepo.Find(ctx, AccessAuth, token)
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return nil, ErrNotAuthenticated
		}
		return nil, fmt.Errorf("failed to find token: %w", err)
	}

	resolvedUser, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrNotAuthenticated
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, token, userID); err != nil {
			s.logger.Warn("failed to cache token", "error", err.Error())
		}
	}

	return resolvedUser, nil
}

// RevokeToken removes exactly the matching token entry from the user's
// token list and drops its cache entry.
func (s *Service) RevokeToken(ctx context.Context, userID uuid.UUID, token string) error {
	if err := s.tokenRepo.Delete(ctx, userID, token); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, token); err != nil {
			s.logger.Warn("failed to invalidate cached token", "error", err.Error())
		}
	}

	return nil
}

// issueToken signs a token and appends it to the user's token list. The two
// writes are sequential and non-transactional; a crash in between leaves a
// signed token that was never recorded.
func (s *Service) issueToken(ctx context.Context, userID uuid.UUID) (string, error) {
	token, err := s.tokens.CreateToken(userID)
	if err != nil {
		return "", fmt.Errorf("failed to create token: %w", err)
	}

	if err := s.tokenRepo.Store(ctx, userID, AccessAuth, token); err != nil {
		return "", fmt.Errorf("failed to store token: %w", err)
	}

	return token, nil
}
