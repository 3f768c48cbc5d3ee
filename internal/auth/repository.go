package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/redmonkez12/todo-api/internal/database"
)

var ErrTokenNotFound = errors.New("token not found")

// Repository handles issued-token persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Store appends a token to the user's token list
func (r *Repository) Store(ctx context.Context, userID uuid.UUID, access, token string) error {
	dbToken := &database.UserToken{
		UserID: userID,
		Access: access,
		Token:  token,
	}

	_, err := r.db.NewInsert().
		Model(dbToken).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}

	return nil
}

// Find looks up the owner of an exact {access, token} entry
func (r *Repository) Find(ctx context.Context, access, token string) (uuid.UUID, error) {
	dbToken := new(database.UserToken)
	err := r.db.NewSelect().
		Model(dbToken).
		Where("token = ?", token).
		Where("access = ?", access).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, ErrTokenNotFound
		}
		return uuid.Nil, fmt.Errorf("failed to find token: %w", err)
	}

	return dbToken.UserID, nil
}

// Delete removes exactly the matching token entry from the user's token
// list. Deleting an already-removed token is not an error.
func (r *Repository) Delete(ctx context.Context, userID uuid.UUID, token string) error {
	_, err := r.db.NewDelete().
		Model((*database.UserToken)(nil)).
		Where("user_id = ?", userID).
		Where("token = ?", token).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}

	return nil
}
