package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the bun table model for the users table.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Email        string    `bun:"email,notnull"`
	PasswordHash string    `bun:"password_hash,notnull"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:now()"`
	UpdatedAt    time.Time `bun:"updated_at,notnull,default:now()"`
}

// UserToken is one issued auth token. A user holds zero or more rows,
// one per active session.
type UserToken struct {
	bun.BaseModel `bun:"table:user_tokens,alias:ut"`

	ID        uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	UserID    uuid.UUID `bun:"user_id,notnull,type:uuid"`
	Access    string    `bun:"access,notnull"`
	Token     string    `bun:"token,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:now()"`
}

// Todo is the bun table model for the todos table. CompletedAt is epoch
// milliseconds and is non-null exactly when Completed is true.
type Todo struct {
	bun.BaseModel `bun:"table:todos,alias:t"`

	ID          uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Text        string    `bun:"text,notnull"`
	Completed   bool      `bun:"completed,notnull,default:false"`
	CompletedAt *int64    `bun:"completed_at"`
	CreatorID   uuid.UUID `bun:"creator_id,notnull,type:uuid"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:now()"`
	UpdatedAt   time.Time `bun:"updated_at,notnull,default:now()"`
}
