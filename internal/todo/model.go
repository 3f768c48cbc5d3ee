package todo

import (
	"time"

	"github.com/google/uuid"
)

// Todo is owned by exactly one user, fixed at creation. CompletedAt is
// epoch milliseconds and is non-null exactly when Completed is true.
type Todo struct {
	ID          uuid.UUID `json:"id"`
	Text        string    `json:"text"`
	Completed   bool      `json:"completed"`
	CompletedAt *int64    `json:"completedAt"`
	CreatorID   uuid.UUID `json:"creatorId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
