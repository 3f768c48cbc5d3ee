package todo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/redmonkez12/todo-api/internal/database"
)

var ErrNotFound = errors.New("todo not found")

// Update carries the fields applied by Repository.Update. Text is only set
// when non-nil; completion state is always overwritten.
type Update struct {
	Text        *string
	Completed   bool
	CompletedAt *int64
}

// Repository defines todo persistence. Every read and write is scoped to a
// creator, so a todo owned by someone else is indistinguishable from a
// missing one.
type Repository interface {
	ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]*Todo, error)
	Create(ctx context.Context, creatorID uuid.UUID, text string) (*Todo, error)
	GetByID(ctx context.Context, id, creatorID uuid.UUID) (*Todo, error)
	Update(ctx context.Context, id, creatorID uuid.UUID, upd Update) (*Todo, error)
	Delete(ctx context.Context, id, creatorID uuid.UUID) (*Todo, error)
}

// PostgresRepository is the bun-backed Repository implementation
type PostgresRepository struct {
	db *bun.DB
}

func NewPostgresRepository(db *bun.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ListByCreator returns all todos owned by the creator in store order
func (r *PostgresRepository) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]*Todo, error) {
	var dbTodos []*database.Todo
	err := r.db.NewSelect().
		Model(&dbTodos).
		Where("creator_id = ?", creatorID).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}

	todos := make([]*Todo, 0, len(dbTodos))
	for _, dbt := range dbTodos {
		todos = append(todos, mapDBTodoToModel(dbt))
	}

	return todos, nil
}

// Create inserts a new incomplete todo owned by the creator
func (r *PostgresRepository) Create(ctx context.Context, creatorID uuid.UUID, text string) (*Todo, error) {
	dbTodo := &database.Todo{
		Text:      text,
		Completed: false,
		CreatorID: creatorID,
	}

	_, err := r.db.NewInsert().
		Model(dbTodo).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}

	return mapDBTodoToModel(dbTodo), nil
}

// GetByID retrieves a todo by id, scoped to the creator
func (r *PostgresRepository) GetByID(ctx context.Context, id, creatorID uuid.UUID) (*Todo, error) {
	dbTodo := new(database.Todo)
	err := r.db.NewSelect().
		Model(dbTodo).
		Where("id = ?", id).
		Where("creator_id = ?", creatorID).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get todo: %w", err)
	}

	return mapDBTodoToModel(dbTodo), nil
}

// Update applies the update in a single scoped statement and returns the
// updated row
func (r *PostgresRepository) Update(ctx context.Context, id, creatorID uuid.UUID, upd Update) (*Todo, error) {
	dbTodo := new(database.Todo)
	q := r.db.NewUpdate().
		Model(dbTodo).
		Set("completed = ?", upd.Completed).
		Set("completed_at = ?", upd.CompletedAt).
		Set("updated_at = now()")

	if upd.Text != nil {
		q = q.Set("text = ?", *upd.Text)
	}

	err := q.
		Where("id = ?", id).
		Where("creator_id = ?", creatorID).
		Returning("*").
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}

	return mapDBTodoToModel(dbTodo), nil
}

// Delete permanently removes a todo, scoped to the creator, and returns the
// removed row
func (r *PostgresRepository) Delete(ctx context.Context, id, creatorID uuid.UUID) (*Todo, error) {
	dbTodo := new(database.Todo)
	err := r.db.NewDelete().
		Model(dbTodo).
		Where("id = ?", id).
		Where("creator_id = ?", creatorID).
		Returning("*").
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to delete todo: %w", err)
	}

	return mapDBTodoToModel(dbTodo), nil
}

// mapDBTodoToModel converts database model to domain model
func mapDBTodoToModel(dbt *database.Todo) *Todo {
	return &Todo{
		ID:          dbt.ID,
		Text:        dbt.Text,
		Completed:   dbt.Completed,
		CompletedAt: dbt.CompletedAt,
		CreatorID:   dbt.CreatorID,
		CreatedAt:   dbt.CreatedAt,
		UpdatedAt:   dbt.UpdatedAt,
	}
}
