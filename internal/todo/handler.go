package todo

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/redmonkez12/todo-api/internal/auth"
	"github.com/redmonkez12/todo-api/internal/httputil"
	"github.com/redmonkez12/todo-api/internal/logging"
)

// User-visible messages; "Invalid ID format" is part of the API contract.
const (
	msgInvalidID    = "Invalid ID format"
	msgTextRequired = "Text is required"
	msgNotFound     = "Todo not found"
)

// Handler contains HTTP handlers for the todo endpoints. All operations are
// scoped to the authenticated user.
type Handler struct {
	repo         Repository
	logger       *logging.Logger
	isProduction bool
}

func NewHandler(repo Repository, logger *logging.Logger, isProduction bool) *Handler {
	return &Handler{
		repo:         repo,
		logger:       logger,
		isProduction: isProduction,
	}
}

// CreateTodoRequest represents the todo creation request body
type CreateTodoRequest struct {
	Text string `json:"text"`
}

// UpdateTodoRequest represents the todo update request body. Completed is
// deliberately untyped: only a strict boolean true marks the todo complete,
// anything else resets it.
type UpdateTodoRequest struct {
	Text      *string `json:"text"`
	Completed any     `json:"completed"`
}

// TodoEnvelope wraps a single todo for API responses
type TodoEnvelope struct {
	Todo *Todo `json:"todo"`
}

// TodosEnvelope wraps a todo collection for API responses
type TodosEnvelope struct {
	Todos []*Todo `json:"todos"`
}

// List returns all todos owned by the current user
// @Summary      List todos
// @Tags         todos
// @Produce      json
// @Param        x-auth header string true "Auth token"
// @Success      200 {object} TodosEnvelope
// @Failure      401 {object} httputil.ErrorResponse "Not authenticated"
// @Router       /todos [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	currentUser, ok := auth.GetUserFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, auth.ErrNotAuthenticated.Error(), http.StatusUnauthorized)
		return
	}

	todos, err := h.repo.ListByCreator(r.Context(), currentUser.ID)
	if err != nil {
		logger.Error("failed to list todos", "error", err.Error())
		h.respondInternalError(w, "failed to list todos", err)
		return
	}

	httputil.RespondJSON(w, TodosEnvelope{Todos: todos}, http.StatusOK)
}

// Create creates a new todo owned by the current user
// @Summary      Create a todo
// @Tags         todos
// @Accept       json
// @Produce      json
// @Param        x-auth header string true "Auth token"
// @Param        request body CreateTodoRequest true "Todo text"
// @Success      201 {object} TodoEnvelope
// @Failure      400 {object} httputil.ErrorResponse "Text is required"
// @Failure      401 {object} httputil.ErrorResponse "Not authenticated"
// @Router       /todos [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	currentUser, ok := auth.GetUserFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, auth.ErrNotAuthenticated.Error(), http.StatusUnauthorized)
		return
	}

	var req CreateTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid todo create body", "error", err.Error())
		httputil.RespondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		httputil.RespondError(w, msgTextRequired, http.StatusBadRequest)
		return
	}

	created, err := h.repo.Create(r.Context(), currentUser.ID, text)
	if err != nil {
		logger.Error("failed to create todo", "error", err.Error())
		h.respondInternalError(w, "failed to create todo", err)
		return
	}

	logger.Info("todo created", "todo_id", created.ID, "user_id", currentUser.ID)

	httputil.RespondJSON(w, TodoEnvelope{Todo: created}, http.StatusCreated)
}

// Get returns a single owned todo
// @Summary      Get a todo
// @Tags         todos
// @Produce      json
// @Param        x-auth header string true "Auth token"
// @Param        id path string true "Todo ID"
// @Success      200 {object} TodoEnvelope
// @Failure      400 {object} httputil.ErrorResponse "Invalid ID format"
// @Failure      401 {object} httputil.ErrorResponse "Not authenticated"
// @Failure      404 {object} httputil.ErrorResponse "Not found"
// @Router       /todos/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	currentUser, ok := auth.GetUserFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, auth.ErrNotAuthenticated.Error(), http.StatusUnauthorized)
		return
	}

	id, err := parseID(r)
	if err != nil {
		httputil.RespondError(w, msgInvalidID, http.StatusBadRequest)
		return
	}

	found, err := h.repo.GetByID(r.Context(), id, currentUser.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondError(w, msgNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to get todo", "error", err.Error())
		h.respondInternalError(w, "failed to get todo", err)
		return
	}

	httputil.RespondJSON(w, TodoEnvelope{Todo: found}, http.StatusOK)
}

// Patch updates an owned todo. The completion state is recomputed on every
// call: a strict boolean true sets completedAt to the current time, anything
// else clears it.
// @Summary      Update a todo
// @Tags         todos
// @Accept       json
// @Produce      json
// @Param        x-auth header string true "Auth token"
// @Param        id path string true "Todo ID"
// @Param        request body UpdateTodoRequest true "Fields to update"
// @Success      200 {object} TodoEnvelope
// @Failure      400 {object} httputil.ErrorResponse "Invalid ID format"
// @Failure      401 {object} httputil.ErrorResponse "Not authenticated"
// @Failure      404 {object} httputil.ErrorResponse "Not found"
// @Router       /todos/{id} [patch]
func (h *Handler) Patch(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	currentUser, ok := auth.GetUserFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, auth.ErrNotAuthenticated.Error(), http.StatusUnauthorized)
		return
	}

	id, err := parseID(r)
	if err != nil {
		httputil.RespondError(w, msgInvalidID, http.StatusBadRequest)
		return
	}

	var req UpdateTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid todo update body", "error", err.Error())
		httputil.RespondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	var upd Update
	if req.Text != nil {
		text := strings.TrimSpace(*req.Text)
		if text == "" {
			httputil.RespondError(w, msgTextRequired, http.StatusBadRequest)
			return
		}
		upd.Text = &text
	}

	if completed, ok := req.Completed.(bool); ok && completed {
		now := time.Now().UnixMilli()
		upd.Completed = true
		upd.CompletedAt = &now
	}

	updated, err := h.repo.Update(r.Context(), id, currentUser.ID, upd)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondError(w, msgNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to update todo", "error", err.Error())
		h.respondInternalError(w, "failed to update todo", err)
		return
	}

	httputil.RespondJSON(w, TodoEnvelope{Todo: updated}, http.StatusOK)
}

// Delete permanently removes an owned todo and returns its representation
// @Summary      Delete a todo
// @Tags         todos
// @Produce      json
// @Param        x-auth header string true "Auth token"
// @Param        id path string true "Todo ID"
// @Success      200 {object} TodoEnvelope
// @Failure      400 {object} httputil.ErrorResponse "Invalid ID format"
// @Failure      401 {object} httputil.ErrorResponse "Not authenticated"
// @Failure      404 {object} httputil.ErrorResponse "Not found"
// @Router       /todos/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	currentUser, ok := auth.GetUserFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, auth.ErrNotAuthenticated.Error(), http.StatusUnauthorized)
		return
	}

	id, err := parseID(r)
	if err != nil {
		httputil.RespondError(w, msgInvalidID, http.StatusBadRequest)
		return
	}

	removed, err := h.repo.Delete(r.Context(), id, currentUser.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondError(w, msgNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to delete todo", "error", err.Error())
		h.respondInternalError(w, "failed to delete todo", err)
		return
	}

	logger.Info("todo deleted", "todo_id", removed.ID, "user_id", currentUser.ID)

	httputil.RespondJSON(w, TodoEnvelope{Todo: removed}, http.StatusOK)
}

// respondInternalError hides internal detail in production responses
func (h *Handler) respondInternalError(w http.ResponseWriter, message string, err error) {
	if h.isProduction {
		httputil.RespondError(w, message, http.StatusInternalServerError)
		return
	}
	httputil.RespondErrorWithDetail(w, message, err.Error(), http.StatusInternalServerError)
}

func parseID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "id"))
}
