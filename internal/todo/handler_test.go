package todo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/todo-api/internal/auth"
	"github.com/redmonkez12/todo-api/internal/httputil"
	"github.com/redmonkez12/todo-api/internal/logging"
	"github.com/redmonkez12/todo-api/internal/user"
)

// fakeRepo is an in-memory Repository preserving insertion order.
type fakeRepo struct {
	mu    sync.Mutex
	todos []*Todo
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{}
}

func (f *fakeRepo) ListByCreator(_ context.Context, creatorID uuid.UUID) ([]*Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	result := make([]*Todo, 0)
	for _, t := range f.todos {
		if t.CreatorID == creatorID {
			copied := *t
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (f *fakeRepo) Create(_ context.Context, creatorID uuid.UUID, text string) (*Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := time.Now()
	t := &Todo{
		ID:        uuid.New(),
		Text:      text,
		Completed: false,
		CreatorID: creatorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.todos = append(f.todos, t)

	copied := *t
	return &copied, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id, creatorID uuid.UUID) (*Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, t := range f.todos {
		if t.ID == id && t.CreatorID == creatorID {
			copied := *t
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeRepo) Update(_ context.Context, id, creatorID uuid.UUID, upd Update) (*Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, t := range f.todos {
		if t.ID == id && t.CreatorID == creatorID {
			if upd.Text != nil {
				t.Text = *upd.Text
			}
			t.Completed = upd.Completed
			t.CompletedAt = upd.CompletedAt
			t.UpdatedAt = time.Now()

			copied := *t
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeRepo) Delete(_ context.Context, id, creatorID uuid.UUID) (*Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, t := range f.todos {
		if t.ID == id && t.CreatorID == creatorID {
			f.todos = append(f.todos[:i], f.todos[i+1:]...)
			copied := *t
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func testUser(email string) *user.User {
	return &user.User{ID: uuid.New(), Email: email}
}

// withUser injects an authenticated user the way the auth middleware does.
func withUser(u *user.User) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), auth.UserContextKey, u)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func newTestRouter(repo Repository, u *user.User) *chi.Mux {
	handler := NewHandler(repo, logging.NewLogger(true), true)

	r := chi.NewRouter()
	r.Route("/todos", func(r chi.Router) {
		r.Use(withUser(u))
		r.Get("/", handler.List)
		r.Post("/", handler.Create)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", handler.Get)
			r.Patch("/", handler.Patch)
			r.Delete("/", handler.Delete)
		})
	})

	return r
}

func doRequest(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func createTodo(t *testing.T, router http.Handler, text string) *Todo {
	t.Helper()

	rec := doRequest(t, router, http.MethodPost, "/todos", `{"text":"`+text+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp TodoEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Todo
}

func TestCreateAndGetRoundTrip(t *testing.T) {
	router := newTestRouter(newFakeRepo(), testUser("alice@example.com"))

	created := createTodo(t, router, "x")
	assert.Equal(t, "x", created.Text)
	assert.False(t, created.Completed)
	assert.Nil(t, created.CompletedAt)

	rec := doRequest(t, router, http.MethodGet, "/todos/"+created.ID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp TodoEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, created.ID, resp.Todo.ID)
	assert.Equal(t, "x", resp.Todo.Text)
	assert.False(t, resp.Todo.Completed)
	assert.Nil(t, resp.Todo.CompletedAt)
}

func TestCreate_EmptyText(t *testing.T) {
	router := newTestRouter(newFakeRepo(), testUser("alice@example.com"))

	for _, body := range []string{`{"text":""}`, `{"text":"   "}`, `{}`} {
		rec := doRequest(t, router, http.MethodPost, "/todos", body)
		require.Equal(t, http.StatusBadRequest, rec.Code, "body %s", body)

		var resp httputil.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Text is required", resp.Message)
	}
}

func TestCreate_TrimsText(t *testing.T) {
	router := newTestRouter(newFakeRepo(), testUser("alice@example.com"))

	created := createTodo(t, router, "  walk the dog  ")
	assert.Equal(t, "walk the dog", created.Text)
}

func TestMalformedID(t *testing.T) {
	router := newTestRouter(newFakeRepo(), testUser("alice@example.com"))

	for _, method := range []string{http.MethodGet, http.MethodPatch, http.MethodDelete} {
		rec := doRequest(t, router, method, "/todos/12345asdf", "{}")
		require.Equal(t, http.StatusBadRequest, rec.Code, "method %s", method)

		var resp httputil.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Invalid ID format", resp.Message)
	}
}

func TestGet_UnknownID(t *testing.T) {
	router := newTestRouter(newFakeRepo(), testUser("alice@example.com"))

	rec := doRequest(t, router, http.MethodGet, "/todos/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOwnershipIsolation(t *testing.T) {
	repo := newFakeRepo()
	alice := testUser("alice@example.com")
	bob := testUser("bob@example.com")

	aliceRouter := newTestRouter(repo, alice)
	bobRouter := newTestRouter(repo, bob)

	created := createTodo(t, aliceRouter, "alice's secret errand")

	// Another user's access is indistinguishable from a missing todo
	for _, tc := range []struct {
		method string
		body   string
	}{
		{http.MethodGet, ""},
		{http.MethodPatch, `{"text":"hijacked"}`},
		{http.MethodDelete, ""},
	} {
		rec := doRequest(t, bobRouter, tc.method, "/todos/"+created.ID.String(), tc.body)
		assert.Equal(t, http.StatusNotFound, rec.Code, "method %s", tc.method)
	}

	// The owner still sees the unmodified todo
	rec := doRequest(t, aliceRouter, http.MethodGet, "/todos/"+created.ID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp TodoEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "alice's secret errand", resp.Todo.Text)
}

func TestListIsolation(t *testing.T) {
	repo := newFakeRepo()
	alice := testUser("alice@example.com")
	bob := testUser("bob@example.com")

	aliceRouter := newTestRouter(repo, alice)
	bobRouter := newTestRouter(repo, bob)

	createTodo(t, aliceRouter, "first")
	createTodo(t, aliceRouter, "second")
	createTodo(t, aliceRouter, "third")

	rec := doRequest(t, aliceRouter, http.MethodGet, "/todos", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var aliceResp TodosEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &aliceResp))
	assert.Len(t, aliceResp.Todos, 3)

	rec = doRequest(t, bobRouter, http.MethodGet, "/todos", "")
	require.Equal(t, http.StatusOK, rec.Code)

	// Empty collection, not null
	assert.JSONEq(t, `{"todos":[]}`, rec.Body.String())
}

func TestPatch_CompletionStateMachine(t *testing.T) {
	router := newTestRouter(newFakeRepo(), testUser("alice@example.com"))
	created := createTodo(t, router, "finish the report")

	patch := func(body string) *Todo {
		rec := doRequest(t, router, http.MethodPatch, "/todos/"+created.ID.String(), body)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp TodoEnvelope
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		return resp.Todo
	}

	// completed: true sets completedAt to the current time
	before := time.Now().UnixMilli()
	updated := patch(`{"completed":true}`)
	after := time.Now().UnixMilli()

	assert.True(t, updated.Completed)
	require.NotNil(t, updated.CompletedAt)
	assert.GreaterOrEqual(t, *updated.CompletedAt, before)
	assert.LessOrEqual(t, *updated.CompletedAt, after)

	// An update not asserting completed=true clears the completion state
	updated = patch(`{"text":"finish the report v2"}`)
	assert.False(t, updated.Completed)
	assert.Nil(t, updated.CompletedAt)
	assert.Equal(t, "finish the report v2", updated.Text)

	// completed: false stays incomplete
	patch(`{"completed":true}`)
	updated = patch(`{"completed":false}`)
	assert.False(t, updated.Completed)
	assert.Nil(t, updated.CompletedAt)

	// A non-boolean completed value is treated as false
	patch(`{"completed":true}`)
	updated = patch(`{"completed":"yes"}`)
	assert.False(t, updated.Completed)
	assert.Nil(t, updated.CompletedAt)
}

func TestPatch_EmptyText(t *testing.T) {
	router := newTestRouter(newFakeRepo(), testUser("alice@example.com"))
	created := createTodo(t, router, "keep me")

	rec := doRequest(t, router, http.MethodPatch, "/todos/"+created.ID.String(), `{"text":"  "}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp httputil.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Text is required", resp.Message)
}

func TestDelete(t *testing.T) {
	router := newTestRouter(newFakeRepo(), testUser("alice@example.com"))
	created := createTodo(t, router, "ephemeral")

	rec := doRequest(t, router, http.MethodDelete, "/todos/"+created.ID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)

	// The removed todo's representation is returned
	var resp TodoEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, created.ID, resp.Todo.ID)
	assert.Equal(t, "ephemeral", resp.Todo.Text)

	// Deletion is permanent
	rec = doRequest(t, router, http.MethodGet, "/todos/"+created.ID.String(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, router, http.MethodDelete, "/todos/"+created.ID.String(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnauthenticated(t *testing.T) {
	handler := NewHandler(newFakeRepo(), logging.NewLogger(true), true)

	r := chi.NewRouter()
	r.Get("/todos", handler.List)

	rec := doRequest(t, r, http.MethodGet, "/todos", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
