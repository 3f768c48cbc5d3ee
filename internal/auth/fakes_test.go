package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/todo-api/internal/user"
)

// In-memory repository fakes shared by the auth package tests.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*user.User

	getByIDCalls int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*user.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, email, passwordHash string) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			return nil, user.ErrDuplicateEmail
		}
	}

	now := time.Now()
	u := &user.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, user.ErrNotFound
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.getByIDCalls++
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, user.ErrNotFound
}

type tokenEntry struct {
	userID uuid.UUID
	access string
	token  string
}

type fakeTokenRepo struct {
	mu      sync.Mutex
	entries []tokenEntry

	findCalls int
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{}
}

func (f *fakeTokenRepo) Store(_ context.Context, userID uuid.UUID, access, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.entries = append(f.entries, tokenEntry{userID: userID, access: access, token: token})
	return nil
}

func (f *fakeTokenRepo) Find(_ context.Context, access, token string) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.findCalls++
	for _, e := range f.entries {
		if e.access == access && e.token == token {
			return e.userID, nil
		}
	}
	return uuid.Nil, ErrTokenNotFound
}

func (f *fakeTokenRepo) Delete(_ context.Context, userID uuid.UUID, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	kept := f.entries[:0]
	for _, e := range f.entries {
		if e.userID == userID && e.token == token {
			continue
		}
		kept = append(kept, e)
	}
	f.entries = kept
	return nil
}

func (f *fakeTokenRepo) count(userID uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, e := range f.entries {
		if e.userID == userID {
			n++
		}
	}
	return n
}

type fakeTokenCache struct {
	mu      sync.Mutex
	entries map[string]uuid.UUID

	hits, sets, deletes int
}

func newFakeTokenCache() *fakeTokenCache {
	return &fakeTokenCache{entries: make(map[string]uuid.UUID)}
}

func (f *fakeTokenCache) Get(_ context.Context, token string) (uuid.UUID, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if id, ok := f.entries[token]; ok {
		f.hits++
		return id, true, nil
	}
	return uuid.Nil, false, nil
}

func (f *fakeTokenCache) Set(_ context.Context, token string, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sets++
	f.entries[token] = userID
	return nil
}

func (f *fakeTokenCache) Delete(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deletes++
	delete(f.entries, token)
	return nil
}
