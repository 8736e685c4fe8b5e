package user_repo

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/xenn00/apibench/internal/entity"
	app_error "github.com/xenn00/apibench/internal/errors"
)

// MemoryUserRepo keeps records in process. Used by the memory driver and tests.
type MemoryUserRepo struct {
	mu         sync.RWMutex
	users      []entity.User
	byUsername map[string]int
}

func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{
		byUsername: make(map[string]int),
	}
}

func (r *MemoryUserRepo) EnsureSchema(ctx context.Context) *app_error.AppError {
	return nil
}

func (r *MemoryUserRepo) FindByUsername(ctx context.Context, username string) (*entity.User, *app_error.AppError) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx, ok := r.byUsername[username]
	if !ok {
		return nil, nil
	}
	user := redact(r.users[idx])
	return &user, nil
}

func (r *MemoryUserRepo) Insert(ctx context.Context, model entity.User) (string, *app_error.AppError) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byUsername[model.Username]; exists {
		return "", app_error.NewDuplicateKeyError("username", model.Username, nil)
	}

	model.ID = uuid.New().String()
	r.byUsername[model.Username] = len(r.users)
	r.users = append(r.users, model)
	return model.ID, nil
}

func (r *MemoryUserRepo) ListSorted(ctx context.Context, field entity.SortField, dir entity.SortDirection) ([]entity.User, *app_error.AppError) {
	if field != entity.SortByCreatedAt {
		return nil, app_error.NewUnclassifiedError("sort", fmt.Errorf("unsupported sort field %q", field))
	}

	r.mu.RLock()
	users := make([]entity.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, redact(u))
	}
	r.mu.RUnlock()

	sort.SliceStable(users, func(i, j int) bool {
		if dir == entity.Ascending {
			return users[i].CreatedAt.Before(users[j].CreatedAt)
		}
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return users, nil
}

// StoredPassword exposes the persisted digest for assertions in tests.
func (r *MemoryUserRepo) StoredPassword(username string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx, ok := r.byUsername[username]
	if !ok {
		return "", false
	}
	return r.users[idx].Password, true
}

// Len is the number of stored records.
func (r *MemoryUserRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

func redact(u entity.User) entity.User {
	u.Password = ""
	return u
}
