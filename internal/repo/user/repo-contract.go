package user_repo

import (
	"context"

	"github.com/xenn00/apibench/internal/entity"
	app_error "github.com/xenn00/apibench/internal/errors"
)

// UserRepoContract is the persistence boundary for user records. Read paths
// never populate User.Password.
type UserRepoContract interface {
	// EnsureSchema creates the unique username constraint.
	EnsureSchema(ctx context.Context) *app_error.AppError
	// FindByUsername returns (nil, nil) when no record matches.
	FindByUsername(ctx context.Context, username string) (*entity.User, *app_error.AppError)
	// Insert stores the record and returns the id assigned by the store.
	Insert(ctx context.Context, model entity.User) (string, *app_error.AppError)
	ListSorted(ctx context.Context, field entity.SortField, dir entity.SortDirection) ([]entity.User, *app_error.AppError)
}
