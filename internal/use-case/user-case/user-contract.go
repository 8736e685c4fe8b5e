package user_service

import (
	"context"

	"github.com/xenn00/apibench/internal/dtos/user_dto"
	app_error "github.com/xenn00/apibench/internal/errors"
)

type UserServiceContract interface {
	Register(ctx context.Context, req user_dto.CreateUserRequest) (*user_dto.UserResponse, *app_error.AppError)
	List(ctx context.Context, query user_dto.ListUsersQuery) ([]user_dto.UserResponse, *app_error.AppError)
}
