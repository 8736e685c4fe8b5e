package user_service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xenn00/apibench/internal/dtos/user_dto"
	"github.com/xenn00/apibench/internal/entity"
	app_error "github.com/xenn00/apibench/internal/errors"
	user_repo "github.com/xenn00/apibench/internal/repo/user"
	"github.com/xenn00/apibench/internal/utils"
)

type UserService struct {
	UserRepo user_repo.UserRepoContract
	Hash     func(plain string) (string, error)
	Now      func() time.Time
}

func NewUserService(repo user_repo.UserRepoContract) UserServiceContract {
	return &UserService{
		UserRepo: repo,
		Hash:     utils.GenerateHash,
		Now:      func() time.Time { return time.Now().UTC() },
	}
}

func (u *UserService) Register(ctx context.Context, req user_dto.CreateUserRequest) (*user_dto.UserResponse, *app_error.AppError) {
	candidate := req.Name
	if req.Username != nil {
		candidate = *req.Username
	}
	username := utils.NormalizeUsername(candidate)

	// fast path only, the unique index decides on insert
	existing, err := u.UserRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, app_error.NewDuplicateKeyError("username", username, nil)
	}

	now := u.Now()

	hashed, hashErr := u.Hash(req.Password)
	if hashErr != nil {
		return nil, app_error.FromError(fmt.Errorf("hash password: %w", hashErr))
	}

	user := entity.User{
		Name:      req.Name,
		Email:     req.Email,
		Password:  hashed,
		Username:  username,
		IsActive:  req.IsActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	id, err := u.UserRepo.Insert(ctx, user)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, app_error.NewOperationFailedError("insert", nil)
	}
	user.ID = id

	log.Info().Str("user_id", id).Str("username", username).Msg("user created")

	resp := user_dto.NewUserResponse(user)
	return &resp, nil
}

func (u *UserService) List(ctx context.Context, query user_dto.ListUsersQuery) ([]user_dto.UserResponse, *app_error.AppError) {
	users, err := u.UserRepo.ListSorted(ctx, entity.SortByCreatedAt, query.Direction())
	if err != nil {
		return nil, err
	}

	return user_dto.NewUserListResponse(users), nil
}
