package user_handler

import (
	"context"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
	"github.com/xenn00/apibench/internal/dtos/user_dto"
	app_error "github.com/xenn00/apibench/internal/errors"
	"github.com/xenn00/apibench/internal/handlers"
	"github.com/xenn00/apibench/internal/queue"
	user_service "github.com/xenn00/apibench/internal/use-case/user-case"
)

const maxBodyBytes = 1 << 20

type UserHandler struct {
	Ctx      context.Context
	Producer queue.Producer
	Service  user_service.UserServiceContract
}

// NewUserHandler wires the service. producer may be nil, in which case no
// registration job is queued.
func NewUserHandler(ctx context.Context, service user_service.UserServiceContract, producer queue.Producer) *UserHandler {
	return &UserHandler{
		Ctx:      ctx,
		Producer: producer,
		Service:  service,
	}
}

// CreateUser godoc
// @Summary Create a user
// @Description Registers a user. The username defaults to the name and is normalized by replacing whitespace runs with "-".
// @Tags users
// @Accept json
// @Produce json
// @Param request body user_dto.CreateUserRequest true "User payload"
// @Success 201 {object} user_dto.UserResponse
// @Failure 400 {object} app_error.ErrorResponse
// @Failure 409 {object} app_error.ErrorResponse
// @Failure 500 {object} app_error.ErrorResponse
// @Router /users [post]
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	defer r.Body.Close()

	var body any
	if err := jsoniter.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		return app_error.NewValidationError("", []app_error.FieldError{{Field: "body", Message: "must be a valid JSON object"}})
	}
	raw, ok := body.(map[string]any)
	if !ok {
		return app_error.NewValidationError("", []app_error.FieldError{{Field: "body", Message: "must be a valid JSON object"}})
	}

	req, details := user_dto.ParseCreateUser(raw)
	if len(details) > 0 {
		return app_error.NewValidationError(user_dto.DescribeFailures(details), details)
	}

	resp, err := h.Service.Register(r.Context(), req)
	if err != nil {
		return err
	}

	handlers.WriteJSON(w, http.StatusCreated, resp)

	if h.Producer != nil {
		go h.enqueueRegistered(*resp)
	}

	return nil
}

func (h *UserHandler) enqueueRegistered(user user_dto.UserResponse) {
	ctx, cancel := context.WithTimeout(h.Ctx, 5*time.Second)
	defer cancel()

	job, err := queue.NewUserRegisteredJob(queue.UserRegistered{
		UserID:    user.ID,
		Username:  user.Username,
		CreatedAt: user.CreatedAt,
	}, time.Now())
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to build registration job")
		return
	}

	if err := h.Producer.Enqueue(ctx, job); err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to enqueue job")
	}
}

// ListUsers godoc
// @Summary List users
// @Description Lists every user sorted by creation time. Passwords are never returned.
// @Tags users
// @Produce json
// @Param created query string true "Sort direction" Enums(asc, desc)
// @Success 200 {array} user_dto.UserResponse
// @Failure 400 {object} app_error.ErrorResponse
// @Failure 500 {object} app_error.ErrorResponse
// @Router /users [get]
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	query, details := user_dto.ParseListUsers(r.URL.Query())
	if len(details) > 0 {
		return app_error.NewValidationError(user_dto.DescribeFailures(details), details)
	}

	users, err := h.Service.List(r.Context(), query)
	if err != nil {
		return err
	}
	if users == nil {
		users = []user_dto.UserResponse{}
	}

	handlers.WriteJSON(w, http.StatusOK, users)
	return nil
}
