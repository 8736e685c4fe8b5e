package routers

import (
	"github.com/go-chi/chi/v5"
	"github.com/xenn00/apibench/internal/handlers"
	user_handler "github.com/xenn00/apibench/internal/handlers/user-handler"
	"github.com/xenn00/apibench/internal/queue"
	user_repo "github.com/xenn00/apibench/internal/repo/user"
	user_service "github.com/xenn00/apibench/internal/use-case/user-case"
	"github.com/xenn00/apibench/state"
)

func UserRouter(r chi.Router, state *state.AppState, userRepo user_repo.UserRepoContract, producer queue.Producer, exposeStack bool) {
	userHandler := user_handler.NewUserHandler(state.Ctx, user_service.NewUserService(userRepo), producer)

	r.Post("/users", handlers.WrapHandler(userHandler.CreateUser, exposeStack))
	r.Get("/users", handlers.WrapHandler(userHandler.ListUsers, exposeStack))
}
