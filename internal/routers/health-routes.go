package routers

import (
	"github.com/go-chi/chi/v5"
	health_handler "github.com/xenn00/apibench/internal/handlers/health-handler"
	"github.com/xenn00/apibench/state"
)

func HealthRouter(r chi.Router, state *state.AppState) {
	healthHandler := health_handler.NewHealthHandler(state)

	r.Get("/healthz", healthHandler.Readiness)
	r.Get("/liveness", healthHandler.Liveness)
}
