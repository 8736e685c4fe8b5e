package health_handler

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/hlog"
	"github.com/xenn00/apibench/internal/handlers"
)

const healthMessage = "API Bench health check"

// Pinger reports failing backends by name.
type Pinger interface {
	Ping(ctx context.Context) map[string]error
}

type HealthResponse struct {
	StatusCode int               `json:"statusCode"`
	Message    string            `json:"message"`
	Checks     map[string]string `json:"checks,omitempty"`
}

type HealthHandler struct {
	Pinger  Pinger
	Timeout time.Duration
}

func NewHealthHandler(pinger Pinger) *HealthHandler {
	return &HealthHandler{Pinger: pinger, Timeout: 2 * time.Second}
}

// Readiness godoc
// @Summary Readiness check
// @Description Pings every configured backend
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /healthz [get]
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{StatusCode: http.StatusOK, Message: healthMessage}

	if h.Pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
		defer cancel()

		failures := h.Pinger.Ping(ctx)
		if len(failures) > 0 {
			resp.StatusCode = http.StatusServiceUnavailable
			resp.Checks = make(map[string]string, len(failures))
			for name, err := range failures {
				resp.Checks[name] = err.Error()
				hlog.FromRequest(r).Warn().Err(err).Str("backend", name).Msg("health check failed")
			}
		}
	}

	handlers.WriteJSON(w, resp.StatusCode, resp)
}

// Liveness godoc
// @Summary Liveness check
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /liveness [get]
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	handlers.WriteJSON(w, http.StatusOK, HealthResponse{StatusCode: http.StatusOK, Message: healthMessage})
}
