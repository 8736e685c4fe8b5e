package routers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
	"github.com/xenn00/apibench/internal/middleware"
	"github.com/xenn00/apibench/internal/queue"
	user_repo "github.com/xenn00/apibench/internal/repo/user"
	"github.com/xenn00/apibench/state"
)

// NewRouter mounts every route. producer may be nil when Redis is not
// configured.
func NewRouter(state *state.AppState, userRepo user_repo.UserRepoContract, producer queue.Producer) http.Handler {
	exposeStack := !state.Config.IsProduction()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := middleware.NewMetrics(reg, "apibench")

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(hlog.NewHandler(log.Logger))
	r.Use(hlog.RemoteAddrHandler("ip"))
	r.Use(middleware.WithRequestId)
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	}))
	r.Use(middleware.Recoverer(exposeStack))
	r.Use(metrics.Instrument)

	UserRouter(r, state, userRepo, producer, exposeStack)
	HealthRouter(r, state)
	DocsRouter(r)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	_ = chi.Walk(r, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		log.Debug().Str("method", method).Str("route", route).Msg("route registered")
		return nil
	})

	return r
}
