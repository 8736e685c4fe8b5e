package routers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	_ "github.com/xenn00/apibench/docs"
)

func DocsRouter(r chi.Router) {
	r.Get("/documentation", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/documentation/index.html", http.StatusMovedPermanently)
	})
	r.Get("/documentation/*", httpSwagger.Handler(
		httpSwagger.URL("/documentation/doc.json"),
	))
}
