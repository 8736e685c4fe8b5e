package handlers

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/hlog"
	app_error "github.com/xenn00/apibench/internal/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type HandlerFunc func(w http.ResponseWriter, r *http.Request) *app_error.AppError

// WrapHandler logs the full failure and writes the classified error body.
// Causes and stacks only reach the client when exposeStack is set.
func WrapHandler(fn HandlerFunc, exposeStack bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := fn(w, r)
		if err == nil {
			return
		}

		status := err.StatusCode()
		event := hlog.FromRequest(r).Error()
		if status < http.StatusInternalServerError {
			event = hlog.FromRequest(r).Warn()
		}
		event.Err(err).
			Str("kind", string(err.Kind)).
			Str("field", err.Field).
			Int("status", status).
			Msg("request failed")

		_ = err.JSON(w, exposeStack)
	}
}
