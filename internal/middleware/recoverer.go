package middleware

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog/hlog"
	app_error "github.com/xenn00/apibench/internal/errors"
)

// Recoverer classifies a panic like any other failure. Panics with an error
// value keep a self-declared status, anything else is unclassified.
func Recoverer(exposeStack bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				var appErr *app_error.AppError
				if err, ok := rec.(error); ok {
					appErr = app_error.FromError(err)
				} else {
					appErr = app_error.NewUnclassifiedError("", fmt.Errorf("panic: %v", rec))
				}

				hlog.FromRequest(r).Error().
					Err(appErr).
					Int("status", appErr.StatusCode()).
					Bytes("stack", appErr.Stack).
					Msg("handler panicked")

				_ = appErr.JSON(w, exposeStack)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
