package middleware

import (
	"net/http"
	"runtime/debug"

	"codeprep/internal/common"

	"go.uber.org/zap"
)

// Recover turns panics into JSON 500 responses. The stack trace is
// included in the body only outside production.
func Recover(production bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					stack := string(debug.Stack())
					zap.S().Errorw("panic while serving request",
						"panic", rec, "path", r.URL.Path, "stack", stack)

					body := map[string]any{
						"success": false,
						"message": "Server Error",
					}
					if !production {
						body["stack"] = stack
					}
					common.RespondWithJSON(w, http.StatusInternalServerError, body)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
