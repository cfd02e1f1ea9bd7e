package middlewares

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/irrigodev/irrigationdesign/modules/core/services"
	"github.com/irrigodev/irrigationdesign/pkg/composables"
	"github.com/irrigodev/irrigationdesign/pkg/httpapi"
)

// Authorize resolves the bearer token to a user and puts it on the request
// context. Requests without a valid token never reach the handler.
func Authorize(auth *services.AuthService) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				_ = httpapi.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
				return
			}
			u, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				_ = httpapi.WriteFailure(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(composables.WithUser(r.Context(), u)))
		})
	}
}
