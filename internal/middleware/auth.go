package middleware

import (
	"net/http"
	"strings"

	"infinite-experiment/flightboard/internal/auth"
	"infinite-experiment/flightboard/internal/constants"
	"infinite-experiment/flightboard/internal/logging"
)

// RequireOperator guards mutating routes with an operator bearer token.
// When no signing secret is configured the routes stay open.
func RequireOperator(tokens *auth.OperatorTokens) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !tokens.Enabled() {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeError(w, http.StatusUnauthorized, constants.MsgUnauthorized)
				return
			}

			claims, err := tokens.Verify(strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				logging.Warn("Rejected operator token", "request_id", auth.GetRequestID(r.Context()), "error", err)
				writeError(w, http.StatusUnauthorized, constants.MsgUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.SetOperatorClaims(r.Context(), claims)))
		})
	}
}
