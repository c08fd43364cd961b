package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	id "muster/pkg/domain"
	dErrors "muster/pkg/domain-errors"
	"muster/pkg/platform/httputil"
	"muster/pkg/requestcontext"
)

// TokenValidator validates a bearer token and returns the volunteer it
// belongs to.
type TokenValidator interface {
	ValidateToken(tokenString string) (id.VolunteerID, error)
}

// RequireVolunteer rejects requests without a valid bearer token and puts the
// authenticated volunteer ID into the request context.
func RequireVolunteer(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing or invalid Authorization header"))
				return
			}

			volunteerID, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"request_id", requestcontext.RequestID(ctx),
					"error", err,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired token"))
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithVolunteerID(ctx, volunteerID)))
		})
	}
}
