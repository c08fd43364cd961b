// Package middleware provides the HTTP middleware chain: request identity,
// logging, panic recovery, metrics and authentication.
package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"muster/pkg/requestcontext"
)

// RequestIDHeader is the header carrying the correlation ID in and out.
const RequestIDHeader = "X-Request-ID"

// RequestID takes the caller's correlation ID or mints one, stores it in the
// context and echoes it on the response. It also pins the request time so all
// downstream timestamps within one request agree.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		ctx = requestcontext.WithTime(ctx, time.Now())
		w.Header().Set(RequestIDHeader, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
