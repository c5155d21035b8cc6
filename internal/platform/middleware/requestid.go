// Package middleware provides the HTTP middleware chain: request correlation,
// request-scoped time, client metadata, and bearer-token authentication.
// Values flow to handlers and services through pkg/requestcontext.
package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"hrgate/pkg/requestcontext"
)

const requestIDHeader = "X-Request-ID"

// RequestID attaches a correlation ID to every request. An inbound
// X-Request-ID is trusted when present so IDs survive proxy hops; otherwise a
// fresh UUID is minted. The ID is echoed on the response for client-side
// correlation.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		w.Header().Set(requestIDHeader, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
