package testutil

import (
	"net/http"
	"time"

	"hrgate/pkg/requestcontext"
)

// WithEmployeeID adds an employee ID to the request context.
// This simulates what the auth middleware would do for authenticated requests.
func WithEmployeeID(req *http.Request, employeeID string) *http.Request {
	return req.WithContext(requestcontext.WithEmployeeID(req.Context(), employeeID))
}

// WithRequestTime pins the request-scoped clock for deterministic tests.
func WithRequestTime(req *http.Request, now time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), now))
}
