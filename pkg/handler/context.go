package handler

import (
	"context"
	"net/http"
	"time"
)

// contextWithTimeout derives the per-invocation deadline from the request
// context. A zero timeout leaves the request context unbounded.
func contextWithTimeout(r *http.Request, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), timeout)
}
