// Package requesttime captures the receipt time of each request so every
// timestamp produced while serving it can be compared against a single "now".
package requesttime

import (
	"net/http"
	"time"

	"salesintel/pkg/requestcontext"
)

// Middleware stores the UTC receipt time in the request context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now().UTC())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
