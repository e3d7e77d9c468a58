// Package request copies chi's request ID into requestcontext so services can
// log it without depending on the router.
package request

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"bizverify/pkg/requestcontext"
)

// RequestID must run after chi's middleware.RequestID.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := middleware.GetReqID(r.Context())
		if reqID == "" {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("X-Request-ID", reqID)
		ctx := requestcontext.WithRequestID(r.Context(), reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
