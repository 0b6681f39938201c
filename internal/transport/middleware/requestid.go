package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/frahmantamala/farm-management/pkg/logger"
)

const traceHeader = "X-Trace-ID"

// RequestID threads a trace id through the request: honored from the
// incoming header when a caller supplies one, minted otherwise, attached to
// the context logger, and echoed on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(traceHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}

		ctx := logger.With(r.Context(), "traceID", traceID)
		w.Header().Set(traceHeader, traceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
