package middlewares

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/basisledger/iou-ledger-service/internal/observability/tracing"
)

const (
	requestIdHeader = "X-Request-Id"
	traceIdHeader   = "X-Trace-Id"
)

// TracingMiddleware reuses a well formed X-Request-Id sent by the client as
// the trace id and echoes the trace id back in X-Trace-Id.
func TracingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var traceId string
		if id, err := uuid.Parse(r.Header.Get(requestIdHeader)); err == nil {
			traceId = id.String()
		}
		ctx := tracing.AttachTracingIntoContext(r.Context(), traceId)
		w.Header().Set(traceIdHeader, tracing.TraceIdFromContext(ctx))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
