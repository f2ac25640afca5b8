package middlewares

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/basisledger/iou-ledger-service/internal/observability/tracing"
)

// LoggingMiddleware attaches a request scoped logger to the context and logs
// one line per completed request. It must run after TracingMiddleware.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/swagger/") {
			next.ServeHTTP(w, r)
			return
		}

		startTime := time.Now()
		logger := log.With().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("traceId", tracing.TraceIdFromContext(r.Context())).
			Logger()

		logger.Debug().Msg("request received")
		r = r.WithContext(logger.WithContext(r.Context()))

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		var logEvent *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			logEvent = logger.Error()
		case status >= http.StatusBadRequest:
			logEvent = logger.Warn()
		default:
			logEvent = logger.Info()
		}

		if tracingInfo, ok := r.Context().Value(tracing.TracingInfoKey).(*tracing.TracingInfo); ok && len(tracingInfo.SpanDetails) > 0 {
			logEvent = logEvent.Interface("spans", tracingInfo.SpanDetails)
		}
		logEvent.
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Int64("requestDuration", time.Since(startTime).Milliseconds()).
			Msg("request completed")
	})
}
