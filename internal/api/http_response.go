package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/rs/zerolog/log"

	"github.com/basisledger/iou-ledger-service/internal/api/handlers"
	"github.com/basisledger/iou-ledger-service/internal/observability/metrics"
	"github.com/basisledger/iou-ledger-service/internal/types"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Success   bool   `json:"success"`
	ErrorCode string `json:"error"`
	Field     string `json:"field,omitempty"`
	Message   string `json:"message"`
}

func (e *ErrorResponse) Error() string {
	return e.Message
}

func newErrorResponse(err *types.Error) *ErrorResponse {
	return &ErrorResponse{
		ErrorCode: err.ErrorCode.String(),
		Field:     err.Field,
		Message:   err.Err.Error(),
	}
}

func internalErrorResponse() *ErrorResponse {
	return &ErrorResponse{
		ErrorCode: types.InternalServiceError.String(),
		Message:   "Internal service error",
	}
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

func registerHandler(handlerFunc func(*http.Request) (*handlers.Result, *types.Error)) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		// routing is complete by now so the pattern is known
		timer := metrics.StartHttpRequestDurationTimer(routePattern(r))
		result, err := handlerFunc(r)

		if err != nil {
			status := err.StatusCode
			if http.StatusText(status) == "" {
				log.Ctx(r.Context()).Error().Err(err).Int("status_code", status).Msg("invalid status code")
				status = http.StatusInternalServerError
			}
			response := newErrorResponse(err)
			if status >= http.StatusInternalServerError {
				log.Ctx(r.Context()).Error().Err(err).Str("errorCode", response.ErrorCode).Msg("request failed with 5xx error")
				response = internalErrorResponse()
			}
			timer(status)
			writeResponse(w, r, status, response)
			return
		}

		if result == nil || http.StatusText(result.Status) == "" {
			log.Ctx(r.Context()).Error().Msg("handler returned neither a result nor an error")
			timer(http.StatusInternalServerError)
			writeResponse(w, r, http.StatusInternalServerError, internalErrorResponse())
			return
		}

		timer(result.Status)
		writeResponse(w, r, result.Status, result.Data)
	}
}

func writeResponse(w http.ResponseWriter, r *http.Request, statusCode int, res interface{}) {
	respBytes, err := json.Marshal(res)
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("failed to marshal response")
		http.Error(w, "Failed to process the request. Please try again later.", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(respBytes) // nolint:errcheck
}
