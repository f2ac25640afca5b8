package middlewares

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/basisledger/iou-ledger-service/internal/config"
	"github.com/basisledger/iou-ledger-service/internal/types"
)

// RateLimitMiddleware caps the request rate of the routes it wraps with a
// token bucket shared by all clients. A zero rate-limit disables it.
func RateLimitMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	if cfg.Ledger.RateLimit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	limiter := rate.NewLimiter(rate.Limit(cfg.Ledger.RateLimit), cfg.Ledger.RateBurst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				log.Ctx(r.Context()).Warn().Str("path", r.URL.Path).Msg("rate limit exceeded")
				writeError(w, http.StatusTooManyRequests, types.TooManyRequests, "too many requests, retry later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type errorBody struct {
	Success   bool   `json:"success"`
	ErrorCode string `json:"error"`
	Message   string `json:"message"`
}

// writeError answers with the same envelope the handlers use for failures.
func writeError(w http.ResponseWriter, statusCode int, code types.ErrorCode, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(errorBody{ErrorCode: code.String(), Message: msg}) // nolint:errcheck
}
